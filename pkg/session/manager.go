package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultTTL is the session lifetime applied when Config.TTL is zero.
	DefaultTTL = 30 * time.Minute

	// DefaultMaxPerUser caps sessions per user when Config.MaxPerUser is zero.
	DefaultMaxPerUser = 5

	// DefaultSweepInterval is the expired-session sweep cadence applied when
	// Config.SweepInterval is zero.
	DefaultSweepInterval = 5 * time.Minute
)

// Config configures a Manager.
type Config struct {
	// TTL is the session lifetime added to CreatedAt to compute ExpiresAt.
	TTL time.Duration `yaml:"ttl"`

	// MaxPerUser is the maximum number of live sessions per user. Creating
	// a session beyond the cap evicts the user's oldest sessions.
	MaxPerUser int `yaml:"max_per_user"`

	// SweepInterval is how often the background sweep evicts expired
	// sessions. The cadence is a tuning knob, not a correctness requirement.
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// withDefaults fills zero fields with package defaults.
func (c Config) withDefaults() Config {
	if c.TTL <= 0 {
		c.TTL = DefaultTTL
	}
	if c.MaxPerUser <= 0 {
		c.MaxPerUser = DefaultMaxPerUser
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	return c
}

// Manager owns the session index and its per-user secondary index. The two
// indexes are mutated together under one mutex so they never disagree.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	byUser   map[string]map[string]struct{}
	nextSeq  uint64
	cfg      Config

	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a session manager. Call StartSweep to enable background
// eviction of expired sessions, and Close to release it.
func NewManager(cfg Config) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		byUser:   make(map[string]map[string]struct{}),
		cfg:      cfg.withDefaults(),
	}
}

// Create allocates a new session for userID and enforces the per-user cap by
// evicting the user's oldest sessions.
func (m *Manager) Create(userID string, metadata map[string]any) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.cfg.TTL),
		Metadata:  metadata,
		seq:       m.nextSeq,
	}
	m.nextSeq++

	m.sessions[sess.ID] = sess
	ids, ok := m.byUser[userID]
	if !ok {
		ids = make(map[string]struct{})
		m.byUser[userID] = ids
	}
	ids[sess.ID] = struct{}{}

	m.enforceCapLocked(userID)
	return sess
}

// Get returns the session if present and unexpired. An expired session is
// deleted on read and reported as absent.
func (m *Manager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getLocked(id)
}

// GetOrCreate returns the session for id only when it exists, is unexpired,
// and belongs to userID. Any other case creates a fresh session, so a reused
// identifier can never attach to another user's context.
func (m *Manager) GetOrCreate(id, userID string, metadata map[string]any) *Session {
	if id != "" {
		m.mu.Lock()
		sess := m.getLocked(id)
		if sess != nil && sess.UserID == userID {
			m.mu.Unlock()
			return sess
		}
		m.mu.Unlock()
	}
	return m.Create(userID, metadata)
}

// Apply merges upd into the session. It reports false when the session is
// absent or expired.
func (m *Manager) Apply(id string, upd Update) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess := m.getLocked(id)
	if sess == nil {
		return false
	}
	if upd.Collection != nil {
		sess.Collection = *upd.Collection
	}
	if upd.SelectedDocuments != nil {
		sess.SelectedDocuments = upd.SelectedDocuments
	}
	if upd.ConversationID != nil {
		sess.ConversationID = *upd.ConversationID
	}
	if len(upd.Metadata) > 0 {
		if sess.Metadata == nil {
			sess.Metadata = make(map[string]any, len(upd.Metadata))
		}
		for k, v := range upd.Metadata {
			sess.Metadata[k] = v
		}
	}
	return true
}

// Extend resets the session's expiry to now plus the configured TTL. It
// reports false when the session is absent or already expired.
func (m *Manager) Extend(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess := m.getLocked(id)
	if sess == nil {
		return false
	}
	sess.ExpiresAt = time.Now().Add(m.cfg.TTL)
	return true
}

// Delete removes the session from both indexes. It reports whether a session
// was removed.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return false
	}
	m.deleteLocked(sess)
	return true
}

// UserSessions returns the user's unexpired sessions. Expired entries found
// along the way are evicted.
func (m *Manager) UserSessions(userID string) []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []*Session
	for id := range m.byUser[userID] {
		if sess := m.getLocked(id); sess != nil {
			result = append(result, sess)
		}
	}
	return result
}

// DeleteUserSessions removes all of the user's sessions and returns how many
// were removed.
func (m *Manager) DeleteUserSessions(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for id := range m.byUser[userID] {
		if sess, ok := m.sessions[id]; ok {
			m.deleteLocked(sess)
			count++
		}
	}
	return count
}

// GetStats reports the live session population.
func (m *Manager) GetStats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	stats := Stats{}
	var totalAge time.Duration
	users := make(map[string]struct{})
	for _, sess := range m.sessions {
		if now.After(sess.ExpiresAt) {
			continue
		}
		stats.ActiveSessions++
		users[sess.UserID] = struct{}{}
		totalAge += now.Sub(sess.CreatedAt)
	}
	stats.ActiveUsers = len(users)
	if stats.ActiveSessions > 0 {
		stats.MeanAge = totalAge / time.Duration(stats.ActiveSessions)
	}
	return stats
}

// Sweep evicts all expired sessions and returns how many were removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	count := 0
	for _, sess := range m.sessions {
		if now.After(sess.ExpiresAt) {
			m.deleteLocked(sess)
			count++
		}
	}
	return count
}

// StartSweep starts a background goroutine that periodically evicts expired
// sessions so memory stays bounded even without read traffic. The goroutine
// is stopped when Close is called.
func (m *Manager) StartSweep() {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})

	go func() {
		defer close(m.done)

		ticker := time.NewTicker(m.cfg.SweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Sweep()
			}
		}
	}()
}

// Close stops the sweep goroutine and waits for it to exit. It is safe to
// call Close even if StartSweep was never called.
func (m *Manager) Close() error {
	if m.cancel != nil {
		m.cancel()
		<-m.done
		m.cancel = nil
	}
	return nil
}

// getLocked returns the unexpired session for id, deleting it lazily when
// its expiry has passed. Callers must hold m.mu.
func (m *Manager) getLocked(id string) *Session {
	sess, ok := m.sessions[id]
	if !ok {
		return nil
	}
	if time.Now().After(sess.ExpiresAt) {
		m.deleteLocked(sess)
		return nil
	}
	return sess
}

// deleteLocked removes sess from both indexes. Callers must hold m.mu.
func (m *Manager) deleteLocked(sess *Session) {
	delete(m.sessions, sess.ID)
	ids := m.byUser[sess.UserID]
	delete(ids, sess.ID)
	if len(ids) == 0 {
		delete(m.byUser, sess.UserID)
	}
}

// enforceCapLocked evicts the user's oldest sessions until the count is at
// or below the configured cap. Ties on CreatedAt fall back to insertion
// order. Callers must hold m.mu.
func (m *Manager) enforceCapLocked(userID string) {
	for len(m.byUser[userID]) > m.cfg.MaxPerUser {
		var oldest *Session
		for id := range m.byUser[userID] {
			sess := m.sessions[id]
			if oldest == nil ||
				sess.CreatedAt.Before(oldest.CreatedAt) ||
				(sess.CreatedAt.Equal(oldest.CreatedAt) && sess.seq < oldest.seq) {
				oldest = sess
			}
		}
		m.deleteLocked(oldest)
	}
}
