package approval

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Gate owns the pending-confirmation index and its three-way resolution race:
// approve, deny, and timeout all compete to resolve a confirmation, and the
// first to observe StatusPending wins. The status transition under the gate
// mutex is the single-decision guard; later arrivals see a terminal status
// and become no-ops.
type Gate struct {
	mu sync.Mutex

	cfg           Config
	confirmations map[string]*Confirmation

	// resolvers and timers exist only while a confirmation is pending.
	resolvers map[string]chan bool
	timers    map[string]*time.Timer
}

// NewGate creates an approval gate. Cleanup is caller-scheduled; the gate
// does not run its own background tasks.
func NewGate(cfg Config) *Gate {
	return &Gate{
		cfg:           cfg.withDefaults(),
		confirmations: make(map[string]*Confirmation),
		resolvers:     make(map[string]chan bool),
		timers:        make(map[string]*time.Timer),
	}
}

// RequestConfirmation classifies the invocation and, when confirmation is
// required, registers a pending record with a timeout. The returned channel
// yields exactly one value: true when approved, false when denied or expired.
// When the classified level is LevelNone the channel yields true immediately
// and no record is created.
//
// An empty message is replaced with a generated prompt.
func (g *Gate) RequestConfirmation(sessionID, toolName string, args map[string]any, message string) <-chan bool {
	_, result := g.Request(sessionID, toolName, args, message)
	return result
}

// Request behaves like RequestConfirmation and additionally returns the
// pending record, or nil when no confirmation was required.
func (g *Gate) Request(sessionID, toolName string, args map[string]any, message string) (*Confirmation, <-chan bool) {
	result := make(chan bool, 1)

	level := g.ConfirmationLevel(toolName, args)
	if level == LevelNone {
		result <- true
		return nil, result
	}

	if message == "" {
		message = g.GenerateMessage(toolName, args)
	}

	now := time.Now()
	conf := &Confirmation{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		ToolName:  toolName,
		Args:      args,
		Message:   message,
		Level:     level,
		Status:    StatusPending,
		CreatedAt: now,
		ExpiresAt: now.Add(g.cfg.Timeout),
	}

	g.mu.Lock()
	g.confirmations[conf.ID] = conf
	g.resolvers[conf.ID] = result
	g.timers[conf.ID] = time.AfterFunc(g.cfg.Timeout, func() {
		g.expire(conf.ID)
	})
	g.mu.Unlock()

	return conf, result
}

// Approve resolves a pending confirmation as approved. It reports false when
// the confirmation is unknown or no longer pending.
func (g *Gate) Approve(id string) bool {
	return g.resolve(id, StatusApproved, true)
}

// Deny resolves a pending confirmation as denied. It reports false when the
// confirmation is unknown or no longer pending.
func (g *Gate) Deny(id string) bool {
	return g.resolve(id, StatusDenied, false)
}

// resolve performs the atomic pending-to-terminal transition. Exactly one of
// approve, deny, or expire succeeds per confirmation.
func (g *Gate) resolve(id string, status Status, approved bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	conf, ok := g.confirmations[id]
	if !ok || conf.Status != StatusPending {
		return false
	}
	conf.Status = status

	if timer, ok := g.timers[id]; ok {
		// Stop may report false when the timer already fired; the status
		// guard above makes the late expire a no-op, so this is tolerated.
		timer.Stop()
		delete(g.timers, id)
	}
	if result, ok := g.resolvers[id]; ok {
		result <- approved
		delete(g.resolvers, id)
	}
	return true
}

// expire is the timer's entry into the resolution race. It transitions a
// still-pending confirmation to StatusExpired and resolves its waiter with
// false; a confirmation already resolved is left untouched.
func (g *Gate) expire(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	conf, ok := g.confirmations[id]
	if !ok || conf.Status != StatusPending {
		return
	}
	conf.Status = StatusExpired

	if timer, ok := g.timers[id]; ok {
		timer.Stop()
		delete(g.timers, id)
	}
	if result, ok := g.resolvers[id]; ok {
		result <- false
		delete(g.resolvers, id)
	}
}

// Cleanup expires overdue pending confirmations and deletes terminal records
// older than the retention window. It is intended to be run periodically by
// the caller.
func (g *Gate) Cleanup() {
	now := time.Now()

	g.mu.Lock()
	var overdue []string
	for id, conf := range g.confirmations {
		if conf.Status == StatusPending && now.After(conf.ExpiresAt) {
			overdue = append(overdue, id)
		}
	}
	g.mu.Unlock()

	for _, id := range overdue {
		g.expire(id)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	cutoff := now.Add(-g.cfg.Retention)
	for id, conf := range g.confirmations {
		if conf.Status != StatusPending && conf.CreatedAt.Before(cutoff) {
			delete(g.confirmations, id)
		}
	}
}

// Get returns the confirmation by ID, or nil when unknown.
func (g *Gate) Get(id string) *Confirmation {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.confirmations[id]
}

// PendingForSession returns the session's confirmations still awaiting a
// decision.
func (g *Gate) PendingForSession(sessionID string) []*Confirmation {
	g.mu.Lock()
	defer g.mu.Unlock()

	var result []*Confirmation
	for _, conf := range g.confirmations {
		if conf.SessionID == sessionID && conf.Status == StatusPending {
			result = append(result, conf)
		}
	}
	return result
}
