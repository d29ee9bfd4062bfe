package audit

import (
	"context"
	"log/slog"
	"sync"
)

// Logger defines the interface for audit sinks.
type Logger interface {
	// Log records an audit event.
	Log(ctx context.Context, event *Event) error
}

// SlogLogger writes audit events as structured log records.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger creates an audit logger backed by a slog.Logger. A nil
// logger falls back to slog.Default.
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLogger{logger: logger}
}

// Log records an audit event.
func (l *SlogLogger) Log(ctx context.Context, event *Event) error {
	l.logger.LogAttrs(ctx, slog.LevelInfo, "gate decision",
		slog.String("event_id", event.ID),
		slog.String("session_id", event.SessionID),
		slog.String("user_id", event.UserID),
		slog.String("tool", event.ToolName),
		slog.String("decision", string(event.Decision)),
		slog.String("confirmation_id", event.ConfirmationID),
		slog.Int64("waited_ms", event.WaitedMS),
	)
	return nil
}

// MemoryLogger keeps events in memory. It is intended for tests and
// short-lived diagnostics.
type MemoryLogger struct {
	mu     sync.Mutex
	events []*Event
}

// NewMemoryLogger creates an in-memory audit logger.
func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

// Log records an audit event.
func (l *MemoryLogger) Log(_ context.Context, event *Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
	return nil
}

// Events returns a copy of the recorded events.
func (l *MemoryLogger) Events() []*Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*Event(nil), l.events...)
}

// Verify interface compliance.
var (
	_ Logger = (*SlogLogger)(nil)
	_ Logger = (*MemoryLogger)(nil)
)
