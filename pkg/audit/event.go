// Package audit records tool invocation attempts and the approval decisions
// taken on them. The gate core does not persist these records itself; sinks
// are pluggable so external collaborators can keep their own records.
package audit

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

// Decision is the recorded outcome of a gated invocation.
type Decision string

const (
	DecisionAllowed  Decision = "allowed"
	DecisionApproved Decision = "approved"
	DecisionDenied   Decision = "denied"
	DecisionExpired  Decision = "expired"
)

// Event represents an auditable gate event.
type Event struct {
	ID             string         `json:"id"`
	Timestamp      time.Time      `json:"timestamp"`
	SessionID      string         `json:"session_id"`
	UserID         string         `json:"user_id"`
	ToolName       string         `json:"tool_name"`
	Arguments      map[string]any `json:"arguments,omitempty"`
	Level          string         `json:"level,omitempty"`
	ConfirmationID string         `json:"confirmation_id,omitempty"`
	Decision       Decision       `json:"decision"`
	WaitedMS       int64          `json:"waited_ms,omitempty"`
}

// NewEvent creates a new audit event for a tool invocation.
func NewEvent(toolName string) *Event {
	return &Event{
		ID:        generateEventID(),
		Timestamp: time.Now(),
		ToolName:  toolName,
	}
}

// WithSession adds session and user information to the event.
func (e *Event) WithSession(sessionID, userID string) *Event {
	e.SessionID = sessionID
	e.UserID = userID
	return e
}

// WithArguments adds sanitized invocation arguments to the event.
func (e *Event) WithArguments(args map[string]any) *Event {
	e.Arguments = SanitizeArguments(args)
	return e
}

// WithConfirmation links the event to a pending confirmation.
func (e *Event) WithConfirmation(id, level string) *Event {
	e.ConfirmationID = id
	e.Level = level
	return e
}

// WithDecision records the outcome and how long the caller waited for it.
func (e *Event) WithDecision(decision Decision, waited time.Duration) *Event {
	e.Decision = decision
	e.WaitedMS = waited.Milliseconds()
	return e
}

// generateEventID generates a unique event ID.
func generateEventID() string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)
	return base64.RawURLEncoding.EncodeToString(bytes)
}

// SanitizeArguments redacts sensitive argument values.
func SanitizeArguments(args map[string]any) map[string]any {
	if args == nil {
		return nil
	}

	sensitiveKeys := map[string]bool{
		"password":      true,
		"secret":        true,
		"token":         true,
		"api_key":       true,
		"authorization": true,
		"credentials":   true,
	}

	sanitized := make(map[string]any)
	for k, v := range args {
		if sensitiveKeys[k] {
			sanitized[k] = "[REDACTED]"
		} else {
			sanitized[k] = v
		}
	}
	return sanitized
}
