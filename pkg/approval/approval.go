// Package approval gates high-impact tool invocations behind a human
// confirmation workflow. Each classified invocation produces a pending
// confirmation that is resolved exactly once by an explicit approval, an
// explicit denial, or a timeout.
package approval

import "time"

// Level is the confirmation requirement for a tool invocation.
type Level string

const (
	// LevelNone requires no confirmation; the invocation proceeds.
	LevelNone Level = "none"

	// LevelModal requires an explicit human decision before proceeding.
	LevelModal Level = "modal"
)

// Status is the lifecycle state of a pending confirmation. Every state other
// than StatusPending is terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"
	StatusExpired  Status = "expired"
)

// Confirmation is one pending or resolved human-approval request.
type Confirmation struct {
	// ID is the unique confirmation identifier.
	ID string `json:"id"`

	// SessionID is the session the invocation belongs to.
	SessionID string `json:"session_id"`

	// ToolName is the tool awaiting approval.
	ToolName string `json:"tool_name"`

	// Args are the invocation arguments, for display and audit.
	Args map[string]any `json:"args,omitempty"`

	// Message is the human-readable confirmation prompt.
	Message string `json:"message"`

	// Level is the confirmation level that triggered the request.
	Level Level `json:"level"`

	// Status is the current lifecycle state.
	Status Status `json:"status"`

	// CreatedAt is when the request was created.
	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt is when the request times out if unresolved.
	ExpiresAt time.Time `json:"expires_at"`
}

const (
	// DefaultTimeout bounds how long a confirmation stays pending.
	DefaultTimeout = 2 * time.Minute

	// DefaultRetention is how long resolved confirmations are kept for
	// inspection before garbage collection.
	DefaultRetention = 5 * time.Minute
)

// Config configures a Gate.
type Config struct {
	// DestructiveActions is the level for delete/remove/destroy tools.
	DestructiveActions Level `yaml:"destructive_actions"`

	// BulkOperations is the level for bulk or filtered multi-item tools.
	BulkOperations Level `yaml:"bulk_operations"`

	// ConfigChanges is the level for configuration and schema tools.
	ConfigChanges Level `yaml:"config_changes"`

	// Default is the level for everything else.
	Default Level `yaml:"default"`

	// Timeout is how long a confirmation may stay pending.
	Timeout time.Duration `yaml:"timeout"`

	// Retention is how long resolved confirmations are kept.
	Retention time.Duration `yaml:"retention"`
}

// withDefaults fills zero fields with package defaults.
func (c Config) withDefaults() Config {
	if c.DestructiveActions == "" {
		c.DestructiveActions = LevelModal
	}
	if c.BulkOperations == "" {
		c.BulkOperations = LevelModal
	}
	if c.ConfigChanges == "" {
		c.ConfigChanges = LevelModal
	}
	if c.Default == "" {
		c.Default = LevelNone
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Retention <= 0 {
		c.Retention = DefaultRetention
	}
	return c
}
