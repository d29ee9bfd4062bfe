// Package session provides in-memory conversational session management for
// the agent gate. Each session tracks one user's ongoing interaction context:
// the collection they are working in, documents they have selected, and the
// conversation the exchange belongs to.
package session

import "time"

// Session represents one user's bounded-lifetime interaction context.
type Session struct {
	// ID is the unique session identifier.
	ID string `json:"id"`

	// UserID identifies the session owner.
	UserID string `json:"user_id"`

	// CreatedAt is when the session was established.
	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt is when the session expires if not extended.
	ExpiresAt time.Time `json:"expires_at"`

	// Collection is the collection the user is currently working in, if any.
	Collection string `json:"collection,omitempty"`

	// SelectedDocuments holds the ordered document IDs the user has selected.
	SelectedDocuments []string `json:"selected_documents,omitempty"`

	// ConversationID links the session to a stored conversation, if any.
	ConversationID string `json:"conversation_id,omitempty"`

	// Metadata holds extensible session data.
	Metadata map[string]any `json:"metadata,omitempty"`

	// seq orders sessions with identical CreatedAt for capacity eviction.
	seq uint64
}

// Update describes a partial mutation of a session. Nil fields are left
// untouched; Metadata is merged key-wise into the existing map.
type Update struct {
	Collection        *string
	SelectedDocuments []string
	ConversationID    *string
	Metadata          map[string]any
}

// Stats summarizes the live session population.
type Stats struct {
	// ActiveSessions is the number of unexpired sessions.
	ActiveSessions int `json:"active_sessions"`

	// ActiveUsers is the number of distinct users with unexpired sessions.
	ActiveUsers int `json:"active_users"`

	// MeanAge is the average age of unexpired sessions.
	MeanAge time.Duration `json:"mean_age"`
}
