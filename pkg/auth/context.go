// Package auth resolves authenticated identities into the flat permission
// sets consumed by the tool catalog. It verifies bearer tokens, extracts
// identity and grants from claims, and expands role memberships into
// permission strings.
package auth

import "context"

// contextKey is a private type for context keys.
type contextKey int

const userContextKey contextKey = iota

// UserContext holds the authenticated caller's identity and resolved grants.
type UserContext struct {
	UserID      string         `json:"user_id"`
	Email       string         `json:"email,omitempty"`
	Roles       []string       `json:"roles,omitempty"`
	Permissions []string       `json:"permissions,omitempty"`
	Claims      map[string]any `json:"claims,omitempty"`
}

// WithUserContext adds user context to the context.
func WithUserContext(ctx context.Context, uc *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, uc)
}

// GetUserContext retrieves user context from the context, or nil.
func GetUserContext(ctx context.Context) *UserContext {
	if uc, ok := ctx.Value(userContextKey).(*UserContext); ok {
		return uc
	}
	return nil
}

// HasPermission checks if the user carries a specific permission string.
// Wildcard semantics live in the catalog; this is an exact-match check.
func (uc *UserContext) HasPermission(permission string) bool {
	for _, p := range uc.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// HasRole checks if the user has a specific role.
func (uc *UserContext) HasRole(role string) bool {
	for _, r := range uc.Roles {
		if r == role {
			return true
		}
	}
	return false
}
