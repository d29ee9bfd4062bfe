// Package http provides HTTP middleware for the agent gate.
package http

import (
	"net/http"
	"strings"

	"github.com/txn2/mcp-agent-gate/pkg/auth"
)

// AuthMiddleware verifies bearer tokens and adds the resolved user context
// to the request context. Handlers behind it read the caller's identity and
// permission set with auth.GetUserContext.
//
// When requireAuth is false, requests without a token pass through with no
// user context; requests with an invalid token are still rejected.
func AuthMiddleware(verifier *auth.TokenVerifier, requireAuth bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				if requireAuth {
					http.Error(w, "authentication required", http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			uc, err := verifier.Verify(token)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUserContext(r.Context(), uc)))
		})
	}
}

// extractToken pulls a bearer token from the Authorization header.
func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token
	}
	return ""
}
