// Package admin provides REST API endpoints for the human-approval surface:
// listing and deciding pending confirmations, inspecting sessions, and
// browsing the tool catalog.
package admin

import (
	"encoding/json"
	"net/http"

	"github.com/txn2/mcp-agent-gate/pkg/gateway"
)

// Handler provides admin REST API endpoints.
type Handler struct {
	mux        *http.ServeMux
	gw         *gateway.Gateway
	authMiddle func(http.Handler) http.Handler
}

// NewHandler creates a new admin API handler. authMiddle may be nil to
// disable authentication (tests, trusted networks).
func NewHandler(gw *gateway.Gateway, authMiddle func(http.Handler) http.Handler) *Handler {
	h := &Handler{
		mux:        http.NewServeMux(),
		gw:         gw,
		authMiddle: authMiddle,
	}
	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.authMiddle != nil {
		h.authMiddle(h.mux).ServeHTTP(w, r)
		return
	}
	h.mux.ServeHTTP(w, r)
}

// registerRoutes registers all admin API routes.
func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /api/v1/admin/approvals", h.listApprovals)
	h.mux.HandleFunc("GET /api/v1/admin/approvals/{id}", h.getApproval)
	h.mux.HandleFunc("POST /api/v1/admin/approvals/{id}/approve", h.approve)
	h.mux.HandleFunc("POST /api/v1/admin/approvals/{id}/deny", h.deny)
	h.mux.HandleFunc("GET /api/v1/admin/sessions/stats", h.getSessionStats)
	h.mux.HandleFunc("GET /api/v1/admin/sessions", h.listSessions)
	h.mux.HandleFunc("DELETE /api/v1/admin/sessions/{id}", h.deleteSession)
	h.mux.HandleFunc("GET /api/v1/admin/tools", h.listTools)
	h.mux.HandleFunc("GET /api/v1/admin/tools/search", h.searchTools)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
