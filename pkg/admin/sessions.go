package admin

import (
	"net/http"

	"github.com/txn2/mcp-agent-gate/pkg/session"
)

// sessionsResponse wraps a user's live sessions.
type sessionsResponse struct {
	Sessions []*session.Session `json:"sessions"`
	Count    int                `json:"count"`
}

// getSessionStats handles GET /api/v1/admin/sessions/stats.
func (h *Handler) getSessionStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.gw.Sessions().GetStats())
}

// listSessions handles GET /api/v1/admin/sessions?user_id=.
func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	sessions := h.gw.Sessions().UserSessions(userID)
	if sessions == nil {
		sessions = []*session.Session{}
	}
	writeJSON(w, http.StatusOK, sessionsResponse{Sessions: sessions, Count: len(sessions)})
}

// deleteSession handles DELETE /api/v1/admin/sessions/{id}.
func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	if !h.gw.Sessions().Delete(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
