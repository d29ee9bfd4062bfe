package admin

import (
	"net/http"

	"github.com/txn2/mcp-agent-gate/pkg/approval"
)

// approvalsResponse wraps a list of pending confirmations.
type approvalsResponse struct {
	Approvals []*approval.Confirmation `json:"approvals"`
	Count     int                      `json:"count"`
}

// decisionResponse reports whether an approve/deny call took effect.
type decisionResponse struct {
	Success bool `json:"success"`
}

// listApprovals handles GET /api/v1/admin/approvals?session_id=.
func (h *Handler) listApprovals(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	pending := h.gw.Gate().PendingForSession(sessionID)
	if pending == nil {
		pending = []*approval.Confirmation{}
	}
	writeJSON(w, http.StatusOK, approvalsResponse{Approvals: pending, Count: len(pending)})
}

// getApproval handles GET /api/v1/admin/approvals/{id}.
func (h *Handler) getApproval(w http.ResponseWriter, r *http.Request) {
	conf := h.gw.Gate().Get(r.PathValue("id"))
	if conf == nil {
		writeError(w, http.StatusNotFound, "confirmation not found")
		return
	}
	writeJSON(w, http.StatusOK, conf)
}

// approve handles POST /api/v1/admin/approvals/{id}/approve.
//
// A false success means the confirmation is unknown or was already resolved
// by a competing decision or its timeout.
func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	ok := h.gw.Gate().Approve(r.PathValue("id"))
	writeJSON(w, http.StatusOK, decisionResponse{Success: ok})
}

// deny handles POST /api/v1/admin/approvals/{id}/deny.
func (h *Handler) deny(w http.ResponseWriter, r *http.Request) {
	ok := h.gw.Gate().Deny(r.PathValue("id"))
	writeJSON(w, http.StatusOK, decisionResponse{Success: ok})
}
