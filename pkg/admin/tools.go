package admin

import (
	"net/http"

	"github.com/txn2/mcp-agent-gate/pkg/catalog"
)

// toolEntry describes one registered tool for the admin UI.
type toolEntry struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Category     string   `json:"category,omitempty"`
	Permissions  []string `json:"permissions,omitempty"`
	DeferLoading bool     `json:"defer_loading,omitempty"`
}

// toolsResponse wraps the registered tool list.
type toolsResponse struct {
	Tools []toolEntry `json:"tools"`
	Count int         `json:"count"`
}

// searchResponse wraps tool search matches.
type searchResponse struct {
	Matches []catalog.Summary `json:"matches"`
	Count   int               `json:"count"`
}

// listTools handles GET /api/v1/admin/tools, optionally filtered by
// ?category=.
func (h *Handler) listTools(w http.ResponseWriter, r *http.Request) {
	var tools []*catalog.Tool
	if category := r.URL.Query().Get("category"); category != "" {
		tools = h.gw.Catalog().ByCategory(category)
	} else {
		tools = h.gw.Catalog().All()
	}

	entries := make([]toolEntry, 0, len(tools))
	for _, tool := range tools {
		entries = append(entries, toolEntry{
			Name:         tool.Name,
			Description:  tool.Description,
			Category:     tool.Category,
			Permissions:  tool.Permissions,
			DeferLoading: tool.DeferLoading,
		})
	}
	writeJSON(w, http.StatusOK, toolsResponse{Tools: entries, Count: len(entries)})
}

// searchTools handles GET /api/v1/admin/tools/search?q=.
func (h *Handler) searchTools(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	matches := h.gw.Catalog().Search(query)
	writeJSON(w, http.StatusOK, searchResponse{Matches: matches, Count: len(matches)})
}
