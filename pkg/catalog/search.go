package catalog

import (
	"context"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// SearchToolName is the name of the synthetic tool-discovery meta-tool.
const SearchToolName = "search_tools"

// SearchTool synthesizes the search_tools meta-tool. Its handler matches a
// query string against every registered tool's name and description so an
// agent can recover tools left out of the budgeted set.
func (c *Catalog) SearchTool() *Tool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.searchToolLocked()
}

func (c *Catalog) searchToolLocked() *Tool {
	return &Tool{
		Name:        SearchToolName,
		Description: "Search the full tool catalog by keyword. Use this to find tools that are not in your current tool list.",
		Category:    "meta",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"query": {
					Type:        "string",
					Description: "Keyword to match against tool names and descriptions",
				},
			},
			Required: []string{"query"},
		},
		Handler: func(_ context.Context, args map[string]any) (any, error) {
			query, _ := args["query"].(string)
			return c.Search(query), nil
		},
	}
}

// Search returns summaries of every tool whose name or description contains
// query, case-insensitively. An empty query matches every tool.
func (c *Catalog) Search(query string) []Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	query = strings.ToLower(query)
	result := make([]Summary, 0)
	for _, name := range c.order {
		tool := c.tools[name]
		if strings.Contains(strings.ToLower(tool.Name), query) ||
			strings.Contains(strings.ToLower(tool.Description), query) {
			result = append(result, Summary{
				Name:        tool.Name,
				Description: tool.Description,
				Category:    tool.Category,
			})
		}
	}
	return result
}
