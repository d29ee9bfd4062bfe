package catalog

import (
	"encoding/json"
	"sync"

	"github.com/txn2/mcp-agent-gate/pkg/session"
)

// tokenCharWidth is the assumed average character width of one token when
// estimating the serialized size of tool definitions.
const tokenCharWidth = 4

// Catalog owns the registered tool set and its category index.
type Catalog struct {
	mu         sync.RWMutex
	tools      map[string]*Tool
	byCategory map[string]map[string]struct{}

	// order preserves registration order for budgeted selection. Replacing
	// a tool keeps its original position.
	order []string
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		tools:      make(map[string]*Tool),
		byCategory: make(map[string]map[string]struct{}),
	}
}

// Register adds a tool, replacing any prior definition with the same name
// and updating the category index accordingly.
func (c *Catalog) Register(tool *Tool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registerLocked(tool)
}

// RegisterAll registers each tool in order.
func (c *Catalog) RegisterAll(tools []*Tool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, tool := range tools {
		c.registerLocked(tool)
	}
}

func (c *Catalog) registerLocked(tool *Tool) {
	if prior, ok := c.tools[tool.Name]; ok {
		if ids := c.byCategory[prior.Category]; ids != nil {
			delete(ids, prior.Name)
			if len(ids) == 0 {
				delete(c.byCategory, prior.Category)
			}
		}
	} else {
		c.order = append(c.order, tool.Name)
	}

	c.tools[tool.Name] = tool
	ids, ok := c.byCategory[tool.Category]
	if !ok {
		ids = make(map[string]struct{})
		c.byCategory[tool.Category] = ids
	}
	ids[tool.Name] = struct{}{}
}

// Get returns the tool by name, or nil when unknown.
func (c *Catalog) Get(name string) *Tool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tools[name]
}

// All returns every registered tool in registration order.
func (c *Catalog) All() []*Tool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.allLocked()
}

func (c *Catalog) allLocked() []*Tool {
	result := make([]*Tool, 0, len(c.order))
	for _, name := range c.order {
		result = append(result, c.tools[name])
	}
	return result
}

// ByCategory returns the tools in a category, in registration order. An
// unknown category yields an empty slice.
func (c *Catalog) ByCategory(category string) []*Tool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := c.byCategory[category]
	result := make([]*Tool, 0, len(ids))
	for _, name := range c.order {
		if _, ok := ids[name]; ok {
			result = append(result, c.tools[name])
		}
	}
	return result
}

// ForContext returns the tools visible under the granted permission set.
// The session is accepted for future contextual selection rules and does not
// affect filtering today.
func (c *Catalog) ForContext(sess *session.Session, granted []string) []*Tool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.forContextLocked(granted)
}

func (c *Catalog) forContextLocked(granted []string) []*Tool {
	var result []*Tool
	for _, name := range c.order {
		tool := c.tools[name]
		if toolAllowed(tool, granted) {
			result = append(result, tool)
		}
	}
	return result
}

// EstimateTokens estimates the token cost of serializing the given tool
// definitions. The heuristic is proportional to the combined length of each
// tool's name, description, and marshalled schema; it returns 0 for an empty
// list and is strictly monotonic in the tools appended.
func EstimateTokens(tools []*Tool) int {
	total := 0
	for _, tool := range tools {
		total += estimateTool(tool)
	}
	return total
}

func estimateTool(tool *Tool) int {
	chars := len(tool.Name) + len(tool.Description)
	if tool.InputSchema != nil {
		if data, err := json.Marshal(tool.InputSchema); err == nil {
			chars += len(data)
		}
	}
	// Round up so any non-empty tool costs at least one token.
	return (chars + tokenCharWidth - 1) / tokenCharWidth
}

// Optimized is the result of a budgeted catalog selection.
type Optimized struct {
	// Tools are the selected definitions, within budget.
	Tools []*Tool `json:"tools"`

	// Deferred names the permitted tools left out of Tools. They remain
	// reachable through search_tools.
	Deferred []string `json:"deferred,omitempty"`

	// EstimatedTokens is the token estimate for Tools.
	EstimatedTokens int `json:"estimated_tokens"`
}

// GetOptimized selects the permitted tools that fit tokenBudget. Tools not
// flagged DeferLoading are packed greedily in registration order; the
// search_tools meta-tool is charged against the budget first so dropped
// tools stay discoverable. Every permitted tool absent from Tools is listed
// in Deferred. The returned estimate never exceeds tokenBudget.
func (c *Catalog) GetOptimized(sess *session.Session, granted []string, tokenBudget int) Optimized {
	c.mu.RLock()
	defer c.mu.RUnlock()

	permitted := c.forContextLocked(granted)

	result := Optimized{}
	searchTool := c.searchToolLocked()
	if cost := estimateTool(searchTool); cost <= tokenBudget {
		result.Tools = append(result.Tools, searchTool)
		result.EstimatedTokens = cost
	}

	for _, tool := range permitted {
		if tool.DeferLoading {
			result.Deferred = append(result.Deferred, tool.Name)
			continue
		}
		cost := estimateTool(tool)
		if result.EstimatedTokens+cost > tokenBudget {
			result.Deferred = append(result.Deferred, tool.Name)
			continue
		}
		result.Tools = append(result.Tools, tool)
		result.EstimatedTokens += cost
	}
	return result
}

// DeferredToolNames returns the names of all tools flagged DeferLoading,
// independent of any budget computation.
func (c *Catalog) DeferredToolNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var result []string
	for _, name := range c.order {
		if c.tools[name].DeferLoading {
			result = append(result, name)
		}
	}
	return result
}
