package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTool(name, category string, perms ...string) *Tool {
	return &Tool{
		Name:        name,
		Description: "The " + name + " tool",
		Category:    category,
		Permissions: perms,
	}
}

func TestCatalog_RegisterAndGet(t *testing.T) {
	c := New()
	c.Register(testTool("documents_list", "documents"))

	got := c.Get("documents_list")
	require.NotNil(t, got)
	assert.Equal(t, "documents", got.Category)

	assert.Nil(t, c.Get("nonexistent"))
}

func TestCatalog_RegisterReplacesByName(t *testing.T) {
	c := New()
	c.Register(testTool("documents_list", "documents"))
	c.Register(testTool("documents_list", "collections"))

	assert.Len(t, c.All(), 1)
	assert.Empty(t, c.ByCategory("documents"), "old category membership is dropped")
	assert.Len(t, c.ByCategory("collections"), 1)
}

func TestCatalog_ByCategoryUnknown(t *testing.T) {
	c := New()
	assert.Empty(t, c.ByCategory("unknown"))
}

func TestCatalog_AllPreservesRegistrationOrder(t *testing.T) {
	c := New()
	c.RegisterAll([]*Tool{
		testTool("a", "x"),
		testTool("b", "x"),
		testTool("c", "y"),
	})

	var names []string
	for _, tool := range c.All() {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestCatalog_ForContext_PermissionFiltering(t *testing.T) {
	c := New()
	c.RegisterAll([]*Tool{
		testTool("open_tool", "misc"),
		testTool("admin_tool", "misc", "admin"),
		testTool("posts_create", "posts", "posts:create"),
	})

	tools := c.ForContext(nil, []string{"posts:*"})

	var names []string
	for _, tool := range tools {
		names = append(names, tool.Name)
	}
	// The wildcard grant covers posts:create; the permission-free tool is
	// always visible; the admin tool is not.
	assert.Equal(t, []string{"open_tool", "posts_create"}, names)
}

func TestCatalog_ForContext_MatchRules(t *testing.T) {
	tests := []struct {
		name     string
		required []string
		granted  []string
		allowed  bool
	}{
		{"no requirements", nil, nil, true},
		{"exact match", []string{"posts:create"}, []string{"posts:create"}, true},
		{"wildcard match", []string{"posts:create"}, []string{"posts:*"}, true},
		{"wildcard wrong prefix", []string{"pages:create"}, []string{"posts:*"}, false},
		{"no grant", []string{"posts:create"}, nil, false},
		{"all requirements needed", []string{"posts:create", "admin"}, []string{"posts:*"}, false},
		{"all requirements satisfied", []string{"posts:create", "admin"}, []string{"posts:*", "admin"}, true},
		{"wildcard is not a bare prefix", []string{"posts"}, []string{"posts:*"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			c.Register(testTool("subject", "misc", tt.required...))

			tools := c.ForContext(nil, tt.granted)
			if tt.allowed {
				assert.Len(t, tools, 1)
			} else {
				assert.Empty(t, tools)
			}
		})
	}
}

func TestEstimateTokens_Empty(t *testing.T) {
	assert.Zero(t, EstimateTokens(nil))
	assert.Zero(t, EstimateTokens([]*Tool{}))
}

func TestEstimateTokens_Monotonic(t *testing.T) {
	tools := []*Tool{testTool("a", "x")}
	base := EstimateTokens(tools)
	require.Positive(t, base)

	grown := EstimateTokens(append(tools, &Tool{Name: "b", Description: "x"}))
	assert.Greater(t, grown, base, "appending a described tool must increase the estimate")
}

func TestEstimateTokens_SchemaCounts(t *testing.T) {
	plain := &Tool{Name: "t", Description: "d"}
	withSchema := &Tool{
		Name:        "t",
		Description: "d",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"id": {Type: "string", Description: "Document identifier"},
			},
		},
	}
	assert.Greater(t, EstimateTokens([]*Tool{withSchema}), EstimateTokens([]*Tool{plain}))
}

func TestCatalog_GetOptimized_WithinBudget(t *testing.T) {
	c := New()
	c.RegisterAll([]*Tool{
		testTool("a", "x"),
		testTool("b", "x"),
		testTool("c", "x"),
	})

	for _, budget := range []int{0, 5, 20, 100, 10000} {
		result := c.GetOptimized(nil, nil, budget)
		assert.LessOrEqual(t, result.EstimatedTokens, budget, "budget %d", budget)
	}
}

func TestCatalog_GetOptimized_DroppedToolsAreDeferred(t *testing.T) {
	c := New()
	long := testTool("verbose", "x")
	long.Description = strings.Repeat("very long description ", 50)
	c.RegisterAll([]*Tool{
		testTool("a", "x"),
		long,
		testTool("b", "x"),
	})

	result := c.GetOptimized(nil, nil, 120)

	included := make(map[string]bool)
	for _, tool := range result.Tools {
		included[tool.Name] = true
	}
	assert.True(t, included[SearchToolName], "search tool is charged and included")
	for _, name := range []string{"a", "verbose", "b"} {
		if !included[name] {
			assert.Contains(t, result.Deferred, name)
		}
	}
	assert.Contains(t, result.Deferred, "verbose")
}

func TestCatalog_GetOptimized_DeferLoadingAlwaysDeferred(t *testing.T) {
	c := New()
	deferred := testTool("rare_tool", "x")
	deferred.DeferLoading = true
	c.RegisterAll([]*Tool{testTool("a", "x"), deferred})

	result := c.GetOptimized(nil, nil, 10000)

	for _, tool := range result.Tools {
		assert.NotEqual(t, "rare_tool", tool.Name)
	}
	assert.Equal(t, []string{"rare_tool"}, result.Deferred)
}

func TestCatalog_GetOptimized_RespectsPermissions(t *testing.T) {
	c := New()
	c.RegisterAll([]*Tool{
		testTool("open", "x"),
		testTool("locked", "x", "admin"),
	})

	result := c.GetOptimized(nil, nil, 10000)
	for _, tool := range result.Tools {
		assert.NotEqual(t, "locked", tool.Name)
	}
	assert.NotContains(t, result.Deferred, "locked", "forbidden tools are not discoverable either")
}

func TestCatalog_DeferredToolNames(t *testing.T) {
	c := New()
	a := testTool("a", "x")
	b := testTool("b", "x")
	b.DeferLoading = true
	c.RegisterAll([]*Tool{a, b})

	assert.Equal(t, []string{"b"}, c.DeferredToolNames())
}

func TestCatalog_Search(t *testing.T) {
	c := New()
	c.RegisterAll([]*Tool{
		{Name: "documents_delete", Description: "Delete documents from a collection"},
		{Name: "posts_list", Description: "List blog posts"},
	})

	matches := c.Search("DELETE")
	require.Len(t, matches, 1)
	assert.Equal(t, "documents_delete", matches[0].Name)

	matches = c.Search("blog")
	require.Len(t, matches, 1)
	assert.Equal(t, "posts_list", matches[0].Name)

	assert.Empty(t, c.Search("nothing-matches-this"))
	assert.Len(t, c.Search(""), 2, "empty query matches everything")
}

func TestCatalog_SearchToolHandler(t *testing.T) {
	c := New()
	c.Register(&Tool{Name: "documents_delete", Description: "Delete documents"})

	search := c.SearchTool()
	require.NotNil(t, search.Handler)
	assert.Equal(t, SearchToolName, search.Name)

	out, err := search.Handler(context.Background(), map[string]any{"query": "delete"})
	require.NoError(t, err)
	matches, ok := out.([]Summary)
	require.True(t, ok)
	require.Len(t, matches, 1)
	assert.Equal(t, "documents_delete", matches[0].Name)
}

func TestTool_MCPTool(t *testing.T) {
	tool := &Tool{
		Name:        "documents_list",
		Description: "List documents",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}

	mcpTool := tool.MCPTool()
	assert.Equal(t, tool.Name, mcpTool.Name)
	assert.Equal(t, tool.Description, mcpTool.Description)
	assert.Same(t, tool.InputSchema, mcpTool.InputSchema)

	all := MCPTools([]*Tool{tool})
	require.Len(t, all, 1)
	assert.Equal(t, "documents_list", all[0].Name)
}
