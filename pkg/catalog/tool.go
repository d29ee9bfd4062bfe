// Package catalog manages the set of tools an agent may invoke. It tracks
// tool definitions, their categories and permission requirements, and selects
// a budget-constrained subset of the catalog for each request.
package catalog

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"
)

// Handler executes a tool invocation. Handlers are called by the agent
// runtime, never by the catalog itself.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Tool is a named, schema-described capability an agent may invoke.
type Tool struct {
	// Name is the unique tool identifier.
	Name string `json:"name"`

	// Description explains the tool to the agent.
	Description string `json:"description"`

	// Category groups related tools (e.g. "documents", "collections").
	Category string `json:"category,omitempty"`

	// InputSchema describes the tool's parameters as JSON Schema.
	InputSchema *jsonschema.Schema `json:"input_schema,omitempty"`

	// Permissions lists the permission strings required to see this tool.
	// A tool with no required permissions is visible to everyone.
	Permissions []string `json:"permissions,omitempty"`

	// Handler executes the tool.
	Handler Handler `json:"-"`

	// DeferLoading excludes the tool from the default budgeted set. Deferred
	// tools remain discoverable through the search_tools meta-tool.
	DeferLoading bool `json:"defer_loading,omitempty"`
}

// Summary is the compact tool description returned by search_tools.
type Summary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
}
