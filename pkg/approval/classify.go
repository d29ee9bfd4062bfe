package approval

import (
	"fmt"
	"strings"
)

// action is the internal classification of a tool invocation, derived purely
// from the tool name and the shape of its arguments.
type action int

const (
	actionGeneric action = iota
	actionDeleteByFilter
	actionDeleteByIDs
	actionDeleteSingle
	actionBulk
	actionConfigChange
)

var (
	destructiveHints = []string{"delete", "remove", "destroy", "purge", "drop"}
	bulkHints        = []string{"bulk", "batch", "mass"}
	configHints      = []string{"config", "schema", "setting"}
)

// classify derives the action kind from the tool name and argument shape.
func classify(toolName string, args map[string]any) action {
	name := strings.ToLower(toolName)

	switch {
	case containsAny(name, destructiveHints):
		switch {
		case hasFilter(args):
			return actionDeleteByFilter
		case idCount(args) > 0:
			return actionDeleteByIDs
		default:
			return actionDeleteSingle
		}
	case containsAny(name, bulkHints) || hasFilter(args) || idCount(args) > 1:
		return actionBulk
	case containsAny(name, configHints):
		return actionConfigChange
	default:
		return actionGeneric
	}
}

// ConfirmationLevel classifies a tool invocation and returns the configured
// confirmation level for its action kind. No external calls are made.
func (g *Gate) ConfirmationLevel(toolName string, args map[string]any) Level {
	switch classify(toolName, args) {
	case actionDeleteByFilter, actionDeleteByIDs, actionDeleteSingle:
		return g.cfg.DestructiveActions
	case actionBulk:
		return g.cfg.BulkOperations
	case actionConfigChange:
		return g.cfg.ConfigChanges
	default:
		return g.cfg.Default
	}
}

// GenerateMessage produces the human-readable confirmation prompt for a tool
// invocation, keyed to the same classification as ConfirmationLevel.
func (g *Gate) GenerateMessage(toolName string, args map[string]any) string {
	switch classify(toolName, args) {
	case actionDeleteByFilter:
		return fmt.Sprintf("The agent wants to run %s and delete every item matching a filter. This cannot be undone automatically. Allow it?", toolName)
	case actionDeleteByIDs:
		return fmt.Sprintf("The agent wants to run %s and delete %d selected items. Allow it?", toolName, idCount(args))
	case actionDeleteSingle:
		return fmt.Sprintf("The agent wants to run %s and delete an item. Allow it?", toolName)
	case actionBulk:
		return fmt.Sprintf("The agent wants to run %s across multiple items at once. Allow it?", toolName)
	case actionConfigChange:
		return fmt.Sprintf("The agent wants to run %s and change system configuration. Allow it?", toolName)
	default:
		return fmt.Sprintf("The agent wants to run %s. Allow it?", toolName)
	}
}

func containsAny(name string, hints []string) bool {
	for _, hint := range hints {
		if strings.Contains(name, hint) {
			return true
		}
	}
	return false
}

// hasFilter reports whether the arguments carry a filter predicate.
func hasFilter(args map[string]any) bool {
	if args == nil {
		return false
	}
	switch v := args["filter"].(type) {
	case nil:
		return false
	case string:
		return v != ""
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}

// idCount returns the length of an identifier-list argument, or 0.
func idCount(args map[string]any) int {
	if args == nil {
		return 0
	}
	switch v := args["ids"].(type) {
	case []any:
		return len(v)
	case []string:
		return len(v)
	default:
		return 0
	}
}
