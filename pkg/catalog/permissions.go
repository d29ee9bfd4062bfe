package catalog

import "strings"

// wildcardSuffix marks a granted permission that covers a whole prefix,
// e.g. "posts:*" covers "posts:create" and "posts:delete".
const wildcardSuffix = ":*"

// Allowed reports whether the named tool exists and is visible under the
// granted permission set.
func (c *Catalog) Allowed(name string, granted []string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tool, ok := c.tools[name]
	if !ok {
		return false
	}
	return toolAllowed(tool, granted)
}

// toolAllowed reports whether every permission the tool requires is satisfied
// by at least one granted permission. A tool with no requirements is always
// allowed.
func toolAllowed(tool *Tool, granted []string) bool {
	for _, required := range tool.Permissions {
		if !permissionSatisfied(required, granted) {
			return false
		}
	}
	return true
}

// permissionSatisfied reports whether required is covered by the granted set:
// either an exact match, or a wildcard grant sharing required's prefix.
func permissionSatisfied(required string, granted []string) bool {
	for _, grant := range granted {
		if grant == required {
			return true
		}
		if prefix, ok := strings.CutSuffix(grant, wildcardSuffix); ok &&
			strings.HasPrefix(required, prefix+":") {
			return true
		}
	}
	return false
}
