package auth

import "strings"

// ClaimsExtractor extracts identity and grants from token claims.
type ClaimsExtractor struct {
	// SubjectClaimPath is the path to the subject claim.
	SubjectClaimPath string

	// EmailClaimPath is the path to the email claim.
	EmailClaimPath string

	// RoleClaimPath is the dot-separated path to roles in claims,
	// e.g. "realm_access.roles" or "roles".
	RoleClaimPath string

	// PermissionClaimPath is the dot-separated path to permission strings
	// granted directly in the token.
	PermissionClaimPath string

	// PermissionPrefix filters direct permission claims to those starting
	// with this prefix.
	PermissionPrefix string

	// RoleGrants expands role names into permission strings. Roles without
	// an entry contribute no permissions.
	RoleGrants map[string][]string
}

// DefaultClaimsExtractor returns an extractor with common defaults.
func DefaultClaimsExtractor() *ClaimsExtractor {
	return &ClaimsExtractor{
		SubjectClaimPath:    "sub",
		EmailClaimPath:      "email",
		RoleClaimPath:       "roles",
		PermissionClaimPath: "permissions",
	}
}

// Extract resolves user context from claims. Permissions are the union of
// direct permission claims and grants expanded from role membership, with
// duplicates removed, so callers receive the flat permission list the
// catalog filters on.
func (e *ClaimsExtractor) Extract(claims map[string]any) *UserContext {
	uc := &UserContext{Claims: claims}

	if sub := e.getStringValue(claims, e.SubjectClaimPath); sub != "" {
		uc.UserID = sub
	}
	if email := e.getStringValue(claims, e.EmailClaimPath); email != "" {
		uc.Email = email
	}
	if e.RoleClaimPath != "" {
		uc.Roles = e.getStringSlice(claims, e.RoleClaimPath)
	}

	direct := e.getStringSlice(claims, e.PermissionClaimPath)
	if e.PermissionPrefix != "" {
		direct = filterByPrefix(direct, e.PermissionPrefix)
	}

	seen := make(map[string]struct{})
	for _, p := range direct {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			uc.Permissions = append(uc.Permissions, p)
		}
	}
	for _, role := range uc.Roles {
		for _, p := range e.RoleGrants[role] {
			if _, ok := seen[p]; !ok {
				seen[p] = struct{}{}
				uc.Permissions = append(uc.Permissions, p)
			}
		}
	}
	return uc
}

// getStringValue gets a string value at a dot-separated path.
func (e *ClaimsExtractor) getStringValue(claims map[string]any, path string) string {
	if s, ok := e.getValue(claims, path).(string); ok {
		return s
	}
	return ""
}

// getStringSlice gets a string slice at a dot-separated path.
func (e *ClaimsExtractor) getStringSlice(claims map[string]any, path string) []string {
	value := e.getValue(claims, path)
	if arr, ok := value.([]any); ok {
		result := make([]string, 0, len(arr))
		for _, v := range arr {
			if s, ok := v.(string); ok {
				result = append(result, s)
			}
		}
		return result
	}
	if arr, ok := value.([]string); ok {
		return arr
	}
	return nil
}

// getValue gets a value at a dot-separated path.
func (e *ClaimsExtractor) getValue(claims map[string]any, path string) any {
	if path == "" {
		return nil
	}

	parts := strings.Split(path, ".")
	var current any = claims

	for _, part := range parts {
		if m, ok := current.(map[string]any); ok {
			current = m[part]
		} else {
			return nil
		}
	}

	return current
}

// filterByPrefix filters strings to those starting with prefix.
func filterByPrefix(items []string, prefix string) []string {
	result := make([]string, 0, len(items))
	for _, item := range items {
		if strings.HasPrefix(item, prefix) {
			result = append(result, item)
		}
	}
	return result
}
