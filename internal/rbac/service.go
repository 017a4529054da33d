package rbac

import "sort"

// Service answers permission questions from the static capability table.
// Every lookup fails closed: an unknown role or a role missing from the
// table grants nothing.
type Service struct{}

// NewService constructs a Service.
func NewService() *Service {
	return &Service{}
}

// HasPermission reports whether the role may reach the given route path.
// Membership is an exact, case-sensitive string match. No prefix or glob
// matching and no normalization of trailing slashes: callers must pass the
// canonical path string used as the table key.
func (s *Service) HasPermission(role Role, path string) bool {
	cap, ok := capabilities[role]
	if !ok {
		return false
	}
	_, ok = cap.Routes[path]
	return ok
}

// HasSubmenuPermission reports whether the role may see the sub-menu key.
func (s *Service) HasSubmenuPermission(role Role, key string) bool {
	cap, ok := capabilities[role]
	if !ok {
		return false
	}
	_, ok = cap.Submenus[key]
	return ok
}

// Permissions returns the role's full allowed route set, sorted, for menu
// filtering. Unknown roles get an empty slice.
func (s *Service) Permissions(role Role) []string {
	cap, ok := capabilities[role]
	if !ok {
		return []string{}
	}
	return sortedKeys(cap.Routes)
}

// SubmenuPermissions returns the role's full allowed sub-menu set, sorted.
func (s *Service) SubmenuPermissions(role Role) []string {
	cap, ok := capabilities[role]
	if !ok {
		return []string{}
	}
	return sortedKeys(cap.Submenus)
}

// Roles lists the closed role set.
func (s *Service) Roles() []Role {
	return []Role{RoleAdmin, RoleUser1, RoleUser2}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
