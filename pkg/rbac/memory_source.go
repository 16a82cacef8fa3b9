package rbac

import "context"

// memorySource serves a fixed role map. It copies the input so later caller
// mutations cannot reach the authorizer.
type memorySource struct {
	roles map[string]Role
}

// NewMemorySource creates a RoleSource backed by the given map.
func NewMemorySource(roles map[string]Role) RoleSource {
	copied := make(map[string]Role, len(roles))
	for name, role := range roles {
		perms := make([]string, len(role.Permissions))
		copy(perms, role.Permissions)
		inherits := make([]string, len(role.Inherits))
		copy(inherits, role.Inherits)
		copied[name] = Role{Permissions: perms, Inherits: inherits}
	}
	return &memorySource{roles: copied}
}

func (s *memorySource) Load(ctx context.Context) (map[string]Role, error) {
	return s.roles, nil
}
