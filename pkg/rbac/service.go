package rbac

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/opsdesk/opsdesk/pkg/scopes"
)

// Authorizer answers permission checks for roles, including inherited
// permissions and wildcard scopes.
type Authorizer interface {
	// Can checks if a role has the permission, directly or by inheritance.
	Can(role, permission string) error

	// CanAny checks if a role has at least one of the permissions.
	CanAny(role string, permissions ...string) error

	// CanAll checks if a role has every one of the permissions.
	CanAll(role string, permissions ...string) error

	// CanFromContext checks the role stored in the context.
	CanFromContext(ctx context.Context, permission string) error

	// VerifyRole returns ErrInvalidRole if the role does not exist.
	VerifyRole(role string) error

	// Roles returns all known role names, sorted.
	Roles() []string
}

// RoleSource provides role definitions.
type RoleSource interface {
	// Load returns all roles keyed by name.
	Load(ctx context.Context) (map[string]Role, error)
}

type authorizer struct {
	// permissions holds the flattened (direct plus inherited) scope set per
	// role. Immutable after construction, so reads need no locking.
	permissions map[string][]string
	roles       []string
}

// NewAuthorizer loads roles from the source, validates the inheritance
// graph, and precomputes each role's full permission set.
func NewAuthorizer(ctx context.Context, source RoleSource) (Authorizer, error) {
	roles, err := source.Load(ctx)
	if err != nil {
		return nil, err
	}

	if err := validateInheritance(roles); err != nil {
		return nil, err
	}

	permissions := make(map[string][]string, len(roles))
	names := make([]string, 0, len(roles))
	for name := range roles {
		permissions[name] = scopes.Normalize(collect(name, roles, make(map[string]bool), 0))
		names = append(names, name)
	}
	sort.Strings(names)

	return &authorizer{permissions: permissions, roles: names}, nil
}

func (a *authorizer) Can(role, permission string) error {
	granted, ok := a.permissions[role]
	if !ok {
		return ErrInvalidRole
	}
	if !scopes.Has(granted, permission) {
		return ErrInsufficientPermissions
	}
	return nil
}

func (a *authorizer) CanAny(role string, permissions ...string) error {
	granted, ok := a.permissions[role]
	if !ok {
		return ErrInvalidRole
	}
	if !scopes.HasAny(granted, permissions) {
		return ErrInsufficientPermissions
	}
	return nil
}

func (a *authorizer) CanAll(role string, permissions ...string) error {
	granted, ok := a.permissions[role]
	if !ok {
		return ErrInvalidRole
	}
	if !scopes.HasAll(granted, permissions) {
		return ErrInsufficientPermissions
	}
	return nil
}

func (a *authorizer) CanFromContext(ctx context.Context, permission string) error {
	role, ok := RoleFromContext(ctx)
	if !ok {
		return errors.Join(ErrRoleNotInContext, ErrInsufficientPermissions)
	}
	return a.Can(role, permission)
}

func (a *authorizer) VerifyRole(role string) error {
	if _, ok := a.permissions[role]; !ok {
		return ErrInvalidRole
	}
	return nil
}

func (a *authorizer) Roles() []string {
	return a.roles
}

// collect gathers direct and inherited permissions for a role. The visited
// set stops revisiting; the depth cap is a backstop against graphs
// validateInheritance somehow missed.
func collect(name string, roles map[string]Role, visited map[string]bool, depth int) []string {
	if depth > MaxInheritanceDepth || visited[name] {
		return nil
	}
	visited[name] = true

	role, ok := roles[name]
	if !ok {
		return nil
	}

	out := make([]string, len(role.Permissions))
	copy(out, role.Permissions)
	for _, parent := range role.Inherits {
		out = append(out, collect(parent, roles, visited, depth+1)...)
	}
	return out
}

// validateInheritance rejects cycles and chains deeper than
// MaxInheritanceDepth.
func validateInheritance(roles map[string]Role) error {
	for name := range roles {
		if err := walk(name, roles, map[string]bool{}, 0); err != nil {
			return err
		}
	}
	return nil
}

func walk(name string, roles map[string]Role, path map[string]bool, depth int) error {
	if depth > MaxInheritanceDepth {
		return errors.Join(ErrCircularInheritance,
			fmt.Errorf("inheritance deeper than %d at role %q", MaxInheritanceDepth, name))
	}
	if path[name] {
		return errors.Join(ErrCircularInheritance,
			fmt.Errorf("cycle through role %q", name))
	}

	role, ok := roles[name]
	if !ok {
		return nil
	}

	path[name] = true
	for _, parent := range role.Inherits {
		if err := walk(parent, roles, path, depth+1); err != nil {
			return err
		}
	}
	path[name] = false
	return nil
}
