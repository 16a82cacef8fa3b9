package rbac

import "github.com/opsdesk/opsdesk/pkg/scopes"

// MaxInheritanceDepth caps role inheritance chains to keep resolution cheap
// and to fail loudly on accidental deep nesting.
const MaxInheritanceDepth = 10

// Canonical help-desk role names.
const (
	RoleUser  = "user"
	RoleAgent = "agent"
	RoleAdmin = "admin"
)

// Role is a named set of permission scopes with optional inheritance.
type Role struct {
	// Permissions directly granted to this role, as scope strings
	// (e.g. "tickets.file", "tickets.*").
	Permissions []string `yaml:"permissions"`

	// Inherits lists role names whose permissions are included.
	Inherits []string `yaml:"inherits"`
}

// Can reports whether the role grants the permission directly, ignoring
// inheritance.
func (r *Role) Can(permission string) bool {
	return scopes.Has(r.Permissions, permission)
}

// DefaultRoles returns the built-in help-desk hierarchy: end users file and
// follow their own tickets, agents inherit that and run triage, admins
// inherit agents and manage users and categories.
func DefaultRoles() map[string]Role {
	return map[string]Role{
		RoleUser: {
			Permissions: []string{
				"tickets.file",
				"tickets.read.own",
				"tickets.comment",
			},
		},
		RoleAgent: {
			Permissions: []string{
				"tickets.read.all",
				"tickets.triage",
				"tickets.assign",
				"tickets.resolve",
				"tickets.close",
				"tickets.reopen",
				"categories.read",
			},
			Inherits: []string{RoleUser},
		},
		RoleAdmin: {
			Permissions: []string{
				"users.manage",
				"categories.manage",
			},
			Inherits: []string{RoleAgent},
		},
	}
}
