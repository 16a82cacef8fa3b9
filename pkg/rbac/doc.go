// Package rbac provides role-based access control with role inheritance and
// wildcard permission scopes.
//
// Roles map to permission scope sets (see package scopes); a role may
// inherit other roles, and the Authorizer flattens the graph once at
// construction so runtime checks are map lookups. The help-desk hierarchy
// ships as DefaultRoles: user < agent < admin.
//
//	authz, err := rbac.NewAuthorizer(ctx, rbac.NewMemorySource(rbac.DefaultRoles()))
//	if err := authz.Can(rbac.RoleAgent, "tickets.triage"); err != nil {
//		// denied
//	}
//
// Role definitions can also be loaded from a YAML file with NewYAMLSource,
// letting deployments adjust permissions without a rebuild.
package rbac
