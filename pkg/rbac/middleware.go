package rbac

import "net/http"

// RoleHeader is set by the reverse proxy that terminates authentication.
// Authentication itself happens upstream; this layer only maps the
// already-verified identity onto a role.
const RoleHeader = "X-Auth-Role"

// Identify resolves the caller's role from the auth proxy header and stores
// it in the request context. Unknown or missing roles fall back to
// defaultRole so an unauthenticated visitor browses as a plain user.
func Identify(authz Authorizer, defaultRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := r.Header.Get(RoleHeader)
			if authz.VerifyRole(role) != nil {
				role = defaultRole
			}
			next.ServeHTTP(w, r.WithContext(WithRole(r.Context(), role)))
		})
	}
}

// Require guards a route subtree: the context role must hold every listed
// permission or the request ends with 403.
func Require(authz Authorizer, permissions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFromContext(r.Context())
			if !ok {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			if err := authz.CanAll(role, permissions...); err != nil {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
