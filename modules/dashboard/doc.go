// Package dashboard renders the role-specific landing page: own tickets
// for end users, the live queue for agents, and a system overview for
// admins.
package dashboard
