// Package directory manages user accounts: provisioning, role changes and
// deactivation. It also resolves user ids to email addresses for ticket
// notifications. Authentication happens at the reverse proxy; the
// directory only stores the entries the proxy vouches for.
package directory
