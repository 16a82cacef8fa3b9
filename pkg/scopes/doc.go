// Package scopes implements hierarchical permission scope matching with
// wildcard support.
//
// Scopes are dot-delimited strings like "tickets.assign" or
// "categories.manage". A pattern may end in "*" to grant a whole namespace:
// "tickets.*" matches every ticket permission, and a bare "*" matches
// everything.
package scopes
