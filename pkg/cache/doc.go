// Package cache is a generic in-process LRU cache with optional TTL. The
// category list is served through it so the picker on the ticket form does
// not hit the datastore on every render.
package cache
