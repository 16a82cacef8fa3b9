// Package ratelimit is a fixed-window request limiter. The window counter
// lives behind the Store interface — in-process for a single instance,
// Redis when the limit must hold across replicas. The ticket-filing endpoint
// mounts the middleware keyed by browser session.
package ratelimit
