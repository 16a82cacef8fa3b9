// Package redis dials the Redis server backing the distributed rate-limit
// store, with startup retries and a readiness probe.
package redis
