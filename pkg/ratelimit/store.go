package ratelimit

import (
	"context"
	"time"
)

// Store counts requests per key. Incr bumps the key's counter, starting a
// fresh window of the given length when none is active, and returns the new
// count plus when the window resets.
type Store interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)
	Reset(ctx context.Context, key string) error
}
