package ratelimit

import "errors"

var (
	ErrInvalidConfig    = errors.New("ratelimit: invalid configuration")
	ErrStoreUnavailable = errors.New("ratelimit: store unavailable")
)
