package toast

import "time"

const (
	// DefaultMaxVisible caps the number of concurrently tracked toasts.
	DefaultMaxVisible = 1

	// DefaultRemoveDelay is deliberately very long: removal is expected to be
	// driven by explicit dismissal in practice, with the timer as a backstop.
	DefaultRemoveDelay = 1000000 * time.Millisecond
)

// Option configures a Store.
type Option func(*Store)

// WithMaxVisible caps concurrent toasts. Values below one are ignored.
func WithMaxVisible(n int) Option {
	return func(s *Store) {
		if n >= 1 {
			s.limit = n
		}
	}
}

// WithRemoveDelay sets the delay between dismissal and automatic removal.
// Non-positive values are ignored.
func WithRemoveDelay(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.delay = d
		}
	}
}
