package statemachine

import (
	"errors"
	"fmt"
)

// NoTransitionError indicates no transition is registered for the
// state/event pair.
type NoTransitionError struct {
	From  State
	Event Event
}

func (e *NoTransitionError) Error() string {
	return fmt.Sprintf("no transition from %q for event %q", e.From, e.Event)
}

// RejectedError indicates every candidate transition was blocked by a guard.
type RejectedError struct {
	From  State
	Event Event
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("transition from %q for event %q rejected by guards", e.From, e.Event)
}

// IsNoTransition reports whether err means the event is not wired for the
// state at all.
func IsNoTransition(err error) bool {
	var e *NoTransitionError
	return errors.As(err, &e)
}

// IsRejected reports whether err means guards vetoed the transition.
func IsRejected(err error) bool {
	var e *RejectedError
	return errors.As(err, &e)
}
