package statemachine

import (
	"context"
	"fmt"
	"sort"
)

// State names a state in the machine.
type State string

// Event names a trigger that may move the machine between states.
type Event string

// Guard decides at runtime whether a transition is allowed. All guards on a
// transition must pass.
type Guard func(ctx context.Context, from State, event Event, data any) bool

// Action runs before the transition commits; an error aborts it.
type Action func(ctx context.Context, from, to State, event Event, data any) error

type transition struct {
	to      State
	guards  []Guard
	actions []Action
}

// Machine is an immutable-after-build transition table. It holds no current
// state: callers pass the entity's state into Fire and persist the returned
// one, so one Machine serves every ticket concurrently.
type Machine struct {
	transitions map[State]map[Event][]transition
}

// Fire resolves the transition for (from, event), runs its guards and
// actions, and returns the next state. The first transition whose guards all
// pass wins, so registration order sets priority.
func (m *Machine) Fire(ctx context.Context, from State, event Event, data any) (State, error) {
	candidates := m.transitions[from][event]
	if len(candidates) == 0 {
		return from, &NoTransitionError{From: from, Event: event}
	}

	for i := range candidates {
		t := &candidates[i]
		if !guardsPass(ctx, t.guards, from, event, data) {
			continue
		}
		for _, action := range t.actions {
			if err := action(ctx, from, t.to, event, data); err != nil {
				return from, fmt.Errorf("transition action: %w", err)
			}
		}
		return t.to, nil
	}
	return from, &RejectedError{From: from, Event: event}
}

// Can reports whether Fire would succeed, without running actions.
func (m *Machine) Can(ctx context.Context, from State, event Event, data any) bool {
	for i := range m.transitions[from][event] {
		if guardsPass(ctx, m.transitions[from][event][i].guards, from, event, data) {
			return true
		}
	}
	return false
}

// Events lists the events registered for a state, sorted for stable
// rendering of action menus.
func (m *Machine) Events(from State) []Event {
	events := make([]Event, 0, len(m.transitions[from]))
	for event := range m.transitions[from] {
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool { return events[i] < events[j] })
	return events
}

func guardsPass(ctx context.Context, guards []Guard, from State, event Event, data any) bool {
	for _, guard := range guards {
		if guard != nil && !guard(ctx, from, event, data) {
			return false
		}
	}
	return true
}
