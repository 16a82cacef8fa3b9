package statemachine

// Builder assembles a Machine transition by transition.
//
//	lifecycle := statemachine.NewBuilder().
//		From("open").When("triage").To("triaged").
//		WithGuard(hasCategory).Add().
//		From("triaged").When("assign").To("in_progress").Add().
//		Build()
type Builder struct {
	machine *Machine

	from    State
	event   Event
	to      State
	guards  []Guard
	actions []Action
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		machine: &Machine{transitions: make(map[State]map[Event][]transition)},
	}
}

// From starts a new transition definition, discarding any unfinished one.
func (b *Builder) From(state State) *Builder {
	b.reset()
	b.from = state
	return b
}

// When sets the triggering event.
func (b *Builder) When(event Event) *Builder {
	b.event = event
	return b
}

// To sets the target state.
func (b *Builder) To(state State) *Builder {
	b.to = state
	return b
}

// WithGuard appends a guard to the pending transition.
func (b *Builder) WithGuard(guard Guard) *Builder {
	if guard != nil {
		b.guards = append(b.guards, guard)
	}
	return b
}

// WithAction appends an action to the pending transition.
func (b *Builder) WithAction(action Action) *Builder {
	if action != nil {
		b.actions = append(b.actions, action)
	}
	return b
}

// Add commits the pending transition. Incomplete definitions (missing from,
// event, or to) panic: the table is built once at startup and a hole in it
// is a programming error.
func (b *Builder) Add() *Builder {
	if b.from == "" || b.event == "" || b.to == "" {
		panic("statemachine: transition needs From, When, and To")
	}
	byEvent, ok := b.machine.transitions[b.from]
	if !ok {
		byEvent = make(map[Event][]transition)
		b.machine.transitions[b.from] = byEvent
	}
	byEvent[b.event] = append(byEvent[b.event], transition{
		to:      b.to,
		guards:  b.guards,
		actions: b.actions,
	})
	b.reset()
	return b
}

// Build returns the finished machine.
func (b *Builder) Build() *Machine {
	return b.machine
}

func (b *Builder) reset() {
	b.from = ""
	b.event = ""
	b.to = ""
	b.guards = nil
	b.actions = nil
}
