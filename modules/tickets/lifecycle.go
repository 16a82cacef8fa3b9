package tickets

import (
	"context"

	"github.com/opsdesk/opsdesk/pkg/statemachine"
)

// Lifecycle builds the ticket state machine:
//
//	open → triaged → in_progress → resolved → closed
//
// with reopen available from both resolved and closed. Triage carries a
// guard so a ticket cannot leave "open" without a priority.
func Lifecycle() *statemachine.Machine {
	return statemachine.NewBuilder().
		From(StatusOpen).When(EventTriage).To(StatusTriaged).
		WithGuard(triagePrioritySet).Add().
		From(StatusTriaged).When(EventAssign).To(StatusInProgress).Add().
		From(StatusInProgress).When(EventResolve).To(StatusResolved).Add().
		From(StatusResolved).When(EventClose).To(StatusClosed).Add().
		From(StatusResolved).When(EventReopen).To(StatusOpen).Add().
		From(StatusClosed).When(EventReopen).To(StatusOpen).Add().
		Build()
}

func triagePrioritySet(_ context.Context, _ statemachine.State, _ statemachine.Event, data any) bool {
	t, ok := data.(Ticket)
	return ok && t.Priority >= PriorityLow && t.Priority <= PriorityUrgent
}
