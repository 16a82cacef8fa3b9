// Package toast provides an observable in-memory registry of transient
// user-facing notifications with capacity limiting and timed auto-removal.
//
// Any part of the application can push toasts to a Store and any number of
// display surfaces can subscribe to it; subscribers receive the full ordered
// toast list (newest first) on every mutation, before the mutating call
// returns.
//
// # Lifecycle
//
// A toast is created by Show, tracked in the active list with Open set,
// hidden by Dismiss (which keeps it in the list so the display layer can
// animate the exit), and deleted by Remove — either explicitly or by the
// removal timer Dismiss arms. Inserting beyond the configured capacity
// silently evicts the oldest toasts.
//
// # Basic usage
//
//	store := toast.New(
//		toast.WithMaxVisible(3),
//		toast.WithRemoveDelay(5*time.Second),
//	)
//	defer store.Close()
//
//	unsubscribe := store.Subscribe(func(toasts []toast.Toast) {
//		render(toasts)
//	})
//	defer unsubscribe()
//
//	h := store.Show(toast.Payload{
//		Level: toast.LevelSuccess,
//		Title: "Ticket resolved",
//	})
//	// ...later, from a close gesture:
//	h.Dismiss()
//
// # Sessions
//
// Toasts are session-scoped UI state. Hub keeps one Store per session id so
// a multi-user server never leaks one user's notifications into another's
// stream:
//
//	hub := toast.NewHub(toast.WithMaxVisible(3))
//	hub.Store(sessionID).Show(toast.Payload{Title: "Saved"})
//
// # Semantics worth knowing
//
//   - Update, Dismiss and Remove on an unknown id are benign no-ops, never
//     errors.
//   - Dismissing a toast that already has a removal pending reuses the
//     existing timer; it is never duplicated.
//   - Remove cancels the pending timer for the id, so a scheduled removal
//     can never fire after an explicit one.
//   - State transitions live in a pure reducer; timers and subscriber
//     notification are layered on top, which keeps transition logic
//     testable without waiting on delays.
package toast
