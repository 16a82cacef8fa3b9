package toast

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Listener receives the full ordered toast list on every mutation.
type Listener func([]Toast)

// Handle refers to a shown toast and allows follow-up mutations without
// holding a reference to the store.
type Handle struct {
	ID string

	store *Store
}

// Update merges the patch into the referenced toast.
func (h Handle) Update(p Patch) { h.store.Update(h.ID, p) }

// Dismiss hides the referenced toast and schedules its removal.
func (h Handle) Dismiss() { h.store.Dismiss(h.ID) }

// Remove deletes the referenced toast immediately.
func (h Handle) Remove() { h.store.Remove(h.ID) }

// Store is an observable registry of toasts with capacity limiting and
// delayed auto-removal after dismissal. All methods are safe for concurrent
// use; state mutation and timer bookkeeping share one mutex so the
// single-writer invariant holds even under concurrent callers.
//
// Listeners are invoked synchronously before the mutating call returns, but
// outside the store lock, so a listener may call back into the store.
type Store struct {
	mu      sync.Mutex
	toasts  []Toast
	subs    map[int]Listener
	nextSub int
	timers  map[string]*time.Timer
	limit   int
	delay   time.Duration
	closed  bool
}

// New creates a toast store. Without options it tracks at most
// DefaultMaxVisible toasts and removes dismissed toasts after
// DefaultRemoveDelay.
func New(opts ...Option) *Store {
	s := &Store{
		subs:   make(map[int]Listener),
		timers: make(map[string]*time.Timer),
		limit:  DefaultMaxVisible,
		delay:  DefaultRemoveDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Show inserts a new toast at the front of the list with a fresh unique id
// and Open set. If the list exceeds the configured limit the oldest toasts
// are evicted silently. Subscribers are notified even when the new toast is
// itself immediately evicted.
func (s *Store) Show(p Payload) Handle {
	t := Toast{
		ID:          uuid.NewString(),
		Level:       p.Level,
		Title:       p.Title,
		Description: p.Description,
		Action:      p.Action,
		Open:        true,
		Data:        p.Data,
	}

	s.mu.Lock()
	prev := s.toasts
	s.toasts = reduce(prev, s.limit, action{kind: actionAdd, toast: t})
	// Evicted toasts may still own a pending removal timer; cancel it so the
	// scheduler never works on ids the list no longer tracks.
	for _, old := range prev {
		if !s.trackedLocked(old.ID) {
			s.cancelTimerLocked(old.ID)
		}
	}
	snapshot, listeners := s.notifyLocked()
	s.mu.Unlock()

	dispatch(listeners, snapshot)
	return Handle{ID: t.ID, store: s}
}

// Update merges the patch into the toast matching id. Unknown ids are a
// benign no-op; subscribers are still notified with the (unchanged) state.
func (s *Store) Update(id string, p Patch) {
	s.mu.Lock()
	s.toasts = reduce(s.toasts, s.limit, action{kind: actionUpdate, id: id, patch: p})
	snapshot, listeners := s.notifyLocked()
	s.mu.Unlock()

	dispatch(listeners, snapshot)
}

// Dismiss sets Open to false on the matching toasts and schedules each for
// removal after the configured delay. Without arguments it dismisses every
// tracked toast. Arming is idempotent: a toast with a removal already
// pending keeps its existing timer.
func (s *Store) Dismiss(ids ...string) {
	s.mu.Lock()
	if len(ids) == 0 {
		for _, t := range s.toasts {
			ids = append(ids, t.ID)
		}
		s.toasts = reduce(s.toasts, s.limit, action{kind: actionDismiss})
	} else {
		for _, id := range ids {
			s.toasts = reduce(s.toasts, s.limit, action{kind: actionDismiss, id: id})
		}
	}
	for _, id := range ids {
		if s.trackedLocked(id) {
			s.armTimerLocked(id)
		}
	}
	snapshot, listeners := s.notifyLocked()
	s.mu.Unlock()

	dispatch(listeners, snapshot)
}

// Remove deletes the matching toasts immediately, regardless of the Open
// flag, and cancels any pending removal timers for them. Without arguments
// it clears the whole list. Removing an absent id is a no-op.
func (s *Store) Remove(ids ...string) {
	s.mu.Lock()
	if len(ids) == 0 {
		for id := range s.timers {
			s.cancelTimerLocked(id)
		}
		s.toasts = reduce(s.toasts, s.limit, action{kind: actionRemove})
	} else {
		for _, id := range ids {
			s.cancelTimerLocked(id)
			s.toasts = reduce(s.toasts, s.limit, action{kind: actionRemove, id: id})
		}
	}
	snapshot, listeners := s.notifyLocked()
	s.mu.Unlock()

	dispatch(listeners, snapshot)
}

// Subscribe registers a listener invoked with the full ordered toast list on
// every mutation. The returned function deregisters the listener and is safe
// to call more than once.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Toasts returns a snapshot of the currently tracked toasts, newest first.
func (s *Store) Toasts() []Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshotOf(s.toasts)
}

// Close cancels all pending removal timers and drops all subscribers. The
// store remains usable for state reads and mutations, but dismissals no
// longer arm timers. It exists so tests and session teardown can dispose of
// pending work deterministically.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.timers {
		s.cancelTimerLocked(id)
	}
	clear(s.subs)
	s.closed = true
}

// armTimerLocked schedules delayed removal of id unless a removal is already
// pending for it. Must be called with the lock held.
func (s *Store) armTimerLocked(id string) {
	if s.closed {
		return
	}
	if _, pending := s.timers[id]; pending {
		return
	}
	var tmr *time.Timer
	tmr = time.AfterFunc(s.delay, func() { s.expire(id, tmr) })
	s.timers[id] = tmr
}

// cancelTimerLocked stops and forgets the pending removal timer for id, if
// any. Must be called with the lock held.
func (s *Store) cancelTimerLocked(id string) {
	if tmr, ok := s.timers[id]; ok {
		tmr.Stop()
		delete(s.timers, id)
	}
}

// expire runs when a removal timer fires. A timer that lost a Stop race
// identifies itself by pointer so a stale firing never removes a toast that
// was re-dismissed under a fresh timer.
func (s *Store) expire(id string, tmr *time.Timer) {
	s.mu.Lock()
	current, ok := s.timers[id]
	if !ok || current != tmr {
		s.mu.Unlock()
		return
	}
	delete(s.timers, id)
	s.toasts = reduce(s.toasts, s.limit, action{kind: actionRemove, id: id})
	snapshot, listeners := s.notifyLocked()
	s.mu.Unlock()

	dispatch(listeners, snapshot)
}

func (s *Store) trackedLocked(id string) bool {
	for _, t := range s.toasts {
		if t.ID == id {
			return true
		}
	}
	return false
}

// notifyLocked captures the state snapshot and the current listener set so
// the caller can dispatch after releasing the lock.
func (s *Store) notifyLocked() ([]Toast, []Listener) {
	if len(s.subs) == 0 {
		return nil, nil
	}
	listeners := make([]Listener, 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	return snapshotOf(s.toasts), listeners
}

func dispatch(listeners []Listener, snapshot []Toast) {
	for _, fn := range listeners {
		fn(snapshot)
	}
}

func snapshotOf(toasts []Toast) []Toast {
	out := make([]Toast, len(toasts))
	copy(out, toasts)
	return out
}
