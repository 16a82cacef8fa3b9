package toast

import "sync"

// Hub maps session ids to per-session toast stores so one user's toasts
// never reach another user's subscribers. Stores are created lazily with the
// hub's options and disposed of when the session is evicted.
type Hub struct {
	mu     sync.Mutex
	stores map[string]*Store
	opts   []Option
}

// NewHub creates a session-scoped store registry. The options are applied to
// every store the hub constructs.
func NewHub(opts ...Option) *Hub {
	return &Hub{
		stores: make(map[string]*Store),
		opts:   opts,
	}
}

// Store returns the toast store for the given session, creating it on first
// use.
func (h *Hub) Store(sessionID string) *Store {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s, ok := h.stores[sessionID]; ok {
		return s
	}
	s := New(h.opts...)
	h.stores[sessionID] = s
	return s
}

// Evict closes and forgets the store for the given session. Evicting an
// unknown session is a no-op.
func (h *Hub) Evict(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s, ok := h.stores[sessionID]; ok {
		s.Close()
		delete(h.stores, sessionID)
	}
}

// Len reports the number of live session stores.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.stores)
}

// Close disposes of every session store and their pending timers.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, s := range h.stores {
		s.Close()
		delete(h.stores, id)
	}
}
