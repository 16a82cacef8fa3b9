package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int64
	resetAt time.Time
}

// MemoryStore keeps windows in a mutex-guarded map. Expired windows are
// dropped lazily on the next touch of their key.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]window
}

// NewMemoryStore creates an in-process store for single-instance deploys and
// tests.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string]window)}
}

func (m *MemoryStore) Incr(_ context.Context, key string, length time.Duration) (int64, time.Time, error) {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[key]
	if !ok || now.After(w.resetAt) {
		w = window{resetAt: now.Add(length)}
	}
	w.count++
	m.windows[key] = w
	return w.count, w.resetAt, nil
}

func (m *MemoryStore) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.windows, key)
	return nil
}
