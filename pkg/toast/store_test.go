package toast_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdesk/opsdesk/pkg/toast"
)

// recorder collects every snapshot a listener receives, concurrency-safe
// because removal timers fire on their own goroutines.
type recorder struct {
	mu        sync.Mutex
	snapshots [][]toast.Toast
}

func (r *recorder) listen(toasts []toast.Toast) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, toasts)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snapshots)
}

func (r *recorder) last() []toast.Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snapshots) == 0 {
		return nil
	}
	return r.snapshots[len(r.snapshots)-1]
}

func containsID(toasts []toast.Toast, id string) bool {
	for _, t := range toasts {
		if t.ID == id {
			return true
		}
	}
	return false
}

func TestStore_ShowAssignsUniqueIDs(t *testing.T) {
	t.Parallel()

	s := toast.New(toast.WithMaxVisible(10))
	defer s.Close()

	seen := make(map[string]bool)
	for range 5 {
		h := s.Show(toast.Payload{Title: "x"})
		require.NotEmpty(t, h.ID)
		require.False(t, seen[h.ID], "ids must be unique")
		seen[h.ID] = true
	}
}

func TestStore_ShowEvictsOldest(t *testing.T) {
	t.Parallel()

	s := toast.New(toast.WithMaxVisible(1))
	defer s.Close()

	s.Show(toast.Payload{Title: "A"})
	s.Show(toast.Payload{Title: "B"})

	got := s.Toasts()
	require.Len(t, got, 1)
	assert.Equal(t, "B", got[0].Title)
	assert.True(t, got[0].Open)
}

func TestStore_ShowKeepsMostRecentN(t *testing.T) {
	t.Parallel()

	s := toast.New(toast.WithMaxVisible(3))
	defer s.Close()

	for _, title := range []string{"1", "2", "3", "4", "5"} {
		s.Show(toast.Payload{Title: title})
	}

	got := s.Toasts()
	require.Len(t, got, 3)
	assert.Equal(t, "5", got[0].Title)
	assert.Equal(t, "4", got[1].Title)
	assert.Equal(t, "3", got[2].Title)
}

func TestStore_ShowNotifiesSynchronously(t *testing.T) {
	t.Parallel()

	s := toast.New()
	defer s.Close()

	rec := &recorder{}
	unsub := s.Subscribe(rec.listen)
	defer unsub()

	h := s.Show(toast.Payload{
		Level:       toast.LevelSuccess,
		Title:       "Saved",
		Description: "Ticket saved",
		Data:        map[string]any{"ticket": "T-1"},
	})

	// The subscriber fired before Show returned.
	require.Equal(t, 1, rec.count())
	got := rec.last()
	require.Len(t, got, 1)
	assert.Equal(t, h.ID, got[0].ID)
	assert.Equal(t, toast.LevelSuccess, got[0].Level)
	assert.Equal(t, "Saved", got[0].Title)
	assert.Equal(t, "Ticket saved", got[0].Description)
	assert.Equal(t, map[string]any{"ticket": "T-1"}, got[0].Data)
	assert.True(t, got[0].Open)
}

func TestStore_ShowNotifiesEvenWhenEvicted(t *testing.T) {
	t.Parallel()

	s := toast.New(toast.WithMaxVisible(1))
	defer s.Close()

	s.Show(toast.Payload{Title: "A"})

	rec := &recorder{}
	unsub := s.Subscribe(rec.listen)
	defer unsub()

	s.Show(toast.Payload{Title: "B"})
	require.Equal(t, 1, rec.count())
	require.Len(t, rec.last(), 1)
	assert.Equal(t, "B", rec.last()[0].Title)
}

func TestStore_UpdatePartialMerge(t *testing.T) {
	t.Parallel()

	s := toast.New()
	defer s.Close()

	h := s.Show(toast.Payload{Title: "old", Description: "keep"})

	title := "new"
	s.Update(h.ID, toast.Patch{Title: &title})

	got := s.Toasts()
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].Title)
	assert.Equal(t, "keep", got[0].Description)
	assert.True(t, got[0].Open)
}

func TestStore_UpdateUnknownIDIsNoop(t *testing.T) {
	t.Parallel()

	s := toast.New()
	defer s.Close()

	h := s.Show(toast.Payload{Title: "x"})

	title := "hijacked"
	s.Update("no-such-id", toast.Patch{Title: &title})

	got := s.Toasts()
	require.Len(t, got, 1)
	assert.Equal(t, h.ID, got[0].ID)
	assert.Equal(t, "x", got[0].Title)
}

func TestStore_DismissHidesThenRemoves(t *testing.T) {
	t.Parallel()

	s := toast.New(toast.WithRemoveDelay(25 * time.Millisecond))
	defer s.Close()

	h := s.Show(toast.Payload{Title: "X"})
	s.Dismiss(h.ID)

	// Immediately after dismissal the toast is still tracked, just hidden.
	got := s.Toasts()
	require.Len(t, got, 1)
	assert.Equal(t, h.ID, got[0].ID)
	assert.False(t, got[0].Open)

	require.Eventually(t, func() bool {
		return len(s.Toasts()) == 0
	}, time.Second, 5*time.Millisecond, "dismissed toast must eventually be removed")
}

func TestStore_DismissIsIdempotent(t *testing.T) {
	t.Parallel()

	s := toast.New(toast.WithRemoveDelay(25 * time.Millisecond))
	defer s.Close()

	rec := &recorder{}
	unsub := s.Subscribe(rec.listen)
	defer unsub()

	h := s.Show(toast.Payload{Title: "X"})
	s.Dismiss(h.ID)
	s.Dismiss(h.ID)

	require.Eventually(t, func() bool {
		return len(s.Toasts()) == 0
	}, time.Second, 5*time.Millisecond)

	// show + 2 dismissals + exactly one timer-driven removal. A duplicated
	// timer would produce a fifth notification.
	notified := rec.count()
	assert.Equal(t, 4, notified)

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, notified, rec.count(), "no stale second removal may fire")
}

func TestStore_DismissAll(t *testing.T) {
	t.Parallel()

	s := toast.New(toast.WithMaxVisible(5), toast.WithRemoveDelay(25*time.Millisecond))
	defer s.Close()

	s.Show(toast.Payload{Title: "A"})
	s.Show(toast.Payload{Title: "B"})

	s.Dismiss()

	got := s.Toasts()
	require.Len(t, got, 2)
	assert.False(t, got[0].Open)
	assert.False(t, got[1].Open)

	require.Eventually(t, func() bool {
		return len(s.Toasts()) == 0
	}, time.Second, 5*time.Millisecond, "all dismissed toasts must eventually be removed")
}

func TestStore_DismissUnknownIDIsNoop(t *testing.T) {
	t.Parallel()

	s := toast.New()
	defer s.Close()

	s.Show(toast.Payload{Title: "X"})
	s.Dismiss("no-such-id")

	got := s.Toasts()
	require.Len(t, got, 1)
	assert.True(t, got[0].Open)
}

func TestStore_RemoveImmediate(t *testing.T) {
	t.Parallel()

	s := toast.New(toast.WithMaxVisible(5))
	defer s.Close()

	a := s.Show(toast.Payload{Title: "A"})
	b := s.Show(toast.Payload{Title: "B"})

	s.Remove(a.ID)

	got := s.Toasts()
	require.Len(t, got, 1)
	assert.Equal(t, b.ID, got[0].ID)

	// Removing the same id again is a no-op.
	s.Remove(a.ID)
	assert.Len(t, s.Toasts(), 1)
}

func TestStore_RemoveAll(t *testing.T) {
	t.Parallel()

	s := toast.New(toast.WithMaxVisible(5))
	defer s.Close()

	s.Show(toast.Payload{Title: "A"})
	s.Show(toast.Payload{Title: "B"})

	s.Remove()
	assert.Empty(t, s.Toasts())
}

func TestStore_RemoveCancelsPendingTimer(t *testing.T) {
	t.Parallel()

	s := toast.New(toast.WithMaxVisible(5), toast.WithRemoveDelay(30*time.Millisecond))
	defer s.Close()

	rec := &recorder{}
	unsub := s.Subscribe(rec.listen)
	defer unsub()

	h := s.Show(toast.Payload{Title: "doomed"})
	s.Dismiss(h.ID)
	s.Remove(h.ID)

	keeper := s.Show(toast.Payload{Title: "keeper"})

	// Let the canceled timer's deadline pass; nothing may fire and the
	// surviving toast must be untouched.
	time.Sleep(80 * time.Millisecond)

	got := s.Toasts()
	require.Len(t, got, 1)
	assert.Equal(t, keeper.ID, got[0].ID)
	assert.Equal(t, 4, rec.count(), "show, dismiss, remove, show - and no timer firing")
}

func TestStore_UpdateAfterRemoveIsNoop(t *testing.T) {
	t.Parallel()

	s := toast.New()
	defer s.Close()

	h := s.Show(toast.Payload{Title: "X"})
	s.Remove(h.ID)

	title := "ghost"
	s.Update(h.ID, toast.Patch{Title: &title})

	assert.Empty(t, s.Toasts(), "a toast never reappears after removal")
}

func TestStore_EvictedToastTimerIsCanceled(t *testing.T) {
	t.Parallel()

	s := toast.New(toast.WithMaxVisible(1), toast.WithRemoveDelay(30*time.Millisecond))
	defer s.Close()

	a := s.Show(toast.Payload{Title: "A"})
	s.Dismiss(a.ID)

	// B evicts A while A's removal is still pending.
	b := s.Show(toast.Payload{Title: "B"})

	rec := &recorder{}
	unsub := s.Subscribe(rec.listen)
	defer unsub()

	time.Sleep(80 * time.Millisecond)

	got := s.Toasts()
	require.Len(t, got, 1)
	assert.Equal(t, b.ID, got[0].ID)
	assert.Equal(t, 0, rec.count(), "the evicted toast's timer must not fire")
}

func TestStore_SubscribeUnsubscribe(t *testing.T) {
	t.Parallel()

	s := toast.New(toast.WithMaxVisible(5))
	defer s.Close()

	first := &recorder{}
	second := &recorder{}
	unsubFirst := s.Subscribe(first.listen)
	unsubSecond := s.Subscribe(second.listen)

	s.Show(toast.Payload{Title: "A"})
	assert.Equal(t, 1, first.count())
	assert.Equal(t, 1, second.count())

	unsubFirst()
	s.Show(toast.Payload{Title: "B"})
	assert.Equal(t, 1, first.count(), "unsubscribed listener must not fire")
	assert.Equal(t, 2, second.count())

	// Unsubscribing twice is safe.
	unsubFirst()
	unsubSecond()
	s.Show(toast.Payload{Title: "C"})
	assert.Equal(t, 2, second.count())
}

func TestStore_CloseCancelsPendingTimers(t *testing.T) {
	t.Parallel()

	s := toast.New(toast.WithRemoveDelay(25 * time.Millisecond))

	h := s.Show(toast.Payload{Title: "X"})
	s.Dismiss(h.ID)
	s.Close()

	time.Sleep(80 * time.Millisecond)

	got := s.Toasts()
	require.Len(t, got, 1, "close must cancel the scheduled removal")
	assert.Equal(t, h.ID, got[0].ID)
	assert.False(t, got[0].Open)
}

func TestStore_HandleMethods(t *testing.T) {
	t.Parallel()

	s := toast.New(toast.WithRemoveDelay(25 * time.Millisecond))
	defer s.Close()

	h := s.Show(toast.Payload{Title: "old"})

	title := "new"
	h.Update(toast.Patch{Title: &title})
	got := s.Toasts()
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].Title)

	h.Dismiss()
	got = s.Toasts()
	require.Len(t, got, 1)
	assert.False(t, got[0].Open)

	h.Remove()
	assert.Empty(t, s.Toasts())
}

func TestStore_ConcurrentMutations(t *testing.T) {
	t.Parallel()

	s := toast.New(toast.WithMaxVisible(4), toast.WithRemoveDelay(10*time.Millisecond))
	defer s.Close()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				h := s.Show(toast.Payload{Title: "t"})
				s.Dismiss(h.ID)
				s.Remove(h.ID)
			}
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		return len(s.Toasts()) == 0
	}, time.Second, 5*time.Millisecond)
}
