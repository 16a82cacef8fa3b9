package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdesk/opsdesk/pkg/cache"
)

func TestCache_GetSet(t *testing.T) {
	t.Parallel()

	c := cache.New[string, int](3)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", 1)
	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, got)

	c.Set("a", 2)
	got, _ = c.Get("a")
	assert.Equal(t, 2, got)
	assert.Equal(t, 1, c.Len())
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	c := cache.New[string, int](2)
	c.Set("a", 1)
	c.Set("b", 2)

	// Touch "a" so "b" is the eviction candidate.
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Set("c", 3)

	_, ok = c.Get("b")
	assert.False(t, ok, "least recently used entry should be evicted")
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestCache_TTLExpiry(t *testing.T) {
	t.Parallel()

	c := cache.New(10, cache.WithTTL[string, string](15*time.Millisecond))
	c.Set("categories", "cached list")

	got, ok := c.Get("categories")
	require.True(t, ok)
	assert.Equal(t, "cached list", got)

	assert.Eventually(t, func() bool {
		_, ok := c.Get("categories")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestCache_SetRefreshesTTL(t *testing.T) {
	t.Parallel()

	c := cache.New(10, cache.WithTTL[string, int](40*time.Millisecond))
	c.Set("k", 1)

	time.Sleep(25 * time.Millisecond)
	c.Set("k", 2)
	time.Sleep(25 * time.Millisecond)

	got, ok := c.Get("k")
	require.True(t, ok, "refreshed entry must outlive the original deadline")
	assert.Equal(t, 2, got)
}

func TestCache_DeleteAndPurge(t *testing.T) {
	t.Parallel()

	var evicted []string
	c := cache.New(10, cache.WithOnEvict[string, int](func(key string, _ int) {
		evicted = append(evicted, key)
	}))

	c.Set("a", 1)
	c.Set("b", 2)

	c.Delete("a")
	assert.Equal(t, []string{"a"}, evicted)
	c.Delete("a") // missing key is a no-op
	assert.Equal(t, 1, c.Len())

	c.Purge()
	assert.Zero(t, c.Len())
	assert.Contains(t, evicted, "b")
}
