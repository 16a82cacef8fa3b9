package storage_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdesk/opsdesk/pkg/storage"
)

func newLocal(t *testing.T) *storage.Local {
	t.Helper()

	store, err := storage.NewLocal(t.TempDir(), "/attachments")
	require.NoError(t, err)
	return store
}

func TestLocal_PutGetDelete(t *testing.T) {
	t.Parallel()

	store := newLocal(t)
	ctx := context.Background()

	key := "tickets/t1/screenshot.png"
	require.NoError(t, store.Put(ctx, key, strings.NewReader("pixels"), "image/png"))

	r, err := store.Get(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, r.Close())
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(data))

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLocal_PutOverwrites(t *testing.T) {
	t.Parallel()

	store := newLocal(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "log.txt", strings.NewReader("v1"), "text/plain"))
	require.NoError(t, store.Put(ctx, "log.txt", strings.NewReader("v2"), "text/plain"))

	r, err := store.Get(ctx, "log.txt")
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
}

func TestLocal_DeleteMissingIsNoop(t *testing.T) {
	t.Parallel()

	store := newLocal(t)
	assert.NoError(t, store.Delete(context.Background(), "never/was.txt"))
}

func TestLocal_RejectsTraversalKeys(t *testing.T) {
	t.Parallel()

	store := newLocal(t)
	ctx := context.Background()

	for _, key := range []string{
		"",
		"../outside.txt",
		"tickets/../../etc/passwd",
		"/absolute.txt",
		"tickets//double.txt",
	} {
		assert.ErrorIs(t, store.Put(ctx, key, strings.NewReader("x"), ""), storage.ErrInvalidKey, "key %q", key)
		_, err := store.Get(ctx, key)
		assert.ErrorIs(t, err, storage.ErrInvalidKey, "key %q", key)
	}
}

func TestLocal_URL(t *testing.T) {
	t.Parallel()

	store := newLocal(t)
	assert.Equal(t, "/attachments/tickets/t1/a.png", store.URL("tickets/t1/a.png"))
	assert.Empty(t, store.URL("../nope"))
}
