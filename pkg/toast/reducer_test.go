package toast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduce_Add(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		state     []Toast
		limit     int
		toast     Toast
		wantIDs   []string
	}{
		{
			name:    "insert into empty list",
			state:   nil,
			limit:   3,
			toast:   Toast{ID: "a", Open: true},
			wantIDs: []string{"a"},
		},
		{
			name:    "newest first",
			state:   []Toast{{ID: "a"}},
			limit:   3,
			toast:   Toast{ID: "b"},
			wantIDs: []string{"b", "a"},
		},
		{
			name:    "evicts oldest beyond limit",
			state:   []Toast{{ID: "b"}, {ID: "a"}},
			limit:   2,
			toast:   Toast{ID: "c"},
			wantIDs: []string{"c", "b"},
		},
		{
			name:    "limit one keeps only newest",
			state:   []Toast{{ID: "a"}},
			limit:   1,
			toast:   Toast{ID: "b"},
			wantIDs: []string{"b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := reduce(tt.state, tt.limit, action{kind: actionAdd, toast: tt.toast})

			require.Len(t, got, len(tt.wantIDs))
			for i, id := range tt.wantIDs {
				assert.Equal(t, id, got[i].ID)
			}
		})
	}
}

func TestReduce_Update(t *testing.T) {
	t.Parallel()

	title := "updated"
	open := false

	state := []Toast{
		{ID: "a", Title: "first", Description: "keep me", Open: true},
		{ID: "b", Title: "second", Open: true},
	}

	got := reduce(state, 3, action{kind: actionUpdate, id: "a", patch: Patch{Title: &title, Open: &open}})

	require.Len(t, got, 2)
	assert.Equal(t, "updated", got[0].Title)
	assert.Equal(t, "keep me", got[0].Description, "unpatched fields stay untouched")
	assert.False(t, got[0].Open)
	assert.Equal(t, "second", got[1].Title, "other toasts unaffected")
}

func TestReduce_UpdateUnknownIDIsNoop(t *testing.T) {
	t.Parallel()

	title := "updated"
	state := []Toast{{ID: "a", Title: "first"}}

	got := reduce(state, 3, action{kind: actionUpdate, id: "zzz", patch: Patch{Title: &title}})

	require.Len(t, got, 1)
	assert.Equal(t, "first", got[0].Title)
}

func TestReduce_UpdateMergesData(t *testing.T) {
	t.Parallel()

	state := []Toast{{ID: "a", Data: map[string]any{"x": 1, "y": 2}}}

	got := reduce(state, 3, action{kind: actionUpdate, id: "a", patch: Patch{Data: map[string]any{"y": 3, "z": 4}}})

	require.Len(t, got, 1)
	assert.Equal(t, map[string]any{"x": 1, "y": 3, "z": 4}, got[0].Data)
	assert.Equal(t, map[string]any{"x": 1, "y": 2}, state[0].Data, "input state must not be mutated")
}

func TestReduce_Dismiss(t *testing.T) {
	t.Parallel()

	state := []Toast{
		{ID: "a", Open: true},
		{ID: "b", Open: true},
	}

	one := reduce(state, 3, action{kind: actionDismiss, id: "a"})
	require.Len(t, one, 2)
	assert.False(t, one[0].Open)
	assert.True(t, one[1].Open)

	all := reduce(state, 3, action{kind: actionDismiss})
	require.Len(t, all, 2)
	assert.False(t, all[0].Open)
	assert.False(t, all[1].Open)

	// Purity: the original state is untouched by either transition.
	assert.True(t, state[0].Open)
	assert.True(t, state[1].Open)
}

func TestReduce_Remove(t *testing.T) {
	t.Parallel()

	state := []Toast{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	one := reduce(state, 3, action{kind: actionRemove, id: "b"})
	require.Len(t, one, 2)
	assert.Equal(t, "a", one[0].ID)
	assert.Equal(t, "c", one[1].ID)

	missing := reduce(state, 3, action{kind: actionRemove, id: "zzz"})
	assert.Len(t, missing, 3, "removing an absent id is a no-op")

	all := reduce(state, 3, action{kind: actionRemove})
	assert.Empty(t, all)

	assert.Len(t, state, 3, "input state must not be mutated")
}
