package scopes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opsdesk/opsdesk/pkg/scopes"
)

func TestMatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		scope   string
		pattern string
		want    bool
	}{
		{"tickets.read", "tickets.read", true},
		{"tickets.read", "*", true},
		{"tickets.read", "tickets.*", true},
		{"tickets.comments.add", "tickets.*", true},
		{"tickets", "tickets.*", false},
		{"users.manage", "tickets.*", false},
		{"tickets.read", "tickets.write", false},
	}

	for _, tt := range tests {
		t.Run(tt.scope+"~"+tt.pattern, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, scopes.Matches(tt.scope, tt.pattern))
		})
	}
}

func TestHas(t *testing.T) {
	t.Parallel()

	granted := []string{"tickets.*", "categories.read"}

	assert.True(t, scopes.Has(granted, "tickets.assign"))
	assert.True(t, scopes.Has(granted, "categories.read"))
	assert.False(t, scopes.Has(granted, "categories.manage"))
	assert.False(t, scopes.Has(nil, "tickets.read"))
}

func TestHasAll(t *testing.T) {
	t.Parallel()

	granted := []string{"tickets.*", "categories.read"}

	assert.True(t, scopes.HasAll(granted, nil))
	assert.True(t, scopes.HasAll(granted, []string{"tickets.read", "tickets.assign"}))
	assert.False(t, scopes.HasAll(granted, []string{"tickets.read", "users.manage"}))
	assert.True(t, scopes.HasAll([]string{"*"}, []string{"anything.at.all"}))
	assert.False(t, scopes.HasAll(nil, []string{"tickets.read"}))
}

func TestHasAny(t *testing.T) {
	t.Parallel()

	granted := []string{"categories.read"}

	assert.True(t, scopes.HasAny(granted, nil))
	assert.True(t, scopes.HasAny(granted, []string{"users.manage", "categories.read"}))
	assert.False(t, scopes.HasAny(granted, []string{"users.manage", "tickets.read"}))
	assert.True(t, scopes.HasAny([]string{"*"}, []string{"whatever"}))
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	assert.Nil(t, scopes.Normalize(nil))
	assert.Equal(t,
		[]string{"categories.read", "tickets.*", "tickets.read"},
		scopes.Normalize([]string{"tickets.read", "tickets.*", "tickets.read", "categories.read"}),
	)
}
