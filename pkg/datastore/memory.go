package datastore

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"
)

// Memory is a map-backed Store for development and tests. All methods are
// safe for concurrent use. Rows are copied on the way in and out so callers
// can never mutate stored state through a returned map.
type Memory struct {
	mu          sync.RWMutex
	collections map[string][]Row
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string][]Row)}
}

func (m *Memory) Select(ctx context.Context, collection string, q Query) ([]Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []Row
	for _, row := range m.collections[collection] {
		if matches(row, q.Filters()) {
			matched = append(matched, copyRow(row))
		}
	}

	orderings := q.Orderings()
	if len(orderings) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			for _, o := range orderings {
				cmp := compareValues(matched[i][o.Field], matched[j][o.Field])
				if cmp == 0 {
					continue
				}
				if o.Desc {
					return cmp > 0
				}
				return cmp < 0
			}
			return false
		})
	}

	if n := q.LimitN(); n > 0 && len(matched) > n {
		matched = matched[:n]
	}
	if matched == nil {
		matched = []Row{}
	}
	return matched, nil
}

func (m *Memory) Insert(ctx context.Context, collection string, row Row) (Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := copyRow(row)
	m.collections[collection] = append(m.collections[collection], stored)
	return copyRow(stored), nil
}

func (m *Memory) Update(ctx context.Context, collection string, q Query, changes Row) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var affected int64
	for _, row := range m.collections[collection] {
		if matches(row, q.Filters()) {
			for k, v := range changes {
				row[k] = v
			}
			affected++
		}
	}
	return affected, nil
}

func (m *Memory) Delete(ctx context.Context, collection string, q Query) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.collections[collection]
	kept := rows[:0]
	var affected int64
	for _, row := range rows {
		if matches(row, q.Filters()) {
			affected++
			continue
		}
		kept = append(kept, row)
	}
	m.collections[collection] = kept
	return affected, nil
}

func matches(row Row, filters []Filter) bool {
	for _, f := range filters {
		if !reflect.DeepEqual(row[f.Field], f.Value) {
			return false
		}
	}
	return true
}

func copyRow(row Row) Row {
	out := make(Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

// compareValues orders two field values of the same kind. Mixed or unknown
// kinds fall back to their string forms, which keeps sorting deterministic
// even for odd payloads.
func compareValues(a, b any) int {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case int:
		if bv, ok := b.(int); ok {
			return av - bv
		}
	case int64:
		if bv, ok := b.(int64); ok {
			return int(av - bv)
		}
	case float64:
		if bv, ok := b.(float64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case !av && bv:
				return -1
			case av && !bv:
				return 1
			}
			return 0
		}
	}

	as, bs := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	}
	return 0
}
