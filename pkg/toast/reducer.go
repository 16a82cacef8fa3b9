package toast

type actionKind int

const (
	actionAdd actionKind = iota
	actionUpdate
	actionDismiss
	actionRemove
)

// action is a single state transition request. For dismiss and remove an
// empty id targets every tracked toast.
type action struct {
	kind  actionKind
	toast Toast
	id    string
	patch Patch
}

// reduce computes the next toast list from the current one. It is a pure
// function: no timers, no subscriber notification, no mutation of the input
// slice. The store layer owns all side effects so transitions stay unit
// testable without waiting on delays.
func reduce(state []Toast, limit int, a action) []Toast {
	switch a.kind {
	case actionAdd:
		next := make([]Toast, 0, len(state)+1)
		next = append(next, a.toast)
		next = append(next, state...)
		// Newest-first with silent eviction of the oldest beyond the limit.
		if limit > 0 && len(next) > limit {
			next = next[:limit]
		}
		return next

	case actionUpdate:
		next := make([]Toast, len(state))
		copy(next, state)
		for i := range next {
			if next[i].ID == a.id {
				next[i] = merge(next[i], a.patch)
			}
		}
		return next

	case actionDismiss:
		next := make([]Toast, len(state))
		copy(next, state)
		for i := range next {
			if a.id == "" || next[i].ID == a.id {
				next[i].Open = false
			}
		}
		return next

	case actionRemove:
		if a.id == "" {
			return []Toast{}
		}
		next := make([]Toast, 0, len(state))
		for _, t := range state {
			if t.ID != a.id {
				next = append(next, t)
			}
		}
		return next
	}

	return state
}

// merge applies a partial patch to a toast, leaving unspecified fields
// untouched. Data maps are merged key-wise rather than replaced.
func merge(t Toast, p Patch) Toast {
	if p.Level != nil {
		t.Level = *p.Level
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Action != nil {
		t.Action = p.Action
	}
	if p.Open != nil {
		t.Open = *p.Open
	}
	if len(p.Data) > 0 {
		data := make(map[string]any, len(t.Data)+len(p.Data))
		for k, v := range t.Data {
			data[k] = v
		}
		for k, v := range p.Data {
			data[k] = v
		}
		t.Data = data
	}
	return t
}
