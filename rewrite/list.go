package rewrite

import "github.com/bawdo/relq/nodes"

// Edit describes what happened to one element of a visited list.
type Edit int

const (
	Unchanged Edit = iota
	Replaced
	Dropped
)

// List applies fn to every element and returns the edited list. When every
// element comes back Unchanged the original slice is returned with false,
// so callers can keep the node that owns it.
func List[T any](items []T, fn func(T) (T, Edit)) ([]T, bool) {
	var out []T
	changed := false
	for i, item := range items {
		next, edit := fn(item)
		if edit == Unchanged && !changed {
			continue
		}
		if !changed {
			changed = true
			out = make([]T, i, len(items))
			copy(out, items[:i])
		}
		if edit != Dropped {
			out = append(out, next)
		}
	}
	if !changed {
		return items, false
	}
	return out, true
}

// Compare reports Unchanged when next is the same value as prev.
func Compare(prev, next nodes.Expression) (nodes.Expression, Edit) {
	if prev == next {
		return prev, Unchanged
	}
	return next, Replaced
}
