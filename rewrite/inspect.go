package rewrite

import "github.com/bawdo/relq/nodes"

// inspector walks a tree without changing it.
type inspector struct {
	*Base
	fn func(nodes.Expression) bool
}

func (in *inspector) Visit(e nodes.Expression) nodes.Expression {
	if e == nil || !in.fn(e) {
		return e
	}
	return in.Base.Visit(e)
}

// Inspect calls fn for every node of e in Forward order. When fn returns
// false the children of that node are skipped.
func Inspect(e nodes.Expression, fn func(nodes.Expression) bool) {
	in := &inspector{fn: fn}
	in.Base = NewBase(in)
	in.Visit(e)
}

// Contains reports whether any node of e satisfies match. Nested selects
// are searched too.
func Contains(e nodes.Expression, match func(nodes.Expression) bool) bool {
	found := false
	Inspect(e, func(n nodes.Expression) bool {
		if found {
			return false
		}
		if match(n) {
			found = true
			return false
		}
		return true
	})
	return found
}

// ContainsKind reports whether e contains a node of any of the kinds.
func ContainsKind(e nodes.Expression, kinds ...nodes.NodeKind) bool {
	return Contains(e, func(n nodes.Expression) bool {
		for _, k := range kinds {
			if n.Kind() == k {
				return true
			}
		}
		return false
	})
}
