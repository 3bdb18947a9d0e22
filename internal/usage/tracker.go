// Package usage tracks which columns of each aliased source are read by
// some consumer during one traversal.
package usage

import (
	"sort"

	"github.com/bawdo/relq/nodes"
)

// Set is a set of column names.
type Set map[string]struct{}

// Has reports whether name is in the set.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the names in lexical order.
func (s Set) Sorted() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Tracker maps aliases to the set of column names read from them. A
// Tracker belongs to a single traversal and is not safe for concurrent use.
//
// It is only correct when filled consumers-first: a select's clauses before
// its column list, a projection's projector before its source.
type Tracker struct {
	used map[nodes.Alias]Set
}

// New creates an empty Tracker.
func New() *Tracker {
	return &Tracker{used: make(map[nodes.Alias]Set)}
}

// RecordUse marks column name of alias as read. Repeated calls are no-ops.
func (t *Tracker) RecordUse(alias nodes.Alias, name string) {
	t.Touch(alias)[name] = struct{}{}
}

// Touch returns the live set for alias, creating an empty one if the alias
// was never seen. Later uses recorded for alias show up in the returned set.
func (t *Tracker) Touch(alias nodes.Alias) Set {
	s, ok := t.used[alias]
	if !ok {
		s = make(Set)
		t.used[alias] = s
	}
	return s
}

// UsedColumns returns the columns recorded for alias. The result is empty
// when the alias was never referenced, i.e. all its columns are dead.
func (t *Tracker) UsedColumns(alias nodes.Alias) Set {
	if s, ok := t.used[alias]; ok {
		return s
	}
	return Set{}
}

// Seen reports whether alias has an entry, even an empty one.
func (t *Tracker) Seen(alias nodes.Alias) bool {
	_, ok := t.used[alias]
	return ok
}
