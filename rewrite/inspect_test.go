package rewrite

import (
	"testing"

	"github.com/bawdo/relq/internal/testutil"
	"github.com/bawdo/relq/nodes"
)

func TestInspectVisitsEveryNode(t *testing.T) {
	t.Parallel()
	f := newFixture()
	counts := map[nodes.NodeKind]int{}

	Inspect(f.query(), func(e nodes.Expression) bool {
		counts[e.Kind()]++
		return true
	})

	testutil.AssertEqual(t, counts[nodes.KindProjection], 1)
	testutil.AssertEqual(t, counts[nodes.KindSelect], 2)
	testutil.AssertEqual(t, counts[nodes.KindScalar], 1)
	testutil.AssertEqual(t, counts[nodes.KindAggregate], 1)
	testutil.AssertEqual(t, counts[nodes.KindTable], 2)
	testutil.AssertEqual(t, counts[nodes.KindRecord], 1)
}

func TestInspectSkipsChildren(t *testing.T) {
	t.Parallel()
	f := newFixture()
	selects := 0

	Inspect(f.query(), func(e nodes.Expression) bool {
		if e.Kind() == nodes.KindScalar {
			return false
		}
		if e.Kind() == nodes.KindSelect {
			selects++
		}
		return true
	})

	testutil.AssertEqual(t, selects, 1)
}

func TestContainsKind(t *testing.T) {
	t.Parallel()
	f := newFixture()
	q := f.query()

	testutil.AssertEqual(t, ContainsKind(q, nodes.KindAggregate), true)
	testutil.AssertEqual(t, ContainsKind(q, nodes.KindJoin, nodes.KindExists), false)
	testutil.AssertEqual(t, ContainsKind(q.Source.Columns[0].Expr, nodes.KindFunction), true)
	testutil.AssertEqual(t, ContainsKind(nil, nodes.KindTable), false)
}

func TestContainsStopsAtFirstMatch(t *testing.T) {
	t.Parallel()
	f := newFixture()
	calls := 0

	found := Contains(f.query(), func(e nodes.Expression) bool {
		calls++
		return e.Kind() == nodes.KindProjection
	})

	testutil.AssertEqual(t, found, true)
	testutil.AssertEqual(t, calls, 1)
}
