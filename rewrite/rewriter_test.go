package rewrite

import (
	"errors"
	"strings"
	"testing"

	"github.com/bawdo/relq/internal/testutil"
	"github.com/bawdo/relq/nodes"
)

type fixture struct {
	gen    *nodes.AliasGenerator
	things *nodes.TableNode
	orders *nodes.TableNode
}

func newFixture() fixture {
	g := nodes.NewAliasGenerator()
	return fixture{gen: g, things: g.Table("things", "t"), orders: g.Table("orders", "o")}
}

// query builds a projection exercising most node kinds.
func (f fixture) query() *nodes.ProjectionNode {
	sub := &nodes.SelectNode{
		Alias:   f.gen.Next("s"),
		Columns: []nodes.ColumnDeclaration{{Name: "total", Expr: nodes.Sum(f.orders.Col("total"))}},
		From:    f.orders,
		Where:   nodes.Eq(f.orders.Col("thing_id"), f.things.Col("id")),
	}
	sel := &nodes.SelectNode{
		Alias: f.gen.Next("q"),
		Top:   nodes.Constant(10),
		Columns: []nodes.ColumnDeclaration{
			{Name: "name", Expr: nodes.Func("UPPER", f.things.Col("name"))},
			{Name: "spent", Expr: nodes.Scalar(sub)},
			{Name: "band", Expr: &nodes.CaseNode{
				Whens: []nodes.When{{Condition: nodes.Gt(f.things.Col("price"), 100), Result: nodes.Constant("high")}},
				Else:  nodes.Constant("low"),
			}},
			{Name: "rn", Expr: &nodes.RowNumberNode{OrderBy: []nodes.OrderNode{f.things.Col("id").Asc()}}},
		},
		From:    f.things,
		Where:   nodes.Not(f.things.Col("hidden").IsNull()),
		OrderBy: []nodes.OrderNode{f.things.Col("name").Desc()},
		GroupBy: []nodes.Expression{f.things.Col("kind")},
	}
	return &nodes.ProjectionNode{Source: sel, Projector: &nodes.RecordNode{
		TypeName: "Thing",
		Fields:   []nodes.FieldBinding{{Name: "Name", Expr: sel.Col("name")}},
	}}
}

// identity overrides nothing.
type identity struct{ *Base }

func newIdentity() *identity {
	r := &identity{}
	r.Base = NewBase(r)
	return r
}

func TestBaseReturnsOriginalWhenNothingChanges(t *testing.T) {
	t.Parallel()
	f := newFixture()
	q := f.query()

	out, err := Run(newIdentity(), q)
	testutil.AssertNoError(t, err)
	testutil.AssertSame(t, out, q)

	del := &nodes.DeleteNode{Table: f.things, Source: f.orders, Where: nodes.Eq(f.things.Col("id"), f.orders.Col("thing_id"))}
	out, err = Run(newIdentity(), del)
	testutil.AssertNoError(t, err)
	testutil.AssertSame(t, out, del)
}

// renamer renames one column of one alias.
type renamer struct {
	*Base
	alias    nodes.Alias
	from, to string
}

func newRenamer(alias nodes.Alias, from, to string) *renamer {
	r := &renamer{alias: alias, from: from, to: to}
	r.Base = NewBase(r)
	return r
}

func (r *renamer) VisitColumn(n *nodes.ColumnNode) nodes.Expression {
	if n.Alias == r.alias && n.Name == r.from {
		return &nodes.ColumnNode{Alias: n.Alias, Name: r.to, Type: n.Type}
	}
	return n
}

func TestOverridesApplyAtEveryDepth(t *testing.T) {
	t.Parallel()
	f := newFixture()
	q := f.query()

	// t.id only appears inside the scalar subquery and the window ordering
	out, err := Run(newRenamer(f.things.Alias, "id", "thing_id"), q)
	testutil.AssertNoError(t, err)

	proj := out.(*nodes.ProjectionNode)
	testutil.AssertNotSame(t, proj, q)
	testutil.AssertSame(t, proj.Projector, q.Projector)
	testutil.AssertSame(t, proj.Source.From, q.Source.From)
	testutil.AssertSame(t, proj.Source.Where, q.Source.Where)
	testutil.AssertSame(t, proj.Source.Columns[0].Expr, q.Source.Columns[0].Expr)
	testutil.AssertSame(t, proj.Source.Columns[2].Expr, q.Source.Columns[2].Expr)
	testutil.AssertEqual(t, proj.Source.Alias, q.Source.Alias)

	sub := proj.Source.Columns[1].Expr.(*nodes.SubqueryNode).Select
	cond := sub.Where.(*nodes.BinaryNode)
	testutil.AssertEqual(t, cond.Right.(*nodes.ColumnNode).Name, "thing_id")
	testutil.AssertSame(t, cond.Left, q.Source.Columns[1].Expr.(*nodes.SubqueryNode).Select.Where.(*nodes.BinaryNode).Left)

	rn := proj.Source.Columns[3].Expr.(*nodes.RowNumberNode)
	testutil.AssertEqual(t, rn.OrderBy[0].Expr.(*nodes.ColumnNode).Name, "thing_id")
}

// recorder lists the columns it visits.
type recorder struct {
	*Base
	seen []string
}

func (r *recorder) VisitColumn(n *nodes.ColumnNode) nodes.Expression {
	r.seen = append(r.seen, n.Name)
	return n
}

func (r *recorder) VisitTable(n *nodes.TableNode) nodes.Expression {
	r.seen = append(r.seen, "<"+n.Name+">")
	return n
}

func TestVisitOrder(t *testing.T) {
	t.Parallel()
	f := newFixture()
	sel := &nodes.SelectNode{
		Alias:   f.gen.Next("q"),
		Top:     f.things.Col("top"),
		Columns: []nodes.ColumnDeclaration{{Name: "c", Expr: f.things.Col("col")}},
		From:    &nodes.JoinNode{Type: nodes.InnerJoin, Left: f.things, Right: f.orders, Condition: f.things.Col("on")},
		Where:   f.things.Col("where"),
		OrderBy: []nodes.OrderNode{f.things.Col("order").Asc()},
		GroupBy: []nodes.Expression{f.things.Col("group")},
	}
	proj := &nodes.ProjectionNode{Source: sel, Projector: sel.Col("c")}

	cases := []struct {
		name  string
		order Order
		want  string
	}{
		{"forward", Forward, "top <things> <orders> on where col order group c"},
		{"reverse", ReverseDependency, "c col order where group top on <orders> <things>"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := &recorder{}
			r.Base = NewBase(r, WithOrder(tc.order))
			_, err := Run(r, proj)
			testutil.AssertNoError(t, err)
			testutil.AssertEqual(t, strings.Join(r.seen, " "), tc.want)
		})
	}
}

func TestRunRecoversFailures(t *testing.T) {
	t.Parallel()
	f := newFixture()
	want := nodes.Violation(nodes.KindColumn, f.things.Alias, "boom")

	r := &failer{err: want}
	r.Base = NewBase(r)
	out, err := Run(r, f.query())

	if out != nil {
		t.Errorf("expected no result, got %T", out)
	}
	if err != error(want) {
		t.Errorf("expected the failure error, got %v", err)
	}
}

type failer struct {
	*Base
	err error
}

func (r *failer) VisitColumn(n *nodes.ColumnNode) nodes.Expression {
	Fail(r.err)
	return n
}

type panicker struct{ *Base }

func (r *panicker) VisitConstant(n *nodes.ConstantNode) nodes.Expression {
	panic("not a failure")
}

func TestRunPropagatesOtherPanics(t *testing.T) {
	t.Parallel()
	r := &panicker{}
	r.Base = NewBase(r)

	defer func() {
		if rec := recover(); rec != "not a failure" {
			t.Errorf("expected the original panic, got %v", rec)
		}
	}()
	_, _ = Run(r, nodes.Constant(1))
	t.Error("expected a panic")
}

// foreign is an expression kind the traversal does not know.
type foreign struct{}

func (foreign) Kind() nodes.NodeKind          { return nodes.KindRecord }
func (foreign) Accept(v nodes.Visitor) string { return "" }

func TestUnknownNodeIsUnsupported(t *testing.T) {
	t.Parallel()
	_, err := Run(newIdentity(), nodes.Eq(foreign{}, 1))
	testutil.AssertErrorIs(t, err, nodes.ErrUnsupportedShape)
}

// tableEraser turns tables into constants, which is not a valid source.
type tableEraser struct{ *Base }

func (r *tableEraser) VisitTable(n *nodes.TableNode) nodes.Expression {
	return nodes.Constant(n.Name)
}

func TestSourceMustStayASource(t *testing.T) {
	t.Parallel()
	f := newFixture()
	r := &tableEraser{}
	r.Base = NewBase(r)

	_, err := Run(r, &nodes.SelectNode{Alias: f.gen.Next("q"), From: f.things})
	var v *nodes.InvariantViolation
	if !errors.As(err, &v) {
		t.Fatalf("expected an invariant violation, got %v", err)
	}
	testutil.AssertEqual(t, v.Kind, nodes.KindTable)
}
