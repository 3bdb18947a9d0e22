package visitors

import (
	"strings"
	"testing"

	"github.com/bawdo/relq/nodes"
)

func TestDotVisitTable(t *testing.T) {
	f := newFixture()
	dot := Dot(f.users)

	if !strings.HasPrefix(dot, "digraph IR {") {
		t.Error("expected DOT output to start with 'digraph IR'")
	}
	if !strings.Contains(dot, `label="Table\nusers AS u"`) {
		t.Errorf("expected Table node label, got:\n%s", dot)
	}
	if !strings.Contains(dot, `fillcolor="#6CA6CD"`) {
		t.Errorf("expected blue fill for Table, got:\n%s", dot)
	}
}

func TestDotVisitSelect(t *testing.T) {
	f := newFixture()
	sel := f.userSelect("id")
	sel.Where = nodes.Eq(f.users.Col("id"), 1)
	sel.OrderBy = []nodes.OrderNode{f.users.Col("id").Desc()}
	dot := Dot(sel)

	for _, want := range []string{
		`label="Select\nq"`,
		`label="Column\nu.id"`,
		`label="Constant\n1"`,
		`label="Order\nDESC"`,
		`[label="FROM"]`,
		`[label="WHERE"]`,
		`[label="id"]`,
		`[label="ORDER[0]"]`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("expected %s in:\n%s", want, dot)
		}
	}
}

func TestDotVisitJoinAndSubquery(t *testing.T) {
	f := newFixture()
	inner := &nodes.SelectNode{
		Alias:   f.gen.Next("s"),
		Columns: []nodes.ColumnDeclaration{{Name: "user_id", Expr: f.orders.Col("user_id")}},
		From:    f.orders,
	}
	sel := joinSelect(f, nodes.SingleRowLeftOuterJoin, f.orders, nodes.In(f.users.Col("id"), inner))
	dot := Dot(sel)
	for _, want := range []string{`label="Join\nSINGLE ROW LEFT OUTER JOIN"`, `label="In"`, `[label="OPERAND"]`, `[label="ON"]`} {
		if !strings.Contains(dot, want) {
			t.Errorf("expected %s in:\n%s", want, dot)
		}
	}
}

func TestDotMarkShared(t *testing.T) {
	f := newFixture()
	before := f.userSelect("id", "name")
	after := before.With(nil, before.Columns[:1], before.From, nil, nil, nil)

	dv := NewDotVisitor()
	dv.MarkShared(before)
	after.Accept(dv)
	dot := dv.ToDot()

	if !strings.Contains(dot, `label="Table\nusers AS u\n(shared)"`) {
		t.Errorf("expected shared table, got:\n%s", dot)
	}
	if strings.Contains(dot, `label="Select\nq\n(shared)"`) {
		t.Errorf("rebuilt select must not be marked shared:\n%s", dot)
	}
	if !strings.Contains(dot, `style="filled,dashed"`) {
		t.Errorf("expected dashed style, got:\n%s", dot)
	}
}

func TestDotNodeCount(t *testing.T) {
	f := newFixture()
	dv := NewDotVisitor()
	nodes.Eq(f.users.Col("a"), f.users.Col("b")).Accept(dv)
	if dv.NodeCount() != 3 {
		t.Errorf("expected 3 nodes, got %d", dv.NodeCount())
	}
}
