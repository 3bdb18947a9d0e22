package optimizer

import (
	"testing"

	"github.com/bawdo/relq/nodes"
)

// BenchmarkOptimize benchmarks the default pipeline over a projection with
// an ordered, over-wide source and a correlated subquery.
func BenchmarkOptimize(b *testing.B) {
	w := newWorld()
	proj := prunable(w)
	inner := proj.Source.From.(*nodes.SelectNode)
	spent := &nodes.SelectNode{
		Alias:   w.gen.Next("c"),
		Columns: []nodes.ColumnDeclaration{{Name: "total", Expr: nodes.Sum(w.orders.Col("total"))}},
		From:    w.orders,
		Where:   nodes.Eq(w.orders.Col("thing_id"), inner.Col("id")),
	}
	proj.Source.Columns = append(proj.Source.Columns, nodes.ColumnDeclaration{Name: "spent", Expr: nodes.Scalar(spent)})
	o := New()

	b.ResetTimer()
	for b.Loop() {
		_, _ = o.Optimize(proj)
	}
}

// BenchmarkUnchanged benchmarks a run where no pass finds work.
func BenchmarkUnchanged(b *testing.B) {
	w := newWorld()
	sel := &nodes.SelectNode{
		Alias:   w.gen.Next("q"),
		Columns: decls(w.things.Col("id"), w.things.Col("name")),
		From:    w.things,
		Where:   nodes.Gt(w.things.Col("price"), 10),
	}
	o := New()

	b.ResetTimer()
	for b.Loop() {
		_, _ = o.Optimize(sel)
	}
}
