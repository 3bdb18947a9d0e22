package optimizer

import (
	"github.com/bawdo/relq/nodes"
	"github.com/bawdo/relq/rewrite"
)

// RedundantOrdering removes ORDER BY terms that cannot affect a result:
// constants, repeated column terms, and the whole ORDER BY of a select
// whose row order nobody observes (a FROM source, a join branch, a
// subquery or a DML source) unless it also has TOP.
//
// Window orderings keep every non-constant term.
type RedundantOrdering struct{}

func (RedundantOrdering) Name() string { return "redundant_ordering" }

func (RedundantOrdering) Apply(e nodes.Expression) (nodes.Expression, error) {
	r := &orderingRemover{observable: true}
	r.Base = rewrite.NewBase(r)
	return rewrite.Run(r, e)
}

type orderingRemover struct {
	*rewrite.Base
	// observable is true while visiting a select whose row order reaches
	// the caller.
	observable bool
}

// within visits fn with observable set to on, restoring it afterwards.
func (r *orderingRemover) within(on bool, fn func()) {
	saved := r.observable
	r.observable = on
	defer func() { r.observable = saved }()
	fn()
}

func (r *orderingRemover) VisitSelect(n *nodes.SelectNode) nodes.Expression {
	keep := r.observable || n.Top != nil

	var top, where nodes.Expression
	var columns []nodes.ColumnDeclaration
	var from nodes.Source
	var groupBy []nodes.Expression
	var orderBy []nodes.OrderNode
	var columnsChanged, groupChanged, orderChanged bool

	r.within(false, func() {
		top = r.Visit(n.Top)
		from = r.VisitSource(n.From)
		where = r.Visit(n.Where)
		columns, columnsChanged = r.VisitColumns(n.Columns)
		groupBy, groupChanged = r.VisitExpressions(n.GroupBy)

		seen := make(map[columnKey]bool)
		orderBy, orderChanged = rewrite.List(n.OrderBy, func(o nodes.OrderNode) (nodes.OrderNode, rewrite.Edit) {
			if !keep || nodes.IsConstant(o.Expr) {
				return o, rewrite.Dropped
			}
			if c, ok := o.Expr.(*nodes.ColumnNode); ok {
				key := columnKey{alias: c.Alias, name: c.Name}
				if seen[key] {
					return o, rewrite.Dropped
				}
				seen[key] = true
			}
			return r.VisitOrder(o)
		})
	})

	if columnsChanged || groupChanged || orderChanged || top != n.Top || from != n.From || where != n.Where {
		return n.With(top, columns, from, where, orderBy, groupBy)
	}
	return n
}

func (r *orderingRemover) VisitProjection(n *nodes.ProjectionNode) nodes.Expression {
	var out nodes.Expression
	r.within(true, func() { out = r.Base.VisitProjection(n) })
	return out
}

func (r *orderingRemover) VisitRowNumber(n *nodes.RowNumberNode) nodes.Expression {
	orderBy, changed := rewrite.List(n.OrderBy, func(o nodes.OrderNode) (nodes.OrderNode, rewrite.Edit) {
		if nodes.IsConstant(o.Expr) {
			return o, rewrite.Dropped
		}
		return r.VisitOrder(o)
	})
	if !changed {
		return n
	}
	return &nodes.RowNumberNode{OrderBy: orderBy}
}

func (r *orderingRemover) VisitUpdate(n *nodes.UpdateNode) nodes.Expression {
	var out nodes.Expression
	r.within(false, func() { out = r.Base.VisitUpdate(n) })
	return out
}

func (r *orderingRemover) VisitDelete(n *nodes.DeleteNode) nodes.Expression {
	var out nodes.Expression
	r.within(false, func() { out = r.Base.VisitDelete(n) })
	return out
}

type columnKey struct {
	alias nodes.Alias
	name  string
}
