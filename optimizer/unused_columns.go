package optimizer

import (
	"github.com/bawdo/relq/internal/usage"
	"github.com/bawdo/relq/nodes"
	"github.com/bawdo/relq/rewrite"
)

// UnusedColumns removes select columns, constant grouping keys and
// constant window ordering terms that no consumer reads, and collapses
// single-row outer joins whose right side nothing reads.
//
// Liveness flows from consumers to producers, so the traversal runs in
// rewrite.ReverseDependency order.
type UnusedColumns struct{}

func (UnusedColumns) Name() string { return "unused_columns" }

// Apply prunes e. A select at the root is read in full by the caller, so
// its own columns are all live.
func (UnusedColumns) Apply(e nodes.Expression) (nodes.Expression, error) {
	r := newColumnRemover()
	if sel, ok := e.(*nodes.SelectNode); ok {
		for _, c := range sel.Columns {
			r.used.RecordUse(sel.Alias, c.Name)
		}
	}
	return rewrite.Run(r, e)
}

type columnRemover struct {
	*rewrite.Base
	used *usage.Tracker
}

func newColumnRemover() *columnRemover {
	r := &columnRemover{used: usage.New()}
	r.Base = rewrite.NewBase(r, rewrite.WithOrder(rewrite.ReverseDependency))
	return r
}

func (r *columnRemover) VisitColumn(n *nodes.ColumnNode) nodes.Expression {
	r.used.RecordUse(n.Alias, n.Name)
	return n
}

func (r *columnRemover) VisitSelect(n *nodes.SelectNode) nodes.Expression {
	// consumers of this select have already been visited
	used := r.used.Touch(n.Alias)

	columns, columnsChanged := rewrite.List(n.Columns, func(c nodes.ColumnDeclaration) (nodes.ColumnDeclaration, rewrite.Edit) {
		// DISTINCT keeps every non-constant column: dropping one would
		// change which rows count as duplicates.
		if n.Distinct {
			if nodes.IsConstant(c.Expr) {
				return c, rewrite.Dropped
			}
		} else if !used.Has(c.Name) {
			return c, rewrite.Dropped
		}
		return r.VisitColumnDeclaration(c)
	})

	orderBy, orderChanged := r.VisitOrderBy(n.OrderBy)
	where := r.Visit(n.Where)
	groupBy, groupChanged := rewrite.List(n.GroupBy, func(e nodes.Expression) (nodes.Expression, rewrite.Edit) {
		if nodes.IsConstant(e) {
			return e, rewrite.Dropped
		}
		return rewrite.Compare(e, r.Visit(e))
	})
	top := r.Visit(n.Top)

	from := r.VisitSource(n.From)

	if columnsChanged || orderChanged || groupChanged || where != n.Where || top != n.Top || from != n.From {
		return n.With(top, columns, from, where, orderBy, groupBy)
	}
	return n
}

func (r *columnRemover) VisitSubquery(n *nodes.SubqueryNode) nodes.Expression {
	if n.SingleColumn() && n.Select != nil {
		if len(n.Select.Columns) != 1 {
			rewrite.Fail(nodes.Violation(n.Kind(), n.Select.Alias,
				"subquery with %d declared columns, expected 1", len(n.Select.Columns)))
		}
		// the enclosing expression reads the single column whatever its name
		r.used.RecordUse(n.Select.Alias, n.Select.Columns[0].Name)
	}
	return r.Base.VisitSubquery(n)
}

func (r *columnRemover) VisitJoin(n *nodes.JoinNode) nodes.Expression {
	if n.Type == nodes.SingleRowLeftOuterJoin {
		alias, ok := singleAlias(n.Right)
		if !ok {
			rewrite.Fail(nodes.Violation(nodes.KindJoin, nodes.NoAlias,
				"single row outer join over %s, expected a table or select", n.Right.Kind()))
		}
		if len(r.used.UsedColumns(alias)) == 0 {
			return r.Visit(n.Left)
		}
	}
	return r.Base.VisitJoin(n)
}

func (r *columnRemover) VisitRowNumber(n *nodes.RowNumberNode) nodes.Expression {
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

// singleAlias returns the alias of a table or select source.
func singleAlias(s nodes.Source) (nodes.Alias, bool) {
	switch src := s.(type) {
	case *nodes.TableNode:
		return src.Alias, true
	case *nodes.SelectNode:
		return src.Alias, true
	default:
		return nodes.NoAlias, false
	}
}
