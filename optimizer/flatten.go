package optimizer

import (
	"github.com/bawdo/relq/nodes"
	"github.com/bawdo/relq/rewrite"
)

// SubqueryFlattener merges a select into the select it is the FROM source
// of, when the inner select only filters and re-projects its own source:
//
//	SELECT s.a FROM (SELECT t.x AS a FROM t WHERE p) AS s WHERE q
//	=> SELECT t.x AS a FROM t WHERE p AND q'
//
// The outer select keeps its alias, so nothing above it changes. The inner
// select must have no DISTINCT, TOP, GROUP BY or ORDER BY, and its columns
// no aggregates, window ordinals or subqueries.
type SubqueryFlattener struct{}

func (SubqueryFlattener) Name() string { return "flatten" }

func (SubqueryFlattener) Apply(e nodes.Expression) (nodes.Expression, error) {
	f := &flattener{}
	f.Base = rewrite.NewBase(f)
	return rewrite.Run(f, e)
}

type flattener struct {
	*rewrite.Base
}

func (f *flattener) VisitSelect(n *nodes.SelectNode) nodes.Expression {
	out := f.Base.VisitSelect(n).(*nodes.SelectNode)
	for {
		inner, ok := out.From.(*nodes.SelectNode)
		if !ok || !mergeable(inner) {
			return out
		}
		out = merge(out, inner)
	}
}

func mergeable(s *nodes.SelectNode) bool {
	if s.Distinct || s.Top != nil || len(s.GroupBy) > 0 || len(s.OrderBy) > 0 {
		return false
	}
	for _, c := range s.Columns {
		if rewrite.ContainsKind(c.Expr,
			nodes.KindAggregate, nodes.KindRowNumber,
			nodes.KindScalar, nodes.KindExists, nodes.KindIn, nodes.KindAll, nodes.KindAny) {
			return false
		}
	}
	return true
}

func merge(outer, inner *nodes.SelectNode) *nodes.SelectNode {
	s := &substituter{inner: inner}
	s.Base = rewrite.NewBase(s)

	columns, _ := s.VisitColumns(outer.Columns)
	orderBy, _ := s.VisitOrderBy(outer.OrderBy)
	groupBy, _ := s.VisitExpressions(outer.GroupBy)
	return &nodes.SelectNode{
		Alias:    outer.Alias,
		Distinct: outer.Distinct,
		Top:      s.Visit(outer.Top),
		Columns:  columns,
		From:     inner.From,
		Where:    nodes.And(inner.Where, s.Visit(outer.Where)),
		OrderBy:  orderBy,
		GroupBy:  groupBy,
	}
}

// substituter replaces references to the inner select's columns with the
// expressions it declares for them.
type substituter struct {
	*rewrite.Base
	inner *nodes.SelectNode
}

func (s *substituter) VisitColumn(n *nodes.ColumnNode) nodes.Expression {
	if n.Alias != s.inner.Alias {
		return n
	}
	decl, ok := s.inner.Column(n.Name)
	if !ok {
		rewrite.Fail(nodes.Violation(nodes.KindSelect, s.inner.Alias, "reference to undeclared column %q", n.Name))
	}
	return decl.Expr
}
