// Package rewrite provides the copy-on-write traversal every optimization
// pass is built on.
//
// Passes embed *Base and override the Visit methods for the node kinds they
// care about. Base visits each child through the outer rewriter and
// rebuilds a node only when a child came back as a different value;
// otherwise the original node is returned.
package rewrite

import (
	"fmt"

	"github.com/bawdo/relq/nodes"
)

// Rewriter is implemented by every pass. Visit dispatches to the kind
// specific method through the outer rewriter, so overrides are respected at
// every depth.
type Rewriter interface {
	Visit(e nodes.Expression) nodes.Expression
	VisitTable(n *nodes.TableNode) nodes.Expression
	VisitColumn(n *nodes.ColumnNode) nodes.Expression
	VisitSelect(n *nodes.SelectNode) nodes.Expression
	VisitJoin(n *nodes.JoinNode) nodes.Expression
	VisitSubquery(n *nodes.SubqueryNode) nodes.Expression
	VisitProjection(n *nodes.ProjectionNode) nodes.Expression
	VisitRowNumber(n *nodes.RowNumberNode) nodes.Expression
	VisitUpdate(n *nodes.UpdateNode) nodes.Expression
	VisitDelete(n *nodes.DeleteNode) nodes.Expression
	VisitConstant(n *nodes.ConstantNode) nodes.Expression
	VisitBinary(n *nodes.BinaryNode) nodes.Expression
	VisitUnary(n *nodes.UnaryNode) nodes.Expression
	VisitFunction(n *nodes.FunctionNode) nodes.Expression
	VisitAggregate(n *nodes.AggregateNode) nodes.Expression
	VisitCase(n *nodes.CaseNode) nodes.Expression
	VisitRecord(n *nodes.RecordNode) nodes.Expression
}

// Option configures a Base at construction time.
type Option func(*Base)

// WithOrder sets the child visit sequences used by the default traversal.
func WithOrder(o Order) Option {
	return func(b *Base) { b.order = o }
}

// Base implements the default traversal for every node kind.
type Base struct {
	// outer is the concrete pass. All recursive visits go through outer so
	// that pass overrides are respected.
	outer Rewriter
	order Order
}

// NewBase creates a Base dispatching through outer, visiting children in
// Forward order unless configured otherwise.
func NewBase(outer Rewriter, opts ...Option) *Base {
	b := &Base{outer: outer, order: Forward}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Order returns the child visit sequences in effect.
func (b *Base) Order() Order { return b.order }

// Visit dispatches e to the kind specific method of the outer rewriter.
// A nil expression visits to nil.
func (b *Base) Visit(e nodes.Expression) nodes.Expression {
	switch n := e.(type) {
	case nil:
		return nil
	case *nodes.TableNode:
		return b.outer.VisitTable(n)
	case *nodes.ColumnNode:
		return b.outer.VisitColumn(n)
	case *nodes.SelectNode:
		return b.outer.VisitSelect(n)
	case *nodes.JoinNode:
		return b.outer.VisitJoin(n)
	case *nodes.SubqueryNode:
		return b.outer.VisitSubquery(n)
	case *nodes.ProjectionNode:
		return b.outer.VisitProjection(n)
	case *nodes.RowNumberNode:
		return b.outer.VisitRowNumber(n)
	case *nodes.UpdateNode:
		return b.outer.VisitUpdate(n)
	case *nodes.DeleteNode:
		return b.outer.VisitDelete(n)
	case *nodes.ConstantNode:
		return b.outer.VisitConstant(n)
	case *nodes.BinaryNode:
		return b.outer.VisitBinary(n)
	case *nodes.UnaryNode:
		return b.outer.VisitUnary(n)
	case *nodes.FunctionNode:
		return b.outer.VisitFunction(n)
	case *nodes.AggregateNode:
		return b.outer.VisitAggregate(n)
	case *nodes.CaseNode:
		return b.outer.VisitCase(n)
	case *nodes.RecordNode:
		return b.outer.VisitRecord(n)
	default:
		Fail(&nodes.UnsupportedShape{Kind: e.Kind(), Reason: fmt.Sprintf("no traversal for %T", e)})
		return nil
	}
}

// VisitSource visits a FROM source and checks the result is still one.
func (b *Base) VisitSource(s nodes.Source) nodes.Source {
	if s == nil {
		return nil
	}
	out := b.outer.Visit(s)
	src, ok := out.(nodes.Source)
	if !ok {
		Fail(nodes.Violation(s.Kind(), nodes.NoAlias, "source rewritten to non-source %T", out))
	}
	return src
}

// VisitSelectNode visits a select and checks the result is still a select.
func (b *Base) VisitSelectNode(s *nodes.SelectNode) *nodes.SelectNode {
	if s == nil {
		return nil
	}
	out := b.outer.Visit(s)
	sel, ok := out.(*nodes.SelectNode)
	if !ok {
		Fail(nodes.Violation(nodes.KindSelect, s.Alias, "select rewritten to %T", out))
	}
	return sel
}

// VisitExpressions visits each element, reporting whether any changed.
func (b *Base) VisitExpressions(list []nodes.Expression) ([]nodes.Expression, bool) {
	return List(list, func(e nodes.Expression) (nodes.Expression, Edit) {
		return Compare(e, b.outer.Visit(e))
	})
}

// VisitOrderBy visits the expression of each ordering term.
func (b *Base) VisitOrderBy(list []nodes.OrderNode) ([]nodes.OrderNode, bool) {
	return List(list, func(o nodes.OrderNode) (nodes.OrderNode, Edit) {
		return b.VisitOrder(o)
	})
}

// VisitOrder visits one ordering term.
func (b *Base) VisitOrder(o nodes.OrderNode) (nodes.OrderNode, Edit) {
	e := b.outer.Visit(o.Expr)
	if e == o.Expr {
		return o, Unchanged
	}
	return nodes.OrderNode{Direction: o.Direction, Expr: e}, Replaced
}

// VisitColumns visits the expression of each column declaration.
func (b *Base) VisitColumns(list []nodes.ColumnDeclaration) ([]nodes.ColumnDeclaration, bool) {
	return List(list, func(c nodes.ColumnDeclaration) (nodes.ColumnDeclaration, Edit) {
		return b.VisitColumnDeclaration(c)
	})
}

// VisitColumnDeclaration visits one column declaration.
func (b *Base) VisitColumnDeclaration(c nodes.ColumnDeclaration) (nodes.ColumnDeclaration, Edit) {
	e := b.outer.Visit(c.Expr)
	if e == c.Expr {
		return c, Unchanged
	}
	return nodes.ColumnDeclaration{Name: c.Name, Expr: e}, Replaced
}

// VisitAssignments visits the value of each column assignment.
func (b *Base) VisitAssignments(list []nodes.ColumnAssignment) ([]nodes.ColumnAssignment, bool) {
	return List(list, func(a nodes.ColumnAssignment) (nodes.ColumnAssignment, Edit) {
		e := b.outer.Visit(a.Expr)
		if e == a.Expr {
			return a, Unchanged
		}
		return nodes.ColumnAssignment{Column: a.Column, Expr: e}, Replaced
	})
}

func (b *Base) VisitTable(n *nodes.TableNode) nodes.Expression       { return n }
func (b *Base) VisitColumn(n *nodes.ColumnNode) nodes.Expression     { return n }
func (b *Base) VisitConstant(n *nodes.ConstantNode) nodes.Expression { return n }

// VisitSelect visits the parts of a select in the configured sequence.
func (b *Base) VisitSelect(n *nodes.SelectNode) nodes.Expression {
	top, columns, from, where := n.Top, n.Columns, n.From, n.Where
	orderBy, groupBy := n.OrderBy, n.GroupBy
	changed := false
	for _, part := range b.order.Select {
		var c bool
		switch part {
		case SelectTop:
			top = b.outer.Visit(n.Top)
			c = top != n.Top
		case SelectColumns:
			columns, c = b.VisitColumns(n.Columns)
		case SelectFrom:
			from = b.VisitSource(n.From)
			c = from != n.From
		case SelectWhere:
			where = b.outer.Visit(n.Where)
			c = where != n.Where
		case SelectOrderBy:
			orderBy, c = b.VisitOrderBy(n.OrderBy)
		case SelectGroupBy:
			groupBy, c = b.VisitExpressions(n.GroupBy)
		}
		changed = changed || c
	}
	if !changed {
		return n
	}
	return n.With(top, columns, from, where, orderBy, groupBy)
}

// VisitJoin visits left, right and condition in the configured sequence.
func (b *Base) VisitJoin(n *nodes.JoinNode) nodes.Expression {
	left, right, cond := n.Left, n.Right, n.Condition
	for _, part := range b.order.Join {
		switch part {
		case JoinLeft:
			left = b.VisitSource(n.Left)
		case JoinRight:
			right = b.VisitSource(n.Right)
		case JoinCondition:
			cond = b.outer.Visit(n.Condition)
		}
	}
	if left == n.Left && right == n.Right && cond == n.Condition {
		return n
	}
	return &nodes.JoinNode{Type: n.Type, Left: left, Right: right, Condition: cond}
}

// VisitProjection visits projector and source in the configured sequence.
func (b *Base) VisitProjection(n *nodes.ProjectionNode) nodes.Expression {
	source, projector := n.Source, n.Projector
	for _, part := range b.order.Projection {
		switch part {
		case ProjectionSource:
			source = b.VisitSelectNode(n.Source)
		case ProjectionProjector:
			projector = b.outer.Visit(n.Projector)
		}
	}
	if source == n.Source && projector == n.Projector {
		return n
	}
	return &nodes.ProjectionNode{Source: source, Projector: projector, Unique: n.Unique}
}

func (b *Base) VisitSubquery(n *nodes.SubqueryNode) nodes.Expression {
	operand := b.outer.Visit(n.Operand)
	sel := b.VisitSelectNode(n.Select)
	if operand == n.Operand && sel == n.Select {
		return n
	}
	return &nodes.SubqueryNode{Type: n.Type, Select: sel, Operand: operand, Op: n.Op}
}

func (b *Base) VisitRowNumber(n *nodes.RowNumberNode) nodes.Expression {
	orderBy, changed := b.VisitOrderBy(n.OrderBy)
	if !changed {
		return n
	}
	return &nodes.RowNumberNode{OrderBy: orderBy}
}

// VisitUpdate visits where, assignments and source; the target table is
// left alone.
func (b *Base) VisitUpdate(n *nodes.UpdateNode) nodes.Expression {
	where := b.outer.Visit(n.Where)
	assignments, changed := b.VisitAssignments(n.Assignments)
	source := b.VisitSource(n.Source)
	if source == n.Source && where == n.Where && !changed {
		return n
	}
	return &nodes.UpdateNode{Table: n.Table, Source: source, Where: where, Assignments: assignments}
}

// VisitDelete visits where and source; the target table is left alone.
func (b *Base) VisitDelete(n *nodes.DeleteNode) nodes.Expression {
	where := b.outer.Visit(n.Where)
	source := b.VisitSource(n.Source)
	if source == n.Source && where == n.Where {
		return n
	}
	return &nodes.DeleteNode{Table: n.Table, Source: source, Where: where}
}

func (b *Base) VisitBinary(n *nodes.BinaryNode) nodes.Expression {
	left := b.outer.Visit(n.Left)
	right := b.outer.Visit(n.Right)
	if left == n.Left && right == n.Right {
		return n
	}
	return &nodes.BinaryNode{Op: n.Op, Left: left, Right: right}
}

func (b *Base) VisitUnary(n *nodes.UnaryNode) nodes.Expression {
	e := b.outer.Visit(n.Expr)
	if e == n.Expr {
		return n
	}
	return &nodes.UnaryNode{Op: n.Op, Expr: e}
}

func (b *Base) VisitFunction(n *nodes.FunctionNode) nodes.Expression {
	args, changed := b.VisitExpressions(n.Args)
	if !changed {
		return n
	}
	return &nodes.FunctionNode{Name: n.Name, Args: args}
}

func (b *Base) VisitAggregate(n *nodes.AggregateNode) nodes.Expression {
	e := b.outer.Visit(n.Expr)
	if e == n.Expr {
		return n
	}
	return &nodes.AggregateNode{Func: n.Func, Distinct: n.Distinct, Expr: e}
}

func (b *Base) VisitCase(n *nodes.CaseNode) nodes.Expression {
	whens, changed := List(n.Whens, func(w nodes.When) (nodes.When, Edit) {
		cond := b.outer.Visit(w.Condition)
		res := b.outer.Visit(w.Result)
		if cond == w.Condition && res == w.Result {
			return w, Unchanged
		}
		return nodes.When{Condition: cond, Result: res}, Replaced
	})
	elseVal := b.outer.Visit(n.Else)
	if !changed && elseVal == n.Else {
		return n
	}
	return &nodes.CaseNode{Whens: whens, Else: elseVal}
}

func (b *Base) VisitRecord(n *nodes.RecordNode) nodes.Expression {
	fields, changed := List(n.Fields, func(f nodes.FieldBinding) (nodes.FieldBinding, Edit) {
		e := b.outer.Visit(f.Expr)
		if e == f.Expr {
			return f, Unchanged
		}
		return nodes.FieldBinding{Name: f.Name, Expr: e}, Replaced
	})
	if !changed {
		return n
	}
	return &nodes.RecordNode{TypeName: n.TypeName, Fields: fields}
}
