package optimizer

import (
	"github.com/bawdo/relq/nodes"
	"github.com/bawdo/relq/rewrite"
)

// Validate checks the structural invariants of a bound tree and returns
// the first *nodes.InvariantViolation found:
//
//   - every column reference resolves to an alias in scope
//   - a reference to a select alias names one of its declared columns
//   - no alias is introduced twice
//   - column names are unique within a select
//   - scalar and IN subqueries declare exactly one column
func Validate(e nodes.Expression) error {
	v := &validator{
		defined: make(map[nodes.Alias]bool),
		selects: make(map[nodes.Alias]*nodes.SelectNode),
	}
	v.Base = rewrite.NewBase(v)
	_, err := rewrite.Run(v, e)
	return err
}

type validator struct {
	*rewrite.Base
	scopes  [][]nodes.Alias
	defined map[nodes.Alias]bool
	selects map[nodes.Alias]*nodes.SelectNode
}

func (v *validator) push(aliases []nodes.Alias) { v.scopes = append(v.scopes, aliases) }
func (v *validator) pop()                       { v.scopes = v.scopes[:len(v.scopes)-1] }

func (v *validator) inScope(a nodes.Alias) bool {
	for i := len(v.scopes) - 1; i >= 0; i-- {
		for _, s := range v.scopes[i] {
			if s == a {
				return true
			}
		}
	}
	return false
}

func (v *validator) define(kind nodes.NodeKind, a nodes.Alias) {
	if v.defined[a] {
		rewrite.Fail(nodes.Violation(kind, a, "alias introduced twice"))
	}
	v.defined[a] = true
}

func (v *validator) VisitTable(n *nodes.TableNode) nodes.Expression {
	v.define(nodes.KindTable, n.Alias)
	return n
}

func (v *validator) VisitColumn(n *nodes.ColumnNode) nodes.Expression {
	if !v.inScope(n.Alias) {
		rewrite.Fail(nodes.Violation(nodes.KindColumn, n.Alias, "column %q references an alias not in scope", n.Name))
	}
	if sel, ok := v.selects[n.Alias]; ok {
		if _, declared := sel.Column(n.Name); !declared {
			rewrite.Fail(nodes.Violation(nodes.KindSelect, n.Alias, "column %q is not declared", n.Name))
		}
	}
	return n
}

func (v *validator) VisitSelect(n *nodes.SelectNode) nodes.Expression {
	v.define(nodes.KindSelect, n.Alias)
	names := make(map[string]bool, len(n.Columns))
	for _, c := range n.Columns {
		if names[c.Name] {
			rewrite.Fail(nodes.Violation(nodes.KindSelect, n.Alias, "column %q declared twice", c.Name))
		}
		names[c.Name] = true
	}
	if n.From != nil {
		v.VisitSource(n.From)
		v.push(n.From.KnownAliases())
		defer v.pop()
	}
	v.Visit(n.Top)
	v.Visit(n.Where)
	v.VisitColumns(n.Columns)
	v.VisitOrderBy(n.OrderBy)
	v.VisitExpressions(n.GroupBy)
	v.selects[n.Alias] = n
	return n
}

func (v *validator) VisitJoin(n *nodes.JoinNode) nodes.Expression {
	v.VisitSource(n.Left)
	if n.Type == nodes.CrossApply || n.Type == nodes.OuterApply {
		v.push(n.Left.KnownAliases())
		v.VisitSource(n.Right)
		v.pop()
	} else {
		v.VisitSource(n.Right)
	}
	v.push(n.KnownAliases())
	v.Visit(n.Condition)
	v.pop()
	return n
}

func (v *validator) VisitProjection(n *nodes.ProjectionNode) nodes.Expression {
	if n.Source == nil {
		rewrite.Fail(nodes.Violation(nodes.KindProjection, nodes.NoAlias, "projection without source"))
	}
	v.VisitSelectNode(n.Source)
	v.push(n.Source.KnownAliases())
	v.Visit(n.Projector)
	v.pop()
	return n
}

func (v *validator) VisitSubquery(n *nodes.SubqueryNode) nodes.Expression {
	if n.Select == nil {
		rewrite.Fail(nodes.Violation(n.Kind(), nodes.NoAlias, "subquery without select"))
	}
	if n.SingleColumn() && len(n.Select.Columns) != 1 {
		rewrite.Fail(nodes.Violation(n.Kind(), n.Select.Alias,
			"subquery with %d declared columns, expected 1", len(n.Select.Columns)))
	}
	if (n.Type == nodes.AllSubquery || n.Type == nodes.AnySubquery) && !n.Op.Comparison() {
		rewrite.Fail(nodes.Violation(n.Kind(), n.Select.Alias, "operator %s is not a comparison", n.Op))
	}
	return v.Base.VisitSubquery(n)
}

func (v *validator) VisitUpdate(n *nodes.UpdateNode) nodes.Expression {
	v.dml(n.Table, n.Source, func() {
		v.Visit(n.Where)
		v.VisitAssignments(n.Assignments)
	})
	return n
}

func (v *validator) VisitDelete(n *nodes.DeleteNode) nodes.Expression {
	v.dml(n.Table, n.Source, func() { v.Visit(n.Where) })
	return n
}

func (v *validator) dml(table *nodes.TableNode, source nodes.Source, clauses func()) {
	v.VisitTable(table)
	scope := table.KnownAliases()
	if !nodes.SelfSourced(table, source) {
		v.VisitSource(source)
		scope = append(scope, source.KnownAliases()...)
	}
	v.push(scope)
	defer v.pop()
	clauses()
}
