// Package managers provides fluent APIs for building IR trees and running
// them through the optimizer and an emitter.
package managers

import (
	"github.com/bawdo/relq/nodes"
	"github.com/bawdo/relq/optimizer"
	"github.com/bawdo/relq/visitors"
)

// SelectManager provides a fluent API for building SELECT trees.
// It edits a draft SelectNode; Build hands out an independent copy.
type SelectManager struct {
	treeManager
	Core *nodes.SelectNode
}

// NewSelectManager creates a new SelectManager for a select aliased alias
// reading from from. If from is nil, the FROM clause is left unset.
func NewSelectManager(alias nodes.Alias, from nodes.Source) *SelectManager {
	return &SelectManager{
		Core: &nodes.SelectNode{Alias: alias, From: from},
	}
}

// Column appends a named column declaration.
func (m *SelectManager) Column(name string, expr nodes.Expression) *SelectManager {
	m.Core.Columns = append(m.Core.Columns, nodes.ColumnDeclaration{Name: name, Expr: expr})
	return m
}

// Columns appends a column declaration per column reference, named after
// the referenced column.
func (m *SelectManager) Columns(cols ...*nodes.ColumnNode) *SelectManager {
	for _, c := range cols {
		m.Column(c.Name, c)
	}
	return m
}

// Distinct enables or disables the DISTINCT modifier on the SELECT clause.
func (m *SelectManager) Distinct(on ...bool) *SelectManager {
	m.Core.Distinct = len(on) == 0 || on[0]
	return m
}

// Top sets the row limit. n can be a raw Go value or an Expression.
func (m *SelectManager) Top(n any) *SelectManager {
	m.Core.Top = nodes.Constant(n)
	return m
}

// Where appends one or more conditions to the WHERE clause, combined with
// AND.
func (m *SelectManager) Where(conditions ...nodes.Expression) *SelectManager {
	m.Core.Where = nodes.And(append([]nodes.Expression{m.Core.Where}, conditions...)...)
	return m
}

// From sets or changes the FROM source.
func (m *SelectManager) From(source nodes.Source) *SelectManager {
	m.Core.From = source
	return m
}

func (m *SelectManager) addJoin(source nodes.Source, jt nodes.JoinType) *nodes.JoinNode {
	join := &nodes.JoinNode{
		Type:  jt,
		Left:  m.Core.From,
		Right: source,
	}
	m.Core.From = join
	return join
}

// Join adds a join to the query and returns a JoinContext for specifying
// the ON condition. The default join type is InnerJoin.
func (m *SelectManager) Join(source nodes.Source, joinTypes ...nodes.JoinType) *JoinContext {
	jt := nodes.InnerJoin
	if len(joinTypes) > 0 {
		jt = joinTypes[0]
	}
	return &JoinContext{manager: m, join: m.addJoin(source, jt)}
}

// OuterJoin is a convenience for Join with LeftOuterJoin type.
func (m *SelectManager) OuterJoin(source nodes.Source) *JoinContext {
	return m.Join(source, nodes.LeftOuterJoin)
}

// SingleRowJoin adds a left outer join whose right side yields at most
// one row per left row. The optimizer removes it when nothing reads the
// right side.
func (m *SelectManager) SingleRowJoin(source nodes.Source) *JoinContext {
	return m.Join(source, nodes.SingleRowLeftOuterJoin)
}

// CrossJoin adds a cross join (no ON clause).
func (m *SelectManager) CrossJoin(source nodes.Source) *SelectManager {
	m.addJoin(source, nodes.CrossJoin)
	return m
}

// CrossApply adds a correlated join that drops left rows without matches.
func (m *SelectManager) CrossApply(source nodes.Source) *SelectManager {
	m.addJoin(source, nodes.CrossApply)
	return m
}

// OuterApply adds a correlated join that keeps left rows without matches.
func (m *SelectManager) OuterApply(source nodes.Source) *SelectManager {
	m.addJoin(source, nodes.OuterApply)
	return m
}

// OrderBy appends ORDER BY terms (e.g., table.Col("name").Asc()).
func (m *SelectManager) OrderBy(orderings ...nodes.OrderNode) *SelectManager {
	m.Core.OrderBy = append(m.Core.OrderBy, orderings...)
	return m
}

// GroupBy appends one or more expressions to the GROUP BY clause.
func (m *SelectManager) GroupBy(exprs ...nodes.Expression) *SelectManager {
	m.Core.GroupBy = append(m.Core.GroupBy, exprs...)
	return m
}

// Use registers optimizer passes to run before SQL generation, replacing
// the default pipeline.
func (m *SelectManager) Use(passes ...optimizer.Pass) *SelectManager {
	m.addPasses(passes)
	return m
}

// Configure adds optimizer options such as a logger or validation.
func (m *SelectManager) Configure(opts ...optimizer.Option) *SelectManager {
	m.opts = append(m.opts, opts...)
	return m
}

// Project wraps the select in a QueryManager that shapes each row with
// projector.
func (m *SelectManager) Project(projector nodes.Expression) *QueryManager {
	return &QueryManager{treeManager: m.treeManager, source: m, projector: projector}
}

// Build returns a copy of the draft select so later edits to the manager
// do not reach it.
func (m *SelectManager) Build() *nodes.SelectNode {
	columns := make([]nodes.ColumnDeclaration, len(m.Core.Columns))
	copy(columns, m.Core.Columns)

	orders := make([]nodes.OrderNode, len(m.Core.OrderBy))
	copy(orders, m.Core.OrderBy)

	var groups []nodes.Expression
	if len(m.Core.GroupBy) > 0 {
		groups = make([]nodes.Expression, len(m.Core.GroupBy))
		copy(groups, m.Core.GroupBy)
	}
	if len(orders) == 0 {
		orders = nil
	}

	return &nodes.SelectNode{
		Alias:    m.Core.Alias,
		Distinct: m.Core.Distinct,
		Top:      m.Core.Top,
		Columns:  columns,
		From:     m.Core.From,
		Where:    m.Core.Where,
		OrderBy:  orders,
		GroupBy:  groups,
	}
}

// Optimize builds the select and runs the registered pipeline over it.
func (m *SelectManager) Optimize() (nodes.Expression, error) {
	return m.optimize(func() nodes.Expression { return m.Build() })
}

// ToSQL optimizes the select and generates SQL with parameters.
// Returns SQL string, parameter values (if parameterised), and any error.
func (m *SelectManager) ToSQL(e visitors.Emitter) (string, []any, error) {
	return m.toSQL(e, func() nodes.Expression { return m.Build() })
}
