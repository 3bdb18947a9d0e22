package managers

import (
	"github.com/bawdo/relq/nodes"
	"github.com/bawdo/relq/optimizer"
	"github.com/bawdo/relq/visitors"
)

// UpdateManager provides a fluent API for building UPDATE commands.
type UpdateManager struct {
	treeManager
	Statement *nodes.UpdateNode
}

// NewUpdateManager creates a new UpdateManager targeting the given table.
func NewUpdateManager(table *nodes.TableNode) *UpdateManager {
	return &UpdateManager{
		Statement: &nodes.UpdateNode{Table: table},
	}
}

// Set adds a column assignment to the SET clause.
// val can be a raw Go value or an Expression.
func (m *UpdateManager) Set(column string, val any) *UpdateManager {
	m.Statement.Assignments = append(m.Statement.Assignments, nodes.ColumnAssignment{
		Column: column,
		Expr:   nodes.Constant(val),
	})
	return m
}

// From sets the row source the assignments and conditions may read.
func (m *UpdateManager) From(source nodes.Source) *UpdateManager {
	m.Statement.Source = source
	return m
}

// Where appends conditions to the WHERE clause, combined with AND.
func (m *UpdateManager) Where(conditions ...nodes.Expression) *UpdateManager {
	m.Statement.Where = nodes.And(append([]nodes.Expression{m.Statement.Where}, conditions...)...)
	return m
}

// Use registers optimizer passes, replacing the default pipeline.
func (m *UpdateManager) Use(passes ...optimizer.Pass) *UpdateManager {
	m.addPasses(passes)
	return m
}

// Build returns a copy of the draft command.
func (m *UpdateManager) Build() *nodes.UpdateNode {
	assignments := make([]nodes.ColumnAssignment, len(m.Statement.Assignments))
	copy(assignments, m.Statement.Assignments)

	return &nodes.UpdateNode{
		Table:       m.Statement.Table,
		Source:      m.Statement.Source,
		Where:       m.Statement.Where,
		Assignments: assignments,
	}
}

// Optimize builds the command and runs the registered pipeline over it.
func (m *UpdateManager) Optimize() (nodes.Expression, error) {
	return m.optimize(func() nodes.Expression { return m.Build() })
}

// ToSQL optimizes the command and generates SQL with parameters.
func (m *UpdateManager) ToSQL(e visitors.Emitter) (string, []any, error) {
	return m.toSQL(e, func() nodes.Expression { return m.Build() })
}
