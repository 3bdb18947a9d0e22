package managers

import (
	"github.com/bawdo/relq/nodes"
	"github.com/bawdo/relq/optimizer"
	"github.com/bawdo/relq/visitors"
)

// DeleteManager provides a fluent API for building DELETE commands.
type DeleteManager struct {
	treeManager
	Statement *nodes.DeleteNode
}

// NewDeleteManager creates a new DeleteManager targeting the given table.
func NewDeleteManager(table *nodes.TableNode) *DeleteManager {
	return &DeleteManager{
		Statement: &nodes.DeleteNode{Table: table},
	}
}

// Using sets the row source the conditions may read.
func (m *DeleteManager) Using(source nodes.Source) *DeleteManager {
	m.Statement.Source = source
	return m
}

// Where appends conditions to the WHERE clause, combined with AND.
func (m *DeleteManager) Where(conditions ...nodes.Expression) *DeleteManager {
	m.Statement.Where = nodes.And(append([]nodes.Expression{m.Statement.Where}, conditions...)...)
	return m
}

// Use registers optimizer passes, replacing the default pipeline.
func (m *DeleteManager) Use(passes ...optimizer.Pass) *DeleteManager {
	m.addPasses(passes)
	return m
}

// Build returns a copy of the draft command.
func (m *DeleteManager) Build() *nodes.DeleteNode {
	return &nodes.DeleteNode{
		Table:  m.Statement.Table,
		Source: m.Statement.Source,
		Where:  m.Statement.Where,
	}
}

// Optimize builds the command and runs the registered pipeline over it.
func (m *DeleteManager) Optimize() (nodes.Expression, error) {
	return m.optimize(func() nodes.Expression { return m.Build() })
}

// ToSQL optimizes the command and generates SQL with parameters.
func (m *DeleteManager) ToSQL(e visitors.Emitter) (string, []any, error) {
	return m.toSQL(e, func() nodes.Expression { return m.Build() })
}
