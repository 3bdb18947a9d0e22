package managers

import (
	"github.com/bawdo/relq/nodes"
	"github.com/bawdo/relq/optimizer"
	"github.com/bawdo/relq/visitors"
)

// QueryManager builds the root of a query: a select plus the projector
// that turns each of its rows into a result value.
type QueryManager struct {
	treeManager
	source    *SelectManager
	projector nodes.Expression
	unique    nodes.UniqueFunction
}

// NewQueryManager creates a QueryManager over source.
func NewQueryManager(source *SelectManager, projector nodes.Expression) *QueryManager {
	return source.Project(projector)
}

// Unique marks the query as returning one element.
func (m *QueryManager) Unique(u nodes.UniqueFunction) *QueryManager {
	m.unique = u
	return m
}

// Use registers optimizer passes, replacing the default pipeline.
func (m *QueryManager) Use(passes ...optimizer.Pass) *QueryManager {
	m.addPasses(passes)
	return m
}

// Configure adds optimizer options such as a logger or validation.
func (m *QueryManager) Configure(opts ...optimizer.Option) *QueryManager {
	m.opts = append(m.opts, opts...)
	return m
}

// Build returns the projection over a fresh copy of the source select.
func (m *QueryManager) Build() *nodes.ProjectionNode {
	return &nodes.ProjectionNode{
		Source:    m.source.Build(),
		Projector: m.projector,
		Unique:    m.unique,
	}
}

// Optimize builds the projection and runs the registered pipeline over it.
func (m *QueryManager) Optimize() (nodes.Expression, error) {
	return m.optimize(func() nodes.Expression { return m.Build() })
}

// Run optimizes the projection and returns the pipeline report.
func (m *QueryManager) Run() (*optimizer.Report, error) {
	return m.optimizer().Run(m.Build())
}

// ToSQL optimizes the projection and generates the SQL of its row source.
func (m *QueryManager) ToSQL(e visitors.Emitter) (string, []any, error) {
	return m.toSQL(e, func() nodes.Expression { return m.Build() })
}
