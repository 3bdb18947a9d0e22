// Package relq builds, optimizes and renders relational IR trees.
//
// This package re-exports commonly used types and functions from subpackages
// for convenience. Advanced users can import subpackages directly:
//   - github.com/bawdo/relq/nodes (IR nodes and aliases)
//   - github.com/bawdo/relq/managers (fluent tree builders)
//   - github.com/bawdo/relq/optimizer (passes and the pipeline driver)
//   - github.com/bawdo/relq/visitors (SQL and DOT rendering)
//   - github.com/bawdo/relq/irdoc (YAML IR documents)
package relq

import (
	"github.com/bawdo/relq/irdoc"
	"github.com/bawdo/relq/managers"
	"github.com/bawdo/relq/nodes"
	"github.com/bawdo/relq/optimizer"
	"github.com/bawdo/relq/visitors"
)

// --- Core Node Types ---

// Expression is implemented by every IR node.
type Expression = nodes.Expression

// Alias names one row-source instance within a query.
type Alias = nodes.Alias

// AliasGenerator issues the aliases of one query.
type AliasGenerator = nodes.AliasGenerator

// NewAliasGenerator creates a generator for a new query.
func NewAliasGenerator() *nodes.AliasGenerator {
	return nodes.NewAliasGenerator()
}

// Constant creates a literal value node.
func Constant(value any) nodes.Expression {
	return nodes.Constant(value)
}

// --- Manager Types ---

// SelectManager provides a fluent API for building selects.
type SelectManager = managers.SelectManager

// QueryManager provides a fluent API for building projections.
type QueryManager = managers.QueryManager

// UpdateManager provides a fluent API for building updates.
type UpdateManager = managers.UpdateManager

// DeleteManager provides a fluent API for building deletes.
type DeleteManager = managers.DeleteManager

// --- Manager Constructors ---

// NewSelect creates a SelectManager for a select named alias over from.
func NewSelect(alias nodes.Alias, from nodes.Source) *managers.SelectManager {
	return managers.NewSelectManager(alias, from)
}

// NewUpdate creates an UpdateManager for the given table.
func NewUpdate(table *nodes.TableNode) *managers.UpdateManager {
	return managers.NewUpdateManager(table)
}

// NewDelete creates a DeleteManager for the given table.
func NewDelete(table *nodes.TableNode) *managers.DeleteManager {
	return managers.NewDeleteManager(table)
}

// --- Optimizer ---

// Report describes one pipeline run.
type Report = optimizer.Report

// Optimize runs the default pipeline over e.
func Optimize(e nodes.Expression) (nodes.Expression, error) {
	return optimizer.Optimize(e)
}

// Validate checks the structural invariants of a tree.
func Validate(e nodes.Expression) error {
	return optimizer.Validate(e)
}

// --- Documents ---

// ReadDocument decodes the IR document stored at path.
func ReadDocument(path string) (*irdoc.Document, error) {
	return irdoc.ReadFile(path)
}

// ParseDocument decodes an IR document.
func ParseDocument(data []byte) (*irdoc.Document, error) {
	return irdoc.Parse(data)
}

// --- Visitor Constructors ---

// NewSQLiteVisitor creates a new SQLite visitor.
func NewSQLiteVisitor(opts ...visitors.Option) *visitors.SQLiteVisitor {
	return visitors.NewSQLiteVisitor(opts...)
}

// NewPostgresVisitor creates a new PostgreSQL visitor.
func NewPostgresVisitor(opts ...visitors.Option) *visitors.PostgresVisitor {
	return visitors.NewPostgresVisitor(opts...)
}

// NewMySQLVisitor creates a new MySQL visitor.
func NewMySQLVisitor(opts ...visitors.Option) *visitors.MySQLVisitor {
	return visitors.NewMySQLVisitor(opts...)
}

// ForDialect returns the emitter for a dialect name.
func ForDialect(name string, opts ...visitors.Option) (visitors.Emitter, error) {
	return visitors.ForDialect(name, opts...)
}

// --- Visitor Options ---

// WithParams enables parameterised output. It is the default.
func WithParams() visitors.Option {
	return visitors.WithParams()
}

// WithoutParams inlines literals. The output is meant for display; only
// parameterised statements should be sent to a database.
func WithoutParams() visitors.Option {
	return visitors.WithoutParams()
}
