// Package nodes defines the relational IR: the closed set of immutable
// expression and command nodes produced by a binder, rewritten by the
// optimizer and handed to a dialect emitter.
//
// Nodes are never mutated after construction. A rewrite either returns the
// original pointer (nothing changed) or a freshly built node that may share
// unchanged children with the original.
package nodes

// NodeKind discriminates IR node kinds.
type NodeKind int

const (
	KindTable NodeKind = iota
	KindColumn
	KindSelect
	KindJoin
	KindScalar
	KindExists
	KindIn
	KindAll
	KindAny
	KindProjection
	KindRowNumber
	KindUpdate
	KindDelete
	KindConstant
	KindBinary
	KindUnary
	KindFunction
	KindAggregate
	KindCase
	KindRecord
)

var kindNames = [...]string{
	KindTable:      "Table",
	KindColumn:     "Column",
	KindSelect:     "Select",
	KindJoin:       "Join",
	KindScalar:     "Scalar",
	KindExists:     "Exists",
	KindIn:         "In",
	KindAll:        "All",
	KindAny:        "Any",
	KindProjection: "Projection",
	KindRowNumber:  "RowNumber",
	KindUpdate:     "Update",
	KindDelete:     "Delete",
	KindConstant:   "Constant",
	KindBinary:     "Binary",
	KindUnary:      "Unary",
	KindFunction:   "Function",
	KindAggregate:  "Aggregate",
	KindCase:       "Case",
	KindRecord:     "Record",
}

// String returns the display name for this kind.
func (k NodeKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Expression is implemented by every IR node.
type Expression interface {
	Kind() NodeKind
	Accept(visitor Visitor) string
}

// Source is an Expression usable as a FROM-clause source: a table, a
// select or a join.
type Source interface {
	Expression
	// KnownAliases lists every alias the source brings into scope.
	KnownAliases() []Alias
}

// Visitor walks the IR and produces output. Dialect emitters and the DOT
// visitor implement it; rewriting passes use the rewrite package instead.
type Visitor interface {
	VisitTable(node *TableNode) string
	VisitColumn(node *ColumnNode) string
	VisitSelect(node *SelectNode) string
	VisitJoin(node *JoinNode) string
	VisitSubquery(node *SubqueryNode) string
	VisitProjection(node *ProjectionNode) string
	VisitRowNumber(node *RowNumberNode) string
	VisitUpdate(node *UpdateNode) string
	VisitDelete(node *DeleteNode) string
	VisitConstant(node *ConstantNode) string
	VisitBinary(node *BinaryNode) string
	VisitUnary(node *UnaryNode) string
	VisitFunction(node *FunctionNode) string
	VisitAggregate(node *AggregateNode) string
	VisitCase(node *CaseNode) string
	VisitRecord(node *RecordNode) string
}

// Parameterizer is implemented by visitors that support parameterized queries.
// Callers use type assertion to extract collected parameters after SQL generation.
type Parameterizer interface {
	Params() []any
	Reset()
}

// IsConstant reports whether e is a SQL constant. Only ConstantNode
// qualifies; folded expressions are not recognised.
func IsConstant(e Expression) bool {
	return e != nil && e.Kind() == KindConstant
}
