package nodes

// SubqueryType selects the flavour of a SubqueryNode.
type SubqueryType int

const (
	ScalarSubquery SubqueryType = iota
	ExistsSubquery
	InSubquery
	AllSubquery
	AnySubquery
)

// SubqueryNode wraps a SelectNode used inside an expression.
//
// Every kind but Exists must declare exactly one column. In, All and Any
// compare Operand against that column; All and Any use Op.
type SubqueryNode struct {
	Type    SubqueryType
	Select  *SelectNode
	Operand Expression // In, All, Any
	Op      BinaryOp   // All, Any
}

// Kind maps the subquery type onto its node kind.
func (n *SubqueryNode) Kind() NodeKind {
	switch n.Type {
	case ExistsSubquery:
		return KindExists
	case InSubquery:
		return KindIn
	case AllSubquery:
		return KindAll
	case AnySubquery:
		return KindAny
	default:
		return KindScalar
	}
}

func (n *SubqueryNode) Accept(v Visitor) string { return v.VisitSubquery(n) }

// SingleColumn reports whether this subquery kind consumes exactly one
// declared column of its select.
func (n *SubqueryNode) SingleColumn() bool {
	return n.Type != ExistsSubquery
}

// Scalar wraps sel as a scalar subquery.
func Scalar(sel *SelectNode) *SubqueryNode {
	return &SubqueryNode{Type: ScalarSubquery, Select: sel}
}

// Exists wraps sel as an EXISTS test.
func Exists(sel *SelectNode) *SubqueryNode {
	return &SubqueryNode{Type: ExistsSubquery, Select: sel}
}

// In tests operand for membership in the single column of sel.
func In(operand Expression, sel *SelectNode) *SubqueryNode {
	return &SubqueryNode{Type: InSubquery, Select: sel, Operand: operand}
}
