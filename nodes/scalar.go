package nodes

import "time"

// ConstantNode is a SQL constant. It is the only node IsConstant accepts.
type ConstantNode struct {
	Value any // nil renders as NULL
	Type  SemanticType
}

func (n *ConstantNode) Kind() NodeKind          { return KindConstant }
func (n *ConstantNode) Accept(v Visitor) string { return v.VisitConstant(n) }

// Constant wraps a Go value. If val is already an Expression it is
// returned as-is.
func Constant(val any) Expression {
	if e, ok := val.(Expression); ok {
		return e
	}
	return &ConstantNode{Value: val, Type: typeOf(val)}
}

// Null returns a NULL constant.
func Null() *ConstantNode {
	return &ConstantNode{}
}

func typeOf(val any) SemanticType {
	switch val.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return TypeInt
	case float32, float64:
		return TypeFloat
	case string:
		return TypeText
	case bool:
		return TypeBool
	case time.Time:
		return TypeDate
	default:
		return TypeUnknown
	}
}

// BinaryOp identifies the operator of a BinaryNode.
type BinaryOp int

const (
	OpEq BinaryOp = iota
	OpNotEq
	OpLt
	OpLtEq
	OpGt
	OpGtEq
	OpLike
	OpAnd
	OpOr
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpConcat
)

var binaryOpNames = [...]string{
	OpEq:     "=",
	OpNotEq:  "<>",
	OpLt:     "<",
	OpLtEq:   "<=",
	OpGt:     ">",
	OpGtEq:   ">=",
	OpLike:   "LIKE",
	OpAnd:    "AND",
	OpOr:     "OR",
	OpAdd:    "+",
	OpSub:    "-",
	OpMul:    "*",
	OpDiv:    "/",
	OpConcat: "||",
}

// String returns the SQL spelling of the operator.
func (op BinaryOp) String() string {
	if op >= 0 && int(op) < len(binaryOpNames) {
		return binaryOpNames[op]
	}
	return "?"
}

// Comparison reports whether op is a comparison operator, as required by
// ALL and ANY subqueries.
func (op BinaryOp) Comparison() bool {
	return op <= OpGtEq
}

// BinaryNode applies a binary operator.
type BinaryNode struct {
	Op    BinaryOp
	Left  Expression
	Right Expression
}

func (n *BinaryNode) Kind() NodeKind          { return KindBinary }
func (n *BinaryNode) Accept(v Visitor) string { return v.VisitBinary(n) }

// UnaryOp identifies the operator of a UnaryNode.
type UnaryOp int

const (
	OpNot UnaryOp = iota
	OpNegate
	OpIsNull
	OpIsNotNull
)

// UnaryNode applies a unary operator.
type UnaryNode struct {
	Op   UnaryOp
	Expr Expression
}

func (n *UnaryNode) Kind() NodeKind          { return KindUnary }
func (n *UnaryNode) Accept(v Visitor) string { return v.VisitUnary(n) }

// FunctionNode is a call of a named scalar function.
type FunctionNode struct {
	Name string
	Args []Expression
}

func (n *FunctionNode) Kind() NodeKind          { return KindFunction }
func (n *FunctionNode) Accept(v Visitor) string { return v.VisitFunction(n) }

// AggregateFunc identifies the function of an AggregateNode.
type AggregateFunc int

const (
	AggCount AggregateFunc = iota
	AggSum
	AggAvg
	AggMin
	AggMax
)

var aggregateNames = [...]string{
	AggCount: "COUNT",
	AggSum:   "SUM",
	AggAvg:   "AVG",
	AggMin:   "MIN",
	AggMax:   "MAX",
}

// String returns the SQL function name.
func (f AggregateFunc) String() string {
	if f >= 0 && int(f) < len(aggregateNames) {
		return aggregateNames[f]
	}
	return "?"
}

// AggregateNode is an aggregate call. A nil Expr means COUNT(*).
type AggregateNode struct {
	Func     AggregateFunc
	Distinct bool
	Expr     Expression
}

func (n *AggregateNode) Kind() NodeKind          { return KindAggregate }
func (n *AggregateNode) Accept(v Visitor) string { return v.VisitAggregate(n) }

// When is one WHEN ... THEN ... arm of a CaseNode.
type When struct {
	Condition Expression
	Result    Expression
}

// CaseNode is a searched CASE expression.
type CaseNode struct {
	Whens []When
	Else  Expression // nil for no ELSE
}

func (n *CaseNode) Kind() NodeKind          { return KindCase }
func (n *CaseNode) Accept(v Visitor) string { return v.VisitCase(n) }
