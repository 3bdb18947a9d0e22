package nodes

func binary(op BinaryOp, left, right any) *BinaryNode {
	return &BinaryNode{Op: op, Left: Constant(left), Right: Constant(right)}
}

// Eq creates left = right. Non-Expression operands are wrapped as constants.
func Eq(left, right any) *BinaryNode { return binary(OpEq, left, right) }

// NotEq creates left <> right.
func NotEq(left, right any) *BinaryNode { return binary(OpNotEq, left, right) }

// Lt creates left < right.
func Lt(left, right any) *BinaryNode { return binary(OpLt, left, right) }

// Gt creates left > right.
func Gt(left, right any) *BinaryNode { return binary(OpGt, left, right) }

// GtEq creates left >= right.
func GtEq(left, right any) *BinaryNode { return binary(OpGtEq, left, right) }

// Like creates left LIKE pattern.
func Like(left, pattern any) *BinaryNode { return binary(OpLike, left, pattern) }

// Add creates left + right.
func Add(left, right any) *BinaryNode { return binary(OpAdd, left, right) }

// And folds conditions left to right with AND, skipping nils. It returns
// nil when every condition is nil.
func And(conditions ...Expression) Expression {
	return fold(OpAnd, conditions)
}

// Or folds conditions left to right with OR, skipping nils.
func Or(conditions ...Expression) Expression {
	return fold(OpOr, conditions)
}

func fold(op BinaryOp, conditions []Expression) Expression {
	var result Expression
	for _, c := range conditions {
		if c == nil {
			continue
		}
		if result == nil {
			result = c
			continue
		}
		result = &BinaryNode{Op: op, Left: result, Right: c}
	}
	return result
}

// Not negates e.
func Not(e Expression) *UnaryNode { return &UnaryNode{Op: OpNot, Expr: e} }

// IsNull creates e IS NULL.
func IsNull(e Expression) *UnaryNode { return &UnaryNode{Op: OpIsNull, Expr: e} }

// IsNotNull creates e IS NOT NULL.
func IsNotNull(e Expression) *UnaryNode { return &UnaryNode{Op: OpIsNotNull, Expr: e} }

// Count creates COUNT(e); a nil e means COUNT(*).
func Count(e Expression) *AggregateNode { return &AggregateNode{Func: AggCount, Expr: e} }

// Sum creates SUM(e).
func Sum(e Expression) *AggregateNode { return &AggregateNode{Func: AggSum, Expr: e} }

// Max creates MAX(e).
func Max(e Expression) *AggregateNode { return &AggregateNode{Func: AggMax, Expr: e} }

// Func creates a named function call.
func Func(name string, args ...Expression) *FunctionNode {
	return &FunctionNode{Name: name, Args: args}
}
