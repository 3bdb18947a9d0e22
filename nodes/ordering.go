package nodes

// Direction represents sort direction.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// String returns the SQL keyword for this direction.
func (d Direction) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// OrderNode is one ORDER BY term.
type OrderNode struct {
	Direction Direction
	Expr      Expression
}

// RowNumberNode is a ROW_NUMBER() window ordinal.
type RowNumberNode struct {
	OrderBy []OrderNode
}

func (n *RowNumberNode) Kind() NodeKind          { return KindRowNumber }
func (n *RowNumberNode) Accept(v Visitor) string { return v.VisitRowNumber(n) }
