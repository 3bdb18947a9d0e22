package nodes

// SemanticType is the value type carried by a column or constant. The
// empty type means unknown.
type SemanticType string

const (
	TypeUnknown SemanticType = ""
	TypeInt     SemanticType = "int"
	TypeFloat   SemanticType = "float"
	TypeText    SemanticType = "text"
	TypeBool    SemanticType = "bool"
	TypeDate    SemanticType = "date"
)

// ColumnNode references a column of an aliased source.
type ColumnNode struct {
	Alias Alias
	Name  string
	Type  SemanticType
}

// NewColumn creates a ColumnNode.
func NewColumn(alias Alias, name string, typ SemanticType) *ColumnNode {
	return &ColumnNode{Alias: alias, Name: name, Type: typ}
}

func (n *ColumnNode) Kind() NodeKind          { return KindColumn }
func (n *ColumnNode) Accept(v Visitor) string { return v.VisitColumn(n) }

// Eq creates a ColumnNode = other comparison.
func (n *ColumnNode) Eq(other Expression) *BinaryNode { return Eq(n, other) }

// IsNull creates a ColumnNode IS NULL test.
func (n *ColumnNode) IsNull() *UnaryNode { return IsNull(n) }

// Asc orders by this column ascending.
func (n *ColumnNode) Asc() OrderNode { return OrderNode{Direction: Asc, Expr: n} }

// Desc orders by this column descending.
func (n *ColumnNode) Desc() OrderNode { return OrderNode{Direction: Desc, Expr: n} }

// ColumnDeclaration is a named output column of a SelectNode.
type ColumnDeclaration struct {
	Name string
	Expr Expression
}

// ColumnAssignment is a column = value pair of an UpdateNode.
type ColumnAssignment struct {
	Column string
	Expr   Expression
}
