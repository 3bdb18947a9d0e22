package nodes

// SelectNode is a SELECT over a single FROM source.
//
// Every column reachable from Where, OrderBy, GroupBy and Columns must
// reference an alias visible through From or an enclosing scope. Column
// names are unique within one SelectNode.
type SelectNode struct {
	Alias    Alias
	Distinct bool
	Top      Expression // nil for no limit
	Columns  []ColumnDeclaration
	From     Source
	Where    Expression // nil for no filter
	OrderBy  []OrderNode
	GroupBy  []Expression
}

func (n *SelectNode) Kind() NodeKind          { return KindSelect }
func (n *SelectNode) Accept(v Visitor) string { return v.VisitSelect(n) }
func (n *SelectNode) KnownAliases() []Alias   { return []Alias{n.Alias} }

// Col creates a ColumnNode referencing the declared column name of this
// select. The type is taken from the declaration when it is a column.
func (n *SelectNode) Col(name string) *ColumnNode {
	c := &ColumnNode{Alias: n.Alias, Name: name}
	if decl, ok := n.Column(name); ok {
		if inner, ok := decl.Expr.(*ColumnNode); ok {
			c.Type = inner.Type
		}
	}
	return c
}

// Column returns the declaration named name.
func (n *SelectNode) Column(name string) (ColumnDeclaration, bool) {
	for _, c := range n.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnDeclaration{}, false
}

// ColumnNames returns the declared column names in order.
func (n *SelectNode) ColumnNames() []string {
	names := make([]string, len(n.Columns))
	for i, c := range n.Columns {
		names[i] = c.Name
	}
	return names
}

// With returns a copy of n carrying the given parts. It is the single
// place passes rebuild a select, so the alias and flags always carry over.
func (n *SelectNode) With(top Expression, columns []ColumnDeclaration, from Source, where Expression, orderBy []OrderNode, groupBy []Expression) *SelectNode {
	return &SelectNode{
		Alias:    n.Alias,
		Distinct: n.Distinct,
		Top:      top,
		Columns:  columns,
		From:     from,
		Where:    where,
		OrderBy:  orderBy,
		GroupBy:  groupBy,
	}
}
