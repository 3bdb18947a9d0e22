package nodes

// TableNode references a stored table under an alias.
type TableNode struct {
	Alias Alias
	Name  string
}

// NewTable creates a TableNode.
func NewTable(alias Alias, name string) *TableNode {
	return &TableNode{Alias: alias, Name: name}
}

func (n *TableNode) Kind() NodeKind          { return KindTable }
func (n *TableNode) Accept(v Visitor) string { return v.VisitTable(n) }
func (n *TableNode) KnownAliases() []Alias   { return []Alias{n.Alias} }

// Col creates a ColumnNode referencing name on this table.
func (n *TableNode) Col(name string) *ColumnNode {
	return &ColumnNode{Alias: n.Alias, Name: name}
}
