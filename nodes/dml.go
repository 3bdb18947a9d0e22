package nodes

// UpdateNode represents UPDATE table SET ... [FROM source] WHERE ...
//
// Source is Table itself when the update reads no other rows.
type UpdateNode struct {
	Table       *TableNode
	Source      Source
	Where       Expression
	Assignments []ColumnAssignment
}

func (n *UpdateNode) Kind() NodeKind          { return KindUpdate }
func (n *UpdateNode) Accept(v Visitor) string { return v.VisitUpdate(n) }

// DeleteNode represents DELETE FROM table [USING source] WHERE ...
//
// Source is Table itself when the delete reads no other rows.
type DeleteNode struct {
	Table  *TableNode
	Source Source
	Where  Expression
}

func (n *DeleteNode) Kind() NodeKind          { return KindDelete }
func (n *DeleteNode) Accept(v Visitor) string { return v.VisitDelete(n) }

// SelfSourced reports whether source is table itself, i.e. the statement
// needs no FROM/USING clause.
func SelfSourced(table *TableNode, source Source) bool {
	if source == nil {
		return true
	}
	t, ok := source.(*TableNode)
	return ok && t.Alias == table.Alias
}
