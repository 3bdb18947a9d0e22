package nodes

// UniqueFunction restricts a projection to a single row.
type UniqueFunction int

const (
	NoUnique UniqueFunction = iota
	First
	FirstOrDefault
	Single
	SingleOrDefault
)

var uniqueNames = [...]string{
	NoUnique:        "",
	First:           "First",
	FirstOrDefault:  "FirstOrDefault",
	Single:          "Single",
	SingleOrDefault: "SingleOrDefault",
}

// String returns the display name for this unique function.
func (u UniqueFunction) String() string {
	if u >= 0 && int(u) < len(uniqueNames) {
		return uniqueNames[u]
	}
	return ""
}

// ProjectionNode pairs a row source with the projector that materialises
// one value per row. Projectors may contain nested projections (child
// queries correlated with the parent row).
type ProjectionNode struct {
	Source    *SelectNode
	Projector Expression
	Unique    UniqueFunction
}

func (n *ProjectionNode) Kind() NodeKind          { return KindProjection }
func (n *ProjectionNode) Accept(v Visitor) string { return v.VisitProjection(n) }

// FieldBinding is one named member of a RecordNode.
type FieldBinding struct {
	Name string
	Expr Expression
}

// RecordNode builds an object from column values. It only appears in
// projectors and has no SQL form.
type RecordNode struct {
	TypeName string
	Fields   []FieldBinding
}

func (n *RecordNode) Kind() NodeKind          { return KindRecord }
func (n *RecordNode) Accept(v Visitor) string { return v.VisitRecord(n) }
