package nodes

// JoinType represents the type of a JoinNode.
type JoinType int

const (
	InnerJoin JoinType = iota
	LeftOuterJoin
	// SingleRowLeftOuterJoin is a left outer join known to match at most
	// one right row per left row. It may be dropped when nothing reads the
	// right side.
	SingleRowLeftOuterJoin
	RightOuterJoin
	FullOuterJoin
	CrossJoin
	CrossApply
	OuterApply
)

// String returns the display name for this join type.
func (t JoinType) String() string {
	switch t {
	case InnerJoin:
		return "INNER JOIN"
	case LeftOuterJoin:
		return "LEFT OUTER JOIN"
	case SingleRowLeftOuterJoin:
		return "SINGLE ROW LEFT OUTER JOIN"
	case RightOuterJoin:
		return "RIGHT OUTER JOIN"
	case FullOuterJoin:
		return "FULL OUTER JOIN"
	case CrossJoin:
		return "CROSS JOIN"
	case CrossApply:
		return "CROSS APPLY"
	case OuterApply:
		return "OUTER APPLY"
	default:
		return "JOIN"
	}
}

// JoinNode joins two sources.
type JoinNode struct {
	Type      JoinType
	Left      Source
	Right     Source
	Condition Expression // nil for cross joins and applies
}

func (n *JoinNode) Kind() NodeKind          { return KindJoin }
func (n *JoinNode) Accept(v Visitor) string { return v.VisitJoin(n) }

// KnownAliases returns the aliases of the left branch followed by the
// right branch.
func (n *JoinNode) KnownAliases() []Alias {
	return append(n.Left.KnownAliases(), n.Right.KnownAliases()...)
}
