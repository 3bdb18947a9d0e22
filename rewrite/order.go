package rewrite

// SelectPart names one child slot of a SelectNode.
type SelectPart int

const (
	SelectTop SelectPart = iota
	SelectColumns
	SelectFrom
	SelectWhere
	SelectOrderBy
	SelectGroupBy
)

// JoinPart names one child slot of a JoinNode.
type JoinPart int

const (
	JoinLeft JoinPart = iota
	JoinRight
	JoinCondition
)

// ProjectionPart names one child slot of a ProjectionNode.
type ProjectionPart int

const (
	ProjectionSource ProjectionPart = iota
	ProjectionProjector
)

// Order is the child visit sequence per node kind. Slots left out of a
// sequence are not visited and keep their original value.
type Order struct {
	Select     []SelectPart
	Join       []JoinPart
	Projection []ProjectionPart
}

// Forward visits producers before consumers: a select's source before its
// clauses, a join's branches before its condition, a projection's source
// before its projector.
var Forward = Order{
	Select:     []SelectPart{SelectTop, SelectFrom, SelectWhere, SelectColumns, SelectOrderBy, SelectGroupBy},
	Join:       []JoinPart{JoinLeft, JoinRight, JoinCondition},
	Projection: []ProjectionPart{ProjectionSource, ProjectionProjector},
}

// ReverseDependency visits consumers before producers, which liveness
// analysis needs: every use of a source is recorded before the source is
// visited.
var ReverseDependency = Order{
	Select:     []SelectPart{SelectColumns, SelectOrderBy, SelectWhere, SelectGroupBy, SelectTop, SelectFrom},
	Join:       []JoinPart{JoinCondition, JoinRight, JoinLeft},
	Projection: []ProjectionPart{ProjectionProjector, ProjectionSource},
}
