package managers

import "github.com/bawdo/relq/nodes"

// JoinContext is returned by SelectManager.Join() and enforces that
// a join condition is provided via On() before continuing to build
// the query. This prevents incomplete JOINs in the tree.
type JoinContext struct {
	manager *SelectManager
	join    *nodes.JoinNode
}

// On sets the join condition and returns the SelectManager for
// continued method chaining. Several conditions are combined with AND.
func (jc *JoinContext) On(conditions ...nodes.Expression) *SelectManager {
	jc.join.Condition = nodes.And(conditions...)
	return jc.manager
}
