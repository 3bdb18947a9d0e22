// Package optimizer holds the rewriting passes applied to a bound IR tree
// and the pipeline driver that runs them in order.
package optimizer

import "github.com/bawdo/relq/nodes"

// Pass is one tree-to-tree rewrite. Apply returns the original expression
// when it finds nothing to simplify. Passes keep no state between calls and
// may be shared between goroutines; every Apply builds its own traversal
// state.
type Pass interface {
	Name() string
	Apply(e nodes.Expression) (nodes.Expression, error)
}
