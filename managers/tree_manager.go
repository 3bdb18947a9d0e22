package managers

import (
	"github.com/bawdo/relq/nodes"
	"github.com/bawdo/relq/optimizer"
	"github.com/bawdo/relq/visitors"
)

// treeManager is the shared base for all manager types. It holds the
// optimizer pipeline common to Select, Query, Update, and Delete managers.
type treeManager struct {
	passes []optimizer.Pass
	opts   []optimizer.Option
}

// addPasses appends passes to the pipeline. Once any pass is added the
// default pipeline no longer runs.
func (tm *treeManager) addPasses(passes []optimizer.Pass) {
	if tm.passes == nil {
		tm.passes = []optimizer.Pass{}
	}
	tm.passes = append(tm.passes, passes...)
}

// Passes returns the pipeline that will run, the default one when no pass
// was registered.
func (tm *treeManager) Passes() []optimizer.Pass {
	if tm.passes == nil {
		return optimizer.DefaultPasses()
	}
	return tm.passes
}

func (tm *treeManager) optimizer() *optimizer.Optimizer {
	opts := append([]optimizer.Option{optimizer.WithPasses(tm.Passes()...)}, tm.opts...)
	return optimizer.New(opts...)
}

// optimize runs the pipeline over the built tree.
func (tm *treeManager) optimize(build func() nodes.Expression) (nodes.Expression, error) {
	return tm.optimizer().Optimize(build())
}

// toSQL optimizes the built tree and emits it with e.
func (tm *treeManager) toSQL(e visitors.Emitter, build func() nodes.Expression) (string, []any, error) {
	tree, err := tm.optimize(build)
	if err != nil {
		return "", nil, err
	}
	stmt, err := e.Emit(tree)
	if err != nil {
		return "", nil, err
	}
	return stmt.SQL, stmt.Params, nil
}
