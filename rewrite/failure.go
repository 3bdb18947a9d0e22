package rewrite

import "github.com/bawdo/relq/nodes"

// failure carries an error out of a traversal. Visit methods have no error
// result, so passes abort with Fail and the pass entry point recovers the
// error with Run.
type failure struct {
	err error
}

// Fail aborts the current traversal with err.
func Fail(err error) {
	panic(failure{err: err})
}

// Run visits e with r and returns the result, or the error a visit method
// passed to Fail. Other panics propagate.
func Run(r Rewriter, e nodes.Expression) (out nodes.Expression, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			f, ok := rec.(failure)
			if !ok {
				panic(rec)
			}
			out, err = nil, f.err
		}
	}()
	return r.Visit(e), nil
}
