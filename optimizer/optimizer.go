package optimizer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bawdo/relq/nodes"
)

// DefaultPasses returns the standard pipeline in the order it runs.
// Ordering cleanup runs first so unobservable ORDER BY terms stop keeping
// columns alive; flattening runs last, over already pruned selects.
func DefaultPasses() []Pass {
	return []Pass{RedundantOrdering{}, UnusedColumns{}, SubqueryFlattener{}}
}

// Option configures an Optimizer at construction time.
type Option func(*Optimizer)

// WithPasses replaces the pass list.
func WithPasses(passes ...Pass) Option {
	return func(o *Optimizer) { o.passes = passes }
}

// WithLogger sets the logger receiving per-pass debug records.
func WithLogger(l *slog.Logger) Option {
	return func(o *Optimizer) { o.logger = l }
}

// WithValidation checks the input tree and the output of every pass with
// Validate, failing on the first violation.
func WithValidation(on bool) Option {
	return func(o *Optimizer) { o.validate = on }
}

// Optimizer applies an ordered list of passes once each. It holds no
// per-query state and may be shared between goroutines.
type Optimizer struct {
	passes   []Pass
	logger   *slog.Logger
	validate bool
}

// New creates an Optimizer running DefaultPasses unless configured
// otherwise. Logging is discarded by default.
func New(opts ...Option) *Optimizer {
	o := &Optimizer{
		passes: DefaultPasses(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Passes returns the configured pass list.
func (o *Optimizer) Passes() []Pass { return o.passes }

// PassResult records what one pass did.
type PassResult struct {
	Name    string
	Changed bool
}

// Report describes one pipeline run.
type Report struct {
	Input  nodes.Expression
	Output nodes.Expression
	Passes []PassResult
}

// Changed reports whether any pass rewrote the tree.
func (r *Report) Changed() bool {
	return r.Output != r.Input
}

// Run applies every pass in order and reports which of them changed the
// tree. A failing pass aborts the run; there is no partial result.
func (o *Optimizer) Run(e nodes.Expression) (*Report, error) {
	id := uuid.NewString()
	log := o.logger.With(slog.String("query", id))
	ctx := context.Background()

	if o.validate {
		if err := Validate(e); err != nil {
			log.Error("input rejected", slog.Any("error", err))
			return nil, fmt.Errorf("input: %w", err)
		}
	}

	report := &Report{Input: e, Passes: make([]PassResult, 0, len(o.passes))}
	current := e
	for _, p := range o.passes {
		next, err := p.Apply(current)
		if err != nil {
			log.Error("pass failed", slog.String("pass", p.Name()), slog.Any("error", err))
			return nil, fmt.Errorf("%s: %w", p.Name(), err)
		}
		if o.validate {
			if err := Validate(next); err != nil {
				log.Error("pass produced invalid tree", slog.String("pass", p.Name()), slog.Any("error", err))
				return nil, fmt.Errorf("%s: %w", p.Name(), err)
			}
		}
		changed := next != current
		if log.Enabled(ctx, slog.LevelDebug) {
			log.Debug("pass applied", slog.String("pass", p.Name()), slog.Bool("changed", changed))
		}
		report.Passes = append(report.Passes, PassResult{Name: p.Name(), Changed: changed})
		current = next
	}
	report.Output = current
	return report, nil
}

// Optimize applies every pass in order and returns the final tree, which is
// e itself when no pass found anything to simplify.
func (o *Optimizer) Optimize(e nodes.Expression) (nodes.Expression, error) {
	report, err := o.Run(e)
	if err != nil {
		return nil, err
	}
	return report.Output, nil
}

// Optimize runs the default pipeline over e.
func Optimize(e nodes.Expression) (nodes.Expression, error) {
	return New().Optimize(e)
}
