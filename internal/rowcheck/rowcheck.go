// Package rowcheck executes IR trees against a live database and compares
// the results of an optimized tree with those of its input.
package rowcheck

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/bawdo/relq/nodes"
	"github.com/bawdo/relq/visitors"
)

// Row is one materialized result value: the projector's output for a
// projection, or the column tuple for a bare select.
type Row = any

// Result is the outcome of one materialization.
type Result struct {
	SQL  string
	Rows []Row
	// Affected is set for update and delete commands, which run inside a
	// rolled-back transaction.
	Affected int64
	// Ordered is true when the root select has ORDER BY, so row order is
	// part of the result.
	Ordered bool
}

// Option configures a Checker.
type Option func(*Checker)

// WithLogger sets the logger receiving one debug record per statement.
func WithLogger(l *slog.Logger) Option {
	return func(c *Checker) { c.logger = l }
}

// Checker runs trees through an emitter against db.
type Checker struct {
	db      *sql.DB
	emitter visitors.Emitter
	logger  *slog.Logger
}

// New creates a Checker. The emitter must match the database's dialect.
func New(db *sql.DB, emitter visitors.Emitter, opts ...Option) *Checker {
	c := &Checker{db: db, emitter: emitter, logger: slog.New(slog.DiscardHandler)}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Materialize emits e, runs it and evaluates its projector over the rows.
func (c *Checker) Materialize(ctx context.Context, e nodes.Expression) (*Result, error) {
	stmt, err := c.emitter.Emit(e)
	if err != nil {
		return nil, err
	}
	c.logger.DebugContext(ctx, "executing", slog.String("sql", stmt.SQL), slog.Int("params", len(stmt.Params)))

	switch n := e.(type) {
	case *nodes.ProjectionNode:
		return c.query(ctx, stmt, n.Source, n.Projector)
	case *nodes.SelectNode:
		return c.query(ctx, stmt, n, nil)
	case *nodes.UpdateNode, *nodes.DeleteNode:
		return c.exec(ctx, stmt)
	default:
		return nil, nodes.Unsupported(e.Kind(), "cannot execute a bare %s", e.Kind())
	}
}

func (c *Checker) query(ctx context.Context, stmt visitors.Statement, source *nodes.SelectNode, projector nodes.Expression) (*Result, error) {
	rows, err := c.db.QueryContext(ctx, stmt.SQL, stmt.Params...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	res := &Result{SQL: stmt.SQL, Ordered: len(source.OrderBy) > 0}
	for rows.Next() {
		values := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		rec := make(map[string]any, len(names))
		for i, name := range names {
			rec[name] = normalize(values[i])
		}
		var row Row
		if projector == nil {
			row = tuple(names, rec)
		} else if row, err = evaluate(projector, source.Alias, rec); err != nil {
			return nil, err
		}
		res.Rows = append(res.Rows, row)
	}
	return res, rows.Err()
}

func (c *Checker) exec(ctx context.Context, stmt visitors.Statement) (*Result, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	out, err := tx.ExecContext(ctx, stmt.SQL, stmt.Params...)
	if err != nil {
		return nil, fmt.Errorf("exec: %w", err)
	}
	n, err := out.RowsAffected()
	if err != nil {
		return nil, err
	}
	return &Result{SQL: stmt.SQL, Affected: n}, nil
}

// Comparison is the outcome of Compare.
type Comparison struct {
	Before, After *Result
	Equal         bool
	// Reason describes the first difference when Equal is false.
	Reason string
}

// Compare materializes before and after and reports whether they yield
// the same rows: as a sequence when before is ordered, as a multiset
// otherwise.
func (c *Checker) Compare(ctx context.Context, before, after nodes.Expression) (*Comparison, error) {
	b, err := c.Materialize(ctx, before)
	if err != nil {
		return nil, fmt.Errorf("before: %w", err)
	}
	a, err := c.Materialize(ctx, after)
	if err != nil {
		return nil, fmt.Errorf("after: %w", err)
	}
	cmp := &Comparison{Before: b, After: a, Equal: true}
	if reason := diff(b, a); reason != "" {
		cmp.Equal = false
		cmp.Reason = reason
	}
	return cmp, nil
}

func diff(before, after *Result) string {
	if before.Affected != after.Affected {
		return fmt.Sprintf("affected %d rows, now %d", before.Affected, after.Affected)
	}
	if len(before.Rows) != len(after.Rows) {
		return fmt.Sprintf("returned %d rows, now %d", len(before.Rows), len(after.Rows))
	}
	bk, ak := keys(before.Rows), keys(after.Rows)
	if !before.Ordered {
		sort.Strings(bk)
		sort.Strings(ak)
	}
	for i := range bk {
		if bk[i] != ak[i] {
			return fmt.Sprintf("row %d was %s, now %s", i, bk[i], ak[i])
		}
	}
	return ""
}

func keys(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = rowKey(r)
	}
	return out
}

func rowKey(r Row) string {
	switch x := r.(type) {
	case []any:
		parts := make([]string, len(x))
		for i, v := range x {
			parts[i] = format(v)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case Record:
		return x.String()
	default:
		return format(x)
	}
}
