package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/bawdo/relq/internal/rowcheck"
	"github.com/bawdo/relq/irdoc"
	"github.com/bawdo/relq/nodes"
	"github.com/bawdo/relq/optimizer"
	"github.com/bawdo/relq/visitors"
)

var errNoDocument = errors.New("no document loaded (use 'load <file>')")

// Session holds the state shared by the subcommands and the REPL: the
// loaded document, its last optimization report and an optional database
// connection.
type Session struct {
	ctx    context.Context
	out    io.Writer
	logger *slog.Logger
	cfg    config

	dialect      string
	parameterize bool
	passes       []optimizer.Pass

	path   string
	doc    *irdoc.Document
	report *optimizer.Report

	conn *dbConn

	commands []commandEntry
}

// NewSession creates a session writing to out.
func NewSession(cfg config, out io.Writer, logger *slog.Logger) (*Session, error) {
	passes, err := cfg.pipeline()
	if err != nil {
		return nil, err
	}
	s := &Session{
		ctx:          context.Background(),
		out:          out,
		logger:       logger,
		cfg:          cfg,
		dialect:      cfg.Dialect,
		parameterize: true,
		passes:       passes,
	}
	s.initCommands()
	return s, nil
}

// Close releases the database connection, if any.
func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.close()
	s.conn = nil
	return err
}

func (s *Session) load(path string) error {
	doc, err := irdoc.ReadFile(path)
	if err != nil {
		return err
	}
	s.path, s.doc, s.report = path, doc, nil
	s.logger.Debug("document loaded", slog.String("path", path), slog.String("version", doc.Version.String()))
	return nil
}

func (s *Session) emitter() (visitors.Emitter, error) {
	opt := visitors.WithParams()
	if !s.parameterize {
		opt = visitors.WithoutParams()
	}
	return visitors.ForDialect(s.dialect, opt)
}

func (s *Session) optimizer() *optimizer.Optimizer {
	return optimizer.New(
		optimizer.WithPasses(s.passes...),
		optimizer.WithValidation(s.cfg.Validate),
		optimizer.WithLogger(s.logger),
	)
}

func (s *Session) optimize() (*optimizer.Report, error) {
	if s.doc == nil {
		return nil, errNoDocument
	}
	report, err := s.optimizer().Run(s.doc.Root)
	if err != nil {
		return nil, err
	}
	s.report = report
	return report, nil
}

// current is the optimized tree once optimize has run, else the loaded one.
func (s *Session) current() (nodes.Expression, error) {
	if s.doc == nil {
		return nil, errNoDocument
	}
	if s.report != nil {
		return s.report.Output, nil
	}
	return s.doc.Root, nil
}

func (s *Session) writeSQL(label string, e nodes.Expression) error {
	em, err := s.emitter()
	if err != nil {
		return err
	}
	stmt, err := em.Emit(e)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "-- %s\n%s\n", label, stmt.SQL)
	if len(stmt.Params) > 0 {
		fmt.Fprintf(s.out, "-- params: %v\n", stmt.Params)
	}
	return nil
}

func (s *Session) writeReport(r *optimizer.Report) {
	width := 0
	for _, p := range r.Passes {
		width = max(width, len(p.Name))
	}
	for _, p := range r.Passes {
		state := "unchanged"
		if p.Changed {
			state = "changed"
		}
		fmt.Fprintf(s.out, "-- %-*s  %s\n", width, p.Name, state)
	}
}

// optimizeAndShow optimizes the loaded document and prints both trees and
// the pass report.
func (s *Session) optimizeAndShow() error {
	report, err := s.optimize()
	if err != nil {
		return err
	}
	if err := s.writeSQL("before", report.Input); err != nil {
		return err
	}
	s.writeReport(report)
	if !report.Changed() {
		fmt.Fprintln(s.out, "-- no pass changed the tree")
		return nil
	}
	return s.writeSQL("after", report.Output)
}

// writeDot writes the current tree as a DOT graph. After optimize, nodes
// shared with the input tree are marked.
func (s *Session) writeDot(path string) error {
	e, err := s.current()
	if err != nil {
		return err
	}
	dv := visitors.NewDotVisitor()
	if s.report != nil {
		dv.MarkShared(s.report.Input)
	}
	e.Accept(dv)
	if err := os.WriteFile(path, []byte(dv.ToDot()), 0o644); err != nil {
		return fmt.Errorf("writing DOT file: %w", err)
	}
	fmt.Fprintf(s.out, "DOT written to %s (%d nodes)\n", path, dv.NodeCount())
	return nil
}

func (s *Session) connect(ctx context.Context, dsn string) error {
	if dsn == "" {
		dsn = s.cfg.DSN
	}
	if s.conn != nil {
		_ = s.conn.close()
		s.conn = nil
	}
	conn, err := connect(ctx, s.cfg.Engine, dsn, s.cfg.Setup)
	if err != nil {
		return err
	}
	s.conn = conn
	if s.dialect != s.cfg.Engine {
		fmt.Fprintf(s.out, "  Dialect switched to %s to match the connection.\n", s.cfg.Engine)
		s.dialect = s.cfg.Engine
	}
	fmt.Fprintf(s.out, "  Connected to %s (%s).\n", s.cfg.Engine, sanitizeDSN(dsn))
	return nil
}

func (s *Session) requireConn() error {
	if s.conn == nil {
		return errors.New("not connected (use 'connect [dsn]')")
	}
	return nil
}

// run executes the current tree. Commands run in a rolled-back
// transaction and only report the affected row count.
func (s *Session) run(ctx context.Context) error {
	if err := s.requireConn(); err != nil {
		return err
	}
	e, err := s.current()
	if err != nil {
		return err
	}
	em, err := s.emitter()
	if err != nil {
		return err
	}
	switch e.(type) {
	case *nodes.UpdateNode, *nodes.DeleteNode:
		res, err := rowcheck.New(s.conn.db, em, rowcheck.WithLogger(s.logger)).Materialize(ctx, e)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "%d rows affected (rolled back)\n", res.Affected)
		return nil
	}
	stmt, err := em.Emit(e)
	if err != nil {
		return err
	}
	table, err := s.conn.execQuery(ctx, stmt.SQL, stmt.Params)
	if err != nil {
		return err
	}
	fmt.Fprint(s.out, table)
	return nil
}

// check runs the input and optimized trees and compares their results.
// A difference is returned as an error.
func (s *Session) check(ctx context.Context) error {
	if err := s.requireConn(); err != nil {
		return err
	}
	report := s.report
	if report == nil {
		var err error
		if report, err = s.optimize(); err != nil {
			return err
		}
	}
	em, err := s.emitter()
	if err != nil {
		return err
	}
	cmp, err := rowcheck.New(s.conn.db, em, rowcheck.WithLogger(s.logger)).Compare(ctx, report.Input, report.Output)
	if err != nil {
		return err
	}
	if !cmp.Equal {
		return fmt.Errorf("results differ: %s", cmp.Reason)
	}
	switch report.Input.(type) {
	case *nodes.UpdateNode, *nodes.DeleteNode:
		fmt.Fprintf(s.out, "equivalent (%d rows affected)\n", cmp.Before.Affected)
	default:
		fmt.Fprintf(s.out, "equivalent (%d rows)\n", len(cmp.Before.Rows))
	}
	return nil
}

func (s *Session) setDialect(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Fprintf(s.out, "  Dialect: %s (supported: %s)\n", s.dialect, strings.Join(visitors.Dialects(), ", "))
		return nil
	}
	if _, err := visitors.ForDialect(name); err != nil {
		return err
	}
	s.dialect = canonicalDialect(name)
	fmt.Fprintf(s.out, "  Dialect: %s\n", s.dialect)
	return nil
}

func canonicalDialect(name string) string {
	switch name {
	case "postgresql", "pg":
		return "postgres"
	case "sqlite3":
		return "sqlite"
	}
	return name
}

func (s *Session) setPasses(args string) error {
	names := strings.FieldsFunc(args, func(r rune) bool { return r == ',' || r == ' ' })
	if len(names) == 0 {
		fmt.Fprintf(s.out, "  Passes: %s\n", passList(s.passes))
		fmt.Fprintf(s.out, "  Known:  %s\n", strings.Join(optimizer.PassNames(), ", "))
		return nil
	}
	if len(names) == 1 && names[0] == "default" {
		s.passes = optimizer.DefaultPasses()
	} else {
		passes, err := optimizer.ParsePasses(names)
		if err != nil {
			return err
		}
		s.passes = passes
	}
	s.report = nil
	fmt.Fprintf(s.out, "  Passes: %s\n", passList(s.passes))
	return nil
}

func passList(passes []optimizer.Pass) string {
	names := make([]string, len(passes))
	for i, p := range passes {
		names[i] = p.Name()
	}
	return strings.Join(names, ", ")
}
