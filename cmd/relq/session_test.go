package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bawdo/relq/internal/testutil"
)

const unusedColumnsDoc = "../../irdoc/testdata/unused_columns.yaml"

const schema = `
CREATE TABLE things (id INTEGER PRIMARY KEY, name TEXT, unused_col TEXT);
INSERT INTO things VALUES (1, 'alpha', 'x'), (2, 'beta', 'y'), (3, 'gamma', NULL), (4, 'beta', 'z');
`

func newTestSession(t *testing.T, cfg config) (*Session, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	s, err := NewSession(cfg, &out, slog.New(slog.DiscardHandler))
	testutil.AssertNoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, &out
}

func sqliteConfig() config {
	cfg := defaultConfig()
	cfg.Setup = schema
	return cfg
}

func execAll(t *testing.T, s *Session, commands ...string) {
	t.Helper()
	for _, cmd := range commands {
		if err := s.Execute(cmd); err != nil {
			t.Fatalf("command %q failed: %v", cmd, err)
		}
	}
}

func writeDoc(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// section returns the SQL printed under "-- label".
func section(out, label string) string {
	_, rest, ok := strings.Cut(out, "-- "+label+"\n")
	if !ok {
		return ""
	}
	line, _, _ := strings.Cut(rest, "\n")
	return line
}

func TestLoadAndOptimize(t *testing.T) {
	t.Parallel()
	s, out := newTestSession(t, defaultConfig())
	execAll(t, s, "load "+unusedColumnsDoc)
	if !strings.Contains(out.String(), "Projection, 2 aliases") {
		t.Errorf("unexpected load message: %s", out.String())
	}

	out.Reset()
	execAll(t, s, "optimize")
	got := out.String()

	before := section(got, "before")
	if !strings.Contains(before, `"unused_col"`) {
		t.Errorf("expected unused_col before optimizing, got %s", before)
	}
	after := section(got, "after")
	want := `SELECT "t"."name" AS "name" FROM "things" AS "t" WHERE "t"."id" > $1 ORDER BY "t"."name" DESC`
	testutil.AssertEqual(t, after, want)

	for _, line := range []string{"redundant_ordering changed", "unused_columns changed", "flatten unchanged"} {
		if !strings.Contains(normalizeSpace(got), "-- "+line) {
			t.Errorf("expected report line %q in:\n%s", line, got)
		}
	}
}

func normalizeSpace(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.Join(strings.Fields(l), " ")
	}
	return strings.Join(lines, "\n")
}

func TestOptimizeWithoutDocument(t *testing.T) {
	t.Parallel()
	s, _ := newTestSession(t, defaultConfig())
	testutil.AssertErrorIs(t, s.Execute("optimize"), errNoDocument)
	testutil.AssertErrorIs(t, s.Execute("show"), errNoDocument)
}

func TestShow(t *testing.T) {
	t.Parallel()
	s, out := newTestSession(t, defaultConfig())
	execAll(t, s, "load "+unusedColumnsDoc)

	if err := s.Execute("show after"); err == nil {
		t.Error("expected an error showing an unoptimized document")
	}
	out.Reset()
	execAll(t, s, "show")
	if section(out.String(), "before") == "" {
		t.Errorf("expected the input tree, got %s", out.String())
	}
	if !strings.Contains(out.String(), "-- params: [1 1]") {
		t.Errorf("expected both constants as params, got %s", out.String())
	}

	execAll(t, s, "optimize")
	out.Reset()
	execAll(t, s, "show")
	if section(out.String(), "after") == "" {
		t.Errorf("expected the optimized tree, got %s", out.String())
	}
	if err := s.Execute("show sideways"); err == nil {
		t.Error("expected a usage error")
	}
}

func TestDialectAndParams(t *testing.T) {
	t.Parallel()
	s, out := newTestSession(t, defaultConfig())
	execAll(t, s, "load "+unusedColumnsDoc, "dialect mysql", "params", "optimize")

	after := section(out.String(), "after")
	want := "SELECT `t`.`name` AS `name` FROM `things` AS `t` WHERE `t`.`id` > 1 ORDER BY `t`.`name` DESC"
	testutil.AssertEqual(t, after, want)
	if strings.Contains(out.String(), "-- params") {
		t.Errorf("expected no params with inlined literals:\n%s", out.String())
	}

	execAll(t, s, "dialect pg")
	testutil.AssertEqual(t, s.dialect, "postgres")
	if err := s.Execute("dialect oracle"); err == nil {
		t.Error("expected an unknown dialect error")
	}
}

func TestPasses(t *testing.T) {
	t.Parallel()
	s, out := newTestSession(t, defaultConfig())
	execAll(t, s, "load "+unusedColumnsDoc, "passes unused_columns", "optimize")

	got := normalizeSpace(out.String())
	if strings.Contains(got, "redundant_ordering") || strings.Contains(got, "flatten") {
		t.Errorf("expected only unused_columns to run:\n%s", got)
	}
	// the constant ordering term stays without redundant_ordering
	if !strings.Contains(section(out.String(), "after"), "$2 ASC") {
		t.Errorf("expected the constant order term to survive:\n%s", out.String())
	}

	execAll(t, s, "passes default")
	testutil.AssertEqual(t, len(s.passes), 3)
	if err := s.Execute("passes nope"); err == nil {
		t.Error("expected an unknown pass error")
	}
}

func TestDot(t *testing.T) {
	t.Parallel()
	s, out := newTestSession(t, defaultConfig())
	path := filepath.Join(t.TempDir(), "tree.dot")
	execAll(t, s, "load "+unusedColumnsDoc, "optimize", "dot "+path)

	data, err := os.ReadFile(path)
	testutil.AssertNoError(t, err)
	if !strings.HasPrefix(string(data), "digraph IR {") {
		t.Errorf("unexpected DOT output:\n%s", data)
	}
	// the FROM table is reused by the optimized select
	if !strings.Contains(string(data), "(shared)") {
		t.Errorf("expected shared nodes to be marked:\n%s", data)
	}
	if !strings.Contains(out.String(), "DOT written to") {
		t.Errorf("unexpected message: %s", out.String())
	}
	if err := s.Execute("dot"); err == nil {
		t.Error("expected a usage error")
	}
}

func TestConnectRunCheck(t *testing.T) {
	t.Parallel()
	s, out := newTestSession(t, sqliteConfig())
	execAll(t, s, "load "+unusedColumnsDoc)

	if err := s.Execute("run"); err == nil {
		t.Error("expected run to require a connection")
	}

	execAll(t, s, "connect")
	testutil.AssertEqual(t, s.dialect, "sqlite")
	if !strings.Contains(out.String(), "Connected to sqlite (:memory:)") {
		t.Errorf("unexpected connect message: %s", out.String())
	}

	out.Reset()
	execAll(t, s, "run")
	table := out.String()
	if !strings.Contains(table, "unused_col") || !strings.Contains(table, "(3 rows)") {
		t.Errorf("expected the input tree's three rows:\n%s", table)
	}

	out.Reset()
	execAll(t, s, "check")
	testutil.AssertEqual(t, out.String(), "equivalent (3 rows)\n")

	out.Reset()
	execAll(t, s, "run")
	if strings.Contains(out.String(), "unused_col") {
		t.Errorf("expected run to use the optimized tree:\n%s", out.String())
	}

	execAll(t, s, "disconnect")
	if err := s.Execute("disconnect"); err == nil {
		t.Error("expected an error disconnecting twice")
	}
}

func TestRunDeleteRollsBack(t *testing.T) {
	t.Parallel()
	path := writeDoc(t, `
version: "1"
delete:
  table: {name: things, alias: t}
  where: {binary: {op: ">", left: {column: t.id}, right: {constant: 2}}}
`)
	s, out := newTestSession(t, sqliteConfig())
	execAll(t, s, "connect", "load "+path)

	out.Reset()
	execAll(t, s, "run")
	testutil.AssertEqual(t, out.String(), "2 rows affected (rolled back)\n")

	out.Reset()
	execAll(t, s, "check")
	testutil.AssertEqual(t, out.String(), "equivalent (2 rows affected)\n")
}

func TestExecuteUnknownCommand(t *testing.T) {
	t.Parallel()
	s, _ := newTestSession(t, defaultConfig())
	err := s.Execute("frobnicate")
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("expected an unknown command error, got %v", err)
	}
	if err := s.Execute("load"); err == nil {
		t.Error("expected a usage error")
	}
}

func TestHelpListsCommands(t *testing.T) {
	t.Parallel()
	s, out := newTestSession(t, defaultConfig())
	execAll(t, s, "help")
	for _, name := range []string{"load <file>", "optimize", "passes", "check", "exit | quit"} {
		if !strings.Contains(out.String(), name) {
			t.Errorf("expected %q in help:\n%s", name, out.String())
		}
	}
	if strings.Contains(out.String(), "\n  exec") {
		t.Errorf("hidden commands should not be listed:\n%s", out.String())
	}
}
