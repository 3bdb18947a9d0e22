package irdoc

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/bawdo/relq/internal/testutil"
	"github.com/bawdo/relq/nodes"
)

func TestReadFileProjection(t *testing.T) {
	t.Parallel()
	doc, err := ReadFile("testdata/unused_columns.yaml")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, doc.Version.String(), "1.0.0")

	proj, ok := doc.Root.(*nodes.ProjectionNode)
	if !ok {
		t.Fatalf("expected a projection, got %T", doc.Root)
	}
	testutil.AssertEqual(t, proj.Unique, nodes.FirstOrDefault)
	testutil.AssertEqual(t, len(proj.Source.Columns), 3)
	testutil.AssertEqual(t, len(proj.Source.OrderBy), 2)
	testutil.AssertEqual(t, proj.Source.OrderBy[0].Direction, nodes.Desc)

	col := proj.Projector.(*nodes.ColumnNode)
	testutil.AssertEqual(t, col.Alias, doc.Aliases["q"])
	testutil.AssertEqual(t, col.Name, "name")

	name := proj.Source.Columns[1].Expr.(*nodes.ColumnNode)
	testutil.AssertEqual(t, name.Type, nodes.TypeText)
	testutil.AssertEqual(t, name.Alias, doc.Aliases["t"])

	table := proj.Source.From.(*nodes.TableNode)
	testutil.AssertEqual(t, table.Name, "things")
}

func TestReadFileJoin(t *testing.T) {
	t.Parallel()
	doc, err := ReadFile("testdata/single_row_join.yaml")
	testutil.AssertNoError(t, err)
	proj := doc.Root.(*nodes.ProjectionNode)
	join, ok := proj.Source.From.(*nodes.JoinNode)
	if !ok {
		t.Fatalf("expected a join, got %T", proj.Source.From)
	}
	testutil.AssertEqual(t, join.Type, nodes.SingleRowLeftOuterJoin)
	if _, ok := join.Right.(*nodes.SelectNode); !ok {
		t.Errorf("expected a select on the right, got %T", join.Right)
	}
	rec := proj.Projector.(*nodes.RecordNode)
	testutil.AssertEqual(t, rec.TypeName, "User")
	testutil.AssertEqual(t, len(doc.Aliases), 4)
}

func TestAliasNumberingIsPerDocument(t *testing.T) {
	t.Parallel()
	a, err := ReadFile("testdata/unused_columns.yaml")
	testutil.AssertNoError(t, err)
	b, err := ReadFile("testdata/unused_columns.yaml")
	testutil.AssertNoError(t, err)
	if a.Aliases["q"].ID == 0 || a.Aliases["q"] != b.Aliases["q"] {
		t.Errorf("expected deterministic alias ids, got %v and %v", a.Aliases["q"], b.Aliases["q"])
	}
	if a.Aliases["q"] == a.Aliases["t"] {
		t.Error("expected distinct aliases within a document")
	}
}

func TestScalarsAndConstants(t *testing.T) {
	t.Parallel()
	doc, err := Parse([]byte(`
version: "1.2"
select:
  alias: q
  columns:
    - {name: n, expr: {constant: 42}}
    - {name: f, expr: {constant: 1.5}}
    - {name: s, expr: {constant: hello}}
    - {name: b, expr: {constant: true}}
    - {name: z, expr: {constant: null}}
    - {name: d, expr: {date: "2024-03-01"}}
    - {name: c, expr: {aggregate: {func: count}}}
    - {name: m, expr: {aggregate: {func: max, distinct: true, expr: {column: u.age}}}}
    - {name: l, expr: {function: {name: LOWER, args: [{column: u.name}]}}}
    - {name: r, expr: {row_number: {order_by: [{expr: {column: u.id}}]}}}
    - name: k
      expr:
        case:
          whens:
            - when: {unary: {op: is_null, expr: {column: u.name}}}
              then: {constant: anon}
          else: {column: u.name}
  from: {table: {name: users, alias: u}}
`))
	testutil.AssertNoError(t, err)
	sel := doc.Root.(*nodes.SelectNode)
	value := func(i int) any { return sel.Columns[i].Expr.(*nodes.ConstantNode).Value }

	testutil.AssertEqual(t, value(0), any(42))
	testutil.AssertEqual(t, value(1), any(1.5))
	testutil.AssertEqual(t, value(2), any("hello"))
	testutil.AssertEqual(t, value(3), any(true))
	testutil.AssertEqual(t, value(4), nil)
	d := sel.Columns[5].Expr.(*nodes.ConstantNode)
	testutil.AssertEqual(t, d.Type, nodes.TypeDate)
	testutil.AssertEqual(t, d.Value.(time.Time).Format("2006-01-02"), "2024-03-01")

	count := sel.Columns[6].Expr.(*nodes.AggregateNode)
	if count.Expr != nil {
		t.Error("expected COUNT(*)")
	}
	testutil.AssertEqual(t, sel.Columns[7].Expr.(*nodes.AggregateNode).Distinct, true)
	testutil.AssertEqual(t, sel.Columns[8].Expr.(*nodes.FunctionNode).Name, "LOWER")
	testutil.AssertEqual(t, len(sel.Columns[9].Expr.(*nodes.RowNumberNode).OrderBy), 1)
	testutil.AssertEqual(t, len(sel.Columns[10].Expr.(*nodes.CaseNode).Whens), 1)
}

func TestSubqueries(t *testing.T) {
	t.Parallel()
	doc, err := Parse([]byte(`
version: "1"
select:
  alias: q
  columns:
    - {name: id, expr: {column: u.id}}
  from: {table: {name: users, alias: u}}
  where:
    binary:
      op: and
      left:
        in:
          operand: {column: u.id}
          select:
            alias: s
            columns: [{name: user_id, expr: {column: o.user_id}}]
            from: {table: {name: orders, alias: o}}
      right:
        all:
          operand: {column: u.age}
          op: ">"
          select:
            alias: s2
            columns: [{name: age, expr: {column: k.age}}]
            from: {table: {name: kids, alias: k}}
`))
	testutil.AssertNoError(t, err)
	where := doc.Root.(*nodes.SelectNode).Where.(*nodes.BinaryNode)
	testutil.AssertEqual(t, where.Op, nodes.OpAnd)
	testutil.AssertEqual(t, where.Left.Kind(), nodes.KindIn)
	all := where.Right.(*nodes.SubqueryNode)
	testutil.AssertEqual(t, all.Kind(), nodes.KindAll)
	testutil.AssertEqual(t, all.Op, nodes.OpGt)
}

func TestDML(t *testing.T) {
	t.Parallel()
	doc, err := Parse([]byte(`
version: "1"
update:
  table: {name: users, alias: u}
  set:
    - {column: name, expr: {constant: x}}
  where: {binary: {op: "=", left: {column: u.id}, right: {constant: 3}}}
`))
	testutil.AssertNoError(t, err)
	upd := doc.Root.(*nodes.UpdateNode)
	if !nodes.SelfSourced(upd.Table, upd.Source) {
		t.Error("expected a self-sourced update")
	}
	testutil.AssertEqual(t, len(upd.Assignments), 1)

	doc, err = Parse([]byte(`
version: "1"
delete:
  table: {name: users}
  source: {table: {name: orders, alias: o}}
  where: {binary: {op: "=", left: {column: users.id}, right: {column: o.user_id}}}
`))
	testutil.AssertNoError(t, err)
	del := doc.Root.(*nodes.DeleteNode)
	testutil.AssertEqual(t, del.Table.Alias.Name, "users")
	if nodes.SelfSourced(del.Table, del.Source) {
		t.Error("expected a separate source")
	}
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty", ``, "empty document"},
		{"missing version", "select: {alias: q, columns: []}", "missing version"},
		{"bad version", "version: banana\nselect: {alias: q, columns: []}", "version"},
		{"future version", "version: \"2.0\"\nselect: {alias: q, columns: []}", "unsupported version"},
		{"no root", `version: "1"`, "exactly one of"},
		{"unknown key", "version: \"1\"\nselect: {alias: q, columns: [], bogus: 1}", "bogus"},
		{"duplicate alias", "version: \"1\"\nselect: {alias: t, columns: [], from: {table: {name: t}}}", "defined twice"},
		{"unknown alias", "version: \"1\"\nselect: {alias: q, columns: [{name: a, expr: {column: x.a}}]}", "unknown alias"},
		{"bad ref", "version: \"1\"\nselect: {alias: q, columns: [{name: a, expr: {column: nodot}}]}", "alias.name"},
		{"two kinds", "version: \"1\"\nselect: {alias: q, columns: [{name: a, expr: {constant: 1, date: '2020-01-01'}}]}", "exactly one kind"},
		{"bad op", "version: \"1\"\nselect: {alias: q, columns: [{name: a, expr: {binary: {op: '%', left: {constant: 1}, right: {constant: 2}}}}]}", "unknown binary operator"},
		{"bad join", "version: \"1\"\nselect: {alias: q, columns: [], from: {join: {type: sideways, left: {table: {name: a}}, right: {table: {name: b}}}}}", "unknown join type"},
		{"sum without arg", "version: \"1\"\nselect: {alias: q, columns: [{name: a, expr: {aggregate: {func: sum}}}]}", "needs an argument"},
		{"quantified without comparison", "version: \"1\"\nselect: {alias: q, columns: [{name: a, expr: {any: {operand: {constant: 1}, op: '+', select: {alias: s, columns: []}}}}]}", "comparison operator"},
		{"bad date", "version: \"1\"\nselect: {alias: q, columns: [{name: a, expr: {date: 'not a date'}}]}", "date"},
		{"update without set", "version: \"1\"\nupdate: {table: {name: users}}", "no assignments"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.doc))
			if err == nil {
				t.Fatalf("expected an error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected an error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestReadFileMissing(t *testing.T) {
	t.Parallel()
	_, err := ReadFile("testdata/nope.yaml")
	if err == nil || !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected a not-exist error, got %v", err)
	}
}
