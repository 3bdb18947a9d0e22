package rowcheck

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/bawdo/relq/nodes"
	"github.com/bawdo/relq/optimizer"
	"github.com/bawdo/relq/visitors"
)

const schema = `
CREATE TABLE things (id INTEGER PRIMARY KEY, name TEXT, unused_col TEXT);
CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);
CREATE TABLE orders (id INTEGER PRIMARY KEY, user_id INTEGER UNIQUE, total INTEGER);
INSERT INTO things VALUES (1, 'alpha', 'x'), (2, 'beta', 'y'), (3, 'gamma', NULL), (4, 'beta', 'z');
INSERT INTO users VALUES (1, 'ann'), (2, 'bob'), (3, 'cy');
INSERT INTO orders VALUES (10, 1, 100), (11, 3, 300);
`

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(schema)
	require.NoError(t, err)
	return db
}

func newChecker(t *testing.T) *Checker {
	return New(openDB(t), visitors.NewSQLiteVisitor())
}

func thingsQuery(g *nodes.AliasGenerator) *nodes.ProjectionNode {
	things := g.Table("things", "t")
	q := g.Next("q")
	sel := &nodes.SelectNode{
		Alias: q,
		Columns: []nodes.ColumnDeclaration{
			{Name: "id", Expr: things.Col("id")},
			{Name: "name", Expr: things.Col("name")},
			{Name: "unused_col", Expr: things.Col("unused_col")},
		},
		From:    things,
		Where:   nodes.Gt(things.Col("id"), 1),
		OrderBy: []nodes.OrderNode{things.Col("name").Desc(), {Direction: nodes.Asc, Expr: nodes.Constant(1)}},
	}
	return &nodes.ProjectionNode{Source: sel, Projector: sel.Col("name")}
}

func TestUnusedColumnsPreserveRows(t *testing.T) {
	c := newChecker(t)
	before := thingsQuery(nodes.NewAliasGenerator())
	after, err := optimizer.Optimize(before)
	require.NoError(t, err)

	cmp, err := c.Compare(context.Background(), before, after)
	require.NoError(t, err)
	require.True(t, cmp.Equal, cmp.Reason)
	require.True(t, cmp.Before.Ordered)
	require.Equal(t, []Row{"gamma", "beta", "beta"}, cmp.After.Rows)
	require.NotContains(t, cmp.After.SQL, "unused_col")
	require.Contains(t, cmp.Before.SQL, "unused_col")
}

func TestSingleRowJoinCollapsePreservesRows(t *testing.T) {
	c := newChecker(t)
	g := nodes.NewAliasGenerator()
	users, orders := g.Table("users", "u"), g.Table("orders", "o")
	sel := &nodes.SelectNode{
		Alias:   g.Next("q"),
		Columns: []nodes.ColumnDeclaration{{Name: "name", Expr: users.Col("name")}},
		From: &nodes.JoinNode{
			Type:      nodes.SingleRowLeftOuterJoin,
			Left:      users,
			Right:     orders,
			Condition: nodes.Eq(users.Col("id"), orders.Col("user_id")),
		},
	}
	before := &nodes.ProjectionNode{Source: sel, Projector: sel.Col("name")}
	after, err := optimizer.Optimize(before)
	require.NoError(t, err)
	require.NotContains(t, after.(*nodes.ProjectionNode).Source.Accept(visitors.NewSQLiteVisitor()), "JOIN")

	cmp, err := c.Compare(context.Background(), before, after)
	require.NoError(t, err)
	require.True(t, cmp.Equal, cmp.Reason)
	require.Len(t, cmp.After.Rows, 3)
}

func TestFlattenPreservesRows(t *testing.T) {
	c := newChecker(t)
	g := nodes.NewAliasGenerator()
	things := g.Table("things", "t")
	inner := &nodes.SelectNode{
		Alias: g.Next("i"),
		Columns: []nodes.ColumnDeclaration{
			{Name: "id", Expr: things.Col("id")},
			{Name: "label", Expr: things.Col("name")},
		},
		From:  things,
		Where: nodes.NotEq(things.Col("name"), "alpha"),
	}
	outer := &nodes.SelectNode{
		Alias:   g.Next("x"),
		Columns: []nodes.ColumnDeclaration{{Name: "label", Expr: inner.Col("label")}},
		From:    inner,
		Where:   nodes.Lt(inner.Col("id"), 4),
	}
	after, err := optimizer.Optimize(outer)
	require.NoError(t, err)
	require.NotContains(t, after.Accept(visitors.NewSQLiteVisitor()), "(SELECT")

	cmp, err := c.Compare(context.Background(), outer, after)
	require.NoError(t, err)
	require.True(t, cmp.Equal, cmp.Reason)
	require.Equal(t, []Row{[]any{"beta"}, []any{"gamma"}}, sortedTuples(cmp.After.Rows))
}

func sortedTuples(rows []Row) []Row {
	out := append([]Row(nil), rows...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && rowKey(out[j]) < rowKey(out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func TestRecordProjector(t *testing.T) {
	c := newChecker(t)
	g := nodes.NewAliasGenerator()
	users := g.Table("users", "u")
	sel := &nodes.SelectNode{
		Alias: g.Next("q"),
		Columns: []nodes.ColumnDeclaration{
			{Name: "id", Expr: users.Col("id")},
			{Name: "name", Expr: users.Col("name")},
		},
		From:    users,
		OrderBy: []nodes.OrderNode{users.Col("id").Asc()},
	}
	proj := &nodes.ProjectionNode{Source: sel, Projector: &nodes.RecordNode{
		TypeName: "User",
		Fields: []nodes.FieldBinding{
			{Name: "Name", Expr: sel.Col("name")},
			{Name: "Kind", Expr: nodes.Constant("person")},
		},
	}}

	res, err := c.Materialize(context.Background(), proj)
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)
	rec, ok := res.Rows[0].(Record)
	require.True(t, ok)
	require.Equal(t, `User{Name:"ann" Kind:"person"}`, rec.String())
}

func TestDMLRunsInRolledBackTransaction(t *testing.T) {
	db := openDB(t)
	c := New(db, visitors.NewSQLiteVisitor())
	g := nodes.NewAliasGenerator()
	things := g.Table("things", "t")
	upd := &nodes.UpdateNode{
		Table:       things,
		Where:       nodes.Eq(things.Col("name"), "beta"),
		Assignments: []nodes.ColumnAssignment{{Column: "name", Expr: nodes.Constant("renamed")}},
	}

	res, err := c.Materialize(context.Background(), upd)
	require.NoError(t, err)
	require.Equal(t, int64(2), res.Affected)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM things WHERE name = 'renamed'`).Scan(&n))
	require.Zero(t, n)

	del := &nodes.DeleteNode{Table: things, Where: nodes.Gt(things.Col("id"), 2)}
	cmp, err := c.Compare(context.Background(), del, del)
	require.NoError(t, err)
	require.True(t, cmp.Equal)
	require.Equal(t, int64(2), cmp.After.Affected)
}

func TestCompareReportsDifference(t *testing.T) {
	c := newChecker(t)
	g := nodes.NewAliasGenerator()
	before := thingsQuery(g)
	after := thingsQuery(g)
	after.Source.Where = nodes.Gt(after.Source.Where.(*nodes.BinaryNode).Left, 2)

	cmp, err := c.Compare(context.Background(), before, after)
	require.NoError(t, err)
	require.False(t, cmp.Equal)
	require.True(t, strings.HasPrefix(cmp.Reason, "returned 3 rows"), cmp.Reason)
}

func TestOrderedComparisonSeesReordering(t *testing.T) {
	c := newChecker(t)
	g := nodes.NewAliasGenerator()
	before := thingsQuery(g)
	after := thingsQuery(g)
	after.Source.OrderBy = []nodes.OrderNode{{Direction: nodes.Asc, Expr: after.Source.OrderBy[0].Expr}}

	cmp, err := c.Compare(context.Background(), before, after)
	require.NoError(t, err)
	require.False(t, cmp.Equal)
	require.Contains(t, cmp.Reason, "row 0")
}

func TestProjectorOutsideSource(t *testing.T) {
	c := newChecker(t)
	g := nodes.NewAliasGenerator()
	proj := thingsQuery(g)
	stranger := g.Table("users", "u")
	proj.Projector = stranger.Col("name")

	_, err := c.Materialize(context.Background(), proj)
	require.ErrorIs(t, err, nodes.ErrInvariantViolation)
}

func TestUnsupportedShapeSurfaces(t *testing.T) {
	c := newChecker(t)
	g := nodes.NewAliasGenerator()
	users, orders := g.Table("users", "u"), g.Table("orders", "o")
	sel := &nodes.SelectNode{
		Alias:   g.Next("q"),
		Columns: []nodes.ColumnDeclaration{{Name: "name", Expr: users.Col("name")}},
		From:    &nodes.JoinNode{Type: nodes.CrossApply, Left: users, Right: orders},
	}
	_, err := c.Materialize(context.Background(), sel)
	require.ErrorIs(t, err, nodes.ErrUnsupportedShape)
}
