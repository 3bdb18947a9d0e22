package nodes_test

import (
	"testing"

	"github.com/bawdo/relq/internal/testutil"
	"github.com/bawdo/relq/nodes"
)

func TestAcceptDispatchesByKind(t *testing.T) {
	t.Parallel()
	g := nodes.NewAliasGenerator()
	users := g.Table("users", "u")
	sel := &nodes.SelectNode{Alias: g.Next("q"), From: users}
	v := testutil.StubVisitor{}

	cases := []struct {
		node nodes.Expression
		want string
	}{
		{users, "users"},
		{users.Col("id"), "u.id"},
		{sel, "select q"},
		{&nodes.JoinNode{Left: users, Right: users}, "join"},
		{nodes.Exists(sel), "Exists"},
		{nodes.In(users.Col("id"), sel), "In"},
		{&nodes.ProjectionNode{Source: sel}, "projection"},
		{&nodes.RowNumberNode{}, "row_number"},
		{&nodes.UpdateNode{Table: users}, "update"},
		{&nodes.DeleteNode{Table: users}, "delete"},
		{nodes.Constant(1), "const"},
		{nodes.Eq(users.Col("id"), 1), "u.id = const"},
		{nodes.Not(nodes.Constant(true)), "unary"},
		{nodes.Func("LOWER", users.Col("name")), "LOWER"},
		{nodes.Sum(users.Col("age")), "SUM"},
		{&nodes.CaseNode{}, "case"},
		{&nodes.RecordNode{TypeName: "User"}, "User"},
	}
	for _, tc := range cases {
		testutil.AssertSQL(t, v, tc.node, tc.want)
	}
}
