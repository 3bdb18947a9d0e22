// Package testutil provides shared test helpers for the relq project.
package testutil

import "github.com/bawdo/relq/nodes"

// StubVisitor implements nodes.Visitor with minimal return values for testing.
// Methods return meaningful short strings to aid in test assertions.
type StubVisitor struct{}

var _ nodes.Visitor = StubVisitor{}

func (sv StubVisitor) VisitTable(n *nodes.TableNode) string           { return n.Name }
func (sv StubVisitor) VisitColumn(n *nodes.ColumnNode) string         { return n.Alias.String() + "." + n.Name }
func (sv StubVisitor) VisitSelect(n *nodes.SelectNode) string         { return "select " + n.Alias.String() }
func (sv StubVisitor) VisitJoin(n *nodes.JoinNode) string             { return "join" }
func (sv StubVisitor) VisitSubquery(n *nodes.SubqueryNode) string     { return n.Kind().String() }
func (sv StubVisitor) VisitProjection(n *nodes.ProjectionNode) string { return "projection" }
func (sv StubVisitor) VisitRowNumber(n *nodes.RowNumberNode) string   { return "row_number" }
func (sv StubVisitor) VisitUpdate(n *nodes.UpdateNode) string         { return "update" }
func (sv StubVisitor) VisitDelete(n *nodes.DeleteNode) string         { return "delete" }
func (sv StubVisitor) VisitConstant(n *nodes.ConstantNode) string     { return "const" }
func (sv StubVisitor) VisitBinary(n *nodes.BinaryNode) string {
	return n.Left.Accept(sv) + " " + n.Op.String() + " " + n.Right.Accept(sv)
}
func (sv StubVisitor) VisitUnary(n *nodes.UnaryNode) string         { return "unary" }
func (sv StubVisitor) VisitFunction(n *nodes.FunctionNode) string   { return n.Name }
func (sv StubVisitor) VisitAggregate(n *nodes.AggregateNode) string { return n.Func.String() }
func (sv StubVisitor) VisitCase(n *nodes.CaseNode) string           { return "case" }
func (sv StubVisitor) VisitRecord(n *nodes.RecordNode) string       { return n.TypeName }
