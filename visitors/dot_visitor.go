package visitors

import (
	"fmt"
	"strings"

	"github.com/bawdo/relq/nodes"
	"github.com/bawdo/relq/rewrite"
)

// Color constants for DOT node categories.
const (
	colorTable      = "#6CA6CD" // blue: tables, selects
	colorColumn     = "#B0D4E8" // light blue: column references
	colorComparison = "#FFB347" // orange: comparisons, subqueries
	colorLogical    = "#FFEB80" // yellow: AND, OR, NOT, CASE
	colorLiteral    = "#D3D3D3" // grey: constants
	colorJoin       = "#77DD77" // green: joins
	colorOrdering   = "#CDA0E0" // purple: ordering, row numbers
	colorDML        = "#FF6961" // red: update, delete
	colorArithmetic = "#98FB98" // mint green: arithmetic
	colorFunction   = "#87CEEB" // sky blue: aggregates, functions, records
)

// dotNode represents a single node in the DOT graph.
type dotNode struct {
	id    string
	label string
	color string
}

// dotEdge represents a directed edge between two nodes in the DOT graph.
type dotEdge struct {
	from  string
	to    string
	label string
}

// DotVisitor walks the IR and produces Graphviz DOT output.
// It implements nodes.Visitor. Each Visit method returns the DOT id of the
// node it added.
type DotVisitor struct {
	nextID    int
	nodes     []dotNode
	edges     []dotEdge
	parentID  string
	edgeLabel string
	shared    map[nodes.Expression]bool
}

// NewDotVisitor creates a new DotVisitor ready to walk a tree.
func NewDotVisitor() *DotVisitor {
	return &DotVisitor{}
}

// MarkShared dashes the outline of every node in the visited tree that is
// also a node of before. Rendering an optimized tree against its input
// shows which subtrees a pass reused.
func (dv *DotVisitor) MarkShared(before nodes.Expression) {
	dv.shared = make(map[nodes.Expression]bool)
	collectPointers(before, dv.shared)
}

func collectPointers(e nodes.Expression, into map[nodes.Expression]bool) {
	rewrite.Inspect(e, func(n nodes.Expression) bool {
		into[n] = true
		return true
	})
}

// addNode creates a new DOT node with the given label and color, returning its ID.
func (dv *DotVisitor) addNode(label, color string) string {
	id := fmt.Sprintf("n%d", dv.nextID)
	dv.nextID++
	dv.nodes = append(dv.nodes, dotNode{id: id, label: label, color: color})
	return id
}

// addEdge records a directed edge from one node to another.
func (dv *DotVisitor) addEdge(from, to, label string) {
	dv.edges = append(dv.edges, dotEdge{from: from, to: to, label: label})
}

// open adds the node for n and connects it to the current parent.
func (dv *DotVisitor) open(n nodes.Expression, label, color string) string {
	id := dv.addNode(label, color)
	if dv.shared[n] {
		dv.nodes[len(dv.nodes)-1].label += "\\n(shared)"
	}
	if dv.parentID != "" {
		dv.addEdge(dv.parentID, id, dv.edgeLabel)
	}
	return id
}

// visitChild saves and restores the parent context, sets the edge label,
// and calls child.Accept to recursively visit the child node.
func (dv *DotVisitor) visitChild(parentID, label string, child nodes.Expression) {
	if child == nil {
		return
	}
	savedParent := dv.parentID
	savedLabel := dv.edgeLabel
	dv.parentID = parentID
	dv.edgeLabel = label
	child.Accept(dv)
	dv.parentID = savedParent
	dv.edgeLabel = savedLabel
}

// visitChildList visits a slice of nodes as indexed children (e.g. "GROUP[0]").
func (dv *DotVisitor) visitChildList(parentID, prefix string, items []nodes.Expression) {
	for i, item := range items {
		dv.visitChild(parentID, fmt.Sprintf("%s[%d]", prefix, i), item)
	}
}

func (dv *DotVisitor) visitOrderList(parentID, prefix string, orders []nodes.OrderNode) {
	for i, o := range orders {
		oid := dv.addNode("Order\\n"+o.Direction.String(), colorOrdering)
		dv.addEdge(parentID, oid, fmt.Sprintf("%s[%d]", prefix, i))
		dv.visitChild(oid, "EXPR", o.Expr)
	}
}

// NodeCount returns the number of nodes accumulated so far.
func (dv *DotVisitor) NodeCount() int {
	return len(dv.nodes)
}

// ToDot generates the complete DOT graph text.
func (dv *DotVisitor) ToDot() string {
	var sb strings.Builder

	sb.WriteString("digraph IR {\n")
	sb.WriteString("  rankdir=TB;\n")
	sb.WriteString("  node [shape=box, style=filled, fontname=\"Helvetica\"];\n")
	sb.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n")

	for _, n := range dv.nodes {
		style := ""
		if strings.HasSuffix(n.label, "\\n(shared)") {
			style = ", style=\"filled,dashed\""
		}
		fmt.Fprintf(&sb, "  %s [label=\"%s\", fillcolor=\"%s\"%s];\n",
			n.id, escapeLabel(n.label), n.color, style)
	}

	for _, e := range dv.edges {
		if e.label != "" {
			fmt.Fprintf(&sb, "  %s -> %s [label=\"%s\"];\n", e.from, e.to, e.label)
		} else {
			fmt.Fprintf(&sb, "  %s -> %s;\n", e.from, e.to)
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

// Dot renders e as a complete DOT graph.
func Dot(e nodes.Expression) string {
	dv := NewDotVisitor()
	e.Accept(dv)
	return dv.ToDot()
}

// escapeLabel escapes double quotes in DOT labels.
// Backslash sequences like \n are intentional DOT line breaks and are preserved.
func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "\\\"")
}

// --- Visitor interface implementation ---

func (dv *DotVisitor) VisitTable(n *nodes.TableNode) string {
	return dv.open(n, "Table\\n"+n.Name+" AS "+n.Alias.String(), colorTable)
}

func (dv *DotVisitor) VisitColumn(n *nodes.ColumnNode) string {
	return dv.open(n, "Column\\n"+n.Alias.String()+"."+n.Name, colorColumn)
}

func (dv *DotVisitor) VisitSelect(n *nodes.SelectNode) string {
	label := "Select\\n" + n.Alias.String()
	if n.Distinct {
		label += "\\nDISTINCT"
	}
	id := dv.open(n, label, colorTable)
	dv.visitChild(id, "TOP", n.Top)
	for _, c := range n.Columns {
		dv.visitChild(id, c.Name, c.Expr)
	}
	if n.From != nil {
		dv.visitChild(id, "FROM", n.From)
	}
	dv.visitChild(id, "WHERE", n.Where)
	dv.visitOrderList(id, "ORDER", n.OrderBy)
	dv.visitChildList(id, "GROUP", n.GroupBy)
	return id
}

func (dv *DotVisitor) VisitJoin(n *nodes.JoinNode) string {
	id := dv.open(n, "Join\\n"+n.Type.String(), colorJoin)
	dv.visitChild(id, "LEFT", n.Left)
	dv.visitChild(id, "RIGHT", n.Right)
	dv.visitChild(id, "ON", n.Condition)
	return id
}

func (dv *DotVisitor) VisitSubquery(n *nodes.SubqueryNode) string {
	label := n.Kind().String()
	if n.Type == nodes.AllSubquery || n.Type == nodes.AnySubquery {
		label += "\\n" + n.Op.String()
	}
	id := dv.open(n, label, colorComparison)
	dv.visitChild(id, "OPERAND", n.Operand)
	dv.visitChild(id, "SELECT", n.Select)
	return id
}

func (dv *DotVisitor) VisitProjection(n *nodes.ProjectionNode) string {
	label := "Projection"
	if n.Unique != nodes.NoUnique {
		label += "\\n" + n.Unique.String()
	}
	id := dv.open(n, label, colorFunction)
	dv.visitChild(id, "SOURCE", n.Source)
	dv.visitChild(id, "PROJECTOR", n.Projector)
	return id
}

func (dv *DotVisitor) VisitRowNumber(n *nodes.RowNumberNode) string {
	id := dv.open(n, "RowNumber", colorOrdering)
	dv.visitOrderList(id, "ORDER", n.OrderBy)
	return id
}

func (dv *DotVisitor) VisitUpdate(n *nodes.UpdateNode) string {
	id := dv.open(n, "Update", colorDML)
	dv.visitChild(id, "TABLE", n.Table)
	for _, a := range n.Assignments {
		dv.visitChild(id, "SET "+a.Column, a.Expr)
	}
	if n.Source != nil {
		dv.visitChild(id, "SOURCE", n.Source)
	}
	dv.visitChild(id, "WHERE", n.Where)
	return id
}

func (dv *DotVisitor) VisitDelete(n *nodes.DeleteNode) string {
	id := dv.open(n, "Delete", colorDML)
	dv.visitChild(id, "TABLE", n.Table)
	if n.Source != nil {
		dv.visitChild(id, "SOURCE", n.Source)
	}
	dv.visitChild(id, "WHERE", n.Where)
	return id
}

func (dv *DotVisitor) VisitConstant(n *nodes.ConstantNode) string {
	label := "NULL"
	if n.Value != nil {
		label = fmt.Sprintf("%v", n.Value)
	}
	return dv.open(n, "Constant\\n"+label, colorLiteral)
}

func (dv *DotVisitor) VisitBinary(n *nodes.BinaryNode) string {
	color := colorComparison
	switch {
	case n.Op == nodes.OpAnd || n.Op == nodes.OpOr:
		color = colorLogical
	case !n.Op.Comparison() && n.Op != nodes.OpLike:
		color = colorArithmetic
	}
	id := dv.open(n, n.Op.String(), color)
	dv.visitChild(id, "LEFT", n.Left)
	dv.visitChild(id, "RIGHT", n.Right)
	return id
}

func (dv *DotVisitor) VisitUnary(n *nodes.UnaryNode) string {
	var label string
	switch n.Op {
	case nodes.OpNot:
		label = "NOT"
	case nodes.OpNegate:
		label = "-"
	case nodes.OpIsNull:
		label = "IS NULL"
	case nodes.OpIsNotNull:
		label = "IS NOT NULL"
	}
	id := dv.open(n, label, colorLogical)
	dv.visitChild(id, "EXPR", n.Expr)
	return id
}

func (dv *DotVisitor) VisitFunction(n *nodes.FunctionNode) string {
	id := dv.open(n, "Function\\n"+n.Name, colorFunction)
	dv.visitChildList(id, "ARG", n.Args)
	return id
}

func (dv *DotVisitor) VisitAggregate(n *nodes.AggregateNode) string {
	label := n.Func.String()
	if n.Distinct {
		label += "\\nDISTINCT"
	}
	id := dv.open(n, label, colorFunction)
	dv.visitChild(id, "EXPR", n.Expr)
	return id
}

func (dv *DotVisitor) VisitCase(n *nodes.CaseNode) string {
	id := dv.open(n, "Case", colorLogical)
	for i, w := range n.Whens {
		dv.visitChild(id, fmt.Sprintf("WHEN[%d]", i), w.Condition)
		dv.visitChild(id, fmt.Sprintf("THEN[%d]", i), w.Result)
	}
	dv.visitChild(id, "ELSE", n.Else)
	return id
}

func (dv *DotVisitor) VisitRecord(n *nodes.RecordNode) string {
	id := dv.open(n, "Record\\n"+n.TypeName, colorFunction)
	for _, f := range n.Fields {
		dv.visitChild(id, f.Name, f.Expr)
	}
	return id
}
