// Package visitors provides SQL dialect emitters that walk the optimized IR,
// plus a Graphviz DOT visitor for inspecting trees.
package visitors

import (
	"fmt"
	"strings"
	"time"

	"github.com/bawdo/relq/internal/quoting"
	"github.com/bawdo/relq/nodes"
)

// Statement is the emitted form of an IR tree: query text plus the bind
// parameters its placeholders refer to, in order.
type Statement struct {
	SQL    string
	Params []any
}

// Emitter turns an optimized IR tree into a Statement. Shapes the dialect
// cannot express fail with *nodes.UnsupportedShape.
type Emitter interface {
	Emit(e nodes.Expression) (Statement, error)
}

// Option configures a visitor at construction time.
type Option func(*baseVisitor)

// WithParams enables parameterized query mode. It is the default.
func WithParams() Option {
	return func(b *baseVisitor) {
		b.parameterize = true
	}
}

// WithoutParams disables parameterized query mode: constants are written
// inline with basic escaping. Use it for display and debugging only.
func WithoutParams() Option {
	return func(b *baseVisitor) {
		b.parameterize = false
	}
}

// features lists the optional constructs a dialect can express.
type features struct {
	lateral     bool // CROSS/OUTER APPLY as LATERAL joins
	quantified  bool // op ALL (...) / op ANY (...)
	fullJoin    bool
	updateFrom  bool // UPDATE ... FROM source
	deleteUsing bool // DELETE ... USING source
}

// baseVisitor implements the shared SQL generation logic used by all dialects.
// Dialect-specific visitors embed *baseVisitor and set the outer field to
// themselves, enabling correct virtual dispatch through the Visitor interface.
type baseVisitor struct {
	// outer is the concrete dialect visitor. All recursive Accept calls
	// go through outer so that dialect overrides are respected.
	outer nodes.Visitor

	dialect  string
	features features

	// quoteIdent quotes a SQL identifier (table name, column name, alias).
	quoteIdent quoting.Quoter

	// backslashEscapes doubles backslashes in inline string literals.
	backslashEscapes bool

	// parameterize enables bind-parameter mode.
	parameterize bool

	// params accumulates bind parameter values during SQL generation.
	params []any

	// paramIndex tracks the next parameter number (1-based).
	paramIndex int

	// placeholder returns the bind placeholder for a given parameter index.
	// PostgreSQL uses $1, $2; MySQL/SQLite use ?.
	placeholder func(int) string

	// err is the first failure of the current emission.
	err error

	// aliasNames maps each alias to its identifier in the current
	// statement; taken holds the identifiers already handed out.
	aliasNames map[nodes.Alias]string
	taken      map[string]bool
}

func (b *baseVisitor) applyOptions(opts []Option) {
	for _, o := range opts {
		o(b)
	}
}

// Params returns the collected bind parameters from the last SQL generation.
func (b *baseVisitor) Params() []any {
	return b.params
}

// Reset clears collected parameters and errors for reuse.
func (b *baseVisitor) Reset() {
	b.params = nil
	b.paramIndex = 0
	b.err = nil
	b.aliasNames = nil
	b.taken = nil
}

// Err returns the first failure recorded since the last Reset.
func (b *baseVisitor) Err() error {
	return b.err
}

// Emit renders e and returns the statement, or the first failure.
func (b *baseVisitor) Emit(e nodes.Expression) (Statement, error) {
	b.Reset()
	sql := e.Accept(b.outer)
	if b.err != nil {
		return Statement{}, fmt.Errorf("%s: %w", b.dialect, b.err)
	}
	params := make([]any, len(b.params))
	copy(params, b.params)
	return Statement{SQL: sql, Params: params}, nil
}

// fail records an unsupported shape; the emitted text is discarded.
func (b *baseVisitor) fail(kind nodes.NodeKind, format string, args ...any) string {
	if b.err == nil {
		b.err = nodes.Unsupported(kind, format, args...)
	}
	return ""
}

// aliasName returns the identifier a renders as. Distinct aliases sharing
// a display name get an _ID suffix after the first.
func (b *baseVisitor) aliasName(a nodes.Alias) string {
	if name, ok := b.aliasNames[a]; ok {
		return name
	}
	if b.aliasNames == nil {
		b.aliasNames = make(map[nodes.Alias]string)
		b.taken = make(map[string]bool)
	}
	name := a.String()
	for b.taken[name] {
		name = fmt.Sprintf("%s_%d", name, a.ID)
	}
	b.aliasNames[a] = name
	b.taken[name] = true
	return name
}

func (b *baseVisitor) alias(a nodes.Alias) string {
	return b.quoteIdent(b.aliasName(a))
}

func (b *baseVisitor) VisitTable(n *nodes.TableNode) string {
	return b.quoteIdent(n.Name) + " AS " + b.alias(n.Alias)
}

func (b *baseVisitor) VisitColumn(n *nodes.ColumnNode) string {
	return b.quoteIdent.Qualified(b.aliasName(n.Alias), n.Name)
}

func (b *baseVisitor) VisitConstant(n *nodes.ConstantNode) string {
	return b.literalToSQL(n.Value)
}

func (b *baseVisitor) literalToSQL(val any) string {
	// nil always renders as NULL keyword, never parameterized.
	if val == nil {
		return "NULL"
	}

	// In parameterize mode, emit a placeholder and collect the value.
	if b.parameterize {
		b.paramIndex++
		b.params = append(b.params, val)
		return b.placeholder(b.paramIndex)
	}

	switch v := val.(type) {
	case string:
		return "'" + quoting.EscapeString(v, b.backslashEscapes) + "'"
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32, float64:
		return fmt.Sprintf("%g", v)
	case time.Time:
		return "'" + v.Format("2006-01-02 15:04:05") + "'"
	default:
		return b.fail(nodes.KindConstant, "unsupported literal type %T", v)
	}
}

// writeList renders items joined by sep.
func (b *baseVisitor) writeList(sb *strings.Builder, items []nodes.Expression, sep string) {
	for i, item := range items {
		if i > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(item.Accept(b.outer))
	}
}

func (b *baseVisitor) orderBy(orders []nodes.OrderNode) string {
	parts := make([]string, len(orders))
	for i, o := range orders {
		parts[i] = o.Expr.Accept(b.outer) + " " + o.Direction.String()
	}
	return strings.Join(parts, ", ")
}

func (b *baseVisitor) VisitSelect(n *nodes.SelectNode) string {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	if n.Distinct {
		sb.WriteString("DISTINCT ")
	}
	if len(n.Columns) == 0 {
		sb.WriteString("1")
	}
	for i, c := range n.Columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(c.Expr.Accept(b.outer))
		sb.WriteString(" AS ")
		sb.WriteString(b.quoteIdent(c.Name))
	}
	if n.From != nil {
		sb.WriteString(" FROM ")
		sb.WriteString(b.source(n.From))
	}
	if n.Where != nil {
		sb.WriteString(" WHERE ")
		sb.WriteString(n.Where.Accept(b.outer))
	}
	if len(n.GroupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		b.writeList(&sb, n.GroupBy, ", ")
	}
	if len(n.OrderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(b.orderBy(n.OrderBy))
	}
	if n.Top != nil {
		sb.WriteString(" LIMIT ")
		sb.WriteString(n.Top.Accept(b.outer))
	}
	return sb.String()
}

// source renders a FROM source; nested selects are parenthesized and
// aliased.
func (b *baseVisitor) source(s nodes.Source) string {
	if sel, ok := s.(*nodes.SelectNode); ok {
		return "(" + sel.Accept(b.outer) + ") AS " + b.alias(sel.Alias)
	}
	return s.Accept(b.outer)
}

func (b *baseVisitor) VisitJoin(n *nodes.JoinNode) string {
	left := b.source(n.Left)
	right := b.source(n.Right)
	if _, ok := n.Right.(*nodes.JoinNode); ok {
		right = "(" + right + ")"
	}

	var keyword string
	cond := "TRUE"
	if n.Condition != nil {
		cond = n.Condition.Accept(b.outer)
	}
	switch n.Type {
	case nodes.InnerJoin:
		keyword = "INNER JOIN"
	case nodes.LeftOuterJoin, nodes.SingleRowLeftOuterJoin:
		keyword = "LEFT OUTER JOIN"
	case nodes.RightOuterJoin:
		keyword = "RIGHT OUTER JOIN"
	case nodes.FullOuterJoin:
		if !b.features.fullJoin {
			return b.fail(nodes.KindJoin, "%s has no FULL OUTER JOIN", b.dialect)
		}
		keyword = "FULL OUTER JOIN"
	case nodes.CrossJoin:
		return left + " CROSS JOIN " + right
	case nodes.CrossApply:
		if !b.features.lateral {
			return b.fail(nodes.KindJoin, "%s has no LATERAL join for CROSS APPLY", b.dialect)
		}
		return left + " CROSS JOIN LATERAL " + right
	case nodes.OuterApply:
		if !b.features.lateral {
			return b.fail(nodes.KindJoin, "%s has no LATERAL join for OUTER APPLY", b.dialect)
		}
		return left + " LEFT OUTER JOIN LATERAL " + right + " ON TRUE"
	default:
		return b.fail(nodes.KindJoin, "unknown join type %d", n.Type)
	}
	return left + " " + keyword + " " + right + " ON " + cond
}

func (b *baseVisitor) VisitSubquery(n *nodes.SubqueryNode) string {
	sel := "(" + n.Select.Accept(b.outer) + ")"
	switch n.Type {
	case nodes.ScalarSubquery:
		return sel
	case nodes.ExistsSubquery:
		return "EXISTS " + sel
	case nodes.InSubquery:
		return b.operand(n.Operand, precComparison) + " IN " + sel
	case nodes.AllSubquery, nodes.AnySubquery:
		if !b.features.quantified {
			return b.fail(n.Kind(), "%s has no quantified comparison subqueries", b.dialect)
		}
		keyword := "ALL"
		if n.Type == nodes.AnySubquery {
			keyword = "ANY"
		}
		return b.operand(n.Operand, precComparison) + " " + n.Op.String() + " " + keyword + " " + sel
	default:
		return b.fail(n.Kind(), "unknown subquery type %d", n.Type)
	}
}

// VisitProjection emits the row source; the projector is evaluated by the
// caller against each returned row.
func (b *baseVisitor) VisitProjection(n *nodes.ProjectionNode) string {
	return n.Source.Accept(b.outer)
}

func (b *baseVisitor) VisitRowNumber(n *nodes.RowNumberNode) string {
	if len(n.OrderBy) == 0 {
		return "ROW_NUMBER() OVER ()"
	}
	return "ROW_NUMBER() OVER (ORDER BY " + b.orderBy(n.OrderBy) + ")"
}

func (b *baseVisitor) VisitUpdate(n *nodes.UpdateNode) string {
	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(n.Table.Accept(b.outer))
	sb.WriteString(" SET ")
	for i, a := range n.Assignments {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(b.quoteIdent(a.Column))
		sb.WriteString(" = ")
		sb.WriteString(a.Expr.Accept(b.outer))
	}
	if !nodes.SelfSourced(n.Table, n.Source) {
		if !b.features.updateFrom {
			return b.fail(nodes.KindUpdate, "%s has no UPDATE ... FROM", b.dialect)
		}
		sb.WriteString(" FROM ")
		sb.WriteString(b.source(n.Source))
	}
	if n.Where != nil {
		sb.WriteString(" WHERE ")
		sb.WriteString(n.Where.Accept(b.outer))
	}
	return sb.String()
}

func (b *baseVisitor) VisitDelete(n *nodes.DeleteNode) string {
	var sb strings.Builder
	sb.WriteString("DELETE FROM ")
	sb.WriteString(n.Table.Accept(b.outer))
	if !nodes.SelfSourced(n.Table, n.Source) {
		if !b.features.deleteUsing {
			return b.fail(nodes.KindDelete, "%s has no DELETE ... USING", b.dialect)
		}
		sb.WriteString(" USING ")
		sb.WriteString(b.source(n.Source))
	}
	if n.Where != nil {
		sb.WriteString(" WHERE ")
		sb.WriteString(n.Where.Accept(b.outer))
	}
	return sb.String()
}

// Operator precedence, loosest first.
const (
	precOr = iota + 1
	precAnd
	precNot
	precComparison
	precAdditive
	precMultiplicative
	precUnary
	precAtom
)

func precedence(e nodes.Expression) int {
	switch n := e.(type) {
	case *nodes.BinaryNode:
		return binaryPrecedence(n.Op)
	case *nodes.UnaryNode:
		switch n.Op {
		case nodes.OpNot:
			return precNot
		case nodes.OpIsNull, nodes.OpIsNotNull:
			return precComparison
		default:
			return precUnary
		}
	case *nodes.SubqueryNode:
		if n.Type == nodes.ScalarSubquery || n.Type == nodes.ExistsSubquery {
			return precAtom
		}
		return precComparison
	default:
		return precAtom
	}
}

func binaryPrecedence(op nodes.BinaryOp) int {
	switch op {
	case nodes.OpOr:
		return precOr
	case nodes.OpAnd:
		return precAnd
	case nodes.OpAdd, nodes.OpSub, nodes.OpConcat:
		return precAdditive
	case nodes.OpMul, nodes.OpDiv:
		return precMultiplicative
	default:
		return precComparison
	}
}

// operand renders e, parenthesized when it binds looser than min.
func (b *baseVisitor) operand(e nodes.Expression, min int) string {
	s := e.Accept(b.outer)
	if precedence(e) < min {
		return "(" + s + ")"
	}
	return s
}

func (b *baseVisitor) VisitBinary(n *nodes.BinaryNode) string {
	p := binaryPrecedence(n.Op)
	left := b.operand(n.Left, p)
	// Right operands of equal precedence keep their grouping: a - (b - c).
	right := b.operand(n.Right, p+1)
	return left + " " + n.Op.String() + " " + right
}

func (b *baseVisitor) VisitUnary(n *nodes.UnaryNode) string {
	switch n.Op {
	case nodes.OpNot:
		return "NOT " + b.operand(n.Expr, precNot+1)
	case nodes.OpNegate:
		return "-" + b.operand(n.Expr, precUnary)
	case nodes.OpIsNull:
		return b.operand(n.Expr, precComparison+1) + " IS NULL"
	case nodes.OpIsNotNull:
		return b.operand(n.Expr, precComparison+1) + " IS NOT NULL"
	default:
		return b.fail(nodes.KindUnary, "unknown unary operator %d", n.Op)
	}
}

func (b *baseVisitor) VisitFunction(n *nodes.FunctionNode) string {
	if !validFunctionName(n.Name) {
		return b.fail(nodes.KindFunction, "invalid function name %q", n.Name)
	}
	var sb strings.Builder
	sb.WriteString(n.Name)
	sb.WriteString("(")
	b.writeList(&sb, n.Args, ", ")
	sb.WriteString(")")
	return sb.String()
}

func (b *baseVisitor) VisitAggregate(n *nodes.AggregateNode) string {
	var sb strings.Builder
	sb.WriteString(n.Func.String())
	sb.WriteString("(")
	if n.Distinct {
		sb.WriteString("DISTINCT ")
	}
	if n.Expr == nil {
		sb.WriteString("*")
	} else {
		sb.WriteString(n.Expr.Accept(b.outer))
	}
	sb.WriteString(")")
	return sb.String()
}

func (b *baseVisitor) VisitCase(n *nodes.CaseNode) string {
	var sb strings.Builder
	sb.WriteString("CASE")
	for _, w := range n.Whens {
		sb.WriteString(" WHEN ")
		sb.WriteString(w.Condition.Accept(b.outer))
		sb.WriteString(" THEN ")
		sb.WriteString(w.Result.Accept(b.outer))
	}
	if n.Else != nil {
		sb.WriteString(" ELSE ")
		sb.WriteString(n.Else.Accept(b.outer))
	}
	sb.WriteString(" END")
	return sb.String()
}

func (b *baseVisitor) VisitRecord(n *nodes.RecordNode) string {
	return b.fail(nodes.KindRecord, "record %s has no SQL form", n.TypeName)
}

// validFunctionName accepts letters, digits and underscores only, so a
// crafted name cannot inject SQL.
func validFunctionName(name string) bool {
	if name == "" {
		return false
	}
	for _, c := range name {
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') &&
			(c < '0' || c > '9') && c != '_' {
			return false
		}
	}
	return true
}
