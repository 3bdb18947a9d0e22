package visitors

import (
	"github.com/bawdo/relq/internal/quoting"
	"github.com/bawdo/relq/nodes"
)

// MySQLVisitor generates MySQL-dialect SQL.
// Identifiers are quoted with backticks: `alias`.`column`.
// FULL OUTER JOIN and sourced UPDATE/DELETE are not expressible.
type MySQLVisitor struct {
	*baseVisitor
}

// NewMySQLVisitor creates a MySQLVisitor ready for use.
// Parameterized mode is enabled by default for SQL injection protection.
// Pass WithoutParams() to disable (not recommended for production).
func NewMySQLVisitor(opts ...Option) *MySQLVisitor {
	v := &MySQLVisitor{}
	v.baseVisitor = &baseVisitor{
		outer:            v,
		dialect:          "mysql",
		quoteIdent:       quoting.Backtick,
		backslashEscapes: true,
		placeholder:      func(_ int) string { return "?" },
		parameterize:     true,
		features: features{
			lateral:    true,
			quantified: true,
		},
	}
	v.applyOptions(opts)
	return v
}

// VisitBinary renders string concatenation as CONCAT(); || is logical OR
// in MySQL's default mode.
func (v *MySQLVisitor) VisitBinary(n *nodes.BinaryNode) string {
	if n.Op == nodes.OpConcat {
		return "CONCAT(" + n.Left.Accept(v) + ", " + n.Right.Accept(v) + ")"
	}
	return v.baseVisitor.VisitBinary(n)
}
