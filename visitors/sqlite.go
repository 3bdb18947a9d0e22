package visitors

import (
	"github.com/bawdo/relq/internal/quoting"
)

// SQLiteVisitor generates SQLite-dialect SQL.
// Identifiers are quoted with double quotes: "alias"."column".
// APPLY joins, quantified subqueries and DELETE ... USING are not
// expressible; UPDATE ... FROM is.
type SQLiteVisitor struct {
	*baseVisitor
}

// NewSQLiteVisitor creates a SQLiteVisitor ready for use.
// Parameterized mode is enabled by default; placeholders are ?.
func NewSQLiteVisitor(opts ...Option) *SQLiteVisitor {
	v := &SQLiteVisitor{}
	v.baseVisitor = &baseVisitor{
		outer:        v,
		dialect:      "sqlite",
		quoteIdent:   quoting.DoubleQuote,
		placeholder:  func(_ int) string { return "?" },
		parameterize: true,
		features: features{
			fullJoin:   true,
			updateFrom: true,
		},
	}
	v.applyOptions(opts)
	return v
}
