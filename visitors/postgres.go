package visitors

import (
	"fmt"

	"github.com/bawdo/relq/internal/quoting"
)

// PostgresVisitor generates PostgreSQL-dialect SQL.
// Identifiers are quoted with double quotes: "alias"."column".
// It supports every IR shape except records.
type PostgresVisitor struct {
	*baseVisitor
}

// NewPostgresVisitor creates a PostgresVisitor ready for use.
// Parameterized mode is enabled by default; placeholders are $1, $2, ...
func NewPostgresVisitor(opts ...Option) *PostgresVisitor {
	v := &PostgresVisitor{}
	v.baseVisitor = &baseVisitor{
		outer:        v,
		dialect:      "postgres",
		quoteIdent:   quoting.DoubleQuote,
		placeholder:  func(i int) string { return fmt.Sprintf("$%d", i) },
		parameterize: true,
		features: features{
			lateral:     true,
			quantified:  true,
			fullJoin:    true,
			updateFrom:  true,
			deleteUsing: true,
		},
	}
	v.applyOptions(opts)
	return v
}
