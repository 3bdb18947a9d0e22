// Package quoting provides identifier and literal quoting for the dialect
// emitters.
package quoting

import "strings"

// Quoter quotes a single SQL identifier.
type Quoter func(string) string

// DoubleQuote quotes a SQL identifier using double quotes (PostgreSQL, SQLite, ANSI SQL).
// Internal double quotes are escaped by doubling them.
func DoubleQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Backtick quotes a SQL identifier using backticks (MySQL).
// Internal backticks are escaped by doubling them.
func Backtick(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

// Qualified joins quoted parts with dots: "a"."b".
func (q Quoter) Qualified(parts ...string) string {
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = q(p)
	}
	return strings.Join(quoted, ".")
}

// EscapeString escapes a string literal by doubling single quotes and, when
// backslash is true, doubling backslashes as MySQL requires.
//
// Inline literals are for display only. Statements sent to a database keep
// the default parameterized mode.
func EscapeString(s string, backslash bool) string {
	if backslash {
		s = strings.ReplaceAll(s, `\`, `\\`)
	}
	return strings.ReplaceAll(s, "'", "''")
}
