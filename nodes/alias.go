package nodes

import "fmt"

// Alias names one row-source instance within a compiled query. Two aliases
// are equal only when issued by the same generator call; Name is display
// text and may repeat.
type Alias struct {
	ID   uint32
	Name string
}

// NoAlias is the zero Alias, used by nodes without one.
var NoAlias Alias

// IsZero reports whether a is the zero Alias.
func (a Alias) IsZero() bool { return a.ID == 0 }

// String returns the display name, falling back to a generated one.
func (a Alias) String() string {
	if a.Name != "" {
		return a.Name
	}
	return fmt.Sprintf("t%d", a.ID)
}

// AliasGenerator issues aliases for a single query compilation. It is not
// safe for concurrent use; each compilation owns its own generator.
type AliasGenerator struct {
	next uint32
}

// NewAliasGenerator creates a generator whose first alias has ID 1.
func NewAliasGenerator() *AliasGenerator {
	return &AliasGenerator{}
}

// Next returns a fresh alias displayed as name. An empty name displays as
// tN.
func (g *AliasGenerator) Next(name string) Alias {
	g.next++
	return Alias{ID: g.next, Name: name}
}

// Table creates a TableNode for name under a fresh alias named alias.
func (g *AliasGenerator) Table(name, alias string) *TableNode {
	if alias == "" {
		alias = name
	}
	return NewTable(g.Next(alias), name)
}
