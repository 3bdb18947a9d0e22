package visitors

import (
	"fmt"
	"sort"
)

var dialects = map[string]func(...Option) Emitter{
	"postgres": func(opts ...Option) Emitter { return NewPostgresVisitor(opts...) },
	"mysql":    func(opts ...Option) Emitter { return NewMySQLVisitor(opts...) },
	"sqlite":   func(opts ...Option) Emitter { return NewSQLiteVisitor(opts...) },
}

// Dialects returns the supported dialect names, sorted.
func Dialects() []string {
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForDialect returns an emitter for the named dialect. "postgresql",
// "pg" and "sqlite3" are accepted as aliases.
func ForDialect(name string, opts ...Option) (Emitter, error) {
	switch name {
	case "postgresql", "pg":
		name = "postgres"
	case "sqlite3":
		name = "sqlite"
	}
	ctor, ok := dialects[name]
	if !ok {
		return nil, fmt.Errorf("unknown dialect %q (supported: %v)", name, Dialects())
	}
	return ctor(opts...), nil
}
