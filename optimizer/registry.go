package optimizer

import (
	"fmt"
	"strings"
)

// passRegistry maps configuration names to passes, in default order.
var passRegistry = []Pass{RedundantOrdering{}, UnusedColumns{}, SubqueryFlattener{}}

// PassNames returns the name of every known pass in default order.
func PassNames() []string {
	names := make([]string, len(passRegistry))
	for i, p := range passRegistry {
		names[i] = p.Name()
	}
	return names
}

// PassByName looks up a pass by its configuration name.
func PassByName(name string) (Pass, error) {
	for _, p := range passRegistry {
		if p.Name() == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("unknown pass %q (known: %s)", name, strings.Join(PassNames(), ", "))
}

// ParsePasses resolves a list of pass names, keeping their order.
func ParsePasses(names []string) ([]Pass, error) {
	passes := make([]Pass, 0, len(names))
	for _, n := range names {
		p, err := PassByName(strings.TrimSpace(n))
		if err != nil {
			return nil, err
		}
		passes = append(passes, p)
	}
	return passes, nil
}
