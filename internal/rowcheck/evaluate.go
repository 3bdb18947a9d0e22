package rowcheck

import (
	"strings"

	"github.com/bawdo/relq/nodes"
)

// Field is one named value of a materialized record.
type Field struct {
	Name  string
	Value any
}

// Record is a materialized RecordNode; fields keep their declared order.
type Record struct {
	Type   string
	Fields []Field
}

func (r Record) String() string {
	var sb strings.Builder
	sb.WriteString(r.Type)
	sb.WriteString("{")
	for i, f := range r.Fields {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(f.Name)
		sb.WriteString(":")
		sb.WriteString(format(f.Value))
	}
	sb.WriteString("}")
	return sb.String()
}

// evaluate computes a projector over one row of the select aliased source.
// Projectors read source columns, constants and records of those.
func evaluate(e nodes.Expression, source nodes.Alias, row map[string]any) (any, error) {
	switch n := e.(type) {
	case *nodes.ColumnNode:
		if n.Alias != source {
			return nil, nodes.Violation(nodes.KindColumn, n.Alias, "projector reads %s outside its source", n.Name)
		}
		v, ok := row[n.Name]
		if !ok {
			return nil, nodes.Violation(nodes.KindColumn, n.Alias, "column %q missing from result", n.Name)
		}
		return v, nil
	case *nodes.ConstantNode:
		return n.Value, nil
	case *nodes.RecordNode:
		rec := Record{Type: n.TypeName, Fields: make([]Field, len(n.Fields))}
		for i, f := range n.Fields {
			v, err := evaluate(f.Expr, source, row)
			if err != nil {
				return nil, err
			}
			rec.Fields[i] = Field{Name: f.Name, Value: v}
		}
		return rec, nil
	default:
		return nil, nodes.Unsupported(e.Kind(), "projector evaluation does not support %s", e.Kind())
	}
}

// tuple returns the row values in result column order.
func tuple(names []string, row map[string]any) []any {
	out := make([]any, len(names))
	for i, name := range names {
		out[i] = row[name]
	}
	return out
}
