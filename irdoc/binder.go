package irdoc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/araddon/dateparse"
	"gopkg.in/yaml.v3"

	"github.com/bawdo/relq/nodes"
)

// binder turns document structs into IR nodes, issuing one alias per
// document alias name.
type binder struct {
	gen     *nodes.AliasGenerator
	aliases map[string]nodes.Alias
}

func newBinder() *binder {
	return &binder{gen: nodes.NewAliasGenerator(), aliases: make(map[string]nodes.Alias)}
}

// at prefixes err with a location.
func at(where string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", where, err)
}

func (b *binder) define(name string) (nodes.Alias, error) {
	if name == "" {
		return nodes.NoAlias, errors.New("missing alias")
	}
	if strings.Contains(name, ".") {
		return nodes.NoAlias, fmt.Errorf("alias %q contains a dot", name)
	}
	if _, dup := b.aliases[name]; dup {
		return nodes.NoAlias, fmt.Errorf("alias %q defined twice", name)
	}
	a := b.gen.Next(name)
	b.aliases[name] = a
	return a, nil
}

func (b *binder) lookup(name string) (nodes.Alias, error) {
	a, ok := b.aliases[name]
	if !ok {
		return nodes.NoAlias, fmt.Errorf("unknown alias %q", name)
	}
	return a, nil
}

func (b *binder) root(d *document) (nodes.Expression, error) {
	set := 0
	for _, present := range []bool{d.Projection != nil, d.Select != nil, d.Update != nil, d.Delete != nil} {
		if present {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("want exactly one of projection, select, update, delete; got %d", set)
	}
	var root nodes.Expression
	var err error
	switch {
	case d.Projection != nil:
		root, err = b.projection(d.Projection)
		err = at("projection", err)
	case d.Select != nil:
		root, err = b.selectNode(d.Select)
	case d.Update != nil:
		root, err = b.update(d.Update)
		err = at("update", err)
	default:
		root, err = b.delete(d.Delete)
		err = at("delete", err)
	}
	if err != nil {
		return nil, err
	}
	return root, nil
}

var uniqueNames = map[string]nodes.UniqueFunction{
	"":                  nodes.NoUnique,
	"first":             nodes.First,
	"first_or_default":  nodes.FirstOrDefault,
	"single":            nodes.Single,
	"single_or_default": nodes.SingleOrDefault,
}

func (b *binder) projection(d *projectionDoc) (*nodes.ProjectionNode, error) {
	unique, ok := uniqueNames[d.Unique]
	if !ok {
		return nil, fmt.Errorf("unknown unique function %q", d.Unique)
	}
	if d.Source == nil {
		return nil, errors.New("missing source")
	}
	source, err := b.selectNode(d.Source)
	if err != nil {
		return nil, at("source", err)
	}
	projector, err := b.expr(d.Projector)
	if err != nil {
		return nil, at("projector", err)
	}
	return &nodes.ProjectionNode{Source: source, Projector: projector, Unique: unique}, nil
}

func (b *binder) table(d *tableDoc) (*nodes.TableNode, error) {
	if d.Name == "" {
		return nil, errors.New("table without name")
	}
	name := d.Alias
	if name == "" {
		name = d.Name
	}
	a, err := b.define(name)
	if err != nil {
		return nil, err
	}
	return nodes.NewTable(a, d.Name), nil
}

func (b *binder) source(d *sourceDoc) (nodes.Source, error) {
	if d == nil {
		return nil, errors.New("missing source")
	}
	switch {
	case d.Table != nil && d.Select == nil && d.Join == nil:
		t, err := b.table(d.Table)
		if err != nil {
			return nil, err
		}
		return t, nil
	case d.Select != nil && d.Table == nil && d.Join == nil:
		s, err := b.selectNode(d.Select)
		if err != nil {
			return nil, err
		}
		return s, nil
	case d.Join != nil && d.Table == nil && d.Select == nil:
		j, err := b.join(d.Join)
		if err != nil {
			return nil, at("join", err)
		}
		return j, nil
	default:
		return nil, errors.New("want exactly one of table, select, join")
	}
}

func (b *binder) selectNode(d *selectDoc) (*nodes.SelectNode, error) {
	if d == nil {
		return nil, errors.New("missing select")
	}
	alias, err := b.define(d.Alias)
	if err != nil {
		return nil, at("select", err)
	}
	where := "select " + d.Alias

	n := &nodes.SelectNode{Alias: alias, Distinct: d.Distinct}
	if d.From != nil {
		if n.From, err = b.source(d.From); err != nil {
			return nil, at(where+": from", err)
		}
	}
	n.Columns = make([]nodes.ColumnDeclaration, len(d.Columns))
	for i, c := range d.Columns {
		if c.Name == "" {
			return nil, fmt.Errorf("%s: columns[%d]: missing name", where, i)
		}
		expr, err := b.expr(c.Expr)
		if err != nil {
			return nil, at(fmt.Sprintf("%s: column %s", where, c.Name), err)
		}
		n.Columns[i] = nodes.ColumnDeclaration{Name: c.Name, Expr: expr}
	}
	if n.Top, err = b.optionalExpr(d.Top); err != nil {
		return nil, at(where+": top", err)
	}
	if n.Where, err = b.optionalExpr(d.Where); err != nil {
		return nil, at(where+": where", err)
	}
	if n.OrderBy, err = b.orderBy(d.OrderBy); err != nil {
		return nil, at(where+": order_by", err)
	}
	for i, g := range d.GroupBy {
		expr, err := b.expr(g)
		if err != nil {
			return nil, at(fmt.Sprintf("%s: group_by[%d]", where, i), err)
		}
		n.GroupBy = append(n.GroupBy, expr)
	}
	return n, nil
}

var joinTypes = map[string]nodes.JoinType{
	"":                nodes.InnerJoin,
	"inner":           nodes.InnerJoin,
	"left":            nodes.LeftOuterJoin,
	"single_row_left": nodes.SingleRowLeftOuterJoin,
	"right":           nodes.RightOuterJoin,
	"full":            nodes.FullOuterJoin,
	"cross":           nodes.CrossJoin,
	"cross_apply":     nodes.CrossApply,
	"outer_apply":     nodes.OuterApply,
}

func (b *binder) join(d *joinDoc) (*nodes.JoinNode, error) {
	jt, ok := joinTypes[d.Type]
	if !ok {
		return nil, fmt.Errorf("unknown join type %q", d.Type)
	}
	left, err := b.source(d.Left)
	if err != nil {
		return nil, at("left", err)
	}
	right, err := b.source(d.Right)
	if err != nil {
		return nil, at("right", err)
	}
	cond, err := b.optionalExpr(d.On)
	if err != nil {
		return nil, at("on", err)
	}
	return &nodes.JoinNode{Type: jt, Left: left, Right: right, Condition: cond}, nil
}

func (b *binder) dmlSource(table *nodes.TableNode, d *sourceDoc) (nodes.Source, error) {
	if d == nil {
		return table, nil
	}
	src, err := b.source(d)
	if err != nil {
		return nil, at("source", err)
	}
	return src, nil
}

func (b *binder) update(d *updateDoc) (*nodes.UpdateNode, error) {
	table, err := b.table(&d.Table)
	if err != nil {
		return nil, at("table", err)
	}
	n := &nodes.UpdateNode{Table: table}
	if n.Source, err = b.dmlSource(table, d.Source); err != nil {
		return nil, err
	}
	if len(d.Set) == 0 {
		return nil, errors.New("no assignments")
	}
	for _, a := range d.Set {
		if a.Column == "" {
			return nil, errors.New("assignment without column")
		}
		expr, err := b.expr(a.Expr)
		if err != nil {
			return nil, at("set "+a.Column, err)
		}
		n.Assignments = append(n.Assignments, nodes.ColumnAssignment{Column: a.Column, Expr: expr})
	}
	if n.Where, err = b.optionalExpr(d.Where); err != nil {
		return nil, at("where", err)
	}
	return n, nil
}

func (b *binder) delete(d *deleteDoc) (*nodes.DeleteNode, error) {
	table, err := b.table(&d.Table)
	if err != nil {
		return nil, at("table", err)
	}
	n := &nodes.DeleteNode{Table: table}
	if n.Source, err = b.dmlSource(table, d.Source); err != nil {
		return nil, err
	}
	if n.Where, err = b.optionalExpr(d.Where); err != nil {
		return nil, at("where", err)
	}
	return n, nil
}

func (b *binder) orderBy(docs []orderDoc) ([]nodes.OrderNode, error) {
	var out []nodes.OrderNode
	for i, o := range docs {
		var dir nodes.Direction
		switch strings.ToLower(o.Dir) {
		case "", "asc":
			dir = nodes.Asc
		case "desc":
			dir = nodes.Desc
		default:
			return nil, fmt.Errorf("[%d]: unknown direction %q", i, o.Dir)
		}
		expr, err := b.expr(o.Expr)
		if err != nil {
			return nil, at(fmt.Sprintf("[%d]", i), err)
		}
		out = append(out, nodes.OrderNode{Direction: dir, Expr: expr})
	}
	return out, nil
}

func (b *binder) optionalExpr(d *exprDoc) (nodes.Expression, error) {
	if d == nil {
		return nil, nil
	}
	return b.expr(d)
}

var binaryOps = map[string]nodes.BinaryOp{
	"=": nodes.OpEq, "<>": nodes.OpNotEq, "!=": nodes.OpNotEq,
	"<": nodes.OpLt, "<=": nodes.OpLtEq, ">": nodes.OpGt, ">=": nodes.OpGtEq,
	"like": nodes.OpLike, "and": nodes.OpAnd, "or": nodes.OpOr,
	"+": nodes.OpAdd, "-": nodes.OpSub, "*": nodes.OpMul, "/": nodes.OpDiv,
	"||": nodes.OpConcat,
}

var unaryOps = map[string]nodes.UnaryOp{
	"not":         nodes.OpNot,
	"negate":      nodes.OpNegate,
	"is_null":     nodes.OpIsNull,
	"is_not_null": nodes.OpIsNotNull,
}

var aggregateFuncs = map[string]nodes.AggregateFunc{
	"count": nodes.AggCount,
	"sum":   nodes.AggSum,
	"avg":   nodes.AggAvg,
	"min":   nodes.AggMin,
	"max":   nodes.AggMax,
}

var semanticTypes = map[string]nodes.SemanticType{
	"":      nodes.TypeUnknown,
	"int":   nodes.TypeInt,
	"float": nodes.TypeFloat,
	"text":  nodes.TypeText,
	"bool":  nodes.TypeBool,
	"date":  nodes.TypeDate,
}

func exprKinds(d *exprDoc) int {
	n := 0
	for _, set := range []bool{
		d.Column != nil, d.Constant.Kind != 0, d.Date != "", d.Binary != nil,
		d.Unary != nil, d.Function != nil, d.Aggregate != nil, d.Case != nil,
		d.Record != nil, d.RowNumber != nil, d.Scalar != nil, d.Exists != nil,
		d.In != nil, d.All != nil, d.Any != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

func (b *binder) expr(d *exprDoc) (nodes.Expression, error) {
	if d == nil {
		return nil, errors.New("missing expression")
	}
	if k := exprKinds(d); k != 1 {
		return nil, fmt.Errorf("expression must have exactly one kind, got %d", k)
	}
	switch {
	case d.Column != nil:
		return b.column(d.Column)
	case d.Constant.Kind != 0:
		return constant(&d.Constant)
	case d.Date != "":
		t, err := dateparse.ParseAny(d.Date)
		if err != nil {
			return nil, fmt.Errorf("date %q: %w", d.Date, err)
		}
		return &nodes.ConstantNode{Value: t, Type: nodes.TypeDate}, nil
	case d.Binary != nil:
		return b.binary(d.Binary)
	case d.Unary != nil:
		op, ok := unaryOps[d.Unary.Op]
		if !ok {
			return nil, fmt.Errorf("unknown unary operator %q", d.Unary.Op)
		}
		e, err := b.expr(d.Unary.Expr)
		if err != nil {
			return nil, at(d.Unary.Op, err)
		}
		return &nodes.UnaryNode{Op: op, Expr: e}, nil
	case d.Function != nil:
		args, err := b.exprs(d.Function.Args)
		if err != nil {
			return nil, at(d.Function.Name, err)
		}
		return nodes.Func(d.Function.Name, args...), nil
	case d.Aggregate != nil:
		return b.aggregate(d.Aggregate)
	case d.Case != nil:
		return b.caseExpr(d.Case)
	case d.Record != nil:
		return b.record(d.Record)
	case d.RowNumber != nil:
		orderBy, err := b.orderBy(d.RowNumber.OrderBy)
		if err != nil {
			return nil, at("row_number", err)
		}
		return &nodes.RowNumberNode{OrderBy: orderBy}, nil
	case d.Scalar != nil:
		sel, err := b.selectNode(d.Scalar)
		return subquery(nodes.ScalarSubquery, sel, nil, 0, err)
	case d.Exists != nil:
		sel, err := b.selectNode(d.Exists)
		return subquery(nodes.ExistsSubquery, sel, nil, 0, err)
	case d.In != nil:
		operand, err := b.expr(d.In.Operand)
		if err != nil {
			return nil, at("in", err)
		}
		sel, err := b.selectNode(d.In.Select)
		return subquery(nodes.InSubquery, sel, operand, 0, err)
	case d.All != nil:
		return b.quantified(nodes.AllSubquery, d.All)
	default:
		return b.quantified(nodes.AnySubquery, d.Any)
	}
}

func (b *binder) exprs(docs []*exprDoc) ([]nodes.Expression, error) {
	out := make([]nodes.Expression, len(docs))
	for i, d := range docs {
		e, err := b.expr(d)
		if err != nil {
			return nil, at(fmt.Sprintf("[%d]", i), err)
		}
		out[i] = e
	}
	return out, nil
}

func (b *binder) column(c *columnRef) (nodes.Expression, error) {
	alias, name, ok := strings.Cut(c.Ref, ".")
	if !ok || alias == "" || name == "" {
		return nil, fmt.Errorf("column %q: want alias.name", c.Ref)
	}
	a, err := b.lookup(alias)
	if err != nil {
		return nil, at("column "+c.Ref, err)
	}
	typ, ok := semanticTypes[c.Type]
	if !ok {
		return nil, fmt.Errorf("column %q: unknown type %q", c.Ref, c.Type)
	}
	return nodes.NewColumn(a, name, typ), nil
}

func constant(n *yaml.Node) (nodes.Expression, error) {
	if n.Kind != yaml.ScalarNode {
		return nil, errors.New("constant must be a scalar")
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, err
	}
	if v == nil {
		return nodes.Null(), nil
	}
	return nodes.Constant(v), nil
}

func (b *binder) binary(d *binaryDoc) (nodes.Expression, error) {
	op, ok := binaryOps[strings.ToLower(d.Op)]
	if !ok {
		return nil, fmt.Errorf("unknown binary operator %q", d.Op)
	}
	left, err := b.expr(d.Left)
	if err != nil {
		return nil, at(d.Op+" left", err)
	}
	right, err := b.expr(d.Right)
	if err != nil {
		return nil, at(d.Op+" right", err)
	}
	return &nodes.BinaryNode{Op: op, Left: left, Right: right}, nil
}

func (b *binder) aggregate(d *aggregateDoc) (nodes.Expression, error) {
	fn, ok := aggregateFuncs[strings.ToLower(d.Func)]
	if !ok {
		return nil, fmt.Errorf("unknown aggregate %q", d.Func)
	}
	e, err := b.optionalExpr(d.Expr)
	if err != nil {
		return nil, at(d.Func, err)
	}
	if e == nil && fn != nodes.AggCount {
		return nil, fmt.Errorf("%s needs an argument", d.Func)
	}
	return &nodes.AggregateNode{Func: fn, Distinct: d.Distinct, Expr: e}, nil
}

func (b *binder) caseExpr(d *caseDoc) (nodes.Expression, error) {
	if len(d.Whens) == 0 {
		return nil, errors.New("case without when")
	}
	n := &nodes.CaseNode{}
	for i, w := range d.Whens {
		cond, err := b.expr(w.When)
		if err != nil {
			return nil, at(fmt.Sprintf("case when[%d]", i), err)
		}
		result, err := b.expr(w.Then)
		if err != nil {
			return nil, at(fmt.Sprintf("case then[%d]", i), err)
		}
		n.Whens = append(n.Whens, nodes.When{Condition: cond, Result: result})
	}
	var err error
	if n.Else, err = b.optionalExpr(d.Else); err != nil {
		return nil, at("case else", err)
	}
	return n, nil
}

func (b *binder) record(d *recordDoc) (nodes.Expression, error) {
	n := &nodes.RecordNode{TypeName: d.Type}
	seen := make(map[string]bool)
	for _, f := range d.Fields {
		if seen[f.Name] {
			return nil, fmt.Errorf("record %s: field %q bound twice", d.Type, f.Name)
		}
		seen[f.Name] = true
		e, err := b.expr(f.Expr)
		if err != nil {
			return nil, at("record "+d.Type+"."+f.Name, err)
		}
		n.Fields = append(n.Fields, nodes.FieldBinding{Name: f.Name, Expr: e})
	}
	return n, nil
}

func (b *binder) quantified(typ nodes.SubqueryType, d *quantifiedDoc) (nodes.Expression, error) {
	op, ok := binaryOps[d.Op]
	if !ok || !op.Comparison() {
		return nil, fmt.Errorf("quantified subquery needs a comparison operator, got %q", d.Op)
	}
	operand, err := b.expr(d.Operand)
	if err != nil {
		return nil, err
	}
	sel, err := b.selectNode(d.Select)
	return subquery(typ, sel, operand, op, err)
}

func subquery(typ nodes.SubqueryType, sel *nodes.SelectNode, operand nodes.Expression, op nodes.BinaryOp, err error) (nodes.Expression, error) {
	if err != nil {
		return nil, err
	}
	return &nodes.SubqueryNode{Type: typ, Select: sel, Operand: operand, Op: op}, nil
}
