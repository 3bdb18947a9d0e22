package irdoc

import "gopkg.in/yaml.v3"

// document is the top level of an IR file. Exactly one root kind is set.
type document struct {
	Version    string         `yaml:"version"`
	Projection *projectionDoc `yaml:"projection,omitempty"`
	Select     *selectDoc     `yaml:"select,omitempty"`
	Update     *updateDoc     `yaml:"update,omitempty"`
	Delete     *deleteDoc     `yaml:"delete,omitempty"`
}

type projectionDoc struct {
	Unique    string     `yaml:"unique,omitempty"`
	Source    *selectDoc `yaml:"source"`
	Projector *exprDoc   `yaml:"projector"`
}

type tableDoc struct {
	Name  string `yaml:"name"`
	Alias string `yaml:"alias,omitempty"`
}

// sourceDoc is a FROM source: a table, a select or a join.
type sourceDoc struct {
	Table  *tableDoc  `yaml:"table,omitempty"`
	Select *selectDoc `yaml:"select,omitempty"`
	Join   *joinDoc   `yaml:"join,omitempty"`
}

type columnDoc struct {
	Name string   `yaml:"name"`
	Expr *exprDoc `yaml:"expr"`
}

type orderDoc struct {
	Expr *exprDoc `yaml:"expr"`
	Dir  string   `yaml:"dir,omitempty"`
}

type selectDoc struct {
	Alias    string      `yaml:"alias"`
	Distinct bool        `yaml:"distinct,omitempty"`
	Top      *exprDoc    `yaml:"top,omitempty"`
	Columns  []columnDoc `yaml:"columns"`
	From     *sourceDoc  `yaml:"from,omitempty"`
	Where    *exprDoc    `yaml:"where,omitempty"`
	OrderBy  []orderDoc  `yaml:"order_by,omitempty"`
	GroupBy  []*exprDoc  `yaml:"group_by,omitempty"`
}

type joinDoc struct {
	Type  string     `yaml:"type"`
	Left  *sourceDoc `yaml:"left"`
	Right *sourceDoc `yaml:"right"`
	On    *exprDoc   `yaml:"on,omitempty"`
}

type assignmentDoc struct {
	Column string   `yaml:"column"`
	Expr   *exprDoc `yaml:"expr"`
}

type updateDoc struct {
	Table  tableDoc        `yaml:"table"`
	Source *sourceDoc      `yaml:"source,omitempty"`
	Set    []assignmentDoc `yaml:"set"`
	Where  *exprDoc        `yaml:"where,omitempty"`
}

type deleteDoc struct {
	Table  tableDoc   `yaml:"table"`
	Source *sourceDoc `yaml:"source,omitempty"`
	Where  *exprDoc   `yaml:"where,omitempty"`
}

// columnRef is written either as "alias.name" or as a mapping carrying a
// semantic type.
type columnRef struct {
	Ref  string `yaml:"ref"`
	Type string `yaml:"type,omitempty"`
}

func (c *columnRef) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		c.Ref = n.Value
		return nil
	}
	type plain columnRef
	return n.Decode((*plain)(c))
}

type binaryDoc struct {
	Op    string   `yaml:"op"`
	Left  *exprDoc `yaml:"left"`
	Right *exprDoc `yaml:"right"`
}

type unaryDoc struct {
	Op   string   `yaml:"op"`
	Expr *exprDoc `yaml:"expr"`
}

type functionDoc struct {
	Name string     `yaml:"name"`
	Args []*exprDoc `yaml:"args,omitempty"`
}

type aggregateDoc struct {
	Func     string   `yaml:"func"`
	Distinct bool     `yaml:"distinct,omitempty"`
	Expr     *exprDoc `yaml:"expr,omitempty"`
}

type whenDoc struct {
	When *exprDoc `yaml:"when"`
	Then *exprDoc `yaml:"then"`
}

type caseDoc struct {
	Whens []whenDoc `yaml:"whens"`
	Else  *exprDoc  `yaml:"else,omitempty"`
}

type fieldDoc struct {
	Name string   `yaml:"name"`
	Expr *exprDoc `yaml:"expr"`
}

type recordDoc struct {
	Type   string     `yaml:"type"`
	Fields []fieldDoc `yaml:"fields"`
}

type rowNumberDoc struct {
	OrderBy []orderDoc `yaml:"order_by,omitempty"`
}

type inDoc struct {
	Operand *exprDoc   `yaml:"operand"`
	Select  *selectDoc `yaml:"select"`
}

type quantifiedDoc struct {
	Operand *exprDoc   `yaml:"operand"`
	Op      string     `yaml:"op"`
	Select  *selectDoc `yaml:"select"`
}

// exprDoc is a scalar expression. Exactly one field is set.
type exprDoc struct {
	Column    *columnRef     `yaml:"column,omitempty"`
	Constant  yaml.Node      `yaml:"constant,omitempty"` // Kind 0 when absent
	Date      string         `yaml:"date,omitempty"`
	Binary    *binaryDoc     `yaml:"binary,omitempty"`
	Unary     *unaryDoc      `yaml:"unary,omitempty"`
	Function  *functionDoc   `yaml:"function,omitempty"`
	Aggregate *aggregateDoc  `yaml:"aggregate,omitempty"`
	Case      *caseDoc       `yaml:"case,omitempty"`
	Record    *recordDoc     `yaml:"record,omitempty"`
	RowNumber *rowNumberDoc  `yaml:"row_number,omitempty"`
	Scalar    *selectDoc     `yaml:"scalar,omitempty"`
	Exists    *selectDoc     `yaml:"exists,omitempty"`
	In        *inDoc         `yaml:"in,omitempty"`
	All       *quantifiedDoc `yaml:"all,omitempty"`
	Any       *quantifiedDoc `yaml:"any,omitempty"`
}
