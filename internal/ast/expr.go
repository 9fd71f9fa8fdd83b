package ast

// Node is the base interface for every expression node. Value is the
// term used in spec.md for a normal-form expression: evaluation never
// leaves this interface, it only narrows which concrete kind a Node is.
//
// Nodes synthesized by the evaluator (rather than parsed from source)
// report Line==0, Col==0; direrr formats such errors without a position.
type Node interface {
	Pos() (line, col int)
	node()
}

// Span is the embeddable source position every concrete Node carries.
type Span struct{ Line, Col int }

// At builds a Span, used by internal/parser when attaching a node's
// source position.
func At(line, col int) Span { return Span{Line: line, Col: col} }

func (s Span) Pos() (int, int) { return s.Line, s.Col }
func (Span) node()             {}

// IntLit is an integer literal / value.
type IntLit struct {
	Span
	Value int64
}

// CharLit is a character literal / value.
type CharLit struct {
	Span
	Value rune
}

// BoolLit is a boolean literal / value.
type BoolLit struct {
	Span
	Value bool
}

// DoubleLit is a floating-point literal / value.
type DoubleLit struct {
	Span
	Value float64
}

// NothingLit is the empty Maybe, carrying the element type (needed since
// there is no value to infer it from).
type NothingLit struct {
	Span
	Elem *Type
}

// JustLit wraps a present Maybe value.
type JustLit struct {
	Span
	Value Node
}

// ArrayLit is an array literal / value. ElemType is only meaningful (and
// only required) when Elems is empty.
type ArrayLit struct {
	Span
	Elems    []Node
	ElemType *Type
}

// TupleLit is a tuple literal / value.
type TupleLit struct {
	Span
	Elems []Node
}

// Ident is a free identifier reference, resolved against the evaluation
// environment.
type Ident struct {
	Span
	Name string
}

// BinOp covers the numeric operators + - * /, which promote Int/Double,
// % on Int operands only, plus ^ (exponent); Op holds the source
// operator rune.
type BinOp struct {
	Span
	Op          byte // '+', '-', '*', '/', '%', '^'
	Left, Right Node
}

// Dot is attribute access: Left.Attr. Left is typically an Ident naming
// an entity (Global-attribute read) or an expression of Object(E) type
// (row attribute read).
type Dot struct {
	Span
	Left    Node
	Attr    string
	AttrPos Span
}

// Call applies Func to Args.
type Call struct {
	Span
	Func Node
	Args []Node
}

// Eq is == (Equal==true) or != (Equal==false).
type Eq struct {
	Span
	Equal       bool
	Left, Right Node
}

// Cmp is one of < > <= >=. Greater selects >/>=, NonStrict selects the
// "or-equal" variant.
type Cmp struct {
	Span
	Greater, NonStrict bool
	Left, Right        Node
}

// IfExpr is `if cond then a else b`.
type IfExpr struct {
	Span
	Cond, Then, Else Node
}

// LambdaExpr wraps a Lambda so it can appear as a value/expression.
type LambdaExpr struct {
	Span
	Lambda *Lambda
}

// For is the `for(E) lambda` comprehension over entity E's rows.
type For struct {
	Span
	Entity string
	Lambda *Lambda
}

// Ref denotes a specific row of an entity, keyed by a Unique attribute's
// value. EntIdx/RowIdx are resolved by the type checker (see
// internal/checker) and are meaningless until Resolved is true.
type Ref struct {
	Span
	Entity, Attr   string
	Key            Node
	EntIdx, RowIdx int
	Resolved       bool
}
