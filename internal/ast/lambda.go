package ast

// Param is one formal parameter of a Lambda.
type Param struct {
	Name string
	Type *Type
}

// Lambda is an anonymous function literal with an optional leading
// self-name enabling recursion (spec.md §4.1). When SelfName is set, the
// return type is mandatory and is checked against the body's inferred
// type; when it is unset, the return type annotation is optional and,
// when given, is checked against the body's inferred type as well.
type Lambda struct {
	SelfName   *string
	Params     []Param
	ReturnType *Type // as written in source; may be nil when omitted on a non-recursive lambda
	Body       Node
	Line, Col  int
}

func (l *Lambda) Pos() (int, int) {
	if l == nil {
		return 0, 0
	}
	return l.Line, l.Col
}

// ParamTypes returns the declared parameter types, in order.
func (l *Lambda) ParamTypes() []*Type {
	ts := make([]*Type, len(l.Params))
	for i, p := range l.Params {
		ts[i] = p.Type
	}
	return ts
}
