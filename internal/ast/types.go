package ast

import "strings"

// TypeKind enumerates the closed type algebra of spec.md §3.
type TypeKind int

const (
	TInt TypeKind = iota
	TChar
	TBool
	TDouble
	TObject
	TArray
	TMaybe
	TTuple
	TSum
	TFunc
)

// Type is a node of the closed type algebra. Object identity is by
// entity name only (source position, when tracked for diagnostics
// elsewhere, never participates in equality).
type Type struct {
	Kind   TypeKind
	Entity string  // valid when Kind == TObject
	Elem   *Type   // valid when Kind == TArray or TMaybe
	Parts  []*Type // valid when Kind == TTuple, TSum, or TFunc (TFunc's last element is the return type)
}

func Int() *Type    { return &Type{Kind: TInt} }
func Char() *Type   { return &Type{Kind: TChar} }
func Bool() *Type   { return &Type{Kind: TBool} }
func Double() *Type { return &Type{Kind: TDouble} }
func Object(name string) *Type { return &Type{Kind: TObject, Entity: name} }
func Array(elem *Type) *Type   { return &Type{Kind: TArray, Elem: elem} }
func Maybe(elem *Type) *Type   { return &Type{Kind: TMaybe, Elem: elem} }
func Tuple(parts []*Type) *Type { return &Type{Kind: TTuple, Parts: parts} }
func Sum(parts []*Type) *Type   { return &Type{Kind: TSum, Parts: parts} }

// Func builds a function type from parameter types plus a trailing
// return type, e.g. Func(Int(), Bool()) == Func(Int) -> Bool.
func Func(paramsAndReturn ...*Type) *Type {
	return &Type{Kind: TFunc, Parts: paramsAndReturn}
}

// Equal compares two types structurally; Object compares by entity name
// only.
func (t *Type) Equal(o *Type) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case TObject:
		return t.Entity == o.Entity
	case TArray, TMaybe:
		return t.Elem.Equal(o.Elem)
	case TTuple, TSum, TFunc:
		if len(t.Parts) != len(o.Parts) {
			return false
		}
		for i := range t.Parts {
			if !t.Parts[i].Equal(o.Parts[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case TInt:
		return "Int"
	case TChar:
		return "Char"
	case TBool:
		return "Bool"
	case TDouble:
		return "Double"
	case TObject:
		return "Object(" + t.Entity + ")"
	case TArray:
		return "[" + t.Elem.String() + "]"
	case TMaybe:
		return "Maybe(" + t.Elem.String() + ")"
	case TTuple:
		return "(" + joinTypes(t.Parts, ", ") + ")"
	case TSum:
		return "Sum(" + joinTypes(t.Parts, ", ") + ")"
	case TFunc:
		return "Func(" + joinTypes(t.Parts, ", ") + ")"
	default:
		return "?"
	}
}

func joinTypes(ts []*Type, sep string) string {
	var b strings.Builder
	for i, t := range ts {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(t.String())
	}
	return b.String()
}

// IsNumeric reports whether t is Int or Double.
func (t *Type) IsNumeric() bool {
	return t.Kind == TInt || t.Kind == TDouble
}

// IsOrdinal reports whether t is Int or Char (cross-comparable pair).
func (t *Type) IsOrdinal() bool {
	return t.Kind == TInt || t.Kind == TChar
}

// SpTypeKind distinguishes the three attribute-type shapes of spec.md §3.
type SpTypeKind int

const (
	SpReg SpTypeKind = iota
	SpRestrict
	SpGen
)

// SpType is an attribute's declared type: a plain type, or one of the
// two dependent modifiers (Restrict/Gen).
type SpType struct {
	Kind    SpTypeKind
	Base    *Type
	Pred    *Lambda // valid when Kind == SpRestrict: Func(Base, Bool)
	Gen     *Lambda // valid when Kind == SpGen: Func(Int, Base)
	Counter uint64  // valid when Kind == SpGen; monotonically increasing
}

func RegType(t *Type) SpType { return SpType{Kind: SpReg, Base: t} }

func RestrictType(t *Type, pred *Lambda) SpType {
	return SpType{Kind: SpRestrict, Base: t, Pred: pred}
}

func GenType(t *Type, gen *Lambda, counter uint64) SpType {
	return SpType{Kind: SpGen, Base: t, Gen: gen, Counter: counter}
}

// Underlying returns the base Type regardless of modifier, i.e. the T in
// Reg(T), Restrict(T, _), Gen(T, _, _).
func (s SpType) Underlying() *Type { return s.Base }

func (s SpType) String() string {
	switch s.Kind {
	case SpRestrict:
		return "Restrict(" + s.Base.String() + ", <pred>)"
	case SpGen:
		return "Gen(" + s.Base.String() + ", <gen>)"
	default:
		return s.Base.String()
	}
}

// AttrFlag is the mutually-exclusive set of per-attribute modifiers.
type AttrFlag int

const (
	FlagNone AttrFlag = iota
	FlagComputable
	FlagGlobal
	FlagUnique
)

// Attr is one column definition of an entity.
type Attr struct {
	Name    string
	Type    SpType
	Default *Lambda // row-default (reshape `new ... as`) or, for Global, the constant value expression
	Flag    AttrFlag
}
