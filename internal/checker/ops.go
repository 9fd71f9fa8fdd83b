package checker

import (
	"github.com/relique-lang/relique/internal/ast"
	"github.com/relique-lang/relique/internal/dbstate"
	"github.com/relique-lang/relique/internal/direrr"
)

func numeric(t *ast.Type) bool { return t.Kind == ast.TInt || t.Kind == ast.TDouble }

func widenNumeric(t1, t2 *ast.Type) *ast.Type {
	if t1.Kind == ast.TDouble || t2.Kind == ast.TDouble {
		return ast.Double()
	}
	return ast.Int()
}

func inferBinOp(b *ast.BinOp, db *dbstate.DBState, env Env) (*ast.Type, error) {
	ln, cl := b.Pos()
	t1, err := Infer(b.Left, db, env)
	if err != nil {
		return nil, err
	}
	t2, err := Infer(b.Right, db, env)
	if err != nil {
		return nil, err
	}
	if b.Op == '%' {
		if t1.Kind == ast.TInt && t2.Kind == ast.TInt {
			return ast.Int(), nil
		}
		return nil, direrr.Type(ln, cl, "'%s' %% '%s' is undefined.", t1, t2)
	}
	if b.Op == '+' {
		if numeric(t1) && numeric(t2) {
			return widenNumeric(t1, t2), nil
		}
		if t1.Kind == ast.TTuple && t2.Kind == ast.TTuple {
			return ast.Tuple(append(append([]*ast.Type{}, t1.Parts...), t2.Parts...)), nil
		}
		if t1.Kind == ast.TArray && t2.Kind == ast.TArray && t1.Elem.Equal(t2.Elem) {
			return ast.Array(t1.Elem), nil
		}
		return nil, direrr.Type(ln, cl, "'%s' + '%s' is undefined.", t1, t2)
	}
	if numeric(t1) && numeric(t2) {
		return widenNumeric(t1, t2), nil
	}
	return nil, direrr.Type(ln, cl, "'%s' %c '%s' is undefined.", t1, b.Op, t2)
}

// inferEq grounds on semantic.rs's Eq arm: most types must match their
// own kind exactly; Int and Char are mutually comparable; Double
// explicitly rejects comparison against either Int or Double (inexact
// equality), matching the original's deliberate restriction.
func inferEq(e *ast.Eq, db *dbstate.DBState, env Env) (*ast.Type, error) {
	ln, cl := e.Pos()
	t1, err := Infer(e.Left, db, env)
	if err != nil {
		return nil, err
	}
	t2, err := Infer(e.Right, db, env)
	if err != nil {
		return nil, err
	}
	switch t1.Kind {
	case ast.TObject, ast.TFunc, ast.TSum:
		return nil, direrr.Type(ln, cl, "Types '%s' and '%s' are noncomparable for equality.", t1, t2)
	case ast.TDouble:
		if t2.Kind == ast.TDouble || t2.Kind == ast.TInt {
			return nil, direrr.Type(ln, cl, "Comparing double with int or double is disallowed because it is inexact.")
		}
		return nil, direrr.Type(ln, cl, "Types '%s' and '%s' are noncomparable for equality.", t1, t2)
	case ast.TInt, ast.TChar:
		if t2.Kind != ast.TInt && t2.Kind != ast.TChar {
			return nil, direrr.Type(ln, cl, "Types '%s' and '%s' are noncomparable for equality.", t1, t2)
		}
	default:
		if !t1.Equal(t2) {
			return nil, direrr.Type(ln, cl, "Types '%s' and '%s' are noncomparable for equality.", t1, t2)
		}
	}
	return ast.Bool(), nil
}

func inferCmp(c *ast.Cmp, db *dbstate.DBState, env Env) (*ast.Type, error) {
	ln, cl := c.Pos()
	t1, err := Infer(c.Left, db, env)
	if err != nil {
		return nil, err
	}
	t2, err := Infer(c.Right, db, env)
	if err != nil {
		return nil, err
	}
	ord := func(t *ast.Type) bool { return t.Kind == ast.TInt || t.Kind == ast.TChar }
	if ord(t1) && ord(t2) {
		return ast.Bool(), nil
	}
	if numeric(t1) && numeric(t2) {
		return ast.Bool(), nil
	}
	return nil, direrr.Type(ln, cl, "Types '%s' and '%s' are noncomparable.", t1, t2)
}

// inferFor grounds on semantic.rs's For arm: the lambda must be
// Func(Object(ent), Maybe(T)); the comprehension's type is [T].
func inferFor(f *ast.For, db *dbstate.DBState, env Env) (*ast.Type, error) {
	ln, cl := f.Pos()
	if _, ok := db.FindEntity(f.Entity); !ok {
		return nil, direrr.Type(ln, cl, "Reference to non-recognized entity '%s' in 'for'.", f.Entity)
	}
	lmType, err := InferLambda(f.Lambda, db, env)
	if err != nil {
		return nil, err
	}
	if lmType.Kind == ast.TFunc && len(lmType.Parts) == 2 {
		if lmType.Parts[0].Equal(ast.Object(f.Entity)) && lmType.Parts[1].Kind == ast.TMaybe {
			return ast.Array(lmType.Parts[1].Elem), nil
		}
	}
	return nil, direrr.Type(ln, cl, "Wrong type of lambda in 'for'.")
}

func inferCall(c *ast.Call, db *dbstate.DBState, env Env) (*ast.Type, error) {
	ln, cl := c.Pos()
	ft, err := Infer(c.Func, db, env)
	if err != nil {
		return nil, err
	}
	if ft.Kind != ast.TFunc {
		return nil, direrr.Type(ln, cl, "Non-function type cannot be called.")
	}
	want := ft.Parts[:len(ft.Parts)-1]
	if len(want) != len(c.Args) {
		return nil, direrr.Type(ln, cl, "Parameter type mismatch in call.")
	}
	for i, a := range c.Args {
		at, err := Infer(a, db, env)
		if err != nil {
			return nil, err
		}
		if !want[i].Equal(at) {
			return nil, direrr.Type(ln, cl, "Parameter type mismatch in call.")
		}
	}
	return ft.Parts[len(ft.Parts)-1], nil
}

// inferDot grounds on semantic.rs's Dot arm, including the Global
// attribute read it resolves (original only stubs Std.* there).
func inferDot(d *ast.Dot, db *dbstate.DBState, env Env) (*ast.Type, error) {
	ln, cl := d.Pos()
	if ident, ok := d.Left.(*ast.Ident); ok {
		if ident.Name == "Std" {
			return nil, direrr.Type(ln, cl, "Unrecognized standard identifier '%s'.", d.Attr)
		}
		if entIdx, ok := db.FindEntity(ident.Name); ok {
			if attrIdx, ok := db.FindAttr(entIdx, d.Attr); ok {
				attr := db.Header[entIdx].Attrs[attrIdx]
				if attr.Flag == ast.FlagGlobal {
					return attr.Type.Underlying(), nil
				}
			}
		}
	}
	leftType, err := Infer(d.Left, db, env)
	if err != nil {
		return nil, err
	}
	if leftType.Kind != ast.TObject {
		return nil, direrr.Type(ln, cl, "'.' applied to a non-reference expression.")
	}
	entIdx, ok := db.FindEntity(leftType.Entity)
	if !ok {
		return nil, direrr.Type(ln, cl, "Unrecognized entity '%s' of attribute '%s'.", leftType.Entity, d.Attr)
	}
	attrIdx, ok := db.FindAttr(entIdx, d.Attr)
	if !ok {
		return nil, direrr.Type(ln, cl, "Unrecognized attribute '%s' of entity '%s'.", d.Attr, leftType.Entity)
	}
	return db.Header[entIdx].Attrs[attrIdx].Type.Underlying(), nil
}
