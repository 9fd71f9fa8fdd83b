// Package checker infers and validates the type of every expression,
// grounded on original_source/semantic.rs's get_tree_type/get_type/check
// trio. It also resolves Ref nodes in place (EntIdx/RowIdx/Resolved),
// exactly as semantic.rs's Ref arm mutates u/v on the node it is given.
package checker

import (
	"github.com/relique-lang/relique/internal/ast"
	"github.com/relique-lang/relique/internal/dbstate"
	"github.com/relique-lang/relique/internal/direrr"
	"github.com/relique-lang/relique/internal/evaluator"
)

// Env maps a bound identifier to its type, the Go equivalent of
// semantic.rs's HashMap<String, Type> parameter.
type Env map[string]*ast.Type

// Extend returns a new Env equal to e with name bound to t.
func (e Env) Extend(name string, t *ast.Type) Env {
	next := make(Env, len(e)+1)
	for k, v := range e {
		next[k] = v
	}
	next[name] = t
	return next
}

// Infer computes n's type, resolving any Ref nodes it contains against
// db as a side effect.
func Infer(n ast.Node, db *dbstate.DBState, env Env) (*ast.Type, error) {
	ln, cl := n.Pos()
	switch v := n.(type) {
	case *ast.IntLit:
		return ast.Int(), nil
	case *ast.CharLit:
		return ast.Char(), nil
	case *ast.BoolLit:
		return ast.Bool(), nil
	case *ast.DoubleLit:
		return ast.Double(), nil

	case *ast.Ref:
		return inferRef(v, db, env)

	case *ast.LambdaExpr:
		return InferLambda(v.Lambda, db, env)

	case *ast.ArrayLit:
		if len(v.Elems) == 0 {
			if v.ElemType == nil {
				return nil, direrr.Type(ln, cl, "An empty array literal needs an explicit element type.")
			}
			return ast.Array(v.ElemType), nil
		}
		elemType, err := Infer(v.Elems[0], db, env)
		if err != nil {
			return nil, err
		}
		for _, e := range v.Elems[1:] {
			t, err := Infer(e, db, env)
			if err != nil {
				return nil, err
			}
			if !elemType.Equal(t) {
				return nil, direrr.Type(ln, cl, "Array literals cannot contain elements of different types.")
			}
		}
		return ast.Array(elemType), nil

	case *ast.TupleLit:
		parts := make([]*ast.Type, len(v.Elems))
		for i, e := range v.Elems {
			t, err := Infer(e, db, env)
			if err != nil {
				return nil, err
			}
			parts[i] = t
		}
		return ast.Tuple(parts), nil

	case *ast.JustLit:
		t, err := Infer(v.Value, db, env)
		if err != nil {
			return nil, err
		}
		return ast.Maybe(t), nil

	case *ast.NothingLit:
		return ast.Maybe(v.Elem), nil

	case *ast.Ident:
		t, ok := env[v.Name]
		if !ok {
			return nil, direrr.Type(ln, cl, "Unrecognized identifier '%s'.", v.Name)
		}
		return t, nil

	case *ast.IfExpr:
		ct, err := Infer(v.Cond, db, env)
		if err != nil {
			return nil, err
		}
		if !ct.Equal(ast.Bool()) {
			return nil, direrr.Type(ln, cl, "The condition of an if-expression must be Bool.")
		}
		t1, err := Infer(v.Then, db, env)
		if err != nil {
			return nil, err
		}
		t2, err := Infer(v.Else, db, env)
		if err != nil {
			return nil, err
		}
		if t1.Equal(t2) {
			return t1, nil
		}
		return ast.Sum([]*ast.Type{t1, t2}), nil

	case *ast.BinOp:
		return inferBinOp(v, db, env)

	case *ast.Eq:
		return inferEq(v, db, env)

	case *ast.Cmp:
		return inferCmp(v, db, env)

	case *ast.For:
		return inferFor(v, db, env)

	case *ast.Call:
		return inferCall(v, db, env)

	case *ast.Dot:
		return inferDot(v, db, env)
	}
	return nil, direrr.Type(ln, cl, "Cannot infer the type of this expression.")
}

func inferRef(r *ast.Ref, db *dbstate.DBState, env Env) (*ast.Type, error) {
	ln, cl := r.Pos()
	entIdx, ok := db.FindEntity(r.Entity)
	if !ok {
		return nil, direrr.Type(ln, cl, "Reference to non-recognized entity '%s'.", r.Entity)
	}
	attrIdx, ok := db.FindAttr(entIdx, r.Attr)
	if !ok {
		return nil, direrr.Type(ln, cl, "Reference to non-recognized attribute '%s' of entity '%s'.", r.Attr, r.Entity)
	}
	attr := db.Header[entIdx].Attrs[attrIdx]
	if attr.Flag != ast.FlagUnique {
		return nil, direrr.Type(ln, cl, "Reference to non-unique attribute '%s' of entity '%s'.", r.Attr, r.Entity)
	}
	keyType, err := Infer(r.Key, db, env)
	if err != nil {
		return nil, err
	}
	if !attr.Type.Underlying().Equal(keyType) {
		return nil, direrr.Type(ln, cl, "The referenced value doesn't have the necessary type.")
	}
	keyVal, err := evaluator.Eval(r.Key, db, evaluator.NewEnv())
	if err != nil {
		return nil, err
	}
	col := db.Data[dbstate.EntKey{Ent: entIdx, Attr: attrIdx}]
	found := false
	for i, cell := range col {
		eq := &ast.Eq{Equal: true, Left: keyVal, Right: cell}
		res, err := evaluator.Eval(eq, db, evaluator.NewEnv())
		if err != nil {
			return nil, err
		}
		if b, ok := res.(*ast.BoolLit); ok && b.Value {
			found = true
			r.RowIdx = i
		}
	}
	if !found {
		return nil, direrr.Type(ln, cl, "The referenced value is not present in entity '%s'.", r.Entity)
	}
	r.EntIdx = entIdx
	r.Resolved = true
	return ast.Object(db.Header[entIdx].Name), nil
}

// InferLambda types a lambda as Func(paramTypes..., returnType).
// Beyond semantic.rs's Lambda::get_type (which ignores a self-name
// entirely), a self-named lambda has its own Func type bound in scope
// before its body is typed, so a recursive call to itself type-checks;
// the declared return type is then checked against the body's inferred
// type (spec.md's recursion requirement, unsupported in the original).
func InferLambda(l *ast.Lambda, db *dbstate.DBState, env Env) (*ast.Type, error) {
	bodyEnv := env
	paramTypes := make([]*ast.Type, len(l.Params))
	for i, p := range l.Params {
		if err := CheckSpType(ast.RegType(p.Type), db); err != nil {
			return nil, err
		}
		paramTypes[i] = p.Type
		bodyEnv = bodyEnv.Extend(p.Name, p.Type)
	}
	if l.SelfName != nil {
		if l.ReturnType == nil {
			ln, cl := l.Pos()
			return nil, direrr.Type(ln, cl, "A self-named lambda must declare its return type.")
		}
		selfType := ast.Func(append(append([]*ast.Type{}, paramTypes...), l.ReturnType)...)
		bodyEnv = bodyEnv.Extend(*l.SelfName, selfType)
	}
	bodyType, err := Infer(l.Body, db, bodyEnv)
	if err != nil {
		return nil, err
	}
	if l.ReturnType != nil && !l.ReturnType.Equal(bodyType) {
		ln, cl := l.Pos()
		return nil, direrr.Type(ln, cl, "Lambda body type '%s' doesn't match declared return type '%s'.", bodyType, l.ReturnType)
	}
	return ast.Func(append(append([]*ast.Type{}, paramTypes...), bodyType)...), nil
}

// CheckSpType validates a (possibly dependent) attribute type, grounded
// on semantic.rs's SpType::check.
func CheckSpType(s ast.SpType, db *dbstate.DBState) error {
	switch s.Kind {
	case ast.SpGen:
		if err := CheckSpType(ast.RegType(s.Base), db); err != nil {
			return err
		}
		ft, err := InferLambda(s.Gen, db, Env{})
		if err != nil {
			return err
		}
		want := ast.Func(ast.Int(), s.Base)
		if !ft.Equal(want) {
			return direrr.Type(0, 0, "Incorrect type of Gen function.")
		}
		return nil
	case ast.SpRestrict:
		if err := CheckSpType(ast.RegType(s.Base), db); err != nil {
			return err
		}
		ft, err := InferLambda(s.Pred, db, Env{})
		if err != nil {
			return err
		}
		want := ast.Func(s.Base, ast.Bool())
		if !ft.Equal(want) {
			return direrr.Type(0, 0, "Incorrect type of Restrict function.")
		}
		return nil
	default:
		return checkType(s.Base, db)
	}
}

func checkType(t *ast.Type, db *dbstate.DBState) error {
	switch t.Kind {
	case ast.TBool, ast.TChar, ast.TDouble, ast.TInt:
		return nil
	case ast.TArray, ast.TMaybe:
		return checkType(t.Elem, db)
	case ast.TTuple, ast.TFunc, ast.TSum:
		for _, p := range t.Parts {
			if err := checkType(p, db); err != nil {
				return err
			}
		}
		return nil
	case ast.TObject:
		if _, ok := db.FindEntity(t.Entity); !ok {
			return direrr.Type(0, 0, "Object type refers to a non-recognized entity '%s'.", t.Entity)
		}
		return nil
	}
	return nil
}
