package evaluator

import (
	"github.com/relique-lang/relique/internal/ast"
	"github.com/relique-lang/relique/internal/dbstate"
	"github.com/relique-lang/relique/internal/direrr"
)

// Eval reduces n to normal form: a literal, a Ref, or a LambdaExpr.
// Values are themselves AST nodes (spec.md's "Value" is just a Node in
// normal form), matching original_source/compute.rs's ExprTree reuse.
func Eval(n ast.Node, db *dbstate.DBState, env *Env) (ast.Node, error) {
	switch v := n.(type) {
	case *ast.IntLit, *ast.CharLit, *ast.BoolLit, *ast.DoubleLit, *ast.NothingLit, *ast.LambdaExpr, *ast.Ref:
		return n, nil

	case *ast.JustLit:
		inner, err := Eval(v.Value, db, env)
		if err != nil {
			return nil, err
		}
		return &ast.JustLit{Span: v.Span, Value: inner}, nil

	case *ast.ArrayLit:
		elems := make([]ast.Node, len(v.Elems))
		for i, e := range v.Elems {
			r, err := Eval(e, db, env)
			if err != nil {
				return nil, err
			}
			elems[i] = r
		}
		return &ast.ArrayLit{Span: v.Span, Elems: elems, ElemType: v.ElemType}, nil

	case *ast.TupleLit:
		elems := make([]ast.Node, len(v.Elems))
		for i, e := range v.Elems {
			r, err := Eval(e, db, env)
			if err != nil {
				return nil, err
			}
			elems[i] = r
		}
		return &ast.TupleLit{Span: v.Span, Elems: elems}, nil

	case *ast.IfExpr:
		cond, err := Eval(v.Cond, db, env)
		if err != nil {
			return nil, err
		}
		if b, ok := cond.(*ast.BoolLit); ok && b.Value {
			return Eval(v.Then, db, env)
		}
		return Eval(v.Else, db, env)

	case *ast.BinOp:
		return evalBinOp(v, db, env)

	case *ast.Cmp:
		return evalCmp(v, db, env)

	case *ast.Eq:
		return evalEq(v, db, env)

	case *ast.Ident:
		val, ok := env.Lookup(v.Name)
		if !ok {
			ln, cl := v.Pos()
			return nil, direrr.Runtime(ln, cl, "Undefined identifier '%s'", v.Name)
		}
		return val, nil

	case *ast.For:
		return evalFor(v, db, env)

	case *ast.Call:
		return evalCall(v, db, env)

	case *ast.Dot:
		return evalDot(v, db, env)
	}
	ln, cl := n.Pos()
	return nil, direrr.Runtime(ln, cl, "Cannot evaluate this expression.")
}

func evalFor(f *ast.For, db *dbstate.DBState, env *Env) (ast.Node, error) {
	entIdx, ok := db.FindEntity(f.Entity)
	if !ok {
		ln, cl := f.Pos()
		return nil, direrr.Runtime(ln, cl, "Unknown entity '%s' in for-comprehension.", f.Entity)
	}
	n := db.RowCount(entIdx)
	var res []ast.Node
	for i := 0; i < n; i++ {
		ref := &ast.Ref{Entity: f.Entity, EntIdx: entIdx, RowIdx: i, Resolved: true}
		rowEnv := env.Extend(f.Lambda.Params[0].Name, ref)
		out, err := Eval(f.Lambda.Body, db, rowEnv)
		if err != nil {
			return nil, err
		}
		if just, ok := out.(*ast.JustLit); ok {
			res = append(res, just.Value)
		}
	}
	return &ast.ArrayLit{Span: f.Span, Elems: res}, nil
}

// evalCall dispatches a function application. Unlike compute.rs, which
// pattern-matches e1 literally (so only an inline `lambda{...}` at the
// call site is ever callable), Func is evaluated first: this lets a
// self-name bound in an enclosing call resolve through an Ident, which
// is what makes recursion (spec.md's lambda self-name) actually work.
func evalCall(c *ast.Call, db *dbstate.DBState, env *Env) (ast.Node, error) {
	fn, err := Eval(c.Func, db, env)
	if err != nil {
		return nil, err
	}
	le, ok := fn.(*ast.LambdaExpr)
	if !ok {
		ln, cl := c.Pos()
		return nil, direrr.Runtime(ln, cl, "Type mismatch in call.")
	}
	return InvokeLambda(le.Lambda, c.Args, db, env)
}

// InvokeLambda evaluates args against env, binds them to the lambda's
// formals, binds the self-name (if any) to the lambda itself so the
// body can recurse, and evaluates the body in the extended environment.
func InvokeLambda(lam *ast.Lambda, args []ast.Node, db *dbstate.DBState, env *Env) (ast.Node, error) {
	callEnv := env
	for i, p := range lam.Params {
		v, err := Eval(args[i], db, env)
		if err != nil {
			return nil, err
		}
		callEnv = callEnv.Extend(p.Name, v)
	}
	if lam.SelfName != nil {
		callEnv = callEnv.Extend(*lam.SelfName, &ast.LambdaExpr{Lambda: lam})
	}
	return Eval(lam.Body, db, callEnv)
}

func evalDot(d *ast.Dot, db *dbstate.DBState, env *Env) (ast.Node, error) {
	if ident, ok := d.Left.(*ast.Ident); ok {
		if entIdx, ok := db.FindEntity(ident.Name); ok {
			if attrIdx, ok := db.FindAttr(entIdx, d.Attr); ok {
				attr := db.Header[entIdx].Attrs[attrIdx]
				if attr.Flag == ast.FlagGlobal {
					return InvokeLambda(attr.Default, nil, db, env)
				}
			}
		}
	}
	left, err := Eval(d.Left, db, env)
	if err != nil {
		return nil, err
	}
	ref, ok := left.(*ast.Ref)
	if !ok {
		ln, cl := d.Pos()
		return nil, direrr.Runtime(ln, cl, "Incorrect application of the dot operator.")
	}
	attrIdx, ok := db.FindAttr(ref.EntIdx, d.Attr)
	if !ok {
		ln, cl := d.Pos()
		return nil, direrr.Runtime(ln, cl, "Incorrect reference in dot operator.")
	}
	col := db.Data[dbstate.EntKey{Ent: ref.EntIdx, Attr: attrIdx}]
	if ref.RowIdx < 0 || ref.RowIdx >= len(col) {
		ln, cl := d.Pos()
		return nil, direrr.Runtime(ln, cl, "Incorrect reference in dot operator.")
	}
	return col[ref.RowIdx], nil
}
