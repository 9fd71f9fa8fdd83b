package evaluator

import (
	"errors"
	"math"

	"github.com/relique-lang/relique/internal/ast"
	"github.com/relique-lang/relique/internal/dbstate"
	"github.com/relique-lang/relique/internal/direrr"
)

var errNegativeExponent = errors.New("negative exponent in integer ^")

// evalBinOp covers the six operators sharing ast.BinOp: + - * / % ^.
// Grounded on compute.rs's Plus/Minus/Mul/Div/Mod/Exp arms.
func evalBinOp(b *ast.BinOp, db *dbstate.DBState, env *Env) (ast.Node, error) {
	r1, err := Eval(b.Left, db, env)
	if err != nil {
		return nil, err
	}
	r2, err := Eval(b.Right, db, env)
	if err != nil {
		return nil, err
	}
	ln, cl := b.Pos()

	if b.Op == '%' {
		i1, ok1 := r1.(*ast.IntLit)
		i2, ok2 := r2.(*ast.IntLit)
		if !ok1 || !ok2 {
			return nil, direrr.Runtime(ln, cl, "Type mismatch in %%.")
		}
		if i2.Value == 0 {
			return nil, direrr.Runtime(ln, cl, "Division by zero.")
		}
		return &ast.IntLit{Span: b.Span, Value: i1.Value % i2.Value}, nil
	}

	if b.Op == '+' {
		return evalPlus(b.Span, r1, r2)
	}
	return intDoubleOp(b.Span, r1, r2, b.Op)
}

func evalPlus(span ast.Span, r1, r2 ast.Node) (ast.Node, error) {
	ln, cl := span.Line, span.Col
	switch v1 := r1.(type) {
	case *ast.ArrayLit:
		v2, ok := r2.(*ast.ArrayLit)
		if !ok {
			return nil, direrr.Runtime(ln, cl, "Type mismatch in +.")
		}
		elems := append(append([]ast.Node{}, v1.Elems...), v2.Elems...)
		return &ast.ArrayLit{Span: span, Elems: elems, ElemType: v1.ElemType}, nil
	case *ast.TupleLit:
		v2, ok := r2.(*ast.TupleLit)
		if !ok {
			return nil, direrr.Runtime(ln, cl, "Type mismatch in +.")
		}
		elems := append(append([]ast.Node{}, v1.Elems...), v2.Elems...)
		return &ast.TupleLit{Span: span, Elems: elems}, nil
	case *ast.IntLit:
		switch v2 := r2.(type) {
		case *ast.DoubleLit:
			return &ast.DoubleLit{Span: span, Value: float64(v1.Value) + v2.Value}, nil
		case *ast.IntLit:
			return &ast.IntLit{Span: span, Value: v1.Value + v2.Value}, nil
		default:
			return nil, direrr.Runtime(ln, cl, "Type mismatch in +.")
		}
	case *ast.DoubleLit:
		switch v2 := r2.(type) {
		case *ast.DoubleLit:
			return &ast.DoubleLit{Span: span, Value: v1.Value + v2.Value}, nil
		case *ast.IntLit:
			return &ast.DoubleLit{Span: span, Value: v1.Value + float64(v2.Value)}, nil
		default:
			return nil, direrr.Runtime(ln, cl, "Type mismatch in +.")
		}
	}
	return nil, direrr.Runtime(ln, cl, "Type mismatch in +.")
}

// intDoubleOp covers - * / ^, which only ever promote Int/Double pairs.
// Grounded on compute.rs's int_double_op.
func intDoubleOp(span ast.Span, r1, r2 ast.Node, op byte) (ast.Node, error) {
	ln, cl := span.Line, span.Col
	mismatch := func() (ast.Node, error) {
		return nil, direrr.Runtime(ln, cl, "Type mismatch in %c.", op)
	}
	applyF := func(a, b float64) float64 {
		switch op {
		case '*':
			return a * b
		case '/':
			return a / b
		case '-':
			return a - b
		default:
			return math.Pow(a, b)
		}
	}
	switch v1 := r1.(type) {
	case *ast.IntLit:
		switch v2 := r2.(type) {
		case *ast.DoubleLit:
			return &ast.DoubleLit{Span: span, Value: applyF(float64(v1.Value), v2.Value)}, nil
		case *ast.IntLit:
			if op == '/' {
				if v2.Value == 0 {
					return nil, direrr.Runtime(ln, cl, "Division by zero.")
				}
				return &ast.IntLit{Span: span, Value: v1.Value / v2.Value}, nil
			}
			if op == '^' {
				p, err := intPow(v1.Value, v2.Value)
				if err != nil {
					return nil, direrr.Runtime(ln, cl, "%s", err.Error())
				}
				return &ast.IntLit{Span: span, Value: p}, nil
			}
			if op == '*' {
				return &ast.IntLit{Span: span, Value: v1.Value * v2.Value}, nil
			}
			return &ast.IntLit{Span: span, Value: v1.Value - v2.Value}, nil
		default:
			return mismatch()
		}
	case *ast.DoubleLit:
		switch v2 := r2.(type) {
		case *ast.DoubleLit:
			return &ast.DoubleLit{Span: span, Value: applyF(v1.Value, v2.Value)}, nil
		case *ast.IntLit:
			return &ast.DoubleLit{Span: span, Value: applyF(v1.Value, float64(v2.Value))}, nil
		default:
			return mismatch()
		}
	default:
		return mismatch()
	}
}

func intPow(base, exp int64) (int64, error) {
	if exp < 0 {
		return 0, errNegativeExponent
	}
	res := int64(1)
	for i := int64(0); i < exp; i++ {
		res *= base
	}
	return res, nil
}

// evalCmp covers < > <= >=, cross-promoting Int/Char/Double pairs.
// Grounded on compute.rs's Cmp arm and its comp helper.
func evalCmp(c *ast.Cmp, db *dbstate.DBState, env *Env) (ast.Node, error) {
	r1, err := Eval(c.Left, db, env)
	if err != nil {
		return nil, err
	}
	r2, err := Eval(c.Right, db, env)
	if err != nil {
		return nil, err
	}
	ln, cl := c.Pos()
	cmp := func(a, b float64) bool {
		if c.Greater {
			if c.NonStrict {
				return a >= b
			}
			return a > b
		}
		if c.NonStrict {
			return a <= b
		}
		return a < b
	}
	switch v1 := r1.(type) {
	case *ast.IntLit:
		switch v2 := r2.(type) {
		case *ast.CharLit:
			return &ast.BoolLit{Span: c.Span, Value: cmp(float64(v1.Value), float64(v2.Value))}, nil
		case *ast.DoubleLit:
			return &ast.BoolLit{Span: c.Span, Value: cmp(float64(v1.Value), v2.Value)}, nil
		case *ast.IntLit:
			return &ast.BoolLit{Span: c.Span, Value: cmp(float64(v1.Value), float64(v2.Value))}, nil
		default:
			return nil, direrr.Runtime(ln, cl, "Type mismatch in comparison.")
		}
	case *ast.CharLit:
		switch v2 := r2.(type) {
		case *ast.CharLit:
			return &ast.BoolLit{Span: c.Span, Value: cmp(float64(v1.Value), float64(v2.Value))}, nil
		case *ast.IntLit:
			return &ast.BoolLit{Span: c.Span, Value: cmp(float64(v1.Value), float64(v2.Value))}, nil
		default:
			return nil, direrr.Runtime(ln, cl, "Type mismatch in comparison.")
		}
	case *ast.DoubleLit:
		switch v2 := r2.(type) {
		case *ast.DoubleLit:
			return &ast.BoolLit{Span: c.Span, Value: cmp(v1.Value, v2.Value)}, nil
		case *ast.IntLit:
			return &ast.BoolLit{Span: c.Span, Value: cmp(v1.Value, float64(v2.Value))}, nil
		default:
			return nil, direrr.Runtime(ln, cl, "Type mismatch in comparison.")
		}
	default:
		return nil, direrr.Runtime(ln, cl, "Type mismatch in comparison.")
	}
}

// evalEq covers == and !=, deep structural equality with per-type rules
// grounded on compute.rs's Eq arm: array length mismatch yields !Equal
// rather than an error, tuple length mismatch is a hard error, and
// Nothing only equals Nothing regardless of element type.
func evalEq(e *ast.Eq, db *dbstate.DBState, env *Env) (ast.Node, error) {
	r1, err := Eval(e.Left, db, env)
	if err != nil {
		return nil, err
	}
	r2, err := Eval(e.Right, db, env)
	if err != nil {
		return nil, err
	}
	return evalEqValues(e.Span, e.Equal, r1, r2)
}

func evalEqValues(span ast.Span, eq bool, r1, r2 ast.Node) (ast.Node, error) {
	ln, cl := span.Line, span.Col
	mismatch := func() (ast.Node, error) {
		return nil, direrr.Runtime(ln, cl, "Type mismatch in equality.")
	}
	switch v1 := r1.(type) {
	case *ast.ArrayLit:
		v2, ok := r2.(*ast.ArrayLit)
		if !ok {
			return mismatch()
		}
		if len(v1.Elems) != len(v2.Elems) {
			return &ast.BoolLit{Span: span, Value: !eq}, nil
		}
		ok2, err := elemsEqual(v1.Elems, v2.Elems)
		if err != nil {
			return nil, err
		}
		return &ast.BoolLit{Span: span, Value: ok2 == eq}, nil
	case *ast.TupleLit:
		v2, ok := r2.(*ast.TupleLit)
		if !ok {
			return mismatch()
		}
		if len(v1.Elems) != len(v2.Elems) {
			return mismatch()
		}
		ok2, err := elemsEqual(v1.Elems, v2.Elems)
		if err != nil {
			return nil, err
		}
		return &ast.BoolLit{Span: span, Value: ok2 == eq}, nil
	case *ast.BoolLit:
		v2, ok := r2.(*ast.BoolLit)
		if !ok {
			return mismatch()
		}
		return &ast.BoolLit{Span: span, Value: (v1.Value == v2.Value) == eq}, nil
	case *ast.IntLit:
		switch v2 := r2.(type) {
		case *ast.IntLit:
			return &ast.BoolLit{Span: span, Value: (v1.Value == v2.Value) == eq}, nil
		case *ast.CharLit:
			return &ast.BoolLit{Span: span, Value: (v1.Value == int64(v2.Value)) == eq}, nil
		default:
			return mismatch()
		}
	case *ast.CharLit:
		switch v2 := r2.(type) {
		case *ast.CharLit:
			return &ast.BoolLit{Span: span, Value: (v1.Value == v2.Value) == eq}, nil
		case *ast.IntLit:
			return &ast.BoolLit{Span: span, Value: (int64(v1.Value) == v2.Value) == eq}, nil
		default:
			return mismatch()
		}
	case *ast.DoubleLit:
		v2, ok := r2.(*ast.DoubleLit)
		if !ok {
			return mismatch()
		}
		return &ast.BoolLit{Span: span, Value: (v1.Value == v2.Value) == eq}, nil
	case *ast.NothingLit:
		_, isNothing := r2.(*ast.NothingLit)
		return &ast.BoolLit{Span: span, Value: isNothing == eq}, nil
	case *ast.JustLit:
		if _, isNothing := r2.(*ast.NothingLit); isNothing {
			return &ast.BoolLit{Span: span, Value: !eq}, nil
		}
		v2, ok := r2.(*ast.JustLit)
		if !ok {
			return mismatch()
		}
		inner, err := evalEqValues(span, true, v1.Value, v2.Value)
		if err != nil {
			return nil, err
		}
		innerTrue := inner.(*ast.BoolLit).Value
		return &ast.BoolLit{Span: span, Value: innerTrue == eq}, nil
	default:
		return mismatch()
	}
}

// elemsEqual reports whether every corresponding pair in a and b (equal
// length, already checked by the caller) compares equal.
func elemsEqual(a, b []ast.Node) (bool, error) {
	for i := range a {
		r, err := evalEqValues(ast.Span{}, true, a[i], b[i])
		if err != nil {
			return false, err
		}
		if !r.(*ast.BoolLit).Value {
			return false, nil
		}
	}
	return true, nil
}
