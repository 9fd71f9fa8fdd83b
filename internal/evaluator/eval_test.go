package evaluator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relique-lang/relique/internal/ast"
	"github.com/relique-lang/relique/internal/dbstate"
	"github.com/relique-lang/relique/internal/evaluator"
	"github.com/relique-lang/relique/internal/parser"
)

func evalSrc(t *testing.T, db *dbstate.DBState, src string) (ast.Node, error) {
	t.Helper()
	cmds, err := parser.Parse("eval { " + src + " }")
	require.NoError(t, err)
	ev := cmds[0].(*ast.EvalCmd)
	return evaluator.Eval(ev.Expr, db, evaluator.NewEnv())
}

func TestEvalIntPlusDoublePromotes(t *testing.T) {
	db := dbstate.New()
	out, err := evalSrc(t, db, "1 + 2.5")
	require.NoError(t, err)
	d, ok := out.(*ast.DoubleLit)
	require.True(t, ok)
	assert.Equal(t, 3.5, d.Value)
}

func TestEvalIntDivisionByZero(t *testing.T) {
	db := dbstate.New()
	_, err := evalSrc(t, db, "1 / 0")
	require.Error(t, err)
}

func TestEvalModByZero(t *testing.T) {
	db := dbstate.New()
	_, err := evalSrc(t, db, "5 % 0")
	require.Error(t, err)
}

func TestEvalIntExponent(t *testing.T) {
	db := dbstate.New()
	out, err := evalSrc(t, db, "2 ^ 10")
	require.NoError(t, err)
	i, ok := out.(*ast.IntLit)
	require.True(t, ok)
	assert.EqualValues(t, 1024, i.Value)
}

func TestEvalArrayConcat(t *testing.T) {
	db := dbstate.New()
	out, err := evalSrc(t, db, "[1, 2] + [3]")
	require.NoError(t, err)
	arr, ok := out.(*ast.ArrayLit)
	require.True(t, ok)
	require.Len(t, arr.Elems, 3)
}

func TestEvalArrayEqualityLengthMismatchIsFalseNotError(t *testing.T) {
	db := dbstate.New()
	out, err := evalSrc(t, db, "[1, 2] == [1]")
	require.NoError(t, err)
	b, ok := out.(*ast.BoolLit)
	require.True(t, ok)
	assert.False(t, b.Value)
}

func TestEvalTupleEqualityLengthMismatchIsError(t *testing.T) {
	db := dbstate.New()
	_, err := evalSrc(t, db, "tup(1, 2) == tup(1)")
	require.Error(t, err)
}

func TestEvalNothingEqualsNothing(t *testing.T) {
	db := dbstate.New()
	out, err := evalSrc(t, db, "Nothing:Int == Nothing:Int")
	require.NoError(t, err)
	b, ok := out.(*ast.BoolLit)
	require.True(t, ok)
	assert.True(t, b.Value)
}

func TestEvalNothingNotEqualJust(t *testing.T) {
	db := dbstate.New()
	out, err := evalSrc(t, db, "Nothing:Int == Just(1)")
	require.NoError(t, err)
	b, ok := out.(*ast.BoolLit)
	require.True(t, ok)
	assert.False(t, b.Value)
}

func TestEvalIntCharEqualityComparesCodePoint(t *testing.T) {
	db := dbstate.New()
	out, err := evalSrc(t, db, "97 == 'a'")
	require.NoError(t, err)
	b, ok := out.(*ast.BoolLit)
	require.True(t, ok)
	assert.True(t, b.Value)

	out, err = evalSrc(t, db, "'a' == 98")
	require.NoError(t, err)
	b, ok = out.(*ast.BoolLit)
	require.True(t, ok)
	assert.False(t, b.Value)
}

func TestEvalJustEqualityComparesInner(t *testing.T) {
	db := dbstate.New()
	out, err := evalSrc(t, db, "Just(1) == Just(2)")
	require.NoError(t, err)
	b, ok := out.(*ast.BoolLit)
	require.True(t, ok)
	assert.False(t, b.Value)
}

func TestEvalIfShortCircuits(t *testing.T) {
	db := dbstate.New()
	out, err := evalSrc(t, db, "if true then 1 else 1 / 0")
	require.NoError(t, err)
	i, ok := out.(*ast.IntLit)
	require.True(t, ok)
	assert.EqualValues(t, 1, i.Value)
}

func TestEvalCmpIntDoublePromotion(t *testing.T) {
	db := dbstate.New()
	out, err := evalSrc(t, db, "1 < 1.5")
	require.NoError(t, err)
	b, ok := out.(*ast.BoolLit)
	require.True(t, ok)
	assert.True(t, b.Value)
}

func TestEvalRecursiveLambdaCall(t *testing.T) {
	db := dbstate.New()
	out, err := evalSrc(t, db, "lambda fact (n:Int) -> Int { if n == 0 then 1 else n * fact(n - 1) }(5)")
	require.NoError(t, err)
	i, ok := out.(*ast.IntLit)
	require.True(t, ok)
	assert.EqualValues(t, 120, i.Value)
}

func TestEvalForComprehensionFiltersByMaybe(t *testing.T) {
	db := dbstate.New()
	db.Header = append(db.Header, dbstate.Schema{Name: "P", Attrs: []ast.Attr{
		{Name: "id", Type: ast.RegType(ast.Int()), Flag: ast.FlagUnique},
	}})
	db.Data[dbstate.EntKey{Ent: 0, Attr: 0}] = []ast.Node{
		&ast.IntLit{Value: 1},
		&ast.IntLit{Value: 2},
		&ast.IntLit{Value: 3},
	}
	out, err := evalSrc(t, db,
		"for(P) (p:Object(P)) -> Maybe(Int) { if p.id == 2 then Nothing:Int else Just(p.id) }")
	require.NoError(t, err)
	arr, ok := out.(*ast.ArrayLit)
	require.True(t, ok)
	require.Len(t, arr.Elems, 2)
	assert.EqualValues(t, 1, arr.Elems[0].(*ast.IntLit).Value)
	assert.EqualValues(t, 3, arr.Elems[1].(*ast.IntLit).Value)
}

func TestEvalForOverEmptyEntityYieldsEmptyArray(t *testing.T) {
	db := dbstate.New()
	db.Header = append(db.Header, dbstate.Schema{Name: "P", Attrs: []ast.Attr{
		{Name: "id", Type: ast.RegType(ast.Int()), Flag: ast.FlagUnique},
	}})
	out, err := evalSrc(t, db, "for(P) (p:Object(P)) -> Maybe(Int) { Just(p.id) }")
	require.NoError(t, err)
	arr, ok := out.(*ast.ArrayLit)
	require.True(t, ok)
	assert.Len(t, arr.Elems, 0)
}

func TestEvalDotOnRowAttribute(t *testing.T) {
	db := dbstate.New()
	db.Header = append(db.Header, dbstate.Schema{Name: "P", Attrs: []ast.Attr{
		{Name: "id", Type: ast.RegType(ast.Int()), Flag: ast.FlagUnique},
	}})
	db.Data[dbstate.EntKey{Ent: 0, Attr: 0}] = []ast.Node{&ast.IntLit{Value: 42}}
	ref := &ast.Ref{Entity: "P", EntIdx: 0, RowIdx: 0, Resolved: true}
	env := evaluator.NewEnv().Extend("p", ref)
	cmds, err := parser.Parse("eval { p.id }")
	require.NoError(t, err)
	out, err := evaluator.Eval(cmds[0].(*ast.EvalCmd).Expr, db, env)
	require.NoError(t, err)
	i, ok := out.(*ast.IntLit)
	require.True(t, ok)
	assert.EqualValues(t, 42, i.Value)
}

func TestEvalDotOnGlobalAttribute(t *testing.T) {
	db := dbstate.New()
	db.Header = append(db.Header, dbstate.Schema{Name: "Cfg", Attrs: []ast.Attr{
		{
			Name: "version",
			Type: ast.RegType(ast.Int()),
			Flag: ast.FlagGlobal,
			Default: &ast.Lambda{
				Body: &ast.IntLit{Value: 7},
			},
		},
	}})
	out, err := evalSrc(t, db, "Cfg.version")
	require.NoError(t, err)
	i, ok := out.(*ast.IntLit)
	require.True(t, ok)
	assert.EqualValues(t, 7, i.Value)
}
