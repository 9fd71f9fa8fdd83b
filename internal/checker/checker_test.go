package checker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relique-lang/relique/internal/ast"
	"github.com/relique-lang/relique/internal/checker"
	"github.com/relique-lang/relique/internal/dbstate"
	"github.com/relique-lang/relique/internal/parser"
)

func inferExprSrc(t *testing.T, db *dbstate.DBState, src string) (*ast.Type, error) {
	t.Helper()
	cmds, err := parser.Parse("eval { " + src + " }")
	require.NoError(t, err)
	ev := cmds[0].(*ast.EvalCmd)
	return checker.Infer(ev.Expr, db, checker.Env{})
}

func TestInferArithmeticPromotesToDouble(t *testing.T) {
	db := dbstate.New()
	typ, err := inferExprSrc(t, db, "1 + 2.0")
	require.NoError(t, err)
	assert.Equal(t, ast.TDouble, typ.Kind)
}

func TestInferArithmeticBothIntStaysInt(t *testing.T) {
	db := dbstate.New()
	typ, err := inferExprSrc(t, db, "1 + 2")
	require.NoError(t, err)
	assert.Equal(t, ast.TInt, typ.Kind)
}

func TestInferModRequiresBothInt(t *testing.T) {
	db := dbstate.New()
	_, err := inferExprSrc(t, db, "1.0 % 2")
	require.Error(t, err)
}

func TestInferDoubleEqualityRejected(t *testing.T) {
	db := dbstate.New()
	_, err := inferExprSrc(t, db, "1.0 == 2.0")
	require.Error(t, err)
}

func TestInferIntCharEqualityAllowed(t *testing.T) {
	db := dbstate.New()
	typ, err := inferExprSrc(t, db, "65 == 'A'")
	require.NoError(t, err)
	assert.Equal(t, ast.TBool, typ.Kind)
}

func TestInferIfWithMismatchedBranchesYieldsSum(t *testing.T) {
	db := dbstate.New()
	typ, err := inferExprSrc(t, db, "if true then 1 else 'A'")
	require.NoError(t, err)
	require.Equal(t, ast.TSum, typ.Kind)
	require.Len(t, typ.Parts, 2)
}

func TestInferIfWithMatchingBranches(t *testing.T) {
	db := dbstate.New()
	typ, err := inferExprSrc(t, db, "if true then 1 else 2")
	require.NoError(t, err)
	assert.Equal(t, ast.TInt, typ.Kind)
}

func TestInferEmptyTupleLiteralIsTupleType(t *testing.T) {
	db := dbstate.New()
	cmds, err := parser.Parse("eval { tup() }")
	require.NoError(t, err)
	ev := cmds[0].(*ast.EvalCmd)
	typ, err := checker.Infer(ev.Expr, db, checker.Env{})
	require.NoError(t, err)
	assert.Equal(t, ast.TTuple, typ.Kind)
}

func TestInferArrayOfMixedTypesFails(t *testing.T) {
	db := dbstate.New()
	_, err := inferExprSrc(t, db, "[1, 'a']")
	require.Error(t, err)
}

func TestInferRecursiveLambdaWithoutReturnTypeFails(t *testing.T) {
	db := dbstate.New()
	_, err := inferExprSrc(t, db, "lambda fact (n:Int) -> { n }")
	require.Error(t, err)
}

func TestInferRecursiveLambdaMatchingReturnType(t *testing.T) {
	db := dbstate.New()
	typ, err := inferExprSrc(t, db, "lambda fact (n:Int) -> Int { if n == 0 then 1 else n * fact(n - 1) }")
	require.NoError(t, err)
	require.Equal(t, ast.TFunc, typ.Kind)
	require.Len(t, typ.Parts, 2)
	assert.Equal(t, ast.TInt, typ.Parts[1].Kind)
}

func TestInferUnknownIdentFails(t *testing.T) {
	db := dbstate.New()
	_, err := inferExprSrc(t, db, "nosuchvar")
	require.Error(t, err)
}

func TestInferRefToUnknownEntityFails(t *testing.T) {
	db := dbstate.New()
	_, err := inferExprSrc(t, db, "#(P, id, 1)")
	require.Error(t, err)
}

func TestInferRefToNonUniqueAttrFails(t *testing.T) {
	db := dbstate.New()
	db.Header = append(db.Header, dbstate.Schema{Name: "P", Attrs: []ast.Attr{
		{Name: "id", Type: ast.RegType(ast.Int())},
	}})
	_, err := inferExprSrc(t, db, "#(P, id, 1)")
	require.Error(t, err)
}

func TestInferRefResolvesRowIndex(t *testing.T) {
	db := dbstate.New()
	db.Header = append(db.Header, dbstate.Schema{Name: "P", Attrs: []ast.Attr{
		{Name: "id", Type: ast.RegType(ast.Int()), Flag: ast.FlagUnique},
	}})
	db.Data[dbstate.EntKey{Ent: 0, Attr: 0}] = []ast.Node{
		&ast.IntLit{Value: 10},
		&ast.IntLit{Value: 20},
	}
	cmds, err := parser.Parse("eval { #(P, id, 20) }")
	require.NoError(t, err)
	ev := cmds[0].(*ast.EvalCmd)
	typ, err := checker.Infer(ev.Expr, db, checker.Env{})
	require.NoError(t, err)
	assert.Equal(t, ast.TObject, typ.Kind)
	ref := ev.Expr.(*ast.Ref)
	assert.True(t, ref.Resolved)
	assert.Equal(t, 1, ref.RowIdx)
}

func TestInferForRequiresMaybeReturningLambda(t *testing.T) {
	db := dbstate.New()
	db.Header = append(db.Header, dbstate.Schema{Name: "P", Attrs: []ast.Attr{
		{Name: "id", Type: ast.RegType(ast.Int()), Flag: ast.FlagUnique},
	}})
	typ, err := inferExprSrc(t, db, "for(P) (p:Object(P)) -> Maybe(Int) { Just(p.id) }")
	require.NoError(t, err)
	require.Equal(t, ast.TArray, typ.Kind)
	assert.Equal(t, ast.TInt, typ.Elem.Kind)
}

func TestInferDotOnGlobalAttribute(t *testing.T) {
	db := dbstate.New()
	db.Header = append(db.Header, dbstate.Schema{Name: "Cfg", Attrs: []ast.Attr{
		{Name: "version", Type: ast.RegType(ast.Int()), Flag: ast.FlagGlobal},
	}})
	typ, err := inferExprSrc(t, db, "Cfg.version")
	require.NoError(t, err)
	assert.Equal(t, ast.TInt, typ.Kind)
}

func TestCheckSpTypeRejectsWrongGenSignature(t *testing.T) {
	db := dbstate.New()
	sp := ast.GenType(ast.Int(), &ast.Lambda{
		Params:     []ast.Param{{Name: "n", Type: ast.Char()}},
		ReturnType: ast.Int(),
		Body:       &ast.IntLit{Value: 0},
	}, 0)
	err := checker.CheckSpType(sp, db)
	require.Error(t, err)
}

func TestCheckSpTypeAcceptsValidRestrictSignature(t *testing.T) {
	db := dbstate.New()
	sp := ast.RestrictType(ast.Int(), &ast.Lambda{
		Params:     []ast.Param{{Name: "x", Type: ast.Int()}},
		ReturnType: ast.Bool(),
		Body: &ast.Cmp{
			Greater: true, NonStrict: true,
			Left:  &ast.Ident{Name: "x"},
			Right: &ast.IntLit{Value: 0},
		},
	})
	require.NoError(t, checker.CheckSpType(sp, db))
}
