package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relique-lang/relique/internal/ast"
	"github.com/relique-lang/relique/internal/parser"
)

func parseExpr(t *testing.T, src string) ast.Node {
	t.Helper()
	cmds, err := parser.Parse("eval { " + src + " }")
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	ev, ok := cmds[0].(*ast.EvalCmd)
	require.True(t, ok)
	return ev.Expr
}

func TestParseArithmeticPrecedence(t *testing.T) {
	// 1 + 2 * 3 must bind as 1 + (2 * 3).
	n := parseExpr(t, "1 + 2 * 3")
	top, ok := n.(*ast.BinOp)
	require.True(t, ok)
	assert.Equal(t, byte('+'), top.Op)
	_, lok := top.Left.(*ast.IntLit)
	assert.True(t, lok)
	rhs, rok := top.Right.(*ast.BinOp)
	require.True(t, rok)
	assert.Equal(t, byte('*'), rhs.Op)
}

func TestParseExponentRightOfMul(t *testing.T) {
	// 2 * 3 ^ 2 binds as 2 * (3 ^ 2): E5 (^) is tighter than E4 (*).
	n := parseExpr(t, "2 * 3 ^ 2")
	top, ok := n.(*ast.BinOp)
	require.True(t, ok)
	assert.Equal(t, byte('*'), top.Op)
	_, expOK := top.Right.(*ast.BinOp)
	assert.True(t, expOK)
}

func TestParseIfThenElse(t *testing.T) {
	n := parseExpr(t, "if true then 1 else 2")
	ifx, ok := n.(*ast.IfExpr)
	require.True(t, ok)
	assert.IsType(t, &ast.BoolLit{}, ifx.Cond)
	assert.IsType(t, &ast.IntLit{}, ifx.Then)
	assert.IsType(t, &ast.IntLit{}, ifx.Else)
}

func TestParseStringDesugarsToCharArray(t *testing.T) {
	n := parseExpr(t, `"Ab"`)
	arr, ok := n.(*ast.ArrayLit)
	require.True(t, ok)
	require.Len(t, arr.Elems, 2)
	c0, ok := arr.Elems[0].(*ast.CharLit)
	require.True(t, ok)
	assert.Equal(t, 'A', c0.Value)
}

func TestParseEmptyArrayRequiresType(t *testing.T) {
	n := parseExpr(t, "[]:Int")
	arr, ok := n.(*ast.ArrayLit)
	require.True(t, ok)
	require.NotNil(t, arr.ElemType)
	assert.Equal(t, ast.TInt, arr.ElemType.Kind)
}

func TestParseDotChain(t *testing.T) {
	n := parseExpr(t, "p.id")
	dot, ok := n.(*ast.Dot)
	require.True(t, ok)
	assert.Equal(t, "id", dot.Attr)
	assert.IsType(t, &ast.Ident{}, dot.Left)
}

func TestParseCallWithArguments(t *testing.T) {
	n := parseExpr(t, "f(1, 2)")
	call, ok := n.(*ast.Call)
	require.True(t, ok)
	require.Len(t, call.Args, 2)
}

func TestParseRecursiveLambda(t *testing.T) {
	n := parseExpr(t, "lambda fact (n:Int) -> Int { if n == 0 then 1 else n * fact(n - 1) }")
	le, ok := n.(*ast.LambdaExpr)
	require.True(t, ok)
	require.NotNil(t, le.Lambda.SelfName)
	assert.Equal(t, "fact", *le.Lambda.SelfName)
	require.NotNil(t, le.Lambda.ReturnType)
	assert.Equal(t, ast.TInt, le.Lambda.ReturnType.Kind)
}

func TestParseForComprehension(t *testing.T) {
	n := parseExpr(t, "for(P) (p:Object(P)) -> Maybe(Int) { Just(p.id) }")
	f, ok := n.(*ast.For)
	require.True(t, ok)
	assert.Equal(t, "P", f.Entity)
}

func TestParseRefLiteral(t *testing.T) {
	n := parseExpr(t, "#(P, id, 1)")
	r, ok := n.(*ast.Ref)
	require.True(t, ok)
	assert.Equal(t, "P", r.Entity)
	assert.Equal(t, "id", r.Attr)
	assert.False(t, r.Resolved)
}

func TestParseEntityCommand(t *testing.T) {
	cmds, err := parser.Parse(`entity P { unique id: Int, name: [Char] }`)
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	ec, ok := cmds[0].(*ast.EntityCmd)
	require.True(t, ok)
	assert.Equal(t, "P", ec.Name)
	require.Len(t, ec.Attrs, 2)
	assert.Equal(t, ast.FlagUnique, ec.Attrs[0].Flag)
	assert.Equal(t, ast.TArray, ec.Attrs[1].Type.Base.Kind)
}

func TestParseAddCommand(t *testing.T) {
	cmds, err := parser.Parse(`add P { id:(1;2$), name:("Ann";"Bo"$) }`)
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	ac, ok := cmds[0].(*ast.AddCmd)
	require.True(t, ok)
	assert.Equal(t, "P", ac.Entity)
	require.Len(t, ac.Columns, 2)
	assert.Len(t, ac.Columns[0].Values, 2)
}

func TestParseReshapeWithAsAndCollapse(t *testing.T) {
	cmds, err := parser.Parse(`reshape P { new score: Int as (p:Object(P)) -> Int { 0 }, collapse name } as P2`)
	require.NoError(t, err)
	rc, ok := cmds[0].(*ast.ReshapeCmd)
	require.True(t, ok)
	assert.Equal(t, "P", rc.Entity)
	assert.Equal(t, "P2", rc.NewEntity)
	require.Len(t, rc.Ops, 2)
	assert.Equal(t, ast.ReshapeNew, rc.Ops[0].Kind)
	assert.Equal(t, ast.ReshapeCollapse, rc.Ops[1].Kind)
}

func TestParseTransformWhere(t *testing.T) {
	cmds, err := parser.Parse(`transform P { name: (p:Object(P)) -> [Char] { p.name } } where (p:Object(P)) -> Bool { true }`)
	require.NoError(t, err)
	tc, ok := cmds[0].(*ast.TransformCmd)
	require.True(t, ok)
	assert.Equal(t, "P", tc.Entity)
	require.Len(t, tc.Updates, 1)
	assert.NotNil(t, tc.Pred)
}

func TestParseUnrecognizedCommandIsParseError(t *testing.T) {
	_, err := parser.Parse("frobnicate P")
	require.Error(t, err)
}

func TestParseMissingBraceReportsPosition(t *testing.T) {
	_, err := parser.Parse("entity P { id")
	require.Error(t, err)
}
