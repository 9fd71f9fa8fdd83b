package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relique-lang/relique/internal/ast"
	"github.com/relique-lang/relique/internal/dbstate"
)

func TestEncodeDecodeRoundTripsHeaderAndData(t *testing.T) {
	db := dbstate.New()
	db.Header = append(db.Header, dbstate.Schema{Name: "P", Attrs: []ast.Attr{
		{Name: "id", Type: ast.RegType(ast.Int()), Flag: ast.FlagUnique},
		{Name: "name", Type: ast.RegType(ast.Array(ast.Char()))},
	}})
	db.Data[dbstate.EntKey{Ent: 0, Attr: 0}] = []ast.Node{
		&ast.IntLit{Value: 1},
		&ast.IntLit{Value: 2},
	}
	db.Data[dbstate.EntKey{Ent: 0, Attr: 1}] = []ast.Node{
		&ast.ArrayLit{Elems: []ast.Node{&ast.CharLit{Value: 'A'}}},
		&ast.ArrayLit{Elems: []ast.Node{&ast.CharLit{Value: 'B'}}},
	}

	raw := Encode(db)
	out, err := Decode(raw)
	require.NoError(t, err)

	require.Len(t, out.Header, 1)
	assert.Equal(t, "P", out.Header[0].Name)
	require.Len(t, out.Header[0].Attrs, 2)
	assert.Equal(t, ast.FlagUnique, out.Header[0].Attrs[0].Flag)

	col := out.Data[dbstate.EntKey{Ent: 0, Attr: 0}]
	require.Len(t, col, 2)
	assert.EqualValues(t, 1, col[0].(*ast.IntLit).Value)
	assert.EqualValues(t, 2, col[1].(*ast.IntLit).Value)
}

func TestDecodeRebuildsRefList(t *testing.T) {
	db := dbstate.New()
	db.Header = append(db.Header, dbstate.Schema{Name: "P", Attrs: []ast.Attr{
		{Name: "id", Type: ast.RegType(ast.Int()), Flag: ast.FlagUnique},
	}})
	db.Header = append(db.Header, dbstate.Schema{Name: "Q", Attrs: []ast.Attr{
		{Name: "owner", Type: ast.RegType(ast.Object("P"))},
	}})
	db.Data[dbstate.EntKey{Ent: 0, Attr: 0}] = []ast.Node{&ast.IntLit{Value: 1}}
	ref := &ast.Ref{Entity: "P", Attr: "id", Key: &ast.IntLit{Value: 1}, EntIdx: 0, RowIdx: 0, Resolved: true}
	db.Data[dbstate.EntKey{Ent: 1, Attr: 0}] = []ast.Node{ref}

	raw := Encode(db)
	out, err := Decode(raw)
	require.NoError(t, err)

	assert.True(t, out.IsBound(dbstate.RowKey{Ent: 0, Row: 0}))
}

func TestDecodeRejectsDuplicateDataCell(t *testing.T) {
	db := dbstate.New()
	db.Header = append(db.Header, dbstate.Schema{Name: "P", Attrs: []ast.Attr{
		{Name: "id", Type: ast.RegType(ast.Int())},
	}})
	db.Data[dbstate.EntKey{Ent: 0, Attr: 0}] = []ast.Node{&ast.IntLit{Value: 1}}
	raw := Encode(db)

	dup := &writer{}
	dup.u64(0)
	dup.u64(0)
	writeExprList(dup, []ast.Node{&ast.IntLit{Value: 2}})
	raw = append(raw, dup.buf...)

	_, err := Decode(raw)
	require.Error(t, err)
}

func TestEncodeRoundTripsGenAttributeCounter(t *testing.T) {
	db := dbstate.New()
	gen := ast.GenType(ast.Int(), &ast.Lambda{
		Params:     []ast.Param{{Name: "n", Type: ast.Int()}},
		ReturnType: ast.Int(),
		Body:       &ast.Ident{Name: "n"},
	}, 5)
	db.Header = append(db.Header, dbstate.Schema{Name: "P", Attrs: []ast.Attr{
		{Name: "seq", Type: gen},
	}})

	raw := Encode(db)
	out, err := Decode(raw)
	require.NoError(t, err)
	require.Equal(t, ast.SpGen, out.Header[0].Attrs[0].Type.Kind)
	assert.EqualValues(t, 5, out.Header[0].Attrs[0].Type.Counter)
}
