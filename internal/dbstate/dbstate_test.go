package dbstate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relique-lang/relique/internal/ast"
	"github.com/relique-lang/relique/internal/dbstate"
)

func TestCloneIsDeepCopyOfHeaderAndData(t *testing.T) {
	db := dbstate.New()
	db.Header = append(db.Header, dbstate.Schema{Name: "P", Attrs: []ast.Attr{
		{Name: "id", Type: ast.RegType(ast.Int()), Flag: ast.FlagUnique},
	}})
	db.Data[dbstate.EntKey{Ent: 0, Attr: 0}] = []ast.Node{&ast.IntLit{Value: 1}}

	clone := db.Clone()
	clone.Header[0].Name = "Q"
	clone.Data[dbstate.EntKey{Ent: 0, Attr: 0}] = append(clone.Data[dbstate.EntKey{Ent: 0, Attr: 0}], &ast.IntLit{Value: 2})

	assert.Equal(t, "P", db.Header[0].Name)
	assert.Len(t, db.Data[dbstate.EntKey{Ent: 0, Attr: 0}], 1)
}

func TestRefLedgerAddReleaseIsBound(t *testing.T) {
	db := dbstate.New()
	rk := dbstate.RowKey{Ent: 0, Row: 0}
	assert.False(t, db.IsBound(rk))

	db.AddRef(rk)
	db.AddRef(rk)
	assert.True(t, db.IsBound(rk))

	db.ReleaseRef(rk)
	assert.True(t, db.IsBound(rk))

	db.ReleaseRef(rk)
	assert.False(t, db.IsBound(rk))
}

func TestFindRefsWalksNestedStructures(t *testing.T) {
	ref1 := &ast.Ref{EntIdx: 0, RowIdx: 1, Resolved: true}
	ref2 := &ast.Ref{EntIdx: 0, RowIdx: 2, Resolved: true}
	n := &ast.ArrayLit{Elems: []ast.Node{
		&ast.JustLit{Value: ref1},
		&ast.TupleLit{Elems: []ast.Node{ref2}},
	}}
	got := dbstate.FindRefs(n)
	require.Len(t, got, 2)
	assert.Contains(t, got, dbstate.RowKey{Ent: 0, Row: 1})
	assert.Contains(t, got, dbstate.RowKey{Ent: 0, Row: 2})
}

func TestShiftEntityRefsDecrementsAboveRemovedIndex(t *testing.T) {
	below := &ast.Ref{EntIdx: 1, RowIdx: 0}
	above := &ast.Ref{EntIdx: 3, RowIdx: 0}
	n := &ast.ArrayLit{Elems: []ast.Node{below, above}}
	dbstate.ShiftEntityRefs(n, 2)
	assert.Equal(t, 1, below.EntIdx)
	assert.Equal(t, 2, above.EntIdx)
}

func TestShiftRowRefsOnlyAffectsMatchingEntity(t *testing.T) {
	matching := &ast.Ref{EntIdx: 0, RowIdx: 5}
	other := &ast.Ref{EntIdx: 1, RowIdx: 5}
	n := &ast.ArrayLit{Elems: []ast.Node{matching, other}}
	dbstate.ShiftRowRefs(n, 0, func(old int) int { return old - 2 })
	assert.Equal(t, 3, matching.RowIdx)
	assert.Equal(t, 5, other.RowIdx)
}

func TestRowCountReadsFirstColumnLength(t *testing.T) {
	db := dbstate.New()
	db.Header = append(db.Header, dbstate.Schema{Name: "P", Attrs: []ast.Attr{
		{Name: "id", Type: ast.RegType(ast.Int())},
	}})
	assert.Equal(t, 0, db.RowCount(0))
	db.Data[dbstate.EntKey{Ent: 0, Attr: 0}] = []ast.Node{&ast.IntLit{Value: 1}, &ast.IntLit{Value: 2}}
	assert.Equal(t, 2, db.RowCount(0))
}

func TestFindEntityAndFindAttr(t *testing.T) {
	db := dbstate.New()
	db.Header = append(db.Header, dbstate.Schema{Name: "P", Attrs: []ast.Attr{
		{Name: "id", Type: ast.RegType(ast.Int())},
	}})
	idx, ok := db.FindEntity("P")
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	_, ok = db.FindEntity("Nope")
	assert.False(t, ok)

	attrIdx, ok := db.FindAttr(0, "id")
	require.True(t, ok)
	assert.Equal(t, 0, attrIdx)
	_, ok = db.FindAttr(0, "nope")
	assert.False(t, ok)
}
