// Package dbstate holds the in-memory database: a fixed header of entity
// schemas, their column data, and the reference-count ledger that keeps
// Ref values from dangling. It is grounded on original_source/tree.rs's
// DBState plus the bookkeeping run.rs performs around it.
package dbstate

import "github.com/relique-lang/relique/internal/ast"

// EntKey addresses one column: the data of attribute Attr of entity Ent.
type EntKey struct{ Ent, Attr int }

// RowKey addresses one row: row Row of entity Ent. This is the unit a
// Ref points at and the unit RefList counts references to; it is a
// distinct key space from EntKey even though both are pairs of ints.
type RowKey struct{ Ent, Row int }

// Schema is one entity's name and attribute list, in declaration order.
type Schema struct {
	Name  string
	Attrs []ast.Attr
}

// DBState is the full database: every entity's schema, every column's
// data, and the ref-count ledger. Header order is significant: EntKey
// and RowKey both address entities by position in Header, matching
// Ref.EntIdx as resolved by internal/checker.
type DBState struct {
	Header  []Schema
	Data    map[EntKey][]ast.Node
	RefList map[RowKey]int64
}

// New returns an empty database.
func New() *DBState {
	return &DBState{
		Data:    map[EntKey][]ast.Node{},
		RefList: map[RowKey]int64{},
	}
}

// FindEntity returns the header index of the entity named name.
func (db *DBState) FindEntity(name string) (int, bool) {
	for i, s := range db.Header {
		if s.Name == name {
			return i, true
		}
	}
	return 0, false
}

// FindAttr returns the index of attribute name within entity entIdx.
func (db *DBState) FindAttr(entIdx int, name string) (int, bool) {
	for i, a := range db.Header[entIdx].Attrs {
		if a.Name == name {
			return i, true
		}
	}
	return 0, false
}

// RowCount reports how many rows entity entIdx currently holds, taken
// from its first attribute's column (mirroring compute.rs's For, which
// reads db.data[&(pos, 0)].len() as the row count). An entity with no
// attributes, or whose first column was never populated, has zero rows.
func (db *DBState) RowCount(entIdx int) int {
	if len(db.Header[entIdx].Attrs) == 0 {
		return 0
	}
	return len(db.Data[EntKey{Ent: entIdx, Attr: 0}])
}

// Clone deep-copies the database so a command can be validated against
// a scratch copy and only committed to the live state on success. AST
// nodes themselves are treated as immutable and are not copied.
func (db *DBState) Clone() *DBState {
	out := &DBState{
		Header:  make([]Schema, len(db.Header)),
		Data:    make(map[EntKey][]ast.Node, len(db.Data)),
		RefList: make(map[RowKey]int64, len(db.RefList)),
	}
	for i, s := range db.Header {
		attrs := make([]ast.Attr, len(s.Attrs))
		copy(attrs, s.Attrs)
		out.Header[i] = Schema{Name: s.Name, Attrs: attrs}
	}
	for k, v := range db.Data {
		col := make([]ast.Node, len(v))
		copy(col, v)
		out.Data[k] = col
	}
	for k, v := range db.RefList {
		out.RefList[k] = v
	}
	return out
}

// AddRef increments the reference count of row rk, as every value
// freshly stored in a column must for each Ref it (transitively)
// contains.
func (db *DBState) AddRef(rk RowKey) {
	db.RefList[rk]++
}

// ReleaseRef decrements the reference count of row rk, removing the
// entry entirely once it reaches zero (mirroring run.rs's
// remove-if-one-else-decrement pattern).
func (db *DBState) ReleaseRef(rk RowKey) {
	if db.RefList[rk] <= 1 {
		delete(db.RefList, rk)
		return
	}
	db.RefList[rk]--
}

// IsBound reports whether row rk is currently referenced by any stored
// value.
func (db *DBState) IsBound(rk RowKey) bool {
	_, ok := db.RefList[rk]
	return ok
}

// WalkRefs calls f on every Ref embedded (transitively) in n, in the
// same traversal shape as FindRefs, letting a caller mutate each Ref it
// finds in place (Ref nodes are never shared across cells, so this is
// safe).
func WalkRefs(n ast.Node, f func(r *ast.Ref)) {
	switch v := n.(type) {
	case *ast.ArrayLit:
		for _, e := range v.Elems {
			WalkRefs(e, f)
		}
	case *ast.TupleLit:
		for _, e := range v.Elems {
			WalkRefs(e, f)
		}
	case *ast.Ref:
		f(v)
	case *ast.JustLit:
		WalkRefs(v.Value, f)
	case *ast.BinOp:
		WalkRefs(v.Left, f)
		WalkRefs(v.Right, f)
	case *ast.Dot:
		WalkRefs(v.Left, f)
	case *ast.Eq:
		WalkRefs(v.Left, f)
		WalkRefs(v.Right, f)
	case *ast.Cmp:
		WalkRefs(v.Left, f)
		WalkRefs(v.Right, f)
	case *ast.Call:
		WalkRefs(v.Func, f)
		for _, a := range v.Args {
			WalkRefs(a, f)
		}
	case *ast.IfExpr:
		WalkRefs(v.Cond, f)
		WalkRefs(v.Then, f)
		WalkRefs(v.Else, f)
	case *ast.LambdaExpr:
		WalkRefs(v.Lambda.Body, f)
	}
}

// ShiftEntityRefs decrements the EntIdx of every embedded Ref pointing
// at an entity whose index was greater than removed, matching the
// renumbering Drop performs when it deletes the entity at index removed
// from Header (original_source/run.rs's Drop instead uses
// Vec::swap_remove, which silently desyncs entity indices embedded in
// Ref and ref_list from the entity the data map keys by; this is fixed
// here by shifting every index above the gap down by one instead).
func ShiftEntityRefs(n ast.Node, removed int) {
	WalkRefs(n, func(r *ast.Ref) {
		if r.EntIdx > removed {
			r.EntIdx--
		}
	})
}

// ShiftRowRefs replaces the RowIdx of every embedded Ref pointing at
// entity entIdx with newRow(RowIdx), matching the row-compaction Delete
// performs on an entity's own columns (the
// original never performs this shift, leaving any stored Ref that
// targets a later row silently pointing at the wrong row after
// deletion; see DESIGN.md).
func ShiftRowRefs(n ast.Node, entIdx int, newRow func(oldRow int) int) {
	WalkRefs(n, func(r *ast.Ref) {
		if r.EntIdx == entIdx {
			r.RowIdx = newRow(r.RowIdx)
		}
	})
}

// FindRefs walks n and returns every row it (transitively) references,
// duplicates included — one occurrence per embedded Ref, matching
// compute.rs's find_refs recursion exactly.
func FindRefs(n ast.Node) []RowKey {
	switch v := n.(type) {
	case *ast.ArrayLit:
		var out []RowKey
		for _, e := range v.Elems {
			out = append(out, FindRefs(e)...)
		}
		return out
	case *ast.TupleLit:
		var out []RowKey
		for _, e := range v.Elems {
			out = append(out, FindRefs(e)...)
		}
		return out
	case *ast.Ref:
		return []RowKey{{Ent: v.EntIdx, Row: v.RowIdx}}
	case *ast.JustLit:
		return FindRefs(v.Value)
	case *ast.BinOp:
		return append(FindRefs(v.Left), FindRefs(v.Right)...)
	case *ast.Dot:
		// The attribute name carries no refs of its own (it is a bare
		// string, not a sub-expression), matching find_refs's Ident arm
		// falling through to the empty case.
		return FindRefs(v.Left)
	case *ast.Eq:
		return append(FindRefs(v.Left), FindRefs(v.Right)...)
	case *ast.Cmp:
		return append(FindRefs(v.Left), FindRefs(v.Right)...)
	case *ast.Call:
		var out []RowKey
		for _, a := range v.Args {
			out = append(out, FindRefs(a)...)
		}
		return append(out, FindRefs(v.Func)...)
	case *ast.IfExpr:
		out := FindRefs(v.Cond)
		out = append(out, FindRefs(v.Then)...)
		out = append(out, FindRefs(v.Else)...)
		return out
	case *ast.LambdaExpr:
		return FindRefs(v.Lambda.Body)
	default:
		return nil
	}
}
