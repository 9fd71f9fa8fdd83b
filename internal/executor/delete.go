package executor

import (
	"github.com/relique-lang/relique/internal/ast"
	"github.com/relique-lang/relique/internal/checker"
	"github.com/relique-lang/relique/internal/dbstate"
	"github.com/relique-lang/relique/internal/direrr"
	"github.com/relique-lang/relique/internal/evaluator"
)

// runDelete grounds on run.rs's Delete arm: Pred must type as
// Func(Object(ent), Bool); every row it accepts is removed, after first
// releasing the references that row's values hold, and rejected if any
// deleted row is itself still referenced.
func runDelete(c *ast.DeleteCmd, db *dbstate.DBState) (*dbstate.DBState, Result, error) {
	ln, cl := c.Pos()
	entIdx, ok := db.FindEntity(c.Entity)
	if !ok {
		return db, Result{}, direrr.Semantic(ln, cl, "Unable to delete from a non-recognized entity '%s'.", c.Entity)
	}
	want := ast.Func(ast.Object(c.Entity), ast.Bool())
	predType, err := checker.InferLambda(c.Pred, db, checker.Env{})
	if err != nil {
		return db, Result{}, err
	}
	if !predType.Equal(want) {
		return db, Result{}, direrr.Semantic(ln, cl, "Incorrect type of predicate lambda in delete.")
	}

	next := db.Clone()
	n := next.RowCount(entIdx)
	del := make([]bool, n)
	for i := 0; i < n; i++ {
		ref := &ast.Ref{Entity: c.Entity, EntIdx: entIdx, RowIdx: i, Resolved: true}
		res, err := evaluator.InvokeLambda(c.Pred, []ast.Node{ref}, next, evaluator.NewEnv())
		if err != nil {
			return db, Result{}, err
		}
		if b, ok := res.(*ast.BoolLit); ok && b.Value {
			del[i] = true
		}
	}

	for attrIdx := range next.Header[entIdx].Attrs {
		key := dbstate.EntKey{Ent: entIdx, Attr: attrIdx}
		col := next.Data[key]
		kept := col[:0:0]
		for row, val := range col {
			if !del[row] {
				kept = append(kept, val)
				continue
			}
			for _, rk := range dbstate.FindRefs(val) {
				next.ReleaseRef(rk)
			}
			if next.IsBound(dbstate.RowKey{Ent: entIdx, Row: row}) {
				return db, Result{}, direrr.Integrity(ln, cl, "Unable to delete from '%s' as it contains a reference-bound value.", c.Entity)
			}
		}
		next.Data[key] = kept
	}

	shift := make([]int, n)
	removed := 0
	for i, d := range del {
		if d {
			removed++
		}
		shift[i] = removed
	}
	newRow := func(oldRow int) int { return oldRow - shift[oldRow] }
	for _, col := range next.Data {
		for _, cell := range col {
			dbstate.ShiftRowRefs(cell, entIdx, newRow)
		}
	}
	next.RefList = reindexRowsAfterDelete(next.RefList, entIdx, del)
	return next, Result{}, nil
}

// reindexRowsAfterDelete shifts RefList row indices of entIdx down to
// account for rows removed ahead of them, mirroring the row-compaction
// every surviving column just underwent.
func reindexRowsAfterDelete(refs map[dbstate.RowKey]int64, entIdx int, del []bool) map[dbstate.RowKey]int64 {
	shift := make([]int, len(del))
	removed := 0
	for i, d := range del {
		if d {
			removed++
		}
		shift[i] = removed
	}
	out := make(map[dbstate.RowKey]int64, len(refs))
	for k, v := range refs {
		if k.Ent != entIdx {
			out[k] = v
			continue
		}
		out[dbstate.RowKey{Ent: entIdx, Row: k.Row - shift[k.Row]}] = v
	}
	return out
}
