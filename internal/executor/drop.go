package executor

import (
	"github.com/relique-lang/relique/internal/ast"
	"github.com/relique-lang/relique/internal/dbstate"
	"github.com/relique-lang/relique/internal/direrr"
)

// runDrop grounds on run.rs's Drop arm: every row of the entity
// releases the references it holds on other rows, then the entity is
// rejected if any of its own rows are still referenced from elsewhere.
// Unlike the original (which removes the entity with Vec::swap_remove,
// silently desyncing every other entity's index from the data/ref_list
// keys that address it), this renumbers: the dropped index's gap is
// closed and every higher entity index, along with every Ref and
// RefList key that names it, is shifted down by one.
func runDrop(c *ast.DropCmd, db *dbstate.DBState) (*dbstate.DBState, Result, error) {
	ln, cl := c.Pos()
	pos, ok := db.FindEntity(c.Name)
	if !ok {
		return db, Result{}, direrr.Semantic(ln, cl, "Unable to drop a non-recognized entity '%s'.", c.Name)
	}
	next := db.Clone()

	for attrIdx := range next.Header[pos].Attrs {
		col := next.Data[dbstate.EntKey{Ent: pos, Attr: attrIdx}]
		for row, val := range col {
			for _, rk := range dbstate.FindRefs(val) {
				next.ReleaseRef(rk)
			}
			if next.IsBound(dbstate.RowKey{Ent: pos, Row: row}) {
				return db, Result{}, direrr.Integrity(ln, cl, "Unable to drop '%s' as it is bound by reference constraint.", c.Name)
			}
		}
	}

	newHeader := make([]dbstate.Schema, 0, len(next.Header)-1)
	newData := make(map[dbstate.EntKey][]ast.Node, len(next.Data))
	newRefList := make(map[dbstate.RowKey]int64, len(next.RefList))

	reindex := func(ent int) int {
		if ent > pos {
			return ent - 1
		}
		return ent
	}
	for i, s := range next.Header {
		if i == pos {
			continue
		}
		newHeader = append(newHeader, s)
	}
	for k, v := range next.Data {
		if k.Ent == pos {
			continue
		}
		for _, cell := range v {
			dbstate.ShiftEntityRefs(cell, pos)
		}
		newData[dbstate.EntKey{Ent: reindex(k.Ent), Attr: k.Attr}] = v
	}
	for k, v := range next.RefList {
		if k.Ent == pos {
			continue
		}
		newRefList[dbstate.RowKey{Ent: reindex(k.Ent), Row: k.Row}] = v
	}
	next.Header = newHeader
	next.Data = newData
	next.RefList = newRefList
	return next, Result{}, nil
}
