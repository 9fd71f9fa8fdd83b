package executor

import (
	"github.com/relique-lang/relique/internal/ast"
	"github.com/relique-lang/relique/internal/checker"
	"github.com/relique-lang/relique/internal/dbstate"
	"github.com/relique-lang/relique/internal/direrr"
	"github.com/relique-lang/relique/internal/evaluator"
)

// runTransform grounds on run.rs's Trans arm: Pred types as
// Func(Object(ent), Bool); each update lambda types as
// Func(Object(ent), T) where T is its attribute's underlying type and
// the attribute is neither Computable nor Global; every row Pred
// accepts has each update applied, releasing the references the old
// value held and acquiring the references the new one holds, rejecting
// the write if the old value is itself still referenced or, for a
// Unique attribute, if the new value collides with an existing one.
func runTransform(c *ast.TransformCmd, db *dbstate.DBState) (*dbstate.DBState, Result, error) {
	ln, cl := c.Pos()
	entIdx, ok := db.FindEntity(c.Entity)
	if !ok {
		return db, Result{}, direrr.Semantic(ln, cl, "Unable to transform a non-recognized entity '%s'.", c.Entity)
	}
	predWant := ast.Func(ast.Object(c.Entity), ast.Bool())
	predType, err := checker.InferLambda(c.Pred, db, checker.Env{})
	if err != nil {
		return db, Result{}, err
	}
	if !predType.Equal(predWant) {
		return db, Result{}, direrr.Semantic(ln, cl, "Incorrect type of predicate lambda in transform.")
	}

	type update struct {
		attrIdx int
		lambda  *ast.Lambda
	}
	updates := make([]update, len(c.Updates))
	for i, u := range c.Updates {
		attrIdx, ok := db.FindAttr(entIdx, u.Attr)
		if !ok {
			return db, Result{}, direrr.Semantic(ln, cl, "Attribute '%s' not found in entity '%s' in transform.", u.Attr, c.Entity)
		}
		attr := db.Header[entIdx].Attrs[attrIdx]
		if attr.Flag == ast.FlagComputable || attr.Flag == ast.FlagGlobal {
			return db, Result{}, direrr.Semantic(ln, cl, "Unable to modify computable/global attribute '%s' in transform.", u.Attr)
		}
		want := ast.Func(ast.Object(c.Entity), attr.Type.Underlying())
		lmType, err := checker.InferLambda(u.Update, db, checker.Env{})
		if err != nil {
			return db, Result{}, err
		}
		if !lmType.Equal(want) {
			return db, Result{}, direrr.Semantic(ln, cl, "Incorrect type of transformation lambda on attribute '%s' of entity '%s' in transform.", u.Attr, c.Entity)
		}
		updates[i] = update{attrIdx: attrIdx, lambda: u.Update}
	}

	next := db.Clone()
	n := next.RowCount(entIdx)
	for i := 0; i < n; i++ {
		ref := &ast.Ref{Entity: c.Entity, EntIdx: entIdx, RowIdx: i, Resolved: true}
		res, err := evaluator.InvokeLambda(c.Pred, []ast.Node{ref}, next, evaluator.NewEnv())
		if err != nil {
			return db, Result{}, err
		}
		b, ok := res.(*ast.BoolLit)
		if !ok || !b.Value {
			continue
		}
		for _, u := range updates {
			newVal, err := evaluator.InvokeLambda(u.lambda, []ast.Node{ref}, next, evaluator.NewEnv())
			if err != nil {
				return db, Result{}, err
			}
			attr := next.Header[entIdx].Attrs[u.attrIdx]
			if attr.Flag == ast.FlagUnique {
				col := next.Data[dbstate.EntKey{Ent: entIdx, Attr: u.attrIdx}]
				for row, existing := range col {
					if row == i {
						continue
					}
					eqRes, err := evaluator.Eval(&ast.Eq{Equal: true, Left: existing, Right: newVal}, next, evaluator.NewEnv())
					if err != nil {
						return db, Result{}, err
					}
					if eb, ok := eqRes.(*ast.BoolLit); ok && eb.Value {
						return db, Result{}, direrr.Integrity(ln, cl, "Unable to transform unique attribute '%s' of entity '%s' as it would invalidate uniqueness.", attr.Name, c.Entity)
					}
				}
			}
			key := dbstate.EntKey{Ent: entIdx, Attr: u.attrIdx}
			oldVal := next.Data[key][i]
			for _, rk := range dbstate.FindRefs(oldVal) {
				next.ReleaseRef(rk)
			}
			if next.IsBound(dbstate.RowKey{Ent: entIdx, Row: i}) {
				return db, Result{}, direrr.Integrity(ln, cl, "Unable to transform row %d of '%s' as it is bound by reference constraint.", i, c.Entity)
			}
			next.Data[key][i] = newVal
			for _, rk := range dbstate.FindRefs(newVal) {
				next.AddRef(rk)
			}
		}
	}
	return next, Result{}, nil
}
