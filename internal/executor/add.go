package executor

import (
	"github.com/relique-lang/relique/internal/ast"
	"github.com/relique-lang/relique/internal/checker"
	"github.com/relique-lang/relique/internal/dbstate"
	"github.com/relique-lang/relique/internal/direrr"
	"github.com/relique-lang/relique/internal/evaluator"
)

// runAdd grounds on run.rs's Add arm, with two deliberate fixes over
// the original (recorded in DESIGN.md):
//
//  1. Each supplied expression is stored in its evaluated, normal-form
//     shape rather than the original's raw, never-reduced expression
//     (the original pushes the source node itself into the column,
//     which breaks the invariant that Dot always reads a normal-form
//     value straight out of a column).
//  2. A Gen-typed attribute is synthesized exactly k times, where k is
//     the row count implied by the entity's ordinary columns, instead
//     of new_vals[i].len() times — in the original this is always
//     zero for a Gen column (no caller may ever populate one), which
//     makes Gen-attribute synthesis in run.rs unreachable dead code.
func runAdd(c *ast.AddCmd, db *dbstate.DBState) (*dbstate.DBState, Result, error) {
	ln, cl := c.Pos()
	entIdx, ok := db.FindEntity(c.Entity)
	if !ok {
		return db, Result{}, direrr.Semantic(ln, cl, "Unable to find entity '%s' in add.", c.Entity)
	}
	attrs := db.Header[entIdx].Attrs
	for _, a := range attrs {
		if a.Flag == ast.FlagComputable {
			return db, Result{}, direrr.Semantic(ln, cl, "Computable attributes are not supported.")
		}
	}

	newVals := make([][]ast.Node, len(attrs))
	numRows := -1
	for _, col := range c.Columns {
		attrIdx, ok := indexOfAttr(attrs, col.Attr)
		if !ok {
			return db, Result{}, direrr.Semantic(ln, cl, "Entity '%s' doesn't contain the attribute '%s'.", c.Entity, col.Attr)
		}
		if attrs[attrIdx].Flag == ast.FlagGlobal {
			return db, Result{}, direrr.Semantic(ln, cl, "Unable to add values to global attribute '%s'.", attrs[attrIdx].Name)
		}
		if attrs[attrIdx].Type.Kind == ast.SpGen {
			return db, Result{}, direrr.Semantic(ln, cl, "Unable to add values to Gen-type attribute '%s'.", attrs[attrIdx].Name)
		}
		if numRows != -1 && len(col.Values) != numRows {
			return db, Result{}, direrr.Semantic(ln, cl, "Different number of values across attributes in add.")
		}
		for _, expr := range col.Values {
			val, err := evaluator.Eval(expr, db, evaluator.NewEnv())
			if err != nil {
				return db, Result{}, err
			}
			valType, err := checker.Infer(val, db, checker.Env{})
			if err != nil {
				return db, Result{}, err
			}
			sp := attrs[attrIdx].Type
			if !sp.Base.Equal(valType) {
				return db, Result{}, direrr.Semantic(ln, cl, "Unable to add a value of type '%s' to attribute '%s' of type '%s'.", valType, col.Attr, sp.Base)
			}
			if sp.Kind == ast.SpRestrict {
				res, err := evaluator.InvokeLambda(sp.Pred, []ast.Node{val}, db, evaluator.NewEnv())
				if err != nil {
					return db, Result{}, err
				}
				if b, ok := res.(*ast.BoolLit); !ok || !b.Value {
					return db, Result{}, direrr.Semantic(ln, cl, "Unable to add a value not satisfying the restriction of attribute '%s'.", col.Attr)
				}
			}
			newVals[attrIdx] = append(newVals[attrIdx], val)
		}
		if numRows == -1 {
			numRows = len(col.Values)
		}
	}
	if numRows == -1 {
		numRows = 0
	}

	next := db.Clone()
	for i, a := range attrs {
		if a.Flag == ast.FlagGlobal {
			continue
		}
		if a.Type.Kind == ast.SpGen {
			continue
		}
		if len(newVals[i]) != numRows {
			return db, Result{}, direrr.Semantic(ln, cl, "Attribute '%s' not specified in add.", a.Name)
		}
		if a.Flag == ast.FlagUnique {
			if err := checkUnique(db, entIdx, i, newVals[i], ln, cl); err != nil {
				return db, Result{}, err
			}
		}
	}

	for i, a := range attrs {
		key := dbstate.EntKey{Ent: entIdx, Attr: i}
		switch {
		case a.Flag == ast.FlagGlobal:
			continue
		case a.Type.Kind == ast.SpGen:
			gen := next.Header[entIdx].Attrs[i].Type
			for r := 0; r < numRows; r++ {
				res, err := evaluator.InvokeLambda(gen.Gen, []ast.Node{&ast.IntLit{Value: int64(gen.Counter)}}, next, evaluator.NewEnv())
				if err != nil {
					return db, Result{}, err
				}
				next.Data[key] = append(next.Data[key], res)
				for _, rk := range dbstate.FindRefs(res) {
					next.AddRef(rk)
				}
				gen.Counter++
			}
			next.Header[entIdx].Attrs[i].Type = gen
		default:
			next.Data[key] = append(next.Data[key], newVals[i]...)
			for _, v := range newVals[i] {
				for _, rk := range dbstate.FindRefs(v) {
					next.AddRef(rk)
				}
			}
		}
	}
	return next, Result{}, nil
}

func indexOfAttr(attrs []ast.Attr, name string) (int, bool) {
	for i, a := range attrs {
		if a.Name == name {
			return i, true
		}
	}
	return 0, false
}

// checkUnique rejects new values that collide with an existing value or
// with each other — the latter a check spec.md adds (run.rs's Unique
// check in Add only ever compares new values against existing ones, so
// two identical fresh values slip through in the original).
func checkUnique(db *dbstate.DBState, entIdx, attrIdx int, fresh []ast.Node, ln, cl int) error {
	existing := db.Data[dbstate.EntKey{Ent: entIdx, Attr: attrIdx}]
	name := db.Header[entIdx].Attrs[attrIdx].Name
	eq := func(a, b ast.Node) (bool, error) {
		res, err := evaluator.Eval(&ast.Eq{Equal: true, Left: a, Right: b}, db, evaluator.NewEnv())
		if err != nil {
			return false, err
		}
		bl, _ := res.(*ast.BoolLit)
		return bl != nil && bl.Value, nil
	}
	for _, val := range existing {
		for _, add := range fresh {
			same, err := eq(val, add)
			if err != nil {
				return err
			}
			if same {
				return direrr.Integrity(ln, cl, "Unable to add an existing value to unique attribute '%s' of entity '%s'.", name, db.Header[entIdx].Name)
			}
		}
	}
	for i := 0; i < len(fresh); i++ {
		for j := i + 1; j < len(fresh); j++ {
			same, err := eq(fresh[i], fresh[j])
			if err != nil {
				return err
			}
			if same {
				return direrr.Integrity(ln, cl, "Unable to add two equal values to unique attribute '%s' of entity '%s'.", name, db.Header[entIdx].Name)
			}
		}
	}
	return nil
}
