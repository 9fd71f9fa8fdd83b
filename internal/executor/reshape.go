package executor

import (
	"sort"

	"github.com/relique-lang/relique/internal/ast"
	"github.com/relique-lang/relique/internal/checker"
	"github.com/relique-lang/relique/internal/dbstate"
	"github.com/relique-lang/relique/internal/direrr"
	"github.com/relique-lang/relique/internal/evaluator"
)

// runReshape grounds on run.rs's Reshape arm. When NewEntity is set, a
// full copy of Entity (schema plus data) is made first and every op
// applies to the copy, leaving Entity untouched; otherwise ops apply to
// Entity directly. `new` ops append an attribute, synthesizing its
// value for every existing row from Default, checking each synthesized
// value against its attribute's Restrict predicate and, for a Unique
// attribute, pairwise against the other synthesized values — the same
// checks runAdd applies to supplied values, which run.rs's Reshape arm
// never performed at all. A Global `new` op instead synthesizes no
// per-row values; its Default is a zero-parameter lambda, matching how
// evaluator.evalDot invokes it on read. `collapse` ops remove an
// attribute, which must process in descending attribute-index order so
// removing one never invalidates the index of another still pending in
// the same command — exactly as run.rs sorts and reverses its collapsed
// list before applying it.
func runReshape(c *ast.ReshapeCmd, db *dbstate.DBState) (*dbstate.DBState, Result, error) {
	ln, cl := c.Pos()
	curEnt, ok := db.FindEntity(c.Entity)
	if !ok {
		return db, Result{}, direrr.Semantic(ln, cl, "Unable to reshape a non-recognized entity '%s'.", c.Entity)
	}

	next := db.Clone()
	target := curEnt
	if c.NewEntity != "" {
		attrs := make([]ast.Attr, len(next.Header[curEnt].Attrs))
		copy(attrs, next.Header[curEnt].Attrs)
		next.Header = append(next.Header, dbstate.Schema{Name: c.NewEntity, Attrs: attrs})
		target = len(next.Header) - 1
		for attrIdx := range attrs {
			src := next.Data[dbstate.EntKey{Ent: curEnt, Attr: attrIdx}]
			dst := make([]ast.Node, len(src))
			copy(dst, src)
			for _, v := range dst {
				for _, rk := range dbstate.FindRefs(v) {
					next.AddRef(rk)
				}
			}
			next.Data[dbstate.EntKey{Ent: target, Attr: attrIdx}] = dst
		}
	}
	targetName := next.Header[target].Name

	var collapsed []int
	for _, op := range c.Ops {
		switch op.Kind {
		case ast.ReshapeCollapse:
			attrIdx, ok := next.FindAttr(target, op.Name)
			if !ok {
				return db, Result{}, direrr.Semantic(ln, cl, "Unable to collapse non-recognized attribute '%s' of entity '%s'.", op.Name, targetName)
			}
			collapsed = append(collapsed, attrIdx)
		case ast.ReshapeNew:
			if _, exists := next.FindAttr(target, op.Name); exists {
				return db, Result{}, direrr.Semantic(ln, cl, "Attribute '%s' of entity '%s' already exists and cannot be added in reshape.", op.Name, targetName)
			}
			if err := checker.CheckSpType(op.Type, next); err != nil {
				return db, Result{}, err
			}
			want := ast.Func(ast.Object(c.Entity), op.Type.Underlying())
			if op.Flag == ast.FlagGlobal {
				want = ast.Func(op.Type.Underlying())
			}
			lmType, err := checker.InferLambda(op.Default, next, checker.Env{})
			if err != nil {
				return db, Result{}, err
			}
			if !lmType.Equal(want) {
				return db, Result{}, direrr.Semantic(ln, cl, "Default value of attribute '%s' of entity '%s' doesn't match its type.", op.Name, targetName)
			}
			newAttr := ast.Attr{Name: op.Name, Type: op.Type, Default: op.Default, Flag: op.Flag}
			next.Header[target].Attrs = append(next.Header[target].Attrs, newAttr)
			newAttrIdx := len(next.Header[target].Attrs) - 1
			if op.Flag == ast.FlagGlobal {
				continue
			}
			n := next.RowCount(target)
			col := make([]ast.Node, 0, n)
			for i := 0; i < n; i++ {
				ref := &ast.Ref{Entity: targetName, EntIdx: target, RowIdx: i, Resolved: true}
				val, err := evaluator.InvokeLambda(op.Default, []ast.Node{ref}, next, evaluator.NewEnv())
				if err != nil {
					return db, Result{}, err
				}
				if op.Type.Kind == ast.SpRestrict {
					res, err := evaluator.InvokeLambda(op.Type.Pred, []ast.Node{val}, next, evaluator.NewEnv())
					if err != nil {
						return db, Result{}, err
					}
					if b, ok := res.(*ast.BoolLit); !ok || !b.Value {
						return db, Result{}, direrr.Semantic(ln, cl, "Unable to synthesize a value not satisfying the restriction of attribute '%s' of entity '%s'.", op.Name, targetName)
					}
				}
				col = append(col, val)
			}
			if op.Flag == ast.FlagUnique {
				if err := checkUnique(next, target, newAttrIdx, col, ln, cl); err != nil {
					return db, Result{}, err
				}
			}
			for _, val := range col {
				for _, rk := range dbstate.FindRefs(val) {
					next.AddRef(rk)
				}
			}
			next.Data[dbstate.EntKey{Ent: target, Attr: newAttrIdx}] = col
		}
	}

	sort.Sort(sort.Reverse(sort.IntSlice(collapsed)))
	for _, attrIdx := range collapsed {
		key := dbstate.EntKey{Ent: target, Attr: attrIdx}
		col := next.Data[key]
		for row, val := range col {
			for _, rk := range dbstate.FindRefs(val) {
				next.ReleaseRef(rk)
			}
			if next.IsBound(dbstate.RowKey{Ent: target, Row: row}) {
				return db, Result{}, direrr.Integrity(ln, cl, "Unable to collapse attribute of '%s' as it is bound by reference constraint.", targetName)
			}
		}
		delete(next.Data, key)
		for i := attrIdx + 1; i < len(next.Header[target].Attrs); i++ {
			old := dbstate.EntKey{Ent: target, Attr: i}
			if v, ok := next.Data[old]; ok {
				next.Data[dbstate.EntKey{Ent: target, Attr: i - 1}] = v
				delete(next.Data, old)
			}
		}
		attrs := next.Header[target].Attrs
		next.Header[target].Attrs = append(attrs[:attrIdx], attrs[attrIdx+1:]...)
	}
	return next, Result{}, nil
}
