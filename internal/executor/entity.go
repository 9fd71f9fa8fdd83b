package executor

import (
	"github.com/relique-lang/relique/internal/ast"
	"github.com/relique-lang/relique/internal/checker"
	"github.com/relique-lang/relique/internal/dbstate"
	"github.com/relique-lang/relique/internal/direrr"
)

// runEntity grounds on run.rs's NewEntity arm: reject a duplicate
// entity name, reject duplicate attribute names within it, reject any
// non-Global attribute carrying a default (defaults on ordinary
// attributes may only be introduced via reshape's `new`). A Global
// attribute's Default is mandatory (the parser always attaches one,
// mirroring command_parser.rs's `global` branch) and must type as a
// zero-parameter lambda returning the attribute's underlying type,
// matching how evaluator.evalDot invokes it with no arguments. Each
// attribute's declared type is additionally validated with
// checker.CheckSpType, a check the original never wires up for
// NewEntity (semantic.rs only calls SpType::check from inside a
// lambda's parameter typing) — left unchecked, an entity could declare
// an attribute of an Object(Ent) type naming an entity that doesn't
// exist.
func runEntity(c *ast.EntityCmd, db *dbstate.DBState) (*dbstate.DBState, Result, error) {
	ln, cl := c.Pos()
	if _, ok := db.FindEntity(c.Name); ok {
		return db, Result{}, direrr.Semantic(ln, cl, "The entity '%s' already exists.", c.Name)
	}
	seen := map[string]bool{}
	for _, a := range c.Attrs {
		if seen[a.Name] {
			return db, Result{}, direrr.Semantic(ln, cl, "Unable to create entity '%s' with identical attribute names '%s'.", c.Name, a.Name)
		}
		seen[a.Name] = true
		next := db
		if err := checker.CheckSpType(a.Type, next); err != nil {
			return db, Result{}, err
		}
		if a.Flag != ast.FlagGlobal {
			if a.Default != nil {
				return db, Result{}, direrr.Semantic(ln, cl, "Default values are only allowed on new attributes in reshape.")
			}
			continue
		}
		want := ast.Func(a.Type.Underlying())
		lmType, err := checker.InferLambda(a.Default, next, checker.Env{})
		if err != nil {
			return db, Result{}, err
		}
		if !lmType.Equal(want) {
			return db, Result{}, direrr.Semantic(ln, cl, "Default value of global attribute '%s' of entity '%s' doesn't match its type.", a.Name, c.Name)
		}
	}
	next := db.Clone()
	attrs := make([]ast.Attr, len(c.Attrs))
	copy(attrs, c.Attrs)
	next.Header = append(next.Header, dbstate.Schema{Name: c.Name, Attrs: attrs})
	return next, Result{}, nil
}
