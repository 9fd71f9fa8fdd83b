// Package executor runs parsed commands against a dbstate.DBState,
// grounded on original_source/run.rs's Command::complete. Every
// operation type-checks its operands (via internal/checker) before
// mutating a scratch clone of the database, and only swaps that clone
// in on success, so a rejected command never leaves partial state.
package executor

import (
	"github.com/relique-lang/relique/internal/ast"
	"github.com/relique-lang/relique/internal/dbstate"
	"github.com/relique-lang/relique/internal/direrr"
)

// Result carries whatever an EvalCmd printed, or the byte count a
// CommitCmd wrote; every other command leaves both fields zero.
type Result struct {
	Output      string
	CommitBytes int
}

// Run executes cmd against db, returning the (possibly new) database
// state. db is never mutated in place on failure.
func Run(cmd ast.Command, db *dbstate.DBState) (*dbstate.DBState, Result, error) {
	switch c := cmd.(type) {
	case *ast.EntityCmd:
		return runEntity(c, db)
	case *ast.DropCmd:
		return runDrop(c, db)
	case *ast.AddCmd:
		return runAdd(c, db)
	case *ast.DeleteCmd:
		return runDelete(c, db)
	case *ast.TransformCmd:
		return runTransform(c, db)
	case *ast.ReshapeCmd:
		return runReshape(c, db)
	case *ast.EvalCmd:
		return runEval(c, db)
	case *ast.OpenCmd:
		return runOpen(c, db)
	case *ast.CommitCmd:
		return runCommit(c, db)
	case *ast.ProjectCmd, *ast.JoinCmd, *ast.ProductCmd:
		ln, cl := cmd.Pos()
		return db, Result{}, direrr.Semantic(ln, cl, "This command is not supported.")
	}
	ln, cl := cmd.Pos()
	return db, Result{}, direrr.Semantic(ln, cl, "This command is not supported.")
}
