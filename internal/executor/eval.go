package executor

import (
	"github.com/relique-lang/relique/internal/ast"
	"github.com/relique-lang/relique/internal/checker"
	"github.com/relique-lang/relique/internal/dbstate"
	"github.com/relique-lang/relique/internal/evaluator"
)

// runEval grounds on run.rs's Eval arm: type-check, then evaluate, then
// pretty-print the result as the command's output.
func runEval(c *ast.EvalCmd, db *dbstate.DBState) (*dbstate.DBState, Result, error) {
	if _, err := checker.Infer(c.Expr, db, checker.Env{}); err != nil {
		return db, Result{}, err
	}
	res, err := evaluator.Eval(c.Expr, db, evaluator.NewEnv())
	if err != nil {
		return db, Result{}, err
	}
	return db, Result{Output: ast.Print(res)}, nil
}
