// Package evaluator is the tree-walking interpreter for the expression
// language, grounded on original_source/compute.rs's compute function.
package evaluator

import "github.com/relique-lang/relique/internal/ast"

// Env is the evaluation environment: a single immutable frame mapping
// identifier to bound value. compute.rs clones its HashMap<String,
// ExprTree> on every Call/For iteration rather than chaining scopes;
// Extend mirrors that by copying the frame instead of linking to a
// parent, keeping lookup a single map access.
type Env struct {
	vars map[string]ast.Node
}

// NewEnv returns the empty top-level environment.
func NewEnv() *Env {
	return &Env{vars: map[string]ast.Node{}}
}

// Extend returns a new environment equal to e with name bound to val,
// leaving e itself untouched.
func (e *Env) Extend(name string, val ast.Node) *Env {
	next := make(map[string]ast.Node, len(e.vars)+1)
	for k, v := range e.vars {
		next[k] = v
	}
	next[name] = val
	return &Env{vars: next}
}

// Lookup returns the value bound to name, if any.
func (e *Env) Lookup(name string) (ast.Node, bool) {
	v, ok := e.vars[name]
	return v, ok
}
