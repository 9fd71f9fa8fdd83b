package parser

import (
	"strconv"
	"strings"

	"github.com/relique-lang/relique/internal/ast"
)

// parseIntLit attempts to read lx as an integer literal. The lexer never
// produces a lone "-" as part of a number lexeme unless it is followed
// by a digit, so any successful strconv.ParseInt here is unambiguous.
func parseIntLit(lx string, at ast.Span) (ast.Node, bool, error) {
	if lx == "" || strings.ContainsAny(lx, ".") {
		return nil, false, nil
	}
	v, err := strconv.ParseInt(lx, 10, 64)
	if err != nil {
		return nil, false, nil
	}
	return &ast.IntLit{Span: at, Value: v}, true, nil
}

// parseDoubleLit attempts to read lx as a floating-point literal.
func parseDoubleLit(lx string, at ast.Span) (ast.Node, bool, error) {
	if lx == "" {
		return nil, false, nil
	}
	c := lx[0]
	if !(c == '-' || (c >= '0' && c <= '9')) {
		return nil, false, nil
	}
	v, err := strconv.ParseFloat(lx, 64)
	if err != nil {
		return nil, false, nil
	}
	return &ast.DoubleLit{Span: at, Value: v}, true, nil
}
