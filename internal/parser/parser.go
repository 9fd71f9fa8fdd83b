// Package parser implements the recursive-descent, explicit-precedence
// parser for the expression and command languages described in
// spec.md §4 and §6. It is grounded directly on
// original_source/{tree,expr_parser,type_parser,command_parser}.rs: the
// same E1-E7 precedence ladder, the same bracket-keyword pairs for `if
// ... then ... else`, and the same per-command grammars, re-expressed as
// idiomatic cursor-based Go recursion instead of the original's
// token-slice extraction.
package parser

import (
	"github.com/relique-lang/relique/internal/ast"
	"github.com/relique-lang/relique/internal/direrr"
	"github.com/relique-lang/relique/internal/lexer"
	"github.com/relique-lang/relique/internal/token"
)

// Parser walks a flat token stream with one lookahead slot.
type Parser struct {
	toks []token.Token
	pos  int
}

// New wraps a token stream for parsing.
func New(toks []token.Token) *Parser {
	return &Parser{toks: toks}
}

// Parse tokenizes and parses a full program into its list of commands.
func Parse(src string) ([]ast.Command, error) {
	toks, err := lexer.Lex(src)
	if err != nil {
		return nil, err
	}
	p := New(toks)
	return p.ParseProgram()
}

func (p *Parser) atEnd() bool { return p.pos >= len(p.toks) }

func (p *Parser) peek() (token.Token, bool) {
	if p.atEnd() {
		return token.Token{}, false
	}
	return p.toks[p.pos], true
}

func (p *Parser) peekLexeme() (string, bool) {
	t, ok := p.peek()
	return t.Lexeme, ok
}

func (p *Parser) next() (token.Token, bool) {
	t, ok := p.peek()
	if ok {
		p.pos++
	}
	return t, ok
}

// lastPos reports the position of the last consumed token, used for
// "found EOF" diagnostics that need somewhere to point.
func (p *Parser) lastPos() (int, int) {
	if p.pos == 0 {
		return 0, 0
	}
	t := p.toks[p.pos-1]
	return t.Line, t.Col
}

func (p *Parser) expect(lexeme string) (token.Token, error) {
	t, ok := p.next()
	if !ok {
		ln, cl := p.lastPos()
		return token.Token{}, direrr.Parse(ln, cl, "Expected '%s', found EOF.", lexeme)
	}
	if t.Lexeme != lexeme {
		return token.Token{}, direrr.Parse(t.Line, t.Col, "Expected '%s', found '%s'.", lexeme, t.Lexeme)
	}
	return t, nil
}

func isIdentLexeme(s string) bool {
	if s == "" {
		return false
	}
	c := rune(s[0])
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func (p *Parser) readIdent() (string, error) {
	t, ok := p.next()
	if !ok {
		ln, cl := p.lastPos()
		return "", direrr.Parse(ln, cl, "Expected identifier, found EOF.")
	}
	if !isIdentLexeme(t.Lexeme) {
		return "", direrr.Parse(t.Line, t.Col, "Expected identifier, found '%s'.", t.Lexeme)
	}
	return t.Lexeme, nil
}
