package parser

import (
	"github.com/relique-lang/relique/internal/ast"
	"github.com/relique-lang/relique/internal/direrr"
	"github.com/relique-lang/relique/internal/token"
)

func posOf(t token.Token) ast.Span { return ast.At(t.Line, t.Col) }

// parseE1 is the expression entry point: E1 handles == and != (each
// applicable once, non-chaining), delegating everything tighter to E2.
// Grounded on original_source/expr_parser.rs's grammar_parser ladder.
func (p *Parser) parseE1() (ast.Node, error) {
	left, err := p.parseE2()
	if err != nil {
		return nil, err
	}
	lex, ok := p.peekLexeme()
	if !ok {
		return left, nil
	}
	if lex == "=" {
		t, _ := p.next()
		if _, err := p.expect("="); err != nil {
			return nil, err
		}
		right, err := p.parseE2()
		if err != nil {
			return nil, err
		}
		return &ast.Eq{Span: posOf(t), Equal: true, Left: left, Right: right}, nil
	}
	if lex == "!" {
		t, _ := p.next()
		if _, err := p.expect("="); err != nil {
			return nil, err
		}
		right, err := p.parseE2()
		if err != nil {
			return nil, err
		}
		return &ast.Eq{Span: posOf(t), Equal: false, Left: left, Right: right}, nil
	}
	return left, nil
}

// parseE2 handles < > <= >=, applicable once, non-chaining.
func (p *Parser) parseE2() (ast.Node, error) {
	left, err := p.parseE3()
	if err != nil {
		return nil, err
	}
	lex, ok := p.peekLexeme()
	if !ok || (lex != "<" && lex != ">") {
		return left, nil
	}
	t, _ := p.next()
	greater := lex == ">"
	nonStrict := false
	if lex2, ok := p.peekLexeme(); ok && lex2 == "=" {
		p.next()
		nonStrict = true
	}
	right, err := p.parseE3()
	if err != nil {
		return nil, err
	}
	return &ast.Cmp{Span: posOf(t), Greater: greater, NonStrict: nonStrict, Left: left, Right: right}, nil
}

// parseE3 handles left-associative + and -.
func (p *Parser) parseE3() (ast.Node, error) {
	res, err := p.parseE4()
	if err != nil {
		return nil, err
	}
	for {
		lex, ok := p.peekLexeme()
		if !ok || (lex != "+" && lex != "-") {
			break
		}
		t, _ := p.next()
		rhs, err := p.parseE4()
		if err != nil {
			return nil, err
		}
		res = &ast.BinOp{Span: posOf(t), Op: lex[0], Left: res, Right: rhs}
	}
	return res, nil
}

// parseE4 handles left-associative * / %.
func (p *Parser) parseE4() (ast.Node, error) {
	res, err := p.parseE5()
	if err != nil {
		return nil, err
	}
	for {
		lex, ok := p.peekLexeme()
		if !ok || (lex != "*" && lex != "/" && lex != "%") {
			break
		}
		t, _ := p.next()
		rhs, err := p.parseE5()
		if err != nil {
			return nil, err
		}
		res = &ast.BinOp{Span: posOf(t), Op: lex[0], Left: res, Right: rhs}
	}
	return res, nil
}

// parseE5 handles ^, applicable once, non-chaining.
func (p *Parser) parseE5() (ast.Node, error) {
	res, err := p.parseE6()
	if err != nil {
		return nil, err
	}
	lex, ok := p.peekLexeme()
	if !ok || lex != "^" {
		return res, nil
	}
	t, _ := p.next()
	rhs, err := p.parseE6()
	if err != nil {
		return nil, err
	}
	return &ast.BinOp{Span: posOf(t), Op: '^', Left: res, Right: rhs}, nil
}

// parseE6 handles `if cond then a else b`, falling through to E7.
func (p *Parser) parseE6() (ast.Node, error) {
	lex, ok := p.peekLexeme()
	if !ok || lex != "if" {
		return p.parseE7()
	}
	t, _ := p.next()
	cond, err := p.parseE1()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("then"); err != nil {
		return nil, err
	}
	thenBr, err := p.parseE1()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("else"); err != nil {
		return nil, err
	}
	elseBr, err := p.parseE1()
	if err != nil {
		return nil, err
	}
	return &ast.IfExpr{Span: posOf(t), Cond: cond, Then: thenBr, Else: elseBr}, nil
}

// parseE7 is the atom level: parenthesized expressions, lambda
// literals, and literals/identifiers/refs, followed by any chain of
// `.attr` and `(args)` postfixes.
func (p *Parser) parseE7() (ast.Node, error) {
	var res ast.Node
	lex, ok := p.peekLexeme()
	switch {
	case ok && lex == "(":
		p.next()
		inner, err := p.parseE1()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(")"); err != nil {
			return nil, err
		}
		res = inner
	case ok && lex == "lambda":
		t, _ := p.next()
		lam, err := p.parseLambda()
		if err != nil {
			return nil, err
		}
		res = &ast.LambdaExpr{Span: posOf(t), Lambda: lam}
	default:
		lit, err := p.parseLit()
		if err != nil {
			return nil, err
		}
		res = lit
	}

	for {
		lex, ok := p.peekLexeme()
		if !ok {
			break
		}
		if lex == "." {
			t, _ := p.next()
			attr, err := p.readIdent()
			if err != nil {
				return nil, err
			}
			res = &ast.Dot{Span: posOf(t), Left: res, Attr: attr}
			continue
		}
		if lex == "(" {
			t, _ := p.next()
			args, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			res = &ast.Call{Span: posOf(t), Func: res, Args: args}
			continue
		}
		break
	}
	return res, nil
}

// parseArgList parses a comma-separated call argument list; the opening
// "(" has already been consumed by the caller.
func (p *Parser) parseArgList() ([]ast.Node, error) {
	if lex, ok := p.peekLexeme(); ok && lex == ")" {
		p.next()
		return nil, nil
	}
	var args []ast.Node
	for {
		arg, err := p.parseE1()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		lex, ok := p.peekLexeme()
		if !ok {
			ln, cl := p.lastPos()
			return nil, direrr.Parse(ln, cl, "Expected ')' or ',' in function call.")
		}
		if lex == "," {
			p.next()
			continue
		}
		if _, err := p.expect(")"); err != nil {
			return nil, err
		}
		break
	}
	return args, nil
}

// parseLit parses every atom that isn't a parenthesized expression or a
// lambda literal: number/char/string/bool literals, Nothing/Just,
// array/tuple literals, for-comprehensions, references, and bare
// identifiers. Grounded on expr_parser.rs's parse_lit.
func (p *Parser) parseLit() (ast.Node, error) {
	t, ok := p.next()
	if !ok {
		ln, cl := p.lastPos()
		return nil, direrr.Parse(ln, cl, "Expected literal or identifier.")
	}
	lx := t.Lexeme
	at := posOf(t)

	if n, ok, err := parseIntLit(lx, at); ok || err != nil {
		return n, err
	}
	if n, ok, err := parseDoubleLit(lx, at); ok || err != nil {
		return n, err
	}
	if len(lx) >= 3 && lx[0] == '\'' {
		return &ast.CharLit{Span: at, Value: []rune(lx)[1]}, nil
	}
	if len(lx) >= 2 && lx[0] == '"' {
		runes := []rune(lx)
		inner := runes[1 : len(runes)-1]
		elems := make([]ast.Node, len(inner))
		for i, r := range inner {
			elems[i] = &ast.CharLit{Span: at, Value: r}
		}
		return &ast.ArrayLit{Span: at, Elems: elems}, nil
	}
	switch lx {
	case "true":
		return &ast.BoolLit{Span: at, Value: true}, nil
	case "false":
		return &ast.BoolLit{Span: at, Value: false}, nil
	case "Nothing":
		if _, err := p.expect(":"); err != nil {
			return nil, err
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &ast.NothingLit{Span: at, Elem: elem}, nil
	case "Just":
		if _, err := p.expect("("); err != nil {
			return nil, err
		}
		inner, err := p.parseE1()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(")"); err != nil {
			return nil, err
		}
		return &ast.JustLit{Span: at, Value: inner}, nil
	case "[":
		return p.parseArrayLit(at)
	case "tup":
		if _, err := p.expect("("); err != nil {
			return nil, err
		}
		return p.parseTupleLit(at)
	case "for":
		if _, err := p.expect("("); err != nil {
			return nil, err
		}
		entity, err := p.readIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(")"); err != nil {
			return nil, err
		}
		lam, err := p.parseLambda()
		if err != nil {
			return nil, err
		}
		return &ast.For{Span: at, Entity: entity, Lambda: lam}, nil
	case "#":
		if _, err := p.expect("("); err != nil {
			return nil, err
		}
		entity, err := p.readIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(","); err != nil {
			return nil, err
		}
		attr, err := p.readIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(","); err != nil {
			return nil, err
		}
		key, err := p.parseE1()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(")"); err != nil {
			return nil, err
		}
		return &ast.Ref{Span: at, Entity: entity, Attr: attr, Key: key}, nil
	}
	if isIdentLexeme(lx) {
		return &ast.Ident{Span: at, Name: lx}, nil
	}
	return nil, direrr.Parse(t.Line, t.Col, "Expected identifier or literal, found '%s' at (%d, %d).", lx, t.Line, t.Col)
}

// parseArrayLit parses an array literal; "[" has already been consumed.
// An empty array must carry an explicit element type ("[]:Int"); a
// non-empty one never does.
func (p *Parser) parseArrayLit(at ast.Span) (ast.Node, error) {
	if lex, ok := p.peekLexeme(); ok && lex == "]" {
		p.next()
		if _, err := p.expect(":"); err != nil {
			return nil, err
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &ast.ArrayLit{Span: at, ElemType: elem}, nil
	}
	var elems []ast.Node
	for {
		el, err := p.parseE1()
		if err != nil {
			return nil, err
		}
		elems = append(elems, el)
		lex, ok := p.peekLexeme()
		if !ok {
			ln2, cl2 := p.lastPos()
			return nil, direrr.Parse(ln2, cl2, "Expected ']' or ',' in array literal.")
		}
		if lex == "," {
			p.next()
			continue
		}
		if _, err := p.expect("]"); err != nil {
			return nil, err
		}
		break
	}
	return &ast.ArrayLit{Span: at, Elems: elems}, nil
}

// parseTupleLit parses a tuple literal; "tup(" has already been
// consumed.
func (p *Parser) parseTupleLit(at ast.Span) (ast.Node, error) {
	if lex, ok := p.peekLexeme(); ok && lex == ")" {
		p.next()
		return &ast.TupleLit{Span: at}, nil
	}
	var elems []ast.Node
	for {
		el, err := p.parseE1()
		if err != nil {
			return nil, err
		}
		elems = append(elems, el)
		lex, ok := p.peekLexeme()
		if !ok {
			ln2, cl2 := p.lastPos()
			return nil, direrr.Parse(ln2, cl2, "Expected ')' or ',' in tuple literal.")
		}
		if lex == "," {
			p.next()
			continue
		}
		if _, err := p.expect(")"); err != nil {
			return nil, err
		}
		break
	}
	return &ast.TupleLit{Span: at, Elems: elems}, nil
}
