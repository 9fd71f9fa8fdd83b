package parser

import (
	"github.com/relique-lang/relique/internal/ast"
	"github.com/relique-lang/relique/internal/direrr"
)

// parseSpType parses one attribute/argument type, including the two
// dependent modifiers Restrict and Gen. Grounded on
// original_source/type_parser.rs's SpType::parse_type.
func (p *Parser) parseSpType() (ast.SpType, error) {
	t, ok := p.next()
	if !ok {
		ln, cl := p.lastPos()
		return ast.SpType{}, direrr.Parse(ln, cl, "Expected type, found EOF.")
	}
	switch t.Lexeme {
	case "Int":
		return ast.RegType(ast.Int()), nil
	case "Char":
		return ast.RegType(ast.Char()), nil
	case "Bool":
		return ast.RegType(ast.Bool()), nil
	case "Double":
		return ast.RegType(ast.Double()), nil
	case "Func":
		if _, err := p.expect("("); err != nil {
			return ast.SpType{}, err
		}
		args, err := p.parseTypeVec()
		if err != nil {
			return ast.SpType{}, err
		}
		if len(args) < 2 {
			return ast.SpType{}, direrr.Parse(t.Line, t.Col, "Too few parameters in function type at (%d, %d).", t.Line, t.Col)
		}
		return ast.RegType(ast.Func(args...)), nil
	case "(":
		args, err := p.parseTypeVec()
		if err != nil {
			return ast.SpType{}, err
		}
		if len(args) == 0 {
			return ast.SpType{}, direrr.Parse(t.Line, t.Col, "Empty tuple type at (%d, %d).", t.Line, t.Col)
		}
		return ast.RegType(ast.Tuple(args)), nil
	case "Sum":
		if _, err := p.expect("("); err != nil {
			return ast.SpType{}, err
		}
		args, err := p.parseTypeVec()
		if err != nil {
			return ast.SpType{}, err
		}
		if len(args) < 2 {
			return ast.SpType{}, direrr.Parse(t.Line, t.Col, "Too few parameters in sum type at (%d, %d).", t.Line, t.Col)
		}
		return ast.RegType(ast.Sum(args)), nil
	case "[":
		ln, cl := t.Line, t.Col
		inner, err := p.parseSpType()
		if err != nil {
			return ast.SpType{}, err
		}
		if inner.Kind != ast.SpReg {
			return ast.SpType{}, direrr.Parse(ln, cl, "Special type not allowed at (%d, %d).", ln, cl)
		}
		if _, err := p.expect("]"); err != nil {
			return ast.SpType{}, err
		}
		return ast.RegType(ast.Array(inner.Base)), nil
	case "Maybe":
		if _, err := p.expect("("); err != nil {
			return ast.SpType{}, err
		}
		ln, cl := p.peekPos()
		inner, err := p.parseSpType()
		if err != nil {
			return ast.SpType{}, err
		}
		if inner.Kind != ast.SpReg {
			return ast.SpType{}, direrr.Parse(ln, cl, "Special type not allowed at (%d, %d).", ln, cl)
		}
		if _, err := p.expect(")"); err != nil {
			return ast.SpType{}, err
		}
		return ast.RegType(ast.Maybe(inner.Base)), nil
	case "Gen":
		if _, err := p.expect("("); err != nil {
			return ast.SpType{}, err
		}
		ln, cl := p.peekPos()
		inner, err := p.parseSpType()
		if err != nil {
			return ast.SpType{}, err
		}
		if _, err := p.expect(","); err != nil {
			return ast.SpType{}, err
		}
		lam, err := p.parseLambda()
		if err != nil {
			return ast.SpType{}, err
		}
		if _, err := p.expect(")"); err != nil {
			return ast.SpType{}, err
		}
		if inner.Kind != ast.SpReg {
			return ast.SpType{}, direrr.Parse(ln, cl, "Special type not allowed at (%d, %d).", ln, cl)
		}
		return ast.GenType(inner.Base, lam, 0), nil
	case "Restrict":
		if _, err := p.expect("("); err != nil {
			return ast.SpType{}, err
		}
		ln, cl := p.peekPos()
		inner, err := p.parseSpType()
		if err != nil {
			return ast.SpType{}, err
		}
		if _, err := p.expect(","); err != nil {
			return ast.SpType{}, err
		}
		lam, err := p.parseLambda()
		if err != nil {
			return ast.SpType{}, err
		}
		if _, err := p.expect(")"); err != nil {
			return ast.SpType{}, err
		}
		if inner.Kind != ast.SpReg {
			return ast.SpType{}, direrr.Parse(ln, cl, "Special type not allowed at (%d, %d).", ln, cl)
		}
		return ast.RestrictType(inner.Base, lam), nil
	case "Object":
		if _, err := p.expect("("); err != nil {
			return ast.SpType{}, err
		}
		name, err := p.readIdent()
		if err != nil {
			return ast.SpType{}, err
		}
		if _, err := p.expect(")"); err != nil {
			return ast.SpType{}, err
		}
		return ast.RegType(ast.Object(name)), nil
	}
	return ast.SpType{}, direrr.Parse(t.Line, t.Col, "Unrecognized type '%s' at (%d, %d)", t.Lexeme, t.Line, t.Col)
}

func (p *Parser) peekPos() (int, int) {
	if t, ok := p.peek(); ok {
		return t.Line, t.Col
	}
	return p.lastPos()
}

// parseType parses a type that must not be one of the dependent
// modifiers (anywhere a plain Type, not a SpType, is grammatically
// required: array/maybe/tuple/sum/func element types).
func (p *Parser) parseType() (*ast.Type, error) {
	ln, cl := p.peekPos()
	sp, err := p.parseSpType()
	if err != nil {
		return nil, err
	}
	if sp.Kind != ast.SpReg {
		return nil, direrr.Parse(ln, cl, "Special type not allowed at (%d, %d).", ln, cl)
	}
	return sp.Base, nil
}

// parseTypeVec parses a parenthesized, comma-separated list of plain
// types: "(" already consumed by the caller's lookahead token, here we
// parse the first element through the closing ")".
func (p *Parser) parseTypeVec() ([]*ast.Type, error) {
	var args []*ast.Type
	first, err := p.parseType()
	if err != nil {
		return nil, err
	}
	args = append(args, first)
	for {
		lex, ok := p.peekLexeme()
		if !ok {
			ln, cl := p.lastPos()
			return nil, direrr.Parse(ln, cl, "Expected ')', found EOF.")
		}
		if lex == ")" {
			break
		}
		if _, err := p.expect(","); err != nil {
			return nil, err
		}
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		args = append(args, t)
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}
	return args, nil
}
