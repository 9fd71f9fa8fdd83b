package parser

import (
	"github.com/relique-lang/relique/internal/ast"
	"github.com/relique-lang/relique/internal/direrr"
	"github.com/relique-lang/relique/internal/token"
)

// ParseProgram parses every remaining command in the token stream.
// Grounded on original_source/command_parser.rs's Command::parse_program.
func (p *Parser) ParseProgram() ([]ast.Command, error) {
	var cmds []ast.Command
	for !p.atEnd() {
		cmd, err := p.parseCommand()
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

func (p *Parser) parseCommand() (ast.Command, error) {
	t, _ := p.next()
	sp := ast.CmdSpan{Span: posOf(t)}
	switch t.Lexeme {
	case "entity":
		return p.parseEntityCmd(sp)
	case "eval":
		return p.parseEvalCmd(sp)
	case "commit":
		path, err := p.readQuotedPath()
		if err != nil {
			return nil, err
		}
		return &ast.CommitCmd{CmdSpan: sp, Path: path}, nil
	case "open":
		path, err := p.readQuotedPath()
		if err != nil {
			return nil, err
		}
		return &ast.OpenCmd{CmdSpan: sp, Path: path}, nil
	case "add":
		return p.parseAddCmd(sp)
	case "delete":
		return p.parseDeleteCmd(sp)
	case "transform":
		return p.parseTransformCmd(sp)
	case "reshape":
		return p.parseReshapeCmd(sp)
	case "project":
		return p.parseProjectCmd(sp)
	case "join":
		return p.parseJoinCmd(sp)
	case "product":
		return p.parseProductCmd(sp)
	case "drop":
		name, err := p.readIdent()
		if err != nil {
			return nil, err
		}
		return &ast.DropCmd{CmdSpan: sp, Name: name}, nil
	}
	return nil, direrr.Parse(t.Line, t.Col, "Unrecognized command at (%d, %d).", t.Line, t.Col)
}

func (p *Parser) readQuotedPath() (string, error) {
	t, ok := p.next()
	if !ok {
		ln, cl := p.lastPos()
		return "", direrr.Parse(ln, cl, "Expected filename, found EOF.")
	}
	if len(t.Lexeme) < 2 || t.Lexeme[0] != '"' {
		return "", direrr.Parse(t.Line, t.Col, "Expected string, found '%s' at (%d, %d).", t.Lexeme, t.Line, t.Col)
	}
	return t.Lexeme[1 : len(t.Lexeme)-1], nil
}

func (p *Parser) parseEntityCmd(sp ast.CmdSpan) (ast.Command, error) {
	name, err := p.readIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("{"); err != nil {
		return nil, err
	}
	var attrs []ast.Attr
	for {
		a, err := p.parseAttr()
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
		lex, ok := p.peekLexeme()
		if !ok {
			ln, cl := p.lastPos()
			return nil, direrr.Parse(ln, cl, "Expected '}', found EOF.")
		}
		if lex == "}" {
			break
		}
		if _, err := p.expect(","); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect("}"); err != nil {
		return nil, err
	}
	return &ast.EntityCmd{CmdSpan: sp, Name: name, Attrs: attrs}, nil
}

// parseAttr parses one `[flag] name: Type [as lambda]` attribute
// definition, or `global name as lambda`. Grounded on
// original_source/command_parser.rs's Attr::parse.
func (p *Parser) parseAttr() (ast.Attr, error) {
	lex, ok := p.peekLexeme()
	if !ok {
		ln, cl := p.lastPos()
		return ast.Attr{}, direrr.Parse(ln, cl, "Expected attribute definition, found EOF.")
	}
	flag := ast.FlagNone
	switch lex {
	case "computable":
		p.next()
		flag = ast.FlagComputable
	case "global":
		p.next()
		flag = ast.FlagGlobal
	case "unique":
		p.next()
		flag = ast.FlagUnique
	}
	name, err := p.readIdent()
	if err != nil {
		return ast.Attr{}, err
	}
	attr := ast.Attr{Name: name, Flag: flag, Type: ast.RegType(ast.Int())}
	if flag != ast.FlagGlobal {
		if _, err := p.expect(":"); err != nil {
			return ast.Attr{}, err
		}
		sp, err := p.parseSpType()
		if err != nil {
			return ast.Attr{}, err
		}
		attr.Type = sp
		if next, ok := p.peekLexeme(); ok && (flag == ast.FlagComputable || next == "as") {
			if _, err := p.expect("as"); err != nil {
				return ast.Attr{}, err
			}
			lam, err := p.parseLambda()
			if err != nil {
				return ast.Attr{}, err
			}
			attr.Default = lam
		}
	} else {
		if _, err := p.expect("as"); err != nil {
			return ast.Attr{}, err
		}
		lam, err := p.parseLambda()
		if err != nil {
			return ast.Attr{}, err
		}
		attr.Default = lam
		if lam.ReturnType != nil {
			attr.Type = ast.RegType(lam.ReturnType)
		}
	}
	return attr, nil
}

func (p *Parser) parseEvalCmd(sp ast.CmdSpan) (ast.Command, error) {
	if _, err := p.expect("{"); err != nil {
		return nil, err
	}
	expr, err := p.parseE1()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("}"); err != nil {
		return nil, err
	}
	return &ast.EvalCmd{CmdSpan: sp, Expr: expr}, nil
}

// parseAddCmd parses `add Entity { attr: (e1; e2 $), attr2: (e1 $) ... }`.
// Grounded on command_parser.rs's parse_attrlist: each attribute's
// value column is a parenthesised, ';'-separated run of expressions
// closed by '$'; the comma between columns is optional.
func (p *Parser) parseAddCmd(sp ast.CmdSpan) (ast.Command, error) {
	entity, err := p.readIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("{"); err != nil {
		return nil, err
	}
	var cols []ast.AddColumn
	for {
		attr, err := p.readIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(":"); err != nil {
			return nil, err
		}
		if _, err := p.expect("("); err != nil {
			return nil, err
		}
		vals, err := p.parseValueColumn()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(")"); err != nil {
			return nil, err
		}
		cols = append(cols, ast.AddColumn{Attr: attr, Values: vals})
		lex, ok := p.peekLexeme()
		if !ok {
			ln, cl := p.lastPos()
			return nil, direrr.Parse(ln, cl, "Expected '}', found EOF.")
		}
		if lex == "}" {
			break
		}
		if lex == "," {
			p.next()
		}
	}
	if _, err := p.expect("}"); err != nil {
		return nil, err
	}
	return &ast.AddCmd{CmdSpan: sp, Entity: entity, Columns: cols}, nil
}

// parseValueColumn collects raw tokens up to each top-level ';' (parsed
// as one expression apiece) and stops at the closing '$'. Neither ';'
// nor '$' appears inside the expression grammar itself, so no bracket
// tracking is needed, matching the original parser's own scan.
func (p *Parser) parseValueColumn() ([]ast.Node, error) {
	var values []ast.Node
	var chunk []token.Token
	for {
		t, ok := p.next()
		if !ok {
			ln, cl := p.lastPos()
			return nil, direrr.Parse(ln, cl, "Expected ';', found EOF.")
		}
		if t.Lexeme == ";" || t.Lexeme == "$" {
			n, err := parseChunk(chunk)
			if err != nil {
				return nil, err
			}
			values = append(values, n)
			if t.Lexeme == "$" {
				return values, nil
			}
			chunk = nil
			continue
		}
		chunk = append(chunk, t)
	}
}

func parseChunk(toks []token.Token) (ast.Node, error) {
	if len(toks) == 0 {
		return nil, direrr.Parse(0, 0, "Expected expression.")
	}
	sub := New(toks)
	n, err := sub.parseE1()
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (p *Parser) parseDeleteCmd(sp ast.CmdSpan) (ast.Command, error) {
	entity, err := p.readIdent()
	if err != nil {
		return nil, err
	}
	lam, err := p.parseLambda()
	if err != nil {
		return nil, err
	}
	return &ast.DeleteCmd{CmdSpan: sp, Entity: entity, Pred: lam}, nil
}

func (p *Parser) parseTransformCmd(sp ast.CmdSpan) (ast.Command, error) {
	entity, err := p.readIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("{"); err != nil {
		return nil, err
	}
	var updates []ast.TransformUpdate
	for {
		lex, ok := p.peekLexeme()
		if !ok {
			ln, cl := p.lastPos()
			return nil, direrr.Parse(ln, cl, "Expected '}', found EOF.")
		}
		if lex == "}" {
			break
		}
		attr, err := p.readIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(":"); err != nil {
			return nil, err
		}
		lam, err := p.parseLambda()
		if err != nil {
			return nil, err
		}
		updates = append(updates, ast.TransformUpdate{Attr: attr, Update: lam})
	}
	if _, err := p.expect("}"); err != nil {
		return nil, err
	}
	if _, err := p.expect("where"); err != nil {
		return nil, err
	}
	pred, err := p.parseLambda()
	if err != nil {
		return nil, err
	}
	return &ast.TransformCmd{CmdSpan: sp, Entity: entity, Updates: updates, Pred: pred}, nil
}

func (p *Parser) parseReshapeOp() (ast.ReshapeOp, error) {
	t, ok := p.next()
	if !ok {
		ln, cl := p.lastPos()
		return ast.ReshapeOp{}, direrr.Parse(ln, cl, "Expected 'new' or 'collapse', found EOF.")
	}
	switch t.Lexeme {
	case "new":
		attr, err := p.parseAttr()
		if err != nil {
			return ast.ReshapeOp{}, err
		}
		if attr.Default == nil {
			return ast.ReshapeOp{}, direrr.Parse(t.Line, t.Col,
				"New attribute '%s' in reshape doesn't have a default value at (%d, %d).", attr.Name, t.Line, t.Col)
		}
		return ast.ReshapeOp{Kind: ast.ReshapeNew, Name: attr.Name, Type: attr.Type, Default: attr.Default, Flag: attr.Flag}, nil
	case "collapse":
		name, err := p.readIdent()
		if err != nil {
			return ast.ReshapeOp{}, err
		}
		return ast.ReshapeOp{Kind: ast.ReshapeCollapse, Name: name}, nil
	}
	return ast.ReshapeOp{}, direrr.Parse(t.Line, t.Col, "Expected 'new' or 'collapse', found '%s' at (%d, %d).", t.Lexeme, t.Line, t.Col)
}

func (p *Parser) parseReshapeCmd(sp ast.CmdSpan) (ast.Command, error) {
	entity, err := p.readIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("{"); err != nil {
		return nil, err
	}
	var ops []ast.ReshapeOp
	for {
		op, err := p.parseReshapeOp()
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
		lex, ok := p.peekLexeme()
		if !ok {
			ln, cl := p.lastPos()
			return nil, direrr.Parse(ln, cl, "Expected '}', found EOF.")
		}
		if lex == "}" {
			break
		}
		if lex == "," {
			p.next()
		}
	}
	if _, err := p.expect("}"); err != nil {
		return nil, err
	}
	newEntity := ""
	if lex, ok := p.peekLexeme(); ok && lex == "as" {
		p.next()
		newEntity, err = p.readIdent()
		if err != nil {
			return nil, err
		}
	}
	return &ast.ReshapeCmd{CmdSpan: sp, Entity: entity, NewEntity: newEntity, Ops: ops}, nil
}

// parseProjectCmd, parseJoinCmd and parseProductCmd parse relational
// shorthand commands that the executor intentionally never runs (see
// ast.ProjectCmd's doc comment); they exist purely so this surface
// parses instead of failing outright.
func (p *Parser) parseProjectCmd(sp ast.CmdSpan) (ast.Command, error) {
	entity, err := p.readIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("{"); err != nil {
		return nil, err
	}
	var attrs []string
	for {
		a, err := p.readIdent()
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
		lex, ok := p.peekLexeme()
		if !ok {
			ln, cl := p.lastPos()
			return nil, direrr.Parse(ln, cl, "Expected '}', found EOF.")
		}
		if lex == "}" {
			break
		}
		if _, err := p.expect(","); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect("}"); err != nil {
		return nil, err
	}
	if _, err := p.expect("as"); err != nil {
		return nil, err
	}
	newEntity, err := p.readIdent()
	if err != nil {
		return nil, err
	}
	return &ast.ProjectCmd{CmdSpan: sp, Entity: entity, NewEntity: newEntity, Attrs: attrs}, nil
}

func (p *Parser) parseJoinCmd(sp ast.CmdSpan) (ast.Command, error) {
	left, err := p.readIdent()
	if err != nil {
		return nil, err
	}
	right, err := p.readIdent2Until("by")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("by"); err != nil {
		return nil, err
	}
	lam, err := p.parseLambda()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("as"); err != nil {
		return nil, err
	}
	newEntity, err := p.readIdent()
	if err != nil {
		return nil, err
	}
	return &ast.JoinCmd{CmdSpan: sp, Left: left, Right: right, NewEntity: newEntity, Pred: lam}, nil
}

func (p *Parser) parseProductCmd(sp ast.CmdSpan) (ast.Command, error) {
	left, err := p.readIdent()
	if err != nil {
		return nil, err
	}
	right, err := p.readIdent2Until("as")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("as"); err != nil {
		return nil, err
	}
	newEntity, err := p.readIdent()
	if err != nil {
		return nil, err
	}
	return &ast.ProductCmd{CmdSpan: sp, Left: left, Right: right, NewEntity: newEntity}, nil
}

// readIdent2Until reads a single comma-joined identifier list (as join
// and product's "left, right" operand lists permit, though this
// re-implementation only ever stores the first and last) stopping
// before stopLexeme.
func (p *Parser) readIdent2Until(stopLexeme string) (string, error) {
	var last string
	for {
		lex, ok := p.peekLexeme()
		if !ok {
			ln, cl := p.lastPos()
			return "", direrr.Parse(ln, cl, "Expected '%s', found EOF.", stopLexeme)
		}
		if lex == stopLexeme {
			return last, nil
		}
		if last != "" {
			if _, err := p.expect(","); err != nil {
				return "", err
			}
		}
		id, err := p.readIdent()
		if err != nil {
			return "", err
		}
		last = id
	}
}
