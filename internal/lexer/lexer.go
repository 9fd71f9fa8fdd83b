// Package lexer is the trivial surface tokenizer feeding internal/parser.
// It is deliberately minimal: spec.md treats it as an external
// collaborator, not part of the core engineering surface. It produces a
// flat token stream; the parser does its own recursive-descent and
// bracket matching over that stream.
package lexer

import (
	"strings"
	"unicode"

	"github.com/relique-lang/relique/internal/direrr"
	"github.com/relique-lang/relique/internal/token"
)

func escape(c rune) (rune, bool) {
	switch c {
	case 'n':
		return '\n', true
	case '\\':
		return '\\', true
	case '"':
		return '"', true
	case '@':
		return '@', true
	default:
		return 0, false
	}
}

// stripComments removes @...@ fenced comments, honoring \@ as a literal
// '@' inside a comment, while preserving newlines so line numbers in the
// remaining source stay accurate.
func stripComments(src string) (string, error) {
	var out strings.Builder
	runes := []rune(src)
	inComment := false
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		isFence := c == '@' && (i == 0 || runes[i-1] != '\\')
		if inComment {
			if isFence {
				inComment = false
			} else if c == '\n' {
				out.WriteRune('\n')
			}
			continue
		}
		if isFence {
			inComment = true
			continue
		}
		out.WriteRune(c)
	}
	if inComment {
		return out.String(), direrr.Lex(0, 0, "Expected '@', found EOF.")
	}
	return out.String(), nil
}

// Lex tokenizes source into a flat stream of (lexeme, line, col) triples.
func Lex(src string) ([]token.Token, error) {
	stripped, err := stripComments(src)
	if err != nil {
		return nil, err
	}
	runes := []rune(stripped)
	var toks []token.Token
	line, col := 1, 1
	i := 0
	n := len(runes)

	advance := func() {
		if runes[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
		i++
	}

	for i < n {
		c := runes[i]
		startLine, startCol := line, col

		switch {
		case c == '\n':
			advance()
		case unicode.IsSpace(c):
			advance()
		case unicode.IsDigit(c) || c == '-':
			isNeg := c == '-'
			if isNeg && (i+1 >= n || !unicode.IsDigit(runes[i+1])) {
				advance()
				toks = append(toks, token.Token{Lexeme: "-", Line: startLine, Col: startCol})
				continue
			}
			var b strings.Builder
			b.WriteRune(c)
			advance()
			for i < n && unicode.IsDigit(runes[i]) {
				b.WriteRune(runes[i])
				advance()
			}
			if i < n && runes[i] == '.' {
				b.WriteRune('.')
				advance()
				for i < n && unicode.IsDigit(runes[i]) {
					b.WriteRune(runes[i])
					advance()
				}
				s := b.String()
				if strings.HasSuffix(s, ".") {
					b.WriteRune('0')
				}
			}
			toks = append(toks, token.Token{Lexeme: b.String(), Line: startLine, Col: startCol})
		case unicode.IsLetter(c):
			var b strings.Builder
			b.WriteRune(c)
			advance()
			for i < n && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i])) {
				b.WriteRune(runes[i])
				advance()
			}
			toks = append(toks, token.Token{Lexeme: b.String(), Line: startLine, Col: startCol})
		case c == '"':
			var b strings.Builder
			b.WriteRune('"')
			advance()
			closed := false
			for i < n {
				b0 := runes[i]
				if b0 == '\\' {
					if i+1 < n {
						if esc, ok := escape(runes[i+1]); ok {
							b.WriteRune(esc)
							advance()
							advance()
							continue
						}
						return nil, direrr.Lex(line, col, "Unrecognized escape-sequence at (%d, %d)", line, col)
					}
					return nil, direrr.Lex(line, col, "Unrecognized escape-sequence at (%d, %d)", line, col)
				}
				if b0 == '"' {
					b.WriteRune('"')
					advance()
					closed = true
					break
				}
				b.WriteRune(b0)
				advance()
			}
			if !closed {
				return nil, direrr.Lex(startLine, startCol, "Expected '\"', found EOF.")
			}
			toks = append(toks, token.Token{Lexeme: b.String(), Line: startLine, Col: startCol})
		case c == '\'':
			var b strings.Builder
			b.WriteRune('\'')
			if i+2 < n && runes[i+1] != '\\' && runes[i+2] == '\'' {
				b.WriteRune(runes[i+1])
				b.WriteRune('\'')
				advance()
				advance()
				advance()
				toks = append(toks, token.Token{Lexeme: b.String(), Line: startLine, Col: startCol})
				continue
			}
			if i+3 < n && runes[i+1] == '\\' && runes[i+3] == '\'' {
				if esc, ok := escape(runes[i+2]); ok {
					b.WriteRune(esc)
					b.WriteRune('\'')
					advance()
					advance()
					advance()
					advance()
					toks = append(toks, token.Token{Lexeme: b.String(), Line: startLine, Col: startCol})
					continue
				}
			}
			return nil, direrr.Lex(startLine, startCol, "Unrecognized char literal at (%d, %d)", startLine, startCol)
		default:
			advance()
			toks = append(toks, token.Token{Lexeme: string(c), Line: startLine, Col: startCol})
		}
	}
	return toks, nil
}
