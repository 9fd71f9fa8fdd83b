package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relique-lang/relique/internal/lexer"
)

func lexemes(t *testing.T, src string) []string {
	t.Helper()
	toks, err := lexer.Lex(src)
	require.NoError(t, err)
	out := make([]string, len(toks))
	for i, tok := range toks {
		out[i] = tok.Lexeme
	}
	return out
}

func TestLexBasicTokens(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"ident_and_braces", "entity P { id }", []string{"entity", "P", "{", "id", "}"}},
		{"negative_int", "-5 + 3", []string{"-5", "+", "3"}},
		{"bare_minus", "a - b", []string{"a", "-", "b"}},
		{"double", "3.14", []string{"3.14"}},
		{"double_trailing_dot", "3.", []string{"3.0"}},
		{"string_literal", `"Ann"`, []string{`"Ann"`}},
		{"char_literal", `'x'`, []string{"'x'"}},
		{"operators", "== != <= >= < >", []string{"=", "=", "!", "=", "<", "=", ">", "=", "<", ">"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lexemes(t, tt.in))
		})
	}
}

func TestLexStringEscapes(t *testing.T) {
	toks, err := lexer.Lex(`"a\nb\\c\"d"`)
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, "\"a\nb\\c\"d\"", toks[0].Lexeme)
}

func TestLexCharEscape(t *testing.T) {
	toks, err := lexer.Lex(`'\n'`)
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, "'\n'", toks[0].Lexeme)
}

func TestLexStripsComments(t *testing.T) {
	toks := lexemes(t, "a @ this is a comment @ b")
	assert.Equal(t, []string{"a", "b"}, toks)
}

func TestLexEscapedAtInsideComment(t *testing.T) {
	toks := lexemes(t, `a @ literal \@ still comment @ b`)
	assert.Equal(t, []string{"a", "b"}, toks)
}

func TestLexUnterminatedCommentIsLexError(t *testing.T) {
	_, err := lexer.Lex("a @ unterminated")
	require.Error(t, err)
}

func TestLexUnterminatedStringIsLexError(t *testing.T) {
	_, err := lexer.Lex(`"unterminated`)
	require.Error(t, err)
}

func TestLexTracksLineAndColumn(t *testing.T) {
	toks, err := lexer.Lex("a\nbb c")
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 2, toks[1].Line)
	assert.Equal(t, 1, toks[1].Col)
	assert.Equal(t, 4, toks[2].Col)
}
