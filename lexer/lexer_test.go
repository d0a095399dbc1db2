package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ha1tch/sqlcore/lexer"
	"github.com/ha1tch/sqlcore/token"
)

func TestNextToken_SimpleSelect(t *testing.T) {
	toks := lexer.Tokenize("SELECT id, name FROM users WHERE id = 42")

	want := []struct {
		cat token.Category
		kw  token.Keyword
		lex string
	}{
		{token.KEYWORD, token.SELECT, "SELECT"},
		{token.IDENT, token.NoKeyword, "id"},
		{token.PUNCT, token.NoKeyword, ","},
		{token.IDENT, token.NoKeyword, "name"},
		{token.KEYWORD, token.FROM, "FROM"},
		{token.IDENT, token.NoKeyword, "users"},
		{token.KEYWORD, token.WHERE, "WHERE"},
		{token.IDENT, token.NoKeyword, "id"},
		{token.OPERATOR, token.NoKeyword, "="},
		{token.NUMBER, token.NoKeyword, "42"},
		{token.EOF, token.NoKeyword, ""},
	}

	assert.Len(t, toks, len(want))
	for i, w := range want {
		assert.Equalf(t, w.cat, toks[i].Category, "token %d category", i)
		if w.cat == token.KEYWORD {
			assert.Equalf(t, w.kw, toks[i].Keyword, "token %d keyword", i)
		}
		assert.Equalf(t, w.lex, toks[i].Lexeme, "token %d lexeme", i)
	}
}

func TestNextToken_ZeroCopy(t *testing.T) {
	src := "SELECT foo FROM bar"
	toks := lexer.Tokenize(src)
	for _, tok := range toks {
		if tok.Lexeme == "" {
			continue
		}
		assert.Equal(t, src[tok.Start:tok.End], tok.Lexeme)
	}
}

func TestNextToken_Operators(t *testing.T) {
	toks := lexer.Tokenize("a <> b <= c || d :: int")
	var ops []string
	for _, tok := range toks {
		if tok.Category == token.OPERATOR {
			ops = append(ops, tok.Lexeme)
		}
	}
	assert.Equal(t, []string{"<>", "<=", "||", "::"}, ops)
}

func TestNextToken_StringAndQuotedIdent(t *testing.T) {
	toks := lexer.Tokenize(`SELECT 'it''s', "My Col" FROM t`)
	assert.Equal(t, token.STRING, toks[1].Category)
	assert.Equal(t, `'it''s'`, toks[1].Lexeme)
	assert.Equal(t, token.IDENT, toks[3].Category)
	assert.Equal(t, `"My Col"`, toks[3].Lexeme)
}

func TestNextToken_CommentsSkipped(t *testing.T) {
	toks := lexer.Tokenize("SELECT 1 -- trailing comment\nFROM /* block */ t")
	var cats []token.Category
	for _, tok := range toks {
		cats = append(cats, tok.Category)
	}
	assert.Equal(t, []token.Category{token.KEYWORD, token.NUMBER, token.KEYWORD, token.IDENT, token.EOF}, cats)
}

func TestNextToken_Numbers(t *testing.T) {
	toks := lexer.Tokenize("1 1.5 .5 1e10 1.5e-3")
	var lits []string
	for _, tok := range toks {
		if tok.Category == token.NUMBER {
			lits = append(lits, tok.Lexeme)
		}
	}
	assert.Equal(t, []string{"1", "1.5", ".5", "1e10", "1.5e-3"}, lits)
}
