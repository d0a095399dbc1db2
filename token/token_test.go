package token_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ha1tch/sqlcore/token"
)

func TestLookup_CaseInsensitive(t *testing.T) {
	for _, s := range []string{"select", "SELECT", "Select", "sElEcT"} {
		kw, ok := token.Lookup(s)
		assert.True(t, ok, s)
		assert.Equal(t, token.SELECT, kw, s)
	}
}

func TestLookup_NotAKeyword(t *testing.T) {
	_, ok := token.Lookup("customer_id")
	assert.False(t, ok)
}

func TestToken_IsAndIsEOF(t *testing.T) {
	tok := token.Token{Category: token.KEYWORD, Keyword: token.WHERE}
	assert.True(t, tok.Is(token.WHERE))
	assert.False(t, tok.Is(token.SELECT))
	assert.False(t, tok.IsEOF())

	eof := token.Token{Category: token.EOF}
	assert.True(t, eof.IsEOF())
}
