package parser

import "github.com/ha1tch/sqlcore/token"

// TokenSource is the external scanner collaborator (spec §1, §6): a
// classified, zero-copy token stream terminated by exactly one EOF
// sentinel. lexer.Lexer satisfies this interface; nothing in this package
// depends on lexer's internals.
type TokenSource interface {
	NextToken() token.Token
}

// Cursor provides deterministic, bounded lookahead over a TokenSource
// (spec §4.3). It buffers tokens it has pulled so that Position/Restore
// can support the bounded speculation a few productions need (the
// IF [NOT] EXISTS prefixes and the ON DELETE/ON UPDATE lookahead of a
// REFERENCES clause), without requiring the scanner itself to be seekable.
type Cursor struct {
	src TokenSource
	buf []token.Token
	pos int
}

// NewCursor wraps src, pre-filling the first three tokens (current plus
// two lookahead) the way the teacher's recursive-descent parser does.
func NewCursor(src TokenSource) *Cursor {
	c := &Cursor{src: src}
	c.ensure(2)
	return c
}

func (c *Cursor) ensure(idx int) token.Token {
	for len(c.buf) <= idx {
		if n := len(c.buf); n > 0 && c.buf[n-1].IsEOF() {
			return c.buf[n-1]
		}
		c.buf = append(c.buf, c.src.NextToken())
	}
	return c.buf[idx]
}

// Current returns the next unconsumed token, or the EOF sentinel; never a
// zero Token with an undefined category.
func (c *Cursor) Current() token.Token { return c.ensure(c.pos) }

// Peek returns the k-th token ahead (Peek(0) == Current()) without
// consuming it. k is expected to stay within a small fixed bound (2).
func (c *Cursor) Peek(k int) token.Token { return c.ensure(c.pos + k) }

// Advance consumes the current token. Advancing past EOF is a no-op.
func (c *Cursor) Advance() {
	if !c.Current().IsEOF() {
		c.pos++
	}
}

// Position returns an opaque cursor position for bounded speculation.
func (c *Cursor) Position() int { return c.pos }

// Restore rewinds the cursor to a position previously returned by
// Position. Used sparingly, per spec §4.3, for the handful of productions
// that need to look further ahead than Peek's bound allows.
func (c *Cursor) Restore(pos int) { c.pos = pos }

// MatchKeyword consumes and returns true iff the current token is the
// given keyword.
func (c *Cursor) MatchKeyword(kw token.Keyword) bool {
	if c.Current().Is(kw) {
		c.Advance()
		return true
	}
	return false
}

// MatchPunct consumes and returns true iff the current token is PUNCT with
// the given lexeme (e.g. "(", ")", ",", ".").
func (c *Cursor) MatchPunct(lexeme string) bool {
	cur := c.Current()
	if cur.Category == token.PUNCT && cur.Lexeme == lexeme {
		c.Advance()
		return true
	}
	return false
}

// MatchOperator consumes and returns true iff the current token is an
// OPERATOR with the given lexeme.
func (c *Cursor) MatchOperator(lexeme string) bool {
	cur := c.Current()
	if cur.Category == token.OPERATOR && cur.Lexeme == lexeme {
		c.Advance()
		return true
	}
	return false
}
