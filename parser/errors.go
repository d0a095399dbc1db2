package parser

import "fmt"

// FailureKind classifies why a parse attempt did not produce a tree (spec
// §4.8 "Failure semantics": the parser never panics for a malformed
// program; every failure is a value).
type FailureKind int

const (
	SyntaxError FailureKind = iota
	UnexpectedToken
	UnexpectedEOF
	InvalidConstruct
	DepthExceeded
	MemoryExceeded
)

func (k FailureKind) String() string {
	switch k {
	case SyntaxError:
		return "SYNTAX_ERROR"
	case UnexpectedToken:
		return "UNEXPECTED_TOKEN"
	case UnexpectedEOF:
		return "UNEXPECTED_EOF"
	case InvalidConstruct:
		return "INVALID_CONSTRUCT"
	case DepthExceeded:
		return "DEPTH_EXCEEDED"
	case MemoryExceeded:
		return "MEMORY_EXCEEDED"
	default:
		return "UNKNOWN"
	}
}

// Failure is the single value type every parse error takes, carrying
// enough context (a byte offset into the original text, plus an optional
// hint) for a caller to render a caret diagnostic without the parser ever
// needing to format one itself. Failure implements error so it composes
// with the rest of the Go ecosystem (errors.As, %w wrapping) at a
// program's outer boundary, the one place this module reaches for
// github.com/pkg/errors (see SPEC_FULL.md).
type Failure struct {
	Kind    FailureKind
	Message string
	Offset  uint32
	Line    int
	Column  int
	Hint    string
}

func (f *Failure) Error() string {
	if f.Hint != "" {
		return fmt.Sprintf("%s at %d:%d (offset %d): %s (%s)", f.Kind, f.Line, f.Column, f.Offset, f.Message, f.Hint)
	}
	return fmt.Sprintf("%s at %d:%d (offset %d): %s", f.Kind, f.Line, f.Column, f.Offset, f.Message)
}

// recordf records f as the failure for the statement currently being
// parsed, unless one is already recorded — per spec §4.8 the first
// failure wins; everything a production returns afterward is discarded by
// its caller.
func (p *Parser) recordf(kind FailureKind, offset uint32, hint, format string, args ...any) {
	if p.failure != nil {
		return
	}
	line, col := p.lineColAt(offset)
	p.failure = &Failure{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Offset:  offset,
		Line:    line,
		Column:  col,
		Hint:    hint,
	}
}

// unexpected records a token-shaped failure: UnexpectedEOF if cur is the
// EOF sentinel, UnexpectedToken otherwise.
func (p *Parser) unexpected(expected string) {
	cur := p.cur.Current()
	if cur.IsEOF() {
		p.recordf(UnexpectedEOF, cur.Start, "", "expected %s, found end of input", expected)
		return
	}
	lexeme := cur.Lexeme
	if lexeme == "" {
		lexeme = cur.Category.String()
	}
	p.recordf(UnexpectedToken, cur.Start, "", "expected %s, found %q", expected, lexeme)
}

// invalid records an INVALID_CONSTRUCT failure for a structurally valid
// parse that violates a grammar-level invariant (spec §4.6 validate.go
// checks: HAVING without GROUP BY/aggregate, empty select list, set-op
// column count mismatch).
func (p *Parser) invalid(offset uint32, format string, args ...any) {
	p.recordf(InvalidConstruct, offset, "", format, args...)
}
