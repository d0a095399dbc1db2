// Package parser implements the hybrid recursive-descent and
// precedence-climbing SQL parser: token cursor, depth guard, statement
// dispatcher, clause parsers, expression parser, and failure semantics
// (spec §4). It is grounded throughout on the teacher's
// ha1tch/tsqlparser, whose single Parser type and one-statement-per-method
// layout this package keeps, generalized to a wider grammar, an
// arena-backed tree, and exception-free failure reporting.
package parser

import (
	"strings"

	"github.com/ha1tch/sqlcore/ast"
	"github.com/ha1tch/sqlcore/config"
	"github.com/ha1tch/sqlcore/token"
)

// Parser drives one parse of a token stream into an arena-owned ast.Tree.
// It is not safe for concurrent use from multiple goroutines (spec §5
// "Concurrency model": one Parser, one goroutine, one Tree).
type Parser struct {
	cur  *Cursor
	text string
	tree *ast.Tree
	cfg  config.Config

	depth    int
	ctxStack []ast.Context
	failure  *Failure
}

// New creates a Parser over src, which must yield tokens whose Start/End
// offsets index into text. text is retained only to translate byte offsets
// into line/column pairs for diagnostics; it is never copied into the
// tree. Node.Text/Schema/Aux alias token lexemes where they can; a few are
// built strings instead (string literals with doubled quotes, multi-token
// type names such as "NUMERIC(10, 2)", and fixed operator phrases such as
// "IS NULL" or "CURRENT ROW").
func New(src TokenSource, text string, opts ...config.Option) *Parser {
	return NewWithConfig(src, text, config.New(opts...))
}

// NewWithConfig creates a Parser with an already-built Config, the shape
// a CLI driver uses once it has parsed flags into Options itself.
func NewWithConfig(src TokenSource, text string, cfg config.Config) *Parser {
	return &Parser{
		cur:  NewCursor(src),
		text: text,
		tree: ast.NewTree(cfg.ArenaConfig(ast.NodeByteSize())),
		cfg:  cfg,
	}
}

// Outcome is the result of parsing a single statement (spec §4.8): either
// Node is non-nil and Failure is nil, or vice versa. It is never both or
// neither.
type Outcome struct {
	Node    *ast.Node
	Failure *Failure
}

// ScriptOutcome is the result of parsing a `;`-separated script (spec
// §4.5 "script mode"). Statements holds every statement that parsed
// cleanly; Failures holds every recorded failure, in source order, up to
// cfg.MaxErrors.
type ScriptOutcome struct {
	Statements []*ast.Node
	Failures   []*Failure
}

func (p *Parser) lineColAt(offset uint32) (int, int) {
	upto := p.text
	if int(offset) <= len(upto) {
		upto = upto[:offset]
	}
	line := 1 + strings.Count(upto, "\n")
	col := len(upto) - strings.LastIndexByte(upto, '\n')
	return line, col
}

// alloc is a thin wrapper over tree.Alloc that turns an arena
// ErrMemoryExceeded into a recorded MemoryExceeded Failure instead of
// forcing every call site to do so.
func (p *Parser) alloc(kind ast.Kind, start, end uint32) *ast.Node {
	n, err := p.tree.Alloc(kind, start, end)
	if err != nil {
		p.recordf(MemoryExceeded, start, "", "%s", err.Error())
		return nil
	}
	return n
}

func (p *Parser) failed() bool { return p.failure != nil }

func (p *Parser) pushContext(c ast.Context) { p.ctxStack = append(p.ctxStack, c) }

func (p *Parser) popContext() {
	if n := len(p.ctxStack); n > 0 {
		p.ctxStack = p.ctxStack[:n-1]
	}
}

func (p *Parser) currentContext() ast.Context {
	if n := len(p.ctxStack); n > 0 {
		return p.ctxStack[n-1]
	}
	return ast.CtxNone
}

// expectKeyword consumes the current token if it is kw, recording an
// UnexpectedToken/UnexpectedEOF failure and returning false otherwise.
func (p *Parser) expectKeyword(kw token.Keyword, what string) bool {
	if p.cur.Current().Is(kw) {
		p.cur.Advance()
		return true
	}
	p.unexpected(what)
	return false
}

func (p *Parser) expectPunct(lexeme string) bool {
	if p.cur.MatchPunct(lexeme) {
		return true
	}
	p.unexpected("'" + lexeme + "'")
	return false
}

func (p *Parser) expectIdent() (token.Token, bool) {
	cur := p.cur.Current()
	if cur.Category == token.IDENT {
		p.cur.Advance()
		return cur, true
	}
	p.unexpected("identifier")
	return token.Token{}, false
}

// ParseStatement parses exactly one statement from the cursor and returns
// it. Calling it again on the same Parser continues from wherever the
// cursor stopped (typically just past a consumed `;`), the way a
// single-statement REPL driver would use it.
func (p *Parser) ParseStatement() Outcome {
	p.failure = nil
	p.depth = 0
	p.ctxStack = p.ctxStack[:0]

	node := p.parseStatement()
	if p.failure != nil {
		return Outcome{Failure: p.failure}
	}
	if !p.cur.MatchPunct(";") && !p.cur.Current().IsEOF() {
		p.unexpected("';' or end of input")
		return Outcome{Failure: p.failure}
	}
	return Outcome{Node: node}
}

// ParseScript parses a full `;`-separated script (spec §4.5). On a
// statement failure it performs panic-mode recovery: it discards tokens up
// to and including the next top-level `;` (or EOF), then continues with
// the next statement, unless cfg.ContinueOnError is false or the number of
// recorded failures reaches cfg.MaxErrors, in which case it stops
// immediately.
func (p *Parser) ParseScript() ScriptOutcome {
	var out ScriptOutcome
	for {
		if p.cur.Current().IsEOF() {
			return out
		}
		// Tolerate a stray leading/trailing `;` between statements.
		if p.cur.MatchPunct(";") {
			continue
		}

		res := p.ParseStatement()
		if res.Failure != nil {
			out.Failures = append(out.Failures, res.Failure)
			if p.cfg.Logger != nil {
				p.cfg.Logger.WithField("offset", res.Failure.Offset).Warn("statement failed, recovering")
			}
			if !p.cfg.ContinueOnError || len(out.Failures) >= p.cfg.MaxErrors {
				return out
			}
			p.recoverToNextStatement()
			continue
		}
		out.Statements = append(out.Statements, res.Node)
	}
}

// recoverToNextStatement discards tokens until just past the next `;` at
// depth 0, or until EOF, so script mode can keep going after one
// malformed statement (spec §4.5).
func (p *Parser) recoverToNextStatement() {
	depth := 0
	for {
		cur := p.cur.Current()
		if cur.IsEOF() {
			return
		}
		if cur.Category == token.PUNCT {
			switch cur.Lexeme {
			case "(":
				depth++
			case ")":
				if depth > 0 {
					depth--
				}
			case ";":
				if depth == 0 {
					p.cur.Advance()
					return
				}
			}
		}
		p.cur.Advance()
	}
}

// parseStatement dispatches on the current token to one statement-parsing
// method (spec §4.5, O(1) keyword-indexed dispatch via the switch below,
// which the Go compiler lowers to a jump table over the dense Keyword
// range). Every branch fully consumes its statement's tokens or leaves a
// recorded failure.
func (p *Parser) parseStatement() *ast.Node {
	g := p.enterDepth()
	defer g.release()
	if g.failed() {
		return nil
	}

	cur := p.cur.Current()
	if cur.Category != token.KEYWORD {
		p.unexpected("a statement")
		return nil
	}

	switch cur.Keyword {
	case token.SELECT, token.VALUES, token.WITH:
		return p.parseSelectStatement()
	case token.INSERT:
		return p.parseInsert()
	case token.UPDATE:
		return p.parseUpdate()
	case token.DELETE:
		return p.parseDelete()
	case token.CREATE:
		return p.parseCreate()
	case token.DROP:
		return p.parseDrop()
	case token.ALTER:
		return p.parseAlterTable()
	case token.TRUNCATE:
		return p.parseTruncate()
	case token.BEGIN:
		return p.parseBegin()
	case token.COMMIT:
		return p.parseCommit()
	case token.ROLLBACK:
		return p.parseRollback()
	case token.SAVEPOINT:
		return p.parseSavepoint()
	case token.RELEASE:
		return p.parseRelease()
	case token.EXPLAIN:
		return p.parseExplain()
	case token.VACUUM:
		return p.parseVacuumOrAnalyze(ast.KindVacuum, token.VACUUM)
	case token.ANALYZE:
		return p.parseVacuumOrAnalyze(ast.KindAnalyze, token.ANALYZE)
	case token.ATTACH:
		return p.parseAttach()
	case token.DETACH:
		return p.parseDetach()
	case token.PRAGMA:
		return p.parsePragma()
	case token.REINDEX:
		return p.parseReindex()
	case token.SET:
		return p.parseSet()
	default:
		p.unexpected("a statement")
		return nil
	}
}
