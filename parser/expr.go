package parser

import (
	"github.com/ha1tch/sqlcore/ast"
	"github.com/ha1tch/sqlcore/config"
	"github.com/ha1tch/sqlcore/token"
)

// Precedence levels for the hybrid precedence-climbing expression parser
// (spec §4.7). Higher binds tighter. This is the one table every binary
// and prefix operator is resolved against; BETWEEN/IN/LIKE/IS sit at the
// comparison level and are parsed by dedicated productions rather than the
// generic infix loop because their right-hand side isn't a single
// sub-expression.
const (
	precNone = iota
	precOr
	precAnd
	precNot
	precComparison
	precConcat
	precAdditive
	precMultiplicative
	precExponent
	precUnary
	precCast
)

var binaryPrec = map[string]uint8{
	"=": precComparison, "<>": precComparison, "!=": precComparison,
	"<": precComparison, "<=": precComparison, ">": precComparison, ">=": precComparison,
	"||": precConcat,
	"+":  precAdditive, "-": precAdditive,
	"*": precMultiplicative, "/": precMultiplicative, "%": precMultiplicative,
}

// keywordBinaryPrec covers the keyword-spelled binary/n-ary operators that
// sit beside the symbolic ones in the table above.
var keywordBinaryPrec = map[token.Keyword]uint8{
	token.OR: precOr, token.AND: precAnd,
	token.LIKE: precComparison, token.IS: precComparison,
	token.IN: precComparison, token.BETWEEN: precComparison,
}

// ParseExpression parses one expression with the Pratt/precedence-climbing
// core of spec §4.7, starting at precedence 0 (accepts anything).
func (p *Parser) ParseExpression() *ast.Node {
	return p.parseExpr(precNone)
}

func (p *Parser) parseExpr(minPrec uint8) *ast.Node {
	g := p.enterDepth()
	defer g.release()
	if g.failed() {
		return nil
	}

	left := p.parsePrefix()
	if p.failed() || left == nil {
		return left
	}
	return p.parseInfix(left, minPrec)
}

func (p *Parser) parseInfix(left *ast.Node, minPrec uint8) *ast.Node {
	for {
		cur := p.cur.Current()

		if cur.Category == token.OPERATOR {
			if cur.Lexeme == "::" {
				if precCast < minPrec {
					return left
				}
				left = p.parseCastPostfix(left)
				if p.failed() {
					return nil
				}
				continue
			}
			if cur.Lexeme == "^" {
				// `^` exponentiation is an Extended-dialect-only grammar
				// element (spec §9 Open Questions); in ANSI mode it's
				// left unconsumed so the surrounding production reports
				// whatever error fits its context.
				if p.cfg.Dialect != config.DialectExtended || precExponent < minPrec {
					return left
				}
				p.cur.Advance()
				right := p.parseExpr(precExponent) // right-associative
				if p.failed() {
					return nil
				}
				bin := p.alloc(ast.KindBinaryExpr, left.Start, right.End)
				if bin == nil {
					return nil
				}
				bin.Text = cur.Lexeme
				bin.Prec = precExponent
				var b ast.Builder
				b.Add(left)
				b.Add(right)
				b.Attach(bin)
				left = bin
				continue
			}
			prec, ok := binaryPrec[cur.Lexeme]
			if !ok || prec < minPrec {
				return left
			}
			if prec == precComparison && p.cfg.Dialect == config.DialectANSI &&
				left.Kind == ast.KindBinaryExpr && left.Prec == precComparison {
				p.recordf(SyntaxError, cur.Start, "", "chained comparison %q is not allowed in ANSI dialect", cur.Lexeme)
				return nil
			}
			p.cur.Advance()
			nextMin := prec + 1 // all symbolic operators here are left-associative
			right := p.parseExpr(nextMin)
			if p.failed() {
				return nil
			}
			bin := p.alloc(ast.KindBinaryExpr, left.Start, right.End)
			if bin == nil {
				return nil
			}
			bin.Text = cur.Lexeme
			bin.Prec = prec
			bin.OpKind = uint8(opCodeFor(cur.Lexeme))
			var b ast.Builder
			b.Add(left)
			b.Add(right)
			b.Attach(bin)
			left = bin
			continue
		}

		if cur.Is(token.NOT) && minPrec <= precComparison {
			// lookahead: `NOT BETWEEN|IN|LIKE`, handled below; anything
			// else starting with NOT is not a valid infix continuation.
			switch p.cur.Peek(1).Keyword {
			case token.BETWEEN:
				p.cur.Advance()
				left = p.parseBetween(left)
				if left != nil {
					left.Flags |= ast.FlagNot
				}
			case token.IN:
				p.cur.Advance()
				left = p.parseIn(left, true)
			case token.LIKE:
				p.cur.Advance()
				left = p.parseLike(left, true)
			default:
				return left
			}
			if p.failed() {
				return nil
			}
			continue
		}

		if cur.Category == token.KEYWORD {
			prec, ok := keywordBinaryPrec[cur.Keyword]
			if !ok || prec < minPrec {
				return left
			}
			switch cur.Keyword {
			case token.AND, token.OR:
				p.cur.Advance()
				right := p.parseExpr(prec + 1)
				if p.failed() {
					return nil
				}
				bin := p.alloc(ast.KindBinaryExpr, left.Start, right.End)
				if bin == nil {
					return nil
				}
				bin.Text = cur.Lexeme
				bin.Prec = prec
				var b ast.Builder
				b.Add(left)
				b.Add(right)
				b.Attach(bin)
				left = bin
			case token.BETWEEN:
				left = p.parseBetween(left)
			case token.IN:
				left = p.parseIn(left, false)
			case token.LIKE:
				left = p.parseLike(left, false)
			case token.IS:
				left = p.parseIs(left)
			default:
				return left
			}
			if p.failed() {
				return nil
			}
			continue
		}

		return left
	}
}

func opCodeFor(lexeme string) byte {
	for i, s := range []string{"=", "<>", "!=", "<", "<=", ">", ">=", "||", "+", "-", "*", "/", "%"} {
		if s == lexeme {
			return byte(i + 1)
		}
	}
	return 0
}

func (p *Parser) parseCastPostfix(operand *ast.Node) *ast.Node {
	start := operand.Start
	p.cur.Advance() // consume '::'
	typeName, ok := p.parseTypeName()
	if !ok {
		return nil
	}
	n := p.alloc(ast.KindCast, start, p.cur.Current().Start)
	if n == nil {
		return nil
	}
	n.Aux = typeName
	var b ast.Builder
	b.Add(operand)
	b.Attach(n)
	return n
}

func (p *Parser) parseBetween(left *ast.Node) *ast.Node {
	start := left.Start
	p.cur.Advance() // consume BETWEEN
	low := p.parseExpr(precConcat)
	if p.failed() {
		return nil
	}
	if !p.expectKeyword(token.AND, "AND") {
		return nil
	}
	high := p.parseExpr(precComparison + 1)
	if p.failed() {
		return nil
	}
	n := p.alloc(ast.KindBetween, start, high.End)
	if n == nil {
		return nil
	}
	var b ast.Builder
	b.Add(left)
	b.Add(low)
	b.Add(high)
	b.Attach(n)
	return n
}

func (p *Parser) parseIn(left *ast.Node, negated bool) *ast.Node {
	start := left.Start
	p.cur.Advance() // consume IN
	if !p.expectPunct("(") {
		return nil
	}
	if p.cur.Current().Is(token.SELECT) {
		sub := p.parseSubquery()
		if p.failed() {
			return nil
		}
		if !p.expectPunct(")") {
			return nil
		}
		n := p.alloc(ast.KindInSubquery, start, p.priorEnd())
		if n == nil {
			return nil
		}
		if negated {
			n.Flags |= ast.FlagNot
		}
		var b ast.Builder
		b.Add(left)
		b.Add(sub)
		b.Attach(n)
		return n
	}
	list := p.parseExprList()
	if p.failed() {
		return nil
	}
	if !p.expectPunct(")") {
		return nil
	}
	n := p.alloc(ast.KindInList, start, p.priorEnd())
	if n == nil {
		return nil
	}
	if negated {
		n.Flags |= ast.FlagNot
	}
	var b ast.Builder
	b.Add(left)
	b.Add(list)
	b.Attach(n)
	return n
}

func (p *Parser) parseLike(left *ast.Node, negated bool) *ast.Node {
	start := left.Start
	p.cur.Advance() // consume LIKE
	pattern := p.parseExpr(precComparison + 1)
	if p.failed() {
		return nil
	}
	n := p.alloc(ast.KindBinaryExpr, start, pattern.End)
	if n == nil {
		return nil
	}
	n.Text = "LIKE"
	n.Prec = precComparison
	if negated {
		n.Flags |= ast.FlagNot
	}
	var b ast.Builder
	b.Add(left)
	b.Add(pattern)
	b.Attach(n)
	return n
}

func (p *Parser) parseIs(left *ast.Node) *ast.Node {
	start := left.Start
	p.cur.Advance() // consume IS
	negated := p.cur.MatchKeyword(token.NOT)
	var n *ast.Node
	switch {
	case p.cur.Current().Is(token.NULL):
		p.cur.Advance()
		n = p.alloc(ast.KindUnaryExpr, start, p.priorEnd())
		if n == nil {
			return nil
		}
		n.Text = "IS NULL"
	case p.cur.Current().Is(token.TRUE), p.cur.Current().Is(token.FALSE), p.cur.Current().Is(token.UNKNOWN):
		kw := p.cur.Current().Lexeme
		p.cur.Advance()
		n = p.alloc(ast.KindUnaryExpr, start, p.priorEnd())
		if n == nil {
			return nil
		}
		n.Text = "IS " + kw
	default:
		p.unexpected("NULL, TRUE, FALSE, or UNKNOWN")
		return nil
	}
	if negated {
		n.Flags |= ast.FlagNot
	}
	var b ast.Builder
	b.Add(left)
	b.Attach(n)
	return n
}

// priorEnd returns the end offset of the token just consumed, for nodes
// whose span must close over a closing delimiter already advanced past.
func (p *Parser) priorEnd() uint32 {
	if p.cur.Position() == 0 {
		return 0
	}
	return p.cur.buf[p.cur.Position()-1].End
}

func (p *Parser) parsePrefix() *ast.Node {
	cur := p.cur.Current()

	switch {
	case cur.Is(token.NOT):
		start := cur.Start
		p.cur.Advance()
		operand := p.parseExpr(precNot)
		if p.failed() {
			return nil
		}
		n := p.alloc(ast.KindUnaryExpr, start, operand.End)
		if n == nil {
			return nil
		}
		n.Text = "NOT"
		var b ast.Builder
		b.Add(operand)
		b.Attach(n)
		return n

	case cur.Category == token.OPERATOR && (cur.Lexeme == "-" || cur.Lexeme == "+"):
		start := cur.Start
		p.cur.Advance()
		operand := p.parseExpr(precUnary)
		if p.failed() {
			return nil
		}
		n := p.alloc(ast.KindUnaryExpr, start, operand.End)
		if n == nil {
			return nil
		}
		n.Text = cur.Lexeme
		var b ast.Builder
		b.Add(operand)
		b.Attach(n)
		return n

	case cur.Category == token.PUNCT && cur.Lexeme == "(":
		start := cur.Start
		p.cur.Advance()
		if p.cur.Current().Is(token.SELECT) {
			sub := p.parseSubquery()
			if p.failed() {
				return nil
			}
			if !p.expectPunct(")") {
				return nil
			}
			return sub
		}
		inner := p.parseExpr(precNone)
		if p.failed() {
			return nil
		}
		if !p.expectPunct(")") {
			return nil
		}
		inner.Start = start
		inner.End = p.priorEnd()
		return inner

	case cur.Category == token.NUMBER:
		p.cur.Advance()
		kind := ast.KindIntLiteral
		for i := 0; i < len(cur.Lexeme); i++ {
			if cur.Lexeme[i] == '.' || cur.Lexeme[i] == 'e' || cur.Lexeme[i] == 'E' {
				kind = ast.KindFloatLiteral
				break
			}
		}
		n := p.alloc(kind, cur.Start, cur.End)
		if n == nil {
			return nil
		}
		n.Text = cur.Lexeme
		n.Semantic.IsConstant = true
		return n

	case cur.Category == token.STRING:
		p.cur.Advance()
		n := p.alloc(ast.KindStringLiteral, cur.Start, cur.End)
		if n == nil {
			return nil
		}
		n.Text = decodeStringLiteral(cur.Lexeme)
		n.Semantic.IsConstant = true
		return n

	case cur.Category == token.PARAM:
		p.cur.Advance()
		return p.alloc(ast.KindParam, cur.Start, cur.End)

	case cur.Is(token.NULL):
		p.cur.Advance()
		return p.alloc(ast.KindNullLiteral, cur.Start, cur.End)

	case cur.Is(token.TRUE), cur.Is(token.FALSE):
		p.cur.Advance()
		n := p.alloc(ast.KindBoolLiteral, cur.Start, cur.End)
		if n == nil {
			return nil
		}
		n.Text = cur.Lexeme
		n.Semantic.IsConstant = true
		return n

	case cur.Is(token.CASE):
		return p.parseCase()

	case cur.Is(token.CAST):
		return p.parseCast()

	case cur.Is(token.EXTRACT):
		return p.parseExtract()

	case cur.Is(token.EXISTS):
		start := cur.Start
		p.cur.Advance()
		if !p.expectPunct("(") {
			return nil
		}
		sub := p.parseSubquery()
		if p.failed() {
			return nil
		}
		if !p.expectPunct(")") {
			return nil
		}
		n := p.alloc(ast.KindExistsExpr, start, p.priorEnd())
		if n == nil {
			return nil
		}
		var b ast.Builder
		b.Add(sub)
		b.Attach(n)
		return n

	case cur.Category == token.OPERATOR && cur.Lexeme == "*":
		p.cur.Advance()
		return p.alloc(ast.KindStar, cur.Start, cur.End)

	case cur.Is(token.FROM), cur.Is(token.WHERE), cur.Is(token.GROUP),
		cur.Is(token.HAVING), cur.Is(token.ORDER), cur.Is(token.LIMIT),
		cur.Is(token.UNION), cur.Is(token.INTERSECT), cur.Is(token.EXCEPT):
		// Clause keywords end an expression; they never start one.
		p.unexpected("an expression")
		return nil

	case cur.Category == token.IDENT, cur.Category == token.KEYWORD:
		return p.parseIdentifierOrCall()

	default:
		p.unexpected("an expression")
		return nil
	}
}

// parseIdentifierOrCall parses a (possibly schema-qualified) identifier,
// recognizing a trailing `(` as a function call and tagging plain
// identifiers with the enclosing clause's parse-context hint (spec §4.7
// "Context hints").
func (p *Parser) parseIdentifierOrCall() *ast.Node {
	first, ok := p.expectAnyName()
	if !ok {
		return nil
	}

	if p.cur.Current().Category == token.PUNCT && p.cur.Current().Lexeme == "." {
		p.cur.Advance()
		second, ok := p.expectAnyName()
		if !ok {
			return nil
		}
		if p.cur.Current().Category == token.PUNCT && p.cur.Current().Lexeme == "(" {
			return p.parseFunctionCall(first.Start, second.Lexeme)
		}
		if p.cur.Current().Category == token.OPERATOR && p.cur.Current().Lexeme == "*" {
			end := p.cur.Current().End
			p.cur.Advance()
			n := p.alloc(ast.KindQualifiedStar, first.Start, end)
			if n == nil {
				return nil
			}
			n.Schema = first.Lexeme
			return n
		}
		n := p.alloc(ast.KindQualifiedIdentifier, first.Start, second.End)
		if n == nil {
			return nil
		}
		n.Text = second.Lexeme
		n.Schema = first.Lexeme
		n.Flags = n.Flags.WithContext(p.currentContext())
		return n
	}

	if p.cur.Current().Category == token.PUNCT && p.cur.Current().Lexeme == "(" {
		return p.parseFunctionCall(first.Start, first.Lexeme)
	}

	n := p.alloc(ast.KindIdentifier, first.Start, first.End)
	if n == nil {
		return nil
	}
	n.Text = first.Lexeme
	n.Flags = n.Flags.WithContext(p.currentContext())
	return n
}

// expectAnyName accepts an IDENT, or a KEYWORD used in bare-name position
// (many ANSI keywords double as unquoted identifiers in practice; the
// teacher's grammar is permissive here rather than reserving the whole
// keyword set).
func (p *Parser) expectAnyName() (token.Token, bool) {
	cur := p.cur.Current()
	if cur.Category == token.IDENT || cur.Category == token.KEYWORD {
		p.cur.Advance()
		return cur, true
	}
	p.unexpected("a name")
	return token.Token{}, false
}

func (p *Parser) parseFunctionCall(start uint32, name string) *ast.Node {
	p.cur.Advance() // consume '('
	var flags ast.Flags
	if p.cur.MatchKeyword(token.DISTINCT) {
		flags |= FlagDistinctArg()
	}

	args := p.alloc(ast.KindArgList, p.cur.Current().Start, p.cur.Current().Start)
	if args == nil {
		return nil
	}
	var ab ast.Builder
	if p.cur.Current().Category == token.OPERATOR && p.cur.Current().Lexeme == "*" {
		star := p.alloc(ast.KindStar, p.cur.Current().Start, p.cur.Current().End)
		if star == nil {
			return nil
		}
		p.cur.Advance()
		ab.Add(star)
	} else if !(p.cur.Current().Category == token.PUNCT && p.cur.Current().Lexeme == ")") {
		for {
			arg := p.parseExpr(precNone)
			if p.failed() {
				return nil
			}
			ab.Add(arg)
			if !p.cur.MatchPunct(",") {
				break
			}
		}
	}
	ab.Attach(args)

	if !p.expectPunct(")") {
		return nil
	}

	n := p.alloc(ast.KindFunctionCall, start, p.priorEnd())
	if n == nil {
		return nil
	}
	n.Text = name
	n.Flags = flags

	var b ast.Builder
	b.Add(args)

	if p.cur.Current().Is(token.FILTER) {
		n.Flags |= ast.FlagIsAggregate
		b.Add(p.parseFilterClause())
		if p.failed() {
			return nil
		}
	}
	if p.cur.Current().Is(token.OVER) {
		n.Flags |= ast.FlagHasWindow
		b.Add(p.parseOverClause())
		if p.failed() {
			return nil
		}
	}
	b.Attach(n)
	n.End = p.priorEnd()
	return n
}

// FlagDistinctArg exists so parseFunctionCall can reuse FlagDistinct
// without importing ast's flag constant twice under a different name.
func FlagDistinctArg() ast.Flags { return ast.FlagDistinct }

func (p *Parser) parseFilterClause() *ast.Node {
	start := p.cur.Current().Start
	p.cur.Advance() // FILTER
	if !p.expectPunct("(") {
		return nil
	}
	if !p.expectKeyword(token.WHERE, "WHERE") {
		return nil
	}
	pred := p.parseExpr(precNone)
	if p.failed() {
		return nil
	}
	if !p.expectPunct(")") {
		return nil
	}
	n := p.alloc(ast.KindFilterClause, start, p.priorEnd())
	if n == nil {
		return nil
	}
	var b ast.Builder
	b.Add(pred)
	b.Attach(n)
	return n
}

func (p *Parser) parseOverClause() *ast.Node {
	start := p.cur.Current().Start
	p.cur.Advance() // OVER
	if p.cur.Current().Category == token.IDENT {
		name := p.cur.Current()
		p.cur.Advance()
		n := p.alloc(ast.KindOver, start, name.End)
		if n == nil {
			return nil
		}
		n.Text = name.Lexeme
		return n
	}
	if !p.expectPunct("(") {
		return nil
	}
	spec := p.parseWindowSpecBody()
	if p.failed() {
		return nil
	}
	if !p.expectPunct(")") {
		return nil
	}
	n := p.alloc(ast.KindOver, start, p.priorEnd())
	if n == nil {
		return nil
	}
	var b ast.Builder
	b.Add(spec)
	b.Attach(n)
	return n
}

func (p *Parser) parseWindowSpecBody() *ast.Node {
	start := p.cur.Current().Start
	var wb ast.Builder

	if p.cur.Current().Is(token.PARTITION) {
		p.cur.Advance()
		if !p.expectKeyword(token.BY, "BY") {
			return nil
		}
		pstart := p.priorEnd()
		var pb ast.Builder
		for {
			e := p.parseExpr(precConcat)
			if p.failed() {
				return nil
			}
			pb.Add(e)
			if !p.cur.MatchPunct(",") {
				break
			}
		}
		pn := p.alloc(ast.KindPartitionBy, pstart, p.priorEnd())
		if pn == nil {
			return nil
		}
		pb.Attach(pn)
		wb.Add(pn)
	}

	if p.cur.Current().Is(token.ORDER) {
		ob := p.parseOrderBy()
		if p.failed() {
			return nil
		}
		wb.Add(ob)
	}

	if p.cur.Current().Is(token.ROWS) || p.cur.Current().Is(token.RANGE) {
		fc := p.parseFrameClause()
		if p.failed() {
			return nil
		}
		wb.Add(fc)
	}

	n := p.alloc(ast.KindWindowSpec, start, p.cur.Current().Start)
	if n == nil {
		return nil
	}
	wb.Attach(n)
	return n
}

// Frame unit markers carried in FrameClause.OpKind: 0 = ROWS, 1 = RANGE.
const (
	frameUnitRows  = 0
	frameUnitRange = 1
)

func (p *Parser) parseFrameClause() *ast.Node {
	start := p.cur.Current().Start
	unit := uint8(frameUnitRows)
	if p.cur.Current().Is(token.RANGE) {
		unit = frameUnitRange
	}
	p.cur.Advance() // ROWS or RANGE

	var fb ast.Builder
	if p.cur.MatchKeyword(token.BETWEEN) {
		lo := p.parseFrameBound()
		if p.failed() {
			return nil
		}
		fb.Add(lo)
		if !p.expectKeyword(token.AND, "AND") {
			return nil
		}
		hi := p.parseFrameBound()
		if p.failed() {
			return nil
		}
		fb.Add(hi)
	} else {
		lo := p.parseFrameBound()
		if p.failed() {
			return nil
		}
		fb.Add(lo)
	}

	n := p.alloc(ast.KindFrameClause, start, p.priorEnd())
	if n == nil {
		return nil
	}
	n.OpKind = unit
	fb.Attach(n)
	return n
}

// parseFrameBound parses one window-frame bound. UNBOUNDED PRECEDING/
// FOLLOWING and CURRENT ROW carry no operand, so they are represented as
// bare Identifier nodes (Text holds the whole phrase) rather than adding a
// dedicated Kind just for three fixed spellings.
func (p *Parser) parseFrameBound() *ast.Node {
	start := p.cur.Current().Start
	if p.cur.Current().Is(token.CURRENT) {
		p.cur.Advance()
		if !p.expectKeyword(token.ROW, "ROW") {
			return nil
		}
		n := p.alloc(ast.KindIdentifier, start, p.priorEnd())
		if n == nil {
			return nil
		}
		n.Text = "CURRENT ROW"
		return n
	}
	if p.cur.Current().Is(token.UNBOUNDED) {
		p.cur.Advance()
		dir := "PRECEDING"
		if p.cur.Current().Is(token.FOLLOWING) {
			dir = "FOLLOWING"
		} else if !p.cur.Current().Is(token.PRECEDING) {
			p.unexpected("PRECEDING or FOLLOWING")
			return nil
		}
		p.cur.Advance()
		n := p.alloc(ast.KindIdentifier, start, p.priorEnd())
		if n == nil {
			return nil
		}
		n.Text = "UNBOUNDED " + dir
		return n
	}
	bound := p.parseExpr(precConcat)
	if p.failed() {
		return nil
	}
	if p.cur.Current().Is(token.PRECEDING) {
		p.cur.Advance()
		bound.Aux = "PRECEDING"
	} else if !p.expectKeyword(token.FOLLOWING, "FOLLOWING") {
		return nil
	} else {
		bound.Aux = "FOLLOWING"
	}
	return bound
}

func (p *Parser) parseCase() *ast.Node {
	start := p.cur.Current().Start
	p.cur.Advance() // CASE
	var cb ast.Builder

	var operand *ast.Node
	if !p.cur.Current().Is(token.WHEN) {
		operand = p.parseExpr(precNone)
		if p.failed() {
			return nil
		}
	}
	cb.Add(operand)

	for p.cur.Current().Is(token.WHEN) {
		wstart := p.cur.Current().Start
		p.cur.Advance()
		cond := p.parseExpr(precNone)
		if p.failed() {
			return nil
		}
		if !p.expectKeyword(token.THEN, "THEN") {
			return nil
		}
		result := p.parseExpr(precNone)
		if p.failed() {
			return nil
		}
		wn := p.alloc(ast.KindWhenClause, wstart, result.End)
		if wn == nil {
			return nil
		}
		var wb ast.Builder
		wb.Add(cond)
		wb.Add(result)
		wb.Attach(wn)
		cb.Add(wn)
	}

	if p.cur.Current().Is(token.ELSE) {
		p.cur.Advance()
		elseExpr := p.parseExpr(precNone)
		if p.failed() {
			return nil
		}
		cb.Add(elseExpr)
	}

	if !p.expectKeyword(token.END, "END") {
		return nil
	}
	n := p.alloc(ast.KindCase, start, p.priorEnd())
	if n == nil {
		return nil
	}
	cb.Attach(n)
	return n
}

func (p *Parser) parseCast() *ast.Node {
	start := p.cur.Current().Start
	p.cur.Advance() // CAST
	if !p.expectPunct("(") {
		return nil
	}
	operand := p.parseExpr(precNone)
	if p.failed() {
		return nil
	}
	if !p.expectKeyword(token.AS, "AS") {
		return nil
	}
	typeName, ok := p.parseTypeName()
	if !ok {
		return nil
	}
	if !p.expectPunct(")") {
		return nil
	}
	n := p.alloc(ast.KindCast, start, p.priorEnd())
	if n == nil {
		return nil
	}
	n.Aux = typeName
	var b ast.Builder
	b.Add(operand)
	b.Attach(n)
	return n
}

func (p *Parser) parseExtract() *ast.Node {
	start := p.cur.Current().Start
	p.cur.Advance() // EXTRACT
	if !p.expectPunct("(") {
		return nil
	}
	field, ok := p.expectAnyName()
	if !ok {
		return nil
	}
	if !p.expectKeyword(token.FROM, "FROM") {
		return nil
	}
	operand := p.parseExpr(precNone)
	if p.failed() {
		return nil
	}
	if !p.expectPunct(")") {
		return nil
	}
	n := p.alloc(ast.KindExtract, start, p.priorEnd())
	if n == nil {
		return nil
	}
	n.Text = field.Lexeme
	var b ast.Builder
	b.Add(operand)
	b.Attach(n)
	return n
}

// parseTypeName parses a type name, optionally parameterized (e.g.
// NUMERIC(10, 2), VARCHAR(255)), and returns it as a single flattened
// string since type names have no internal structure this tree needs to
// expose to callers.
func (p *Parser) parseTypeName() (string, bool) {
	name, ok := p.expectAnyName()
	if !ok {
		return "", false
	}
	out := name.Lexeme
	if p.cur.Current().Category == token.PUNCT && p.cur.Current().Lexeme == "(" {
		out += "("
		p.cur.Advance()
		for {
			n := p.cur.Current()
			if n.Category != token.NUMBER {
				p.unexpected("a type parameter")
				return "", false
			}
			out += n.Lexeme
			p.cur.Advance()
			if p.cur.MatchPunct(",") {
				out += ", "
				continue
			}
			break
		}
		if !p.expectPunct(")") {
			return "", false
		}
		out += ")"
	}
	return out, true
}

// parseExprList parses a comma-separated list of expressions and wraps it
// in a KindExprList node, used for IN-lists, VALUES rows, and GROUPING
// SETS groups.
func (p *Parser) parseExprList() *ast.Node {
	start := p.cur.Current().Start
	var b ast.Builder
	for {
		e := p.parseExpr(precNone)
		if p.failed() {
			return nil
		}
		b.Add(e)
		if !p.cur.MatchPunct(",") {
			break
		}
	}
	n := p.alloc(ast.KindExprList, start, p.priorEnd())
	if n == nil {
		return nil
	}
	b.Attach(n)
	return n
}

func decodeStringLiteral(lexeme string) string {
	if len(lexeme) < 2 {
		return lexeme
	}
	inner := lexeme[1 : len(lexeme)-1]
	if !containsDoubled(inner, '\'') {
		return inner
	}
	out := make([]byte, 0, len(inner))
	for i := 0; i < len(inner); i++ {
		out = append(out, inner[i])
		if inner[i] == '\'' && i+1 < len(inner) && inner[i+1] == '\'' {
			i++
		}
	}
	return string(out)
}

func containsDoubled(s string, c byte) bool {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == c && s[i+1] == c {
			return true
		}
	}
	return false
}
