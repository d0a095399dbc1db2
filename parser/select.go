package parser

import (
	"github.com/ha1tch/sqlcore/ast"
	"github.com/ha1tch/sqlcore/token"
)

// appendChild splices child onto the end of parent's existing child list.
// It exists because ast.Builder is meant for building a node's children in
// one pass; SELECT's trailing ORDER BY/LIMIT/OFFSET are discovered only
// after the set-operation chain they apply to has already been built and
// attached, so they have to be spliced on afterward.
func appendChild(parent, child *ast.Node) {
	if child == nil {
		return
	}
	child.Parent = parent
	if parent.FirstChild == nil {
		parent.FirstChild = child
	} else {
		last := parent.FirstChild
		for last.NextSibling != nil {
			last = last.NextSibling
		}
		last.NextSibling = child
	}
	parent.ChildCount++
}

// prependChild splices child onto the front of parent's existing child
// list, for the WITH clause, which spec §3 places before every other
// child of the statement it prefixes.
func prependChild(parent, child *ast.Node) {
	if child == nil {
		return
	}
	child.Parent = parent
	child.NextSibling = parent.FirstChild
	parent.FirstChild = child
	parent.ChildCount++
}

// parseSelectStatement parses a full query expression: an optional WITH
// clause, a SELECT-or-VALUES core, zero or more set-operation tails, and a
// trailing ORDER BY/LIMIT/OFFSET that binds to the whole expression (spec
// §4.6 "Select family").
func (p *Parser) parseSelectStatement() *ast.Node {
	g := p.enterDepth()
	defer g.release()
	if g.failed() {
		return nil
	}
	start := p.cur.Current().Start

	var withNode *ast.Node
	if p.cur.Current().Is(token.WITH) {
		withNode = p.parseWithClause()
		if p.failed() {
			return nil
		}
	}

	var left *ast.Node
	if p.cur.Current().Is(token.VALUES) {
		left = p.parseValuesStmt()
	} else {
		left = p.parseSelectCore()
	}
	if p.failed() || left == nil {
		return nil
	}

	left = p.parseSetOpTail(left)
	if p.failed() {
		return nil
	}

	var orderBy, limitOrOffset *ast.Node
	if p.cur.Current().Is(token.ORDER) {
		orderBy = p.parseOrderBy()
		if p.failed() {
			return nil
		}
	}
	if p.cur.Current().Is(token.LIMIT) {
		limitOrOffset = p.parseLimit()
	} else if p.cur.Current().Is(token.OFFSET) {
		limitOrOffset = p.parseOffsetOnly()
	}
	if p.failed() {
		return nil
	}

	if withNode != nil {
		prependChild(left, withNode)
	}
	appendChild(left, orderBy)
	appendChild(left, limitOrOffset)
	left.Start = start
	left.End = p.priorEnd()

	p.validateQuery(left)
	if p.failed() {
		return nil
	}
	return left
}

func (p *Parser) parseSetOpTail(left *ast.Node) *ast.Node {
	for {
		cur := p.cur.Current()
		var setFlag ast.Flags
		switch cur.Keyword {
		case token.UNION:
			setFlag = ast.FlagUnion
		case token.INTERSECT:
			setFlag = ast.FlagIntersect
		case token.EXCEPT:
			setFlag = ast.FlagExcept
		default:
			return left
		}
		p.cur.Advance()
		if p.cur.MatchKeyword(token.ALL) {
			setFlag |= ast.FlagAll
		} else {
			p.cur.MatchKeyword(token.DISTINCT)
		}

		var right *ast.Node
		if p.cur.Current().Is(token.VALUES) {
			right = p.parseValuesStmt()
		} else {
			right = p.parseSelectCore()
		}
		if p.failed() || right == nil {
			return nil
		}

		node := p.alloc(ast.KindSetOperation, left.Start, right.End)
		if node == nil {
			return nil
		}
		node.Flags = setFlag
		var b ast.Builder
		b.Add(left)
		b.Add(right)
		b.Attach(node)
		left = node
	}
}

// parseSelectCore parses one SELECT through its HAVING clause; ORDER
// BY/LIMIT/OFFSET are handled one level up because they bind to the whole
// query expression, not to an individual arm of a set operation.
func (p *Parser) parseSelectCore() *ast.Node {
	start := p.cur.Current().Start
	if !p.expectKeyword(token.SELECT, "SELECT") {
		return nil
	}

	var flags ast.Flags
	if p.cur.MatchKeyword(token.DISTINCT) {
		flags |= ast.FlagDistinct
	} else {
		p.cur.MatchKeyword(token.ALL)
	}

	p.pushContext(ast.CtxSelectList)
	selectList := p.parseSelectList()
	p.popContext()
	if p.failed() {
		return nil
	}

	var fromNode, whereNode, groupByNode, havingNode *ast.Node
	if p.cur.Current().Is(token.FROM) {
		fromNode = p.parseFromClause()
		if p.failed() {
			return nil
		}
	}
	if p.cur.Current().Is(token.WHERE) {
		whereNode = p.parseWhereClause()
		if p.failed() {
			return nil
		}
	}
	if p.cur.Current().Is(token.GROUP) {
		groupByNode = p.parseGroupBy()
		if p.failed() {
			return nil
		}
	}
	if p.cur.Current().Is(token.HAVING) {
		havingNode = p.parseHaving()
		if p.failed() {
			return nil
		}
	}

	n := p.alloc(ast.KindSelect, start, p.priorEnd())
	if n == nil {
		return nil
	}
	n.Flags = flags
	var b ast.Builder
	b.Add(selectList)
	b.Add(fromNode)
	b.Add(whereNode)
	b.Add(groupByNode)
	b.Add(havingNode)
	b.Attach(n)
	return n
}

func (p *Parser) parseSelectList() *ast.Node {
	start := p.cur.Current().Start
	var b ast.Builder
	for {
		item := p.parseSelectItem()
		if p.failed() {
			return nil
		}
		b.Add(item)
		if !p.cur.MatchPunct(",") {
			break
		}
	}
	n := p.alloc(ast.KindSelectList, start, p.priorEnd())
	if n == nil {
		return nil
	}
	b.Attach(n)
	return n
}

func (p *Parser) parseSelectItem() *ast.Node {
	start := p.cur.Current().Start
	expr := p.parseExpr(precNone)
	if p.failed() {
		return nil
	}
	n := p.alloc(ast.KindSelectItem, start, expr.End)
	if n == nil {
		return nil
	}
	if p.cur.MatchKeyword(token.AS) {
		alias, ok := p.expectAnyName()
		if !ok {
			return nil
		}
		n.Aux = alias.Lexeme
		n.End = alias.End
	} else if p.cur.Current().Category == token.IDENT {
		alias := p.cur.Current()
		p.cur.Advance()
		n.Aux = alias.Lexeme
		n.End = alias.End
	}
	var b ast.Builder
	b.Add(expr)
	b.Attach(n)
	return n
}

func (p *Parser) parseFromClause() *ast.Node {
	start := p.cur.Current().Start
	p.cur.Advance() // FROM
	p.pushContext(ast.CtxFrom)
	defer p.popContext()

	var b ast.Builder
	for {
		item := p.parseJoinChain()
		if p.failed() {
			return nil
		}
		b.Add(item)
		if !p.cur.MatchPunct(",") {
			break
		}
	}
	n := p.alloc(ast.KindFrom, start, p.priorEnd())
	if n == nil {
		return nil
	}
	b.Attach(n)
	return n
}

var joinTypeFlags = map[token.Keyword]ast.Flags{
	token.INNER: ast.FlagInnerJoin,
	token.LEFT:  ast.FlagLeftJoin,
	token.RIGHT: ast.FlagRightJoin,
	token.FULL:  ast.FlagFullJoin,
	token.CROSS: ast.FlagCrossJoin,
}

// parseJoinChain parses a left-associative chain of JOINs starting at one
// table-reference primary (spec §4.6 "From/Join"). A bare `,` between
// FROM items is a separate top-level FROM child (an implicit cross join)
// and is handled by the caller, not here.
func (p *Parser) parseJoinChain() *ast.Node {
	left := p.parseTableRefPrimary()
	if p.failed() {
		return nil
	}

	for {
		cur := p.cur.Current()
		flag, named := joinTypeFlags[cur.Keyword]
		isPlainJoin := cur.Is(token.JOIN)
		if !named && !isPlainJoin {
			return left
		}
		if named {
			p.cur.Advance()
			p.cur.MatchKeyword(token.OUTER) // LEFT [OUTER] JOIN etc.
		} else {
			flag = ast.FlagInnerJoin
		}
		if !p.expectKeyword(token.JOIN, "JOIN") {
			return nil
		}
		right := p.parseTableRefPrimary()
		if p.failed() {
			return nil
		}

		var onOrUsing *ast.Node
		if flag != ast.FlagCrossJoin {
			switch {
			case p.cur.Current().Is(token.ON):
				p.cur.Advance()
				p.pushContext(ast.CtxJoinCondition)
				onOrUsing = p.parseExpr(precNone)
				p.popContext()
				if p.failed() {
					return nil
				}
			case p.cur.Current().Is(token.USING):
				p.cur.Advance()
				if !p.expectPunct("(") {
					return nil
				}
				onOrUsing = p.parseColumnList()
				if p.failed() {
					return nil
				}
				onOrUsing.Kind = ast.KindUsing
				if !p.expectPunct(")") {
					return nil
				}
			default:
				p.unexpected("ON or USING")
				return nil
			}
		}

		n := p.alloc(ast.KindJoin, left.Start, p.priorEnd())
		if n == nil {
			return nil
		}
		n.Flags = flag
		var b ast.Builder
		b.Add(left)
		b.Add(right)
		b.Add(onOrUsing)
		b.Attach(n)
		left = n
	}
}

// parseTableRefPrimary parses a single FROM item: a (possibly aliased)
// subquery, or a (possibly schema-qualified, possibly aliased) table
// name.
func (p *Parser) parseTableRefPrimary() *ast.Node {
	start := p.cur.Current().Start
	if p.cur.Current().Category == token.PUNCT && p.cur.Current().Lexeme == "(" {
		p.cur.Advance()
		sub := p.parseSubquery()
		if p.failed() {
			return nil
		}
		if !p.expectPunct(")") {
			return nil
		}
		sub.Start = start
		sub.End = p.priorEnd()
		if alias, ok := p.parseOptionalAlias(); ok {
			sub.Aux = alias
		}
		return sub
	}

	name, ok := p.expectAnyName()
	if !ok {
		return nil
	}
	schema, table := "", name.Lexeme
	if p.cur.Current().Category == token.PUNCT && p.cur.Current().Lexeme == "." {
		p.cur.Advance()
		t2, ok := p.expectAnyName()
		if !ok {
			return nil
		}
		schema, table = table, t2.Lexeme
	}
	n := p.alloc(ast.KindTableRef, start, p.priorEnd())
	if n == nil {
		return nil
	}
	n.Text = table
	n.Schema = schema
	if alias, ok := p.parseOptionalAlias(); ok {
		n.Aux = alias
		n.End = p.priorEnd()
	}
	return n
}

// parseOptionalAlias accepts `[AS] identifier` after a table reference. A
// bare identifier is only treated as an alias, never a keyword, to avoid
// swallowing the next clause's leading keyword (JOIN, WHERE, ...).
func (p *Parser) parseOptionalAlias() (string, bool) {
	if p.cur.MatchKeyword(token.AS) {
		name, ok := p.expectAnyName()
		if !ok {
			return "", false
		}
		return name.Lexeme, true
	}
	if p.cur.Current().Category == token.IDENT {
		name := p.cur.Current()
		p.cur.Advance()
		return name.Lexeme, true
	}
	return "", false
}

func (p *Parser) parseColumnList() *ast.Node {
	start := p.cur.Current().Start
	var b ast.Builder
	for {
		name, ok := p.expectAnyName()
		if !ok {
			return nil
		}
		id := p.alloc(ast.KindIdentifier, name.Start, name.End)
		if id == nil {
			return nil
		}
		id.Text = name.Lexeme
		b.Add(id)
		if !p.cur.MatchPunct(",") {
			break
		}
	}
	n := p.alloc(ast.KindColumnList, start, p.priorEnd())
	if n == nil {
		return nil
	}
	b.Attach(n)
	return n
}

func (p *Parser) parseWhereClause() *ast.Node {
	start := p.cur.Current().Start
	p.cur.Advance() // WHERE
	p.pushContext(ast.CtxWhere)
	expr := p.parseExpr(precNone)
	p.popContext()
	if p.failed() {
		return nil
	}
	n := p.alloc(ast.KindWhere, start, expr.End)
	if n == nil {
		return nil
	}
	var b ast.Builder
	b.Add(expr)
	b.Attach(n)
	return n
}

func (p *Parser) parseHaving() *ast.Node {
	start := p.cur.Current().Start
	p.cur.Advance() // HAVING
	p.pushContext(ast.CtxHaving)
	expr := p.parseExpr(precNone)
	p.popContext()
	if p.failed() {
		return nil
	}
	n := p.alloc(ast.KindHaving, start, expr.End)
	if n == nil {
		return nil
	}
	var b ast.Builder
	b.Add(expr)
	b.Attach(n)
	return n
}

func (p *Parser) parseGroupBy() *ast.Node {
	start := p.cur.Current().Start
	p.cur.Advance() // GROUP
	if !p.expectKeyword(token.BY, "BY") {
		return nil
	}
	p.pushContext(ast.CtxGroupBy)
	defer p.popContext()

	var b ast.Builder
	for {
		item := p.parseGroupingItem()
		if p.failed() {
			return nil
		}
		b.Add(item)
		if !p.cur.MatchPunct(",") {
			break
		}
	}
	n := p.alloc(ast.KindGroupBy, start, p.priorEnd())
	if n == nil {
		return nil
	}
	b.Attach(n)
	return n
}

func (p *Parser) parseGroupingItem() *ast.Node {
	switch {
	case p.cur.Current().Is(token.ROLLUP):
		start := p.cur.Current().Start
		p.cur.Advance()
		if !p.expectPunct("(") {
			return nil
		}
		var b ast.Builder
		for {
			e := p.parseExpr(precConcat)
			if p.failed() {
				return nil
			}
			b.Add(e)
			if !p.cur.MatchPunct(",") {
				break
			}
		}
		if !p.expectPunct(")") {
			return nil
		}
		n := p.alloc(ast.KindRollup, start, p.priorEnd())
		if n == nil {
			return nil
		}
		b.Attach(n)
		return n

	case p.cur.Current().Is(token.CUBE):
		start := p.cur.Current().Start
		p.cur.Advance()
		if !p.expectPunct("(") {
			return nil
		}
		var b ast.Builder
		for {
			e := p.parseExpr(precConcat)
			if p.failed() {
				return nil
			}
			b.Add(e)
			if !p.cur.MatchPunct(",") {
				break
			}
		}
		if !p.expectPunct(")") {
			return nil
		}
		n := p.alloc(ast.KindCube, start, p.priorEnd())
		if n == nil {
			return nil
		}
		b.Attach(n)
		return n

	case p.cur.Current().Is(token.GROUPING):
		start := p.cur.Current().Start
		p.cur.Advance()
		if !p.expectKeyword(token.SETS, "SETS") {
			return nil
		}
		if !p.expectPunct("(") {
			return nil
		}
		var gb ast.Builder
		for {
			groupStart := p.cur.Current().Start
			if !p.expectPunct("(") {
				return nil
			}
			var group *ast.Node
			if p.cur.Current().Category == token.PUNCT && p.cur.Current().Lexeme == ")" {
				// the empty grouping set `()`, the grand-total row.
				group = p.alloc(ast.KindExprList, groupStart, groupStart)
				if group == nil {
					return nil
				}
			} else {
				group = p.parseExprList()
				if p.failed() {
					return nil
				}
			}
			if !p.expectPunct(")") {
				return nil
			}
			gb.Add(group)
			if !p.cur.MatchPunct(",") {
				break
			}
		}
		if !p.expectPunct(")") {
			return nil
		}
		n := p.alloc(ast.KindGroupingSets, start, p.priorEnd())
		if n == nil {
			return nil
		}
		gb.Attach(n)
		return n

	default:
		return p.parseExpr(precConcat)
	}
}

func (p *Parser) parseOrderBy() *ast.Node {
	start := p.cur.Current().Start
	p.cur.Advance() // ORDER
	if !p.expectKeyword(token.BY, "BY") {
		return nil
	}
	p.pushContext(ast.CtxOrderBy)
	defer p.popContext()

	var b ast.Builder
	for {
		item := p.parseOrderByItem()
		if p.failed() {
			return nil
		}
		b.Add(item)
		if !p.cur.MatchPunct(",") {
			break
		}
	}
	n := p.alloc(ast.KindOrderBy, start, p.priorEnd())
	if n == nil {
		return nil
	}
	b.Attach(n)
	return n
}

func (p *Parser) parseOrderByItem() *ast.Node {
	start := p.cur.Current().Start
	expr := p.parseExpr(precConcat)
	if p.failed() {
		return nil
	}
	var flags ast.Flags
	switch {
	case p.cur.MatchKeyword(token.ASC):
		flags |= ast.FlagAscending
	case p.cur.MatchKeyword(token.DESC):
		flags |= ast.FlagDescending
	}
	if p.cur.MatchKeyword(token.NULLS) {
		switch {
		case p.cur.MatchKeyword(token.FIRST):
			flags |= ast.FlagNullsFirst
		case p.cur.MatchKeyword(token.LAST):
			flags |= ast.FlagNullsLast
		default:
			p.unexpected("FIRST or LAST")
			return nil
		}
	}
	n := p.alloc(ast.KindOrderByItem, start, p.priorEnd())
	if n == nil {
		return nil
	}
	n.Flags = flags
	var b ast.Builder
	b.Add(expr)
	b.Attach(n)
	return n
}

func (p *Parser) parseLimit() *ast.Node {
	start := p.cur.Current().Start
	p.cur.Advance() // LIMIT
	count := p.parseExpr(precConcat)
	if p.failed() {
		return nil
	}
	var offset *ast.Node
	if p.cur.MatchKeyword(token.OFFSET) {
		offset = p.parseExpr(precConcat)
		if p.failed() {
			return nil
		}
	}
	n := p.alloc(ast.KindLimit, start, p.priorEnd())
	if n == nil {
		return nil
	}
	var b ast.Builder
	b.Add(count)
	b.Add(offset)
	b.Attach(n)
	return n
}

func (p *Parser) parseOffsetOnly() *ast.Node {
	start := p.cur.Current().Start
	p.cur.Advance() // OFFSET
	expr := p.parseExpr(precConcat)
	if p.failed() {
		return nil
	}
	n := p.alloc(ast.KindOffset, start, expr.End)
	if n == nil {
		return nil
	}
	var b ast.Builder
	b.Add(expr)
	b.Attach(n)
	return n
}

// parseSubquery parses a SELECT-shaped statement used as an expression or
// table-reference operand and wraps it in a KindSubquery node, consuming
// neither the surrounding parentheses (the caller already did, or will).
func (p *Parser) parseSubquery() *ast.Node {
	p.pushContext(ast.CtxSubquery)
	defer p.popContext()
	start := p.cur.Current().Start
	body := p.parseSelectStatement()
	if p.failed() || body == nil {
		return nil
	}
	n := p.alloc(ast.KindSubquery, start, body.End)
	if n == nil {
		return nil
	}
	var b ast.Builder
	b.Add(body)
	b.Attach(n)
	return n
}

func (p *Parser) parseValuesStmt() *ast.Node {
	start := p.cur.Current().Start
	p.cur.Advance() // VALUES
	var b ast.Builder
	for {
		if !p.expectPunct("(") {
			return nil
		}
		row := p.parseExprList()
		if p.failed() {
			return nil
		}
		if !p.expectPunct(")") {
			return nil
		}
		b.Add(row)
		if !p.cur.MatchPunct(",") {
			break
		}
	}
	n := p.alloc(ast.KindValuesStmt, start, p.priorEnd())
	if n == nil {
		return nil
	}
	b.Attach(n)
	return n
}

func (p *Parser) parseWithClause() *ast.Node {
	start := p.cur.Current().Start
	p.cur.Advance() // WITH
	var flags ast.Flags
	if p.cur.MatchKeyword(token.RECURSIVE) {
		flags |= ast.FlagRecursive
	}

	var b ast.Builder
	for {
		cte := p.parseCTE()
		if p.failed() {
			return nil
		}
		b.Add(cte)
		if !p.cur.MatchPunct(",") {
			break
		}
	}
	n := p.alloc(ast.KindWithClause, start, p.priorEnd())
	if n == nil {
		return nil
	}
	n.Flags = flags
	b.Attach(n)
	return n
}

func (p *Parser) parseCTE() *ast.Node {
	name, ok := p.expectAnyName()
	if !ok {
		return nil
	}
	var cols *ast.Node
	if p.cur.Current().Category == token.PUNCT && p.cur.Current().Lexeme == "(" {
		p.cur.Advance()
		cols = p.parseColumnList()
		if p.failed() {
			return nil
		}
		if !p.expectPunct(")") {
			return nil
		}
	}
	if !p.expectKeyword(token.AS, "AS") {
		return nil
	}
	if !p.expectPunct("(") {
		return nil
	}
	body := p.parseSelectStatement()
	if p.failed() || body == nil {
		return nil
	}
	if !p.expectPunct(")") {
		return nil
	}
	n := p.alloc(ast.KindCTE, name.Start, p.priorEnd())
	if n == nil {
		return nil
	}
	n.Text = name.Lexeme
	var b ast.Builder
	b.Add(cols)
	b.Add(body)
	b.Attach(n)
	return n
}
