package parser

import (
	"github.com/ha1tch/sqlcore/ast"
	"github.com/ha1tch/sqlcore/token"
)

// parseInsert parses INSERT INTO table [(cols)] VALUES (...) | select
// [ON CONFLICT ...] [RETURNING ...] (spec §4.6 "DML", supplemented with
// ON CONFLICT per SPEC_FULL.md).
func (p *Parser) parseInsert() *ast.Node {
	start := p.cur.Current().Start
	p.cur.Advance() // INSERT
	if !p.expectKeyword(token.INTO, "INTO") {
		return nil
	}
	tableRef := p.parseTableRefPrimary()
	if p.failed() {
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

	var body *ast.Node
	switch {
	case p.cur.Current().Is(token.VALUES):
		body = p.parseValuesStmt()
	case p.cur.Current().Is(token.SELECT) || p.cur.Current().Is(token.WITH):
		body = p.parseSelectStatement()
	default:
		p.unexpected("VALUES or SELECT")
		return nil
	}
	if p.failed() {
		return nil
	}

	var onConflict, returning *ast.Node
	if p.cur.Current().Is(token.ON) {
		onConflict = p.parseOnConflict()
		if p.failed() {
			return nil
		}
	}
	if p.cur.Current().Is(token.RETURNING) {
		returning = p.parseReturning()
		if p.failed() {
			return nil
		}
	}

	n := p.alloc(ast.KindInsert, start, p.priorEnd())
	if n == nil {
		return nil
	}
	var b ast.Builder
	b.Add(tableRef)
	b.Add(cols)
	b.Add(body)
	b.Add(onConflict)
	b.Add(returning)
	b.Attach(n)
	return n
}

func (p *Parser) parseOnConflict() *ast.Node {
	start := p.cur.Current().Start
	p.cur.Advance() // ON
	if !p.expectKeyword(token.CONFLICT, "CONFLICT") {
		return nil
	}

	var target *ast.Node
	if p.cur.Current().Category == token.PUNCT && p.cur.Current().Lexeme == "(" {
		p.cur.Advance()
		target = p.parseConflictTarget()
		if p.failed() {
			return nil
		}
		if !p.expectPunct(")") {
			return nil
		}
	}

	if !p.expectKeyword(token.DO, "DO") {
		return nil
	}

	var action *ast.Node
	switch {
	case p.cur.Current().Is(token.NOTHING):
		p.cur.Advance()
	case p.cur.Current().Is(token.UPDATE):
		p.cur.Advance()
		if !p.expectKeyword(token.SET, "SET") {
			return nil
		}
		action = p.parseAssignmentList()
		if p.failed() {
			return nil
		}
	default:
		p.unexpected("NOTHING or UPDATE")
		return nil
	}

	n := p.alloc(ast.KindOnConflict, start, p.priorEnd())
	if n == nil {
		return nil
	}
	var b ast.Builder
	b.Add(target)
	b.Add(action)
	b.Attach(n)
	return n
}

func (p *Parser) parseConflictTarget() *ast.Node {
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
	n := p.alloc(ast.KindConflictTarget, start, p.priorEnd())
	if n == nil {
		return nil
	}
	b.Attach(n)
	return n
}

func (p *Parser) parseAssignmentList() *ast.Node {
	start := p.cur.Current().Start
	var b ast.Builder
	for {
		a := p.parseAssignment()
		if p.failed() {
			return nil
		}
		b.Add(a)
		if !p.cur.MatchPunct(",") {
			break
		}
	}
	n := p.alloc(ast.KindAssignmentList, start, p.priorEnd())
	if n == nil {
		return nil
	}
	b.Attach(n)
	return n
}

func (p *Parser) parseAssignment() *ast.Node {
	name, ok := p.expectAnyName()
	if !ok {
		return nil
	}
	if !p.cur.MatchOperator("=") {
		p.unexpected("'='")
		return nil
	}
	value := p.parseExpr(precNone)
	if p.failed() {
		return nil
	}
	id := p.alloc(ast.KindIdentifier, name.Start, name.End)
	if id == nil {
		return nil
	}
	id.Text = name.Lexeme
	n := p.alloc(ast.KindAssignment, name.Start, value.End)
	if n == nil {
		return nil
	}
	var b ast.Builder
	b.Add(id)
	b.Add(value)
	b.Attach(n)
	return n
}

func (p *Parser) parseReturning() *ast.Node {
	start := p.cur.Current().Start
	p.cur.Advance() // RETURNING
	p.pushContext(ast.CtxSelectList)
	defer p.popContext()
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
	n := p.alloc(ast.KindReturning, start, p.priorEnd())
	if n == nil {
		return nil
	}
	b.Attach(n)
	return n
}

// parseUpdate parses UPDATE table SET assign, ... [FROM ...] [WHERE ...]
// [RETURNING ...].
func (p *Parser) parseUpdate() *ast.Node {
	start := p.cur.Current().Start
	p.cur.Advance() // UPDATE
	tableRef := p.parseTableRefPrimary()
	if p.failed() {
		return nil
	}
	if !p.expectKeyword(token.SET, "SET") {
		return nil
	}
	assignments := p.parseAssignmentList()
	if p.failed() {
		return nil
	}

	var fromNode, whereNode, returning *ast.Node
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
	if p.cur.Current().Is(token.RETURNING) {
		returning = p.parseReturning()
		if p.failed() {
			return nil
		}
	}

	n := p.alloc(ast.KindUpdate, start, p.priorEnd())
	if n == nil {
		return nil
	}
	var b ast.Builder
	b.Add(tableRef)
	b.Add(assignments)
	b.Add(fromNode)
	b.Add(whereNode)
	b.Add(returning)
	b.Attach(n)
	return n
}

// parseDelete parses DELETE FROM table [USING ...] [WHERE ...]
// [RETURNING ...].
func (p *Parser) parseDelete() *ast.Node {
	start := p.cur.Current().Start
	p.cur.Advance() // DELETE
	if !p.expectKeyword(token.FROM, "FROM") {
		return nil
	}
	tableRef := p.parseTableRefPrimary()
	if p.failed() {
		return nil
	}

	var usingNode, whereNode, returning *ast.Node
	if p.cur.Current().Is(token.USING) {
		start := p.cur.Current().Start
		p.cur.Advance()
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
		usingNode = p.alloc(ast.KindFrom, start, p.priorEnd())
		if usingNode == nil {
			return nil
		}
		b.Attach(usingNode)
	}
	if p.cur.Current().Is(token.WHERE) {
		whereNode = p.parseWhereClause()
		if p.failed() {
			return nil
		}
	}
	if p.cur.Current().Is(token.RETURNING) {
		returning = p.parseReturning()
		if p.failed() {
			return nil
		}
	}

	n := p.alloc(ast.KindDelete, start, p.priorEnd())
	if n == nil {
		return nil
	}
	var b ast.Builder
	b.Add(tableRef)
	b.Add(usingNode)
	b.Add(whereNode)
	b.Add(returning)
	b.Attach(n)
	return n
}
