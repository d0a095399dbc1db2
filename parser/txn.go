package parser

import (
	"github.com/ha1tch/sqlcore/ast"
	"github.com/ha1tch/sqlcore/token"
)

func (p *Parser) parseBegin() *ast.Node {
	start := p.cur.Current().Start
	p.cur.Advance() // BEGIN
	p.cur.MatchKeyword(token.TRANSACTION)
	return p.alloc(ast.KindBegin, start, p.priorEnd())
}

func (p *Parser) parseCommit() *ast.Node {
	start := p.cur.Current().Start
	p.cur.Advance() // COMMIT
	p.cur.MatchKeyword(token.TRANSACTION)
	return p.alloc(ast.KindCommit, start, p.priorEnd())
}

func (p *Parser) parseRollback() *ast.Node {
	start := p.cur.Current().Start
	p.cur.Advance() // ROLLBACK
	p.cur.MatchKeyword(token.TRANSACTION)

	var savepoint *ast.Node
	if p.cur.MatchKeyword(token.TO) {
		p.cur.MatchKeyword(token.SAVEPOINT)
		name, ok := p.expectAnyName()
		if !ok {
			return nil
		}
		savepoint = p.alloc(ast.KindIdentifier, name.Start, name.End)
		if savepoint == nil {
			return nil
		}
		savepoint.Text = name.Lexeme
	}
	n := p.alloc(ast.KindRollback, start, p.priorEnd())
	if n == nil {
		return nil
	}
	var b ast.Builder
	b.Add(savepoint)
	b.Attach(n)
	return n
}

func (p *Parser) parseSavepoint() *ast.Node {
	start := p.cur.Current().Start
	p.cur.Advance() // SAVEPOINT
	name, ok := p.expectAnyName()
	if !ok {
		return nil
	}
	id := p.alloc(ast.KindIdentifier, name.Start, name.End)
	if id == nil {
		return nil
	}
	id.Text = name.Lexeme
	n := p.alloc(ast.KindSavepoint, start, name.End)
	if n == nil {
		return nil
	}
	var b ast.Builder
	b.Add(id)
	b.Attach(n)
	return n
}

func (p *Parser) parseRelease() *ast.Node {
	start := p.cur.Current().Start
	p.cur.Advance() // RELEASE
	p.cur.MatchKeyword(token.SAVEPOINT)
	name, ok := p.expectAnyName()
	if !ok {
		return nil
	}
	id := p.alloc(ast.KindIdentifier, name.Start, name.End)
	if id == nil {
		return nil
	}
	id.Text = name.Lexeme
	n := p.alloc(ast.KindRelease, start, name.End)
	if n == nil {
		return nil
	}
	var b ast.Builder
	b.Add(id)
	b.Attach(n)
	return n
}

func (p *Parser) parseExplain() *ast.Node {
	start := p.cur.Current().Start
	p.cur.Advance() // EXPLAIN
	stmt := p.parseStatement()
	if p.failed() || stmt == nil {
		return nil
	}
	n := p.alloc(ast.KindExplain, start, stmt.End)
	if n == nil {
		return nil
	}
	var b ast.Builder
	b.Add(stmt)
	b.Attach(n)
	return n
}

func (p *Parser) parseVacuumOrAnalyze(kind ast.Kind, kw token.Keyword) *ast.Node {
	start := p.cur.Current().Start
	p.cur.Advance() // VACUUM or ANALYZE

	var tableRef *ast.Node
	if p.cur.Current().Category == token.IDENT {
		schema, table, end, ok := p.parseQualifiedName()
		if !ok {
			return nil
		}
		tableRef = p.alloc(ast.KindTableRef, start, end)
		if tableRef == nil {
			return nil
		}
		tableRef.Text = table
		tableRef.Schema = schema
	}

	n := p.alloc(kind, start, p.priorEnd())
	if n == nil {
		return nil
	}
	var b ast.Builder
	b.Add(tableRef)
	b.Attach(n)
	return n
}

func (p *Parser) parseAttach() *ast.Node {
	start := p.cur.Current().Start
	p.cur.Advance() // ATTACH
	p.cur.MatchKeyword(token.DATABASE)
	source := p.parseExpr(precConcat)
	if p.failed() {
		return nil
	}
	if !p.expectKeyword(token.AS, "AS") {
		return nil
	}
	alias, ok := p.expectAnyName()
	if !ok {
		return nil
	}
	aliasNode := p.alloc(ast.KindIdentifier, alias.Start, alias.End)
	if aliasNode == nil {
		return nil
	}
	aliasNode.Text = alias.Lexeme

	n := p.alloc(ast.KindAttach, start, alias.End)
	if n == nil {
		return nil
	}
	var b ast.Builder
	b.Add(source)
	b.Add(aliasNode)
	b.Attach(n)
	return n
}

func (p *Parser) parseDetach() *ast.Node {
	start := p.cur.Current().Start
	p.cur.Advance() // DETACH
	p.cur.MatchKeyword(token.DATABASE)
	name, ok := p.expectAnyName()
	if !ok {
		return nil
	}
	id := p.alloc(ast.KindIdentifier, name.Start, name.End)
	if id == nil {
		return nil
	}
	id.Text = name.Lexeme
	n := p.alloc(ast.KindDetach, start, name.End)
	if n == nil {
		return nil
	}
	var b ast.Builder
	b.Add(id)
	b.Attach(n)
	return n
}

func (p *Parser) parsePragma() *ast.Node {
	start := p.cur.Current().Start
	p.cur.Advance() // PRAGMA
	name, ok := p.expectAnyName()
	if !ok {
		return nil
	}
	id := p.alloc(ast.KindIdentifier, name.Start, name.End)
	if id == nil {
		return nil
	}
	id.Text = name.Lexeme

	var value *ast.Node
	if p.cur.MatchOperator("=") {
		value = p.parseExpr(precConcat)
		if p.failed() {
			return nil
		}
	} else if p.cur.Current().Category == token.PUNCT && p.cur.Current().Lexeme == "(" {
		p.cur.Advance()
		value = p.parseExpr(precNone)
		if p.failed() {
			return nil
		}
		if !p.expectPunct(")") {
			return nil
		}
	}

	n := p.alloc(ast.KindPragma, start, p.priorEnd())
	if n == nil {
		return nil
	}
	var b ast.Builder
	b.Add(id)
	b.Add(value)
	b.Attach(n)
	return n
}

// parseSet parses SET name [=|TO] value, following the same name/value
// shape as parsePragma.
func (p *Parser) parseSet() *ast.Node {
	start := p.cur.Current().Start
	p.cur.Advance() // SET
	name, ok := p.expectAnyName()
	if !ok {
		return nil
	}
	id := p.alloc(ast.KindIdentifier, name.Start, name.End)
	if id == nil {
		return nil
	}
	id.Text = name.Lexeme

	if !p.cur.MatchOperator("=") && !p.cur.MatchKeyword(token.TO) {
		p.unexpected("= or TO")
		return nil
	}
	value := p.parseExpr(precConcat)
	if p.failed() {
		return nil
	}

	n := p.alloc(ast.KindSet, start, value.End)
	if n == nil {
		return nil
	}
	n.Text = name.Lexeme
	var b ast.Builder
	b.Add(id)
	b.Add(value)
	b.Attach(n)
	return n
}

func (p *Parser) parseReindex() *ast.Node {
	start := p.cur.Current().Start
	p.cur.Advance() // REINDEX
	name, ok := p.expectAnyName()
	if !ok {
		return nil
	}
	id := p.alloc(ast.KindIdentifier, name.Start, name.End)
	if id == nil {
		return nil
	}
	id.Text = name.Lexeme
	n := p.alloc(ast.KindReindex, start, name.End)
	if n == nil {
		return nil
	}
	var b ast.Builder
	b.Add(id)
	b.Attach(n)
	return n
}
