package parser

import (
	"github.com/ha1tch/sqlcore/ast"
	"github.com/ha1tch/sqlcore/token"
)

// parseCreate dispatches CREATE [TEMPORARY] TABLE|INDEX|UNIQUE INDEX|VIEW.
func (p *Parser) parseCreate() *ast.Node {
	start := p.cur.Current().Start
	p.cur.Advance() // CREATE

	var flags ast.Flags
	if p.cur.MatchKeyword(token.UNIQUE) {
		flags |= ast.FlagUnique
	}
	if p.cur.MatchKeyword(token.TEMPORARY) {
		flags |= ast.FlagTemporary
	}

	switch {
	case p.cur.Current().Is(token.TABLE):
		return p.parseCreateTable(start, flags)
	case p.cur.Current().Is(token.INDEX):
		return p.parseCreateIndex(start, flags)
	case p.cur.Current().Is(token.VIEW):
		return p.parseCreateView(start, flags)
	default:
		p.unexpected("TABLE, INDEX, or VIEW")
		return nil
	}
}

func (p *Parser) parseIfNotExists() ast.Flags {
	if p.cur.Current().Is(token.IF) {
		save := p.cur.Position()
		p.cur.Advance()
		if p.cur.MatchKeyword(token.NOT) && p.cur.MatchKeyword(token.EXISTS) {
			return ast.FlagIfNotExists
		}
		p.cur.Restore(save)
	}
	return 0
}

func (p *Parser) parseIfExists() ast.Flags {
	if p.cur.Current().Is(token.IF) {
		save := p.cur.Position()
		p.cur.Advance()
		if p.cur.MatchKeyword(token.EXISTS) {
			return ast.FlagIfExists
		}
		p.cur.Restore(save)
	}
	return 0
}

func (p *Parser) parseQualifiedName() (schema, name string, end uint32, ok bool) {
	first, okFirst := p.expectAnyName()
	if !okFirst {
		return "", "", 0, false
	}
	name = first.Lexeme
	end = first.End
	if p.cur.Current().Category == token.PUNCT && p.cur.Current().Lexeme == "." {
		p.cur.Advance()
		second, ok2 := p.expectAnyName()
		if !ok2 {
			return "", "", 0, false
		}
		schema, name, end = name, second.Lexeme, second.End
	}
	return schema, name, end, true
}

func (p *Parser) parseCreateTable(start uint32, flags ast.Flags) *ast.Node {
	p.cur.Advance() // TABLE
	flags |= p.parseIfNotExists()
	schema, table, nameEnd, ok := p.parseQualifiedName()
	if !ok {
		return nil
	}
	nameNode := p.alloc(ast.KindTableRef, start, nameEnd)
	if nameNode == nil {
		return nil
	}
	nameNode.Text = table
	nameNode.Schema = schema

	if !p.expectPunct("(") {
		return nil
	}
	colsStart := p.cur.Current().Start
	var cb, tb ast.Builder
	for {
		if p.startsTableConstraint() {
			tc := p.parseTableConstraint()
			if p.failed() {
				return nil
			}
			tb.Add(tc)
		} else {
			cd := p.parseColumnDef()
			if p.failed() {
				return nil
			}
			cb.Add(cd)
		}
		if !p.cur.MatchPunct(",") {
			break
		}
	}
	if !p.expectPunct(")") {
		return nil
	}

	cols := p.alloc(ast.KindColumnDefList, colsStart, p.priorEnd())
	if cols == nil {
		return nil
	}
	cb.Attach(cols)

	var constraints *ast.Node
	if tb.AnyAdded() {
		constraints = p.alloc(ast.KindTableConstraintList, colsStart, p.priorEnd())
		if constraints == nil {
			return nil
		}
		tb.Attach(constraints)
	}

	n := p.alloc(ast.KindCreateTable, start, p.priorEnd())
	if n == nil {
		return nil
	}
	n.Flags = flags
	var b ast.Builder
	b.Add(nameNode)
	b.Add(cols)
	b.Add(constraints)
	b.Attach(n)
	return n
}

func (p *Parser) startsTableConstraint() bool {
	cur := p.cur.Current()
	return cur.Is(token.PRIMARY) || cur.Is(token.FOREIGN) || cur.Is(token.UNIQUE) || cur.Is(token.CHECK)
}

func (p *Parser) parseTableConstraint() *ast.Node {
	start := p.cur.Current().Start
	var flags ast.Flags
	var cols, refSpec *ast.Node

	switch {
	case p.cur.Current().Is(token.PRIMARY):
		p.cur.Advance()
		if !p.expectKeyword(token.KEY, "KEY") {
			return nil
		}
		if !p.expectPunct("(") {
			return nil
		}
		cols = p.parseColumnList()
		if p.failed() {
			return nil
		}
		if !p.expectPunct(")") {
			return nil
		}

	case p.cur.Current().Is(token.UNIQUE):
		p.cur.Advance()
		flags |= ast.FlagUnique
		if !p.expectPunct("(") {
			return nil
		}
		cols = p.parseColumnList()
		if p.failed() {
			return nil
		}
		if !p.expectPunct(")") {
			return nil
		}

	case p.cur.Current().Is(token.FOREIGN):
		p.cur.Advance()
		if !p.expectKeyword(token.KEY, "KEY") {
			return nil
		}
		if !p.expectPunct("(") {
			return nil
		}
		cols = p.parseColumnList()
		if p.failed() {
			return nil
		}
		if !p.expectPunct(")") {
			return nil
		}
		refSpec = p.parseRefSpec()
		if p.failed() {
			return nil
		}

	case p.cur.Current().Is(token.CHECK):
		p.cur.Advance()
		if !p.expectPunct("(") {
			return nil
		}
		cond := p.parseExpr(precNone)
		if p.failed() {
			return nil
		}
		if !p.expectPunct(")") {
			return nil
		}
		n := p.alloc(ast.KindTableConstraint, start, p.priorEnd())
		if n == nil {
			return nil
		}
		var b ast.Builder
		b.Add(cond)
		b.Attach(n)
		return n
	}

	n := p.alloc(ast.KindTableConstraint, start, p.priorEnd())
	if n == nil {
		return nil
	}
	n.Flags = flags
	var b ast.Builder
	b.Add(cols)
	b.Add(refSpec)
	b.Attach(n)
	return n
}

// Referential action codes, packed two to a RefSpec.OpKind byte: ON DELETE
// in the low nibble, ON UPDATE in the high nibble.
const (
	refActionNone refAction = iota
	refActionCascade
	refActionRestrict
	refActionSetNull
	refActionSetDefault
	refActionNoAction
)

type refAction uint8

func (p *Parser) parseRefSpec() *ast.Node {
	start := p.cur.Current().Start
	if !p.expectKeyword(token.REFERENCES, "REFERENCES") {
		return nil
	}
	_, table, end, ok := p.parseQualifiedName()
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
		end = p.priorEnd()
	}

	var onDelete, onUpdate refAction
actions:
	for p.cur.Current().Is(token.ON) {
		save := p.cur.Position()
		p.cur.Advance()
		switch {
		case p.cur.Current().Is(token.DELETE):
			p.cur.Advance()
			action, ok := p.parseRefAction()
			if !ok {
				return nil
			}
			onDelete = action
		case p.cur.Current().Is(token.UPDATE):
			p.cur.Advance()
			action, ok := p.parseRefAction()
			if !ok {
				return nil
			}
			onUpdate = action
		default:
			p.cur.Restore(save)
			break actions
		}
		end = p.priorEnd()
	}

	n := p.alloc(ast.KindRefSpec, start, end)
	if n == nil {
		return nil
	}
	n.Text = table
	n.OpKind = uint8(onDelete) | uint8(onUpdate)<<4
	var b ast.Builder
	b.Add(cols)
	b.Attach(n)
	return n
}

// parseRefAction parses the action following ON DELETE/ON UPDATE: CASCADE,
// RESTRICT, SET NULL, SET DEFAULT, or NO ACTION.
func (p *Parser) parseRefAction() (refAction, bool) {
	switch {
	case p.cur.Current().Is(token.CASCADE):
		p.cur.Advance()
		return refActionCascade, true
	case p.cur.Current().Is(token.RESTRICT):
		p.cur.Advance()
		return refActionRestrict, true
	case p.cur.Current().Is(token.SET):
		p.cur.Advance()
		switch {
		case p.cur.Current().Is(token.NULL):
			p.cur.Advance()
			return refActionSetNull, true
		case p.cur.Current().Is(token.DEFAULT):
			p.cur.Advance()
			return refActionSetDefault, true
		default:
			p.unexpected("NULL or DEFAULT")
			return 0, false
		}
	case p.cur.Current().Is(token.NO):
		p.cur.Advance()
		if !p.expectKeyword(token.ACTION, "ACTION") {
			return 0, false
		}
		return refActionNoAction, true
	default:
		p.unexpected("CASCADE, RESTRICT, SET NULL, SET DEFAULT, or NO ACTION")
		return 0, false
	}
}

// Column constraint flag bits, carried in ColumnConstraint.Flags.
const (
	colConstraintNotNull ast.Flags = 1 << iota
	colConstraintDefault
	colConstraintCheck
	colConstraintReferences
	colConstraintPrimaryKey
	colConstraintUnique
	colConstraintCollate
)

func (p *Parser) parseColumnDef() *ast.Node {
	name, ok := p.expectAnyName()
	if !ok {
		return nil
	}
	typeName, ok := p.parseTypeName()
	if !ok {
		return nil
	}

	var b ast.Builder
loop:
	for {
		switch {
		case p.cur.Current().Is(token.NOT):
			p.cur.Advance()
			if !p.expectKeyword(token.NULL, "NULL") {
				return nil
			}
			cc := p.alloc(ast.KindColumnConstraint, 0, p.priorEnd())
			if cc == nil {
				return nil
			}
			cc.Flags = colConstraintNotNull
			b.Add(cc)
		case p.cur.Current().Is(token.NULL):
			p.cur.Advance()
		case p.cur.Current().Is(token.DEFAULT):
			p.cur.Advance()
			expr := p.parseExpr(precConcat)
			if p.failed() {
				return nil
			}
			cc := p.alloc(ast.KindColumnConstraint, 0, p.priorEnd())
			if cc == nil {
				return nil
			}
			cc.Flags = colConstraintDefault
			var cb ast.Builder
			cb.Add(expr)
			cb.Attach(cc)
			b.Add(cc)
		case p.cur.Current().Is(token.CHECK):
			p.cur.Advance()
			if !p.expectPunct("(") {
				return nil
			}
			expr := p.parseExpr(precNone)
			if p.failed() {
				return nil
			}
			if !p.expectPunct(")") {
				return nil
			}
			cc := p.alloc(ast.KindColumnConstraint, 0, p.priorEnd())
			if cc == nil {
				return nil
			}
			cc.Flags = colConstraintCheck
			var cb ast.Builder
			cb.Add(expr)
			cb.Attach(cc)
			b.Add(cc)
		case p.cur.Current().Is(token.PRIMARY):
			p.cur.Advance()
			if !p.expectKeyword(token.KEY, "KEY") {
				return nil
			}
			cc := p.alloc(ast.KindColumnConstraint, 0, p.priorEnd())
			if cc == nil {
				return nil
			}
			cc.Flags = colConstraintPrimaryKey
			b.Add(cc)
		case p.cur.Current().Is(token.UNIQUE):
			p.cur.Advance()
			cc := p.alloc(ast.KindColumnConstraint, 0, p.priorEnd())
			if cc == nil {
				return nil
			}
			cc.Flags = colConstraintUnique
			b.Add(cc)
		case p.cur.Current().Is(token.REFERENCES):
			refSpec := p.parseRefSpec()
			if p.failed() {
				return nil
			}
			cc := p.alloc(ast.KindColumnConstraint, 0, p.priorEnd())
			if cc == nil {
				return nil
			}
			cc.Flags = colConstraintReferences
			var cb ast.Builder
			cb.Add(refSpec)
			cb.Attach(cc)
			b.Add(cc)
		case p.cur.Current().Is(token.COLLATE):
			p.cur.Advance()
			name, ok := p.expectAnyName()
			if !ok {
				return nil
			}
			collate := p.alloc(ast.KindCollateExpr, name.Start, name.End)
			if collate == nil {
				return nil
			}
			collate.Text = name.Lexeme
			cc := p.alloc(ast.KindColumnConstraint, 0, p.priorEnd())
			if cc == nil {
				return nil
			}
			cc.Flags = colConstraintCollate
			var cb ast.Builder
			cb.Add(collate)
			cb.Attach(cc)
			b.Add(cc)
		default:
			break loop
		}
	}

	n := p.alloc(ast.KindColumnDef, name.Start, p.priorEnd())
	if n == nil {
		return nil
	}
	n.Text = name.Lexeme
	n.Aux = typeName
	b.Attach(n)
	return n
}

func (p *Parser) parseCreateIndex(start uint32, flags ast.Flags) *ast.Node {
	p.cur.Advance() // INDEX
	flags |= p.parseIfNotExists()
	indexName, ok := p.expectAnyName()
	if !ok {
		return nil
	}
	if !p.expectKeyword(token.ON, "ON") {
		return nil
	}
	_, table, tableEnd, ok := p.parseQualifiedName()
	if !ok {
		return nil
	}
	tableNode := p.alloc(ast.KindTableRef, indexName.End, tableEnd)
	if tableNode == nil {
		return nil
	}
	tableNode.Text = table

	if !p.expectPunct("(") {
		return nil
	}
	colsStart := p.cur.Current().Start
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
	cols := p.alloc(ast.KindIndexColumnList, colsStart, p.priorEnd())
	if cols == nil {
		return nil
	}
	b.Attach(cols)

	var whereNode *ast.Node
	if p.cur.Current().Is(token.WHERE) {
		whereNode = p.parseWhereClause()
		if p.failed() {
			return nil
		}
	}

	indexNameNode := p.alloc(ast.KindIdentifier, indexName.Start, indexName.End)
	if indexNameNode == nil {
		return nil
	}
	indexNameNode.Text = indexName.Lexeme

	n := p.alloc(ast.KindCreateIndex, start, p.priorEnd())
	if n == nil {
		return nil
	}
	n.Flags = flags
	var nb ast.Builder
	nb.Add(indexNameNode)
	nb.Add(tableNode)
	nb.Add(cols)
	nb.Add(whereNode)
	nb.Attach(n)
	return n
}

func (p *Parser) parseCreateView(start uint32, flags ast.Flags) *ast.Node {
	p.cur.Advance() // VIEW
	_, view, viewEnd, ok := p.parseQualifiedName()
	if !ok {
		return nil
	}
	viewNode := p.alloc(ast.KindIdentifier, start, viewEnd)
	if viewNode == nil {
		return nil
	}
	viewNode.Text = view

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
	body := p.parseSelectStatement()
	if p.failed() || body == nil {
		return nil
	}

	n := p.alloc(ast.KindCreateView, start, body.End)
	if n == nil {
		return nil
	}
	n.Flags = flags
	var b ast.Builder
	b.Add(viewNode)
	b.Add(cols)
	b.Add(body)
	b.Attach(n)
	return n
}

// parseDrop dispatches DROP TABLE|INDEX|VIEW|TRIGGER|SCHEMA [IF EXISTS]
// name [, name ...] [CASCADE|RESTRICT].
func (p *Parser) parseDrop() *ast.Node {
	start := p.cur.Current().Start
	p.cur.Advance() // DROP

	var kind ast.Kind
	switch {
	case p.cur.Current().Is(token.TABLE):
		kind = ast.KindDropTable
	case p.cur.Current().Is(token.INDEX):
		kind = ast.KindDropIndex
	case p.cur.Current().Is(token.VIEW):
		kind = ast.KindDropView
	case p.cur.Current().Is(token.TRIGGER):
		kind = ast.KindDropTrigger
	case p.cur.Current().Is(token.SCHEMA):
		kind = ast.KindDropSchema
	default:
		p.unexpected("TABLE, INDEX, VIEW, TRIGGER, or SCHEMA")
		return nil
	}
	p.cur.Advance()
	flags := p.parseIfExists()

	var b ast.Builder
	for {
		schema, name, end, ok := p.parseQualifiedName()
		if !ok {
			return nil
		}
		nameNode := p.alloc(ast.KindTableRef, end, end)
		if nameNode == nil {
			return nil
		}
		nameNode.Text = name
		nameNode.Schema = schema
		b.Add(nameNode)
		if kind != ast.KindDropTable || !p.cur.MatchPunct(",") {
			break
		}
	}

	if p.cur.MatchKeyword(token.CASCADE) {
		flags |= ast.FlagCascade
	} else if p.cur.MatchKeyword(token.RESTRICT) {
		flags |= ast.FlagRestrict
	}

	n := p.alloc(kind, start, p.priorEnd())
	if n == nil {
		return nil
	}
	n.Flags = flags
	b.Attach(n)
	return n
}

// parseAlterTable parses ALTER TABLE name (ADD COLUMN coldef | DROP
// COLUMN name | RENAME COLUMN a TO b), ...
func (p *Parser) parseAlterTable() *ast.Node {
	start := p.cur.Current().Start
	p.cur.Advance() // ALTER
	if !p.expectKeyword(token.TABLE, "TABLE") {
		return nil
	}
	schema, table, tableEnd, ok := p.parseQualifiedName()
	if !ok {
		return nil
	}
	tableNode := p.alloc(ast.KindTableRef, start, tableEnd)
	if tableNode == nil {
		return nil
	}
	tableNode.Text = table
	tableNode.Schema = schema

	var ab ast.Builder
	for {
		action := p.parseAlterAction()
		if p.failed() {
			return nil
		}
		ab.Add(action)
		if !p.cur.MatchPunct(",") {
			break
		}
	}
	actions := p.alloc(ast.KindAlterActionList, tableEnd, p.priorEnd())
	if actions == nil {
		return nil
	}
	ab.Attach(actions)

	n := p.alloc(ast.KindAlterTable, start, p.priorEnd())
	if n == nil {
		return nil
	}
	var b ast.Builder
	b.Add(tableNode)
	b.Add(actions)
	b.Attach(n)
	return n
}

// Alter-action kinds, carried in AlterAction.OpKind.
const (
	alterAddColumn = iota
	alterDropColumn
	alterRenameColumn
)

func (p *Parser) parseAlterAction() *ast.Node {
	start := p.cur.Current().Start
	switch {
	case p.cur.Current().Is(token.ADD):
		p.cur.Advance()
		p.cur.MatchKeyword(token.COLUMN)
		colDef := p.parseColumnDef()
		if p.failed() {
			return nil
		}
		n := p.alloc(ast.KindAlterAction, start, p.priorEnd())
		if n == nil {
			return nil
		}
		n.OpKind = alterAddColumn
		var b ast.Builder
		b.Add(colDef)
		b.Attach(n)
		return n

	case p.cur.Current().Is(token.DROP):
		p.cur.Advance()
		p.cur.MatchKeyword(token.COLUMN)
		name, ok := p.expectAnyName()
		if !ok {
			return nil
		}
		id := p.alloc(ast.KindIdentifier, name.Start, name.End)
		if id == nil {
			return nil
		}
		id.Text = name.Lexeme
		n := p.alloc(ast.KindAlterAction, start, name.End)
		if n == nil {
			return nil
		}
		n.OpKind = alterDropColumn
		var b ast.Builder
		b.Add(id)
		b.Attach(n)
		return n

	case p.cur.Current().Is(token.RENAME):
		p.cur.Advance()
		p.cur.MatchKeyword(token.COLUMN)
		from, ok := p.expectAnyName()
		if !ok {
			return nil
		}
		if !p.expectKeyword(token.TO, "TO") {
			return nil
		}
		to, ok := p.expectAnyName()
		if !ok {
			return nil
		}
		fromNode := p.alloc(ast.KindIdentifier, from.Start, from.End)
		if fromNode == nil {
			return nil
		}
		fromNode.Text = from.Lexeme
		toNode := p.alloc(ast.KindIdentifier, to.Start, to.End)
		if toNode == nil {
			return nil
		}
		toNode.Text = to.Lexeme
		n := p.alloc(ast.KindAlterAction, start, to.End)
		if n == nil {
			return nil
		}
		n.OpKind = alterRenameColumn
		var b ast.Builder
		b.Add(fromNode)
		b.Add(toNode)
		b.Attach(n)
		return n

	default:
		p.unexpected("ADD, DROP, or RENAME")
		return nil
	}
}

func (p *Parser) parseTruncate() *ast.Node {
	start := p.cur.Current().Start
	p.cur.Advance() // TRUNCATE
	p.cur.MatchKeyword(token.TABLE)

	var b ast.Builder
	for {
		schema, name, end, ok := p.parseQualifiedName()
		if !ok {
			return nil
		}
		n := p.alloc(ast.KindTableRef, end, end)
		if n == nil {
			return nil
		}
		n.Text = name
		n.Schema = schema
		b.Add(n)
		if !p.cur.MatchPunct(",") {
			break
		}
	}
	n := p.alloc(ast.KindTruncate, start, p.priorEnd())
	if n == nil {
		return nil
	}
	b.Attach(n)
	return n
}
