package parser_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/sqlcore/ast"
	"github.com/ha1tch/sqlcore/config"
	"github.com/ha1tch/sqlcore/lexer"
	"github.com/ha1tch/sqlcore/parser"
)

func parseOne(t *testing.T, sql string, opts ...config.Option) *ast.Node {
	t.Helper()
	p := parser.New(lexer.New(sql), sql, opts...)
	res := p.ParseStatement()
	require.Nil(t, res.Failure, "unexpected failure: %v", res.Failure)
	require.NotNil(t, res.Node)
	return res.Node
}

func parseFails(t *testing.T, sql string, opts ...config.Option) *parser.Failure {
	t.Helper()
	p := parser.New(lexer.New(sql), sql, opts...)
	res := p.ParseStatement()
	require.NotNil(t, res.Failure, "expected a failure, got a tree")
	require.Nil(t, res.Node)
	return res.Failure
}

func TestParseStatement_SimpleSelect(t *testing.T) {
	n := parseOne(t, "SELECT a, b FROM t WHERE a = 1")
	assert.Equal(t, ast.KindSelect, n.Kind)
	assert.Equal(t,
		`(Select (SelectList (SelectItem (Identifier a)) (SelectItem (Identifier b))) (From (TableRef t)) (Where (BinaryExpr = (Identifier a) (IntLiteral 1))))`,
		ast.DumpSExpr(n))
}

func TestParseStatement_PrecedenceAndAssociativity(t *testing.T) {
	n := parseOne(t, "SELECT 1 + 2 * 3")
	item := n.FirstChild.FirstChild // SelectList -> SelectItem
	expr := item.FirstChild
	assert.Equal(t, "+", expr.Text)
	assert.Equal(t, "*", expr.FirstChild.NextSibling.Text)

	n2 := parseOne(t, "SELECT 10 - 2 - 3")
	expr2 := n2.FirstChild.FirstChild.FirstChild
	assert.Equal(t, "-", expr2.Text)
	assert.Equal(t, ast.KindBinaryExpr, expr2.FirstChild.Kind, "left-associative: left child is itself a BinaryExpr")

	// Structural shape, checked with cmp.Diff rather than field-by-field
	// spelunking, pins down precedence and associativity together.
	if diff := cmp.Diff(
		"(Select (SelectList (SelectItem (BinaryExpr + (IntLiteral 1) (BinaryExpr * (IntLiteral 2) (IntLiteral 3))))))",
		ast.DumpSExpr(n),
	); diff != "" {
		t.Errorf("precedence shape mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(
		"(Select (SelectList (SelectItem (BinaryExpr - (BinaryExpr - (IntLiteral 10) (IntLiteral 2)) (IntLiteral 3)))))",
		ast.DumpSExpr(n2),
	); diff != "" {
		t.Errorf("associativity shape mismatch (-want +got):\n%s", diff)
	}
}

func TestParseStatement_LogicalPrecedence(t *testing.T) {
	n := parseOne(t, "SELECT * FROM t WHERE a = 1 OR b = 2 AND c = 3")
	where := n.FirstChild.NextSibling.NextSibling
	require.Equal(t, ast.KindWhere, where.Kind)
	top := where.FirstChild
	assert.Equal(t, "OR", top.Text, "AND binds tighter than OR")
}

func TestParseStatement_BetweenAndNotBetween(t *testing.T) {
	n := parseOne(t, "SELECT * FROM t WHERE a BETWEEN 1 AND 10")
	where := n.FirstChild.NextSibling.NextSibling
	assert.Equal(t, ast.KindBetween, where.FirstChild.Kind)

	n2 := parseOne(t, "SELECT * FROM t WHERE a NOT BETWEEN 1 AND 10")
	where2 := n2.FirstChild.NextSibling.NextSibling
	assert.NotZero(t, where2.FirstChild.Flags&ast.FlagNot)
}

func TestParseStatement_InListAndInSubquery(t *testing.T) {
	n := parseOne(t, "SELECT * FROM t WHERE a IN (1, 2, 3)")
	where := n.FirstChild.NextSibling.NextSibling
	assert.Equal(t, ast.KindInList, where.FirstChild.Kind)

	n2 := parseOne(t, "SELECT * FROM t WHERE a IN (SELECT id FROM u)")
	where2 := n2.FirstChild.NextSibling.NextSibling
	assert.Equal(t, ast.KindInSubquery, where2.FirstChild.Kind)
}

func TestParseStatement_JoinChain(t *testing.T) {
	n := parseOne(t, "SELECT * FROM a JOIN b ON a.id = b.id LEFT JOIN c ON b.id = c.id")
	from := n.FirstChild.NextSibling
	require.Equal(t, ast.KindFrom, from.Kind)
	outer := from.FirstChild
	require.Equal(t, ast.KindJoin, outer.Kind)
	assert.NotZero(t, outer.Flags&ast.FlagLeftJoin)
	inner := outer.FirstChild
	assert.Equal(t, ast.KindJoin, inner.Kind)
	assert.NotZero(t, inner.Flags&ast.FlagInnerJoin)
}

func TestParseStatement_GroupByRollupCubeGroupingSets(t *testing.T) {
	n := parseOne(t, "SELECT a, COUNT(*) FROM t GROUP BY ROLLUP(a, b)")
	groupBy := findChild(n, ast.KindGroupBy)
	require.NotNil(t, groupBy)
	assert.Equal(t, ast.KindRollup, groupBy.FirstChild.Kind)

	n2 := parseOne(t, "SELECT a FROM t GROUP BY CUBE(a, b)")
	groupBy2 := findChild(n2, ast.KindGroupBy)
	assert.Equal(t, ast.KindCube, groupBy2.FirstChild.Kind)

	n3 := parseOne(t, "SELECT a FROM t GROUP BY GROUPING SETS ((a), (b), ())")
	groupBy3 := findChild(n3, ast.KindGroupBy)
	assert.Equal(t, ast.KindGroupingSets, groupBy3.FirstChild.Kind)
	assert.Equal(t, uint16(3), groupBy3.FirstChild.ChildCount)
}

func TestParseStatement_WindowFunctionWithFilterAndOver(t *testing.T) {
	n := parseOne(t, "SELECT SUM(x) FILTER (WHERE x > 0) OVER (PARTITION BY y ORDER BY z) FROM t")
	item := n.FirstChild.FirstChild
	fn := item.FirstChild
	require.Equal(t, ast.KindFunctionCall, fn.Kind)
	assert.NotZero(t, fn.Flags&ast.FlagIsAggregate)
	assert.NotZero(t, fn.Flags&ast.FlagHasWindow)
	assert.NotNil(t, findChild(fn, ast.KindFilterClause))
	assert.NotNil(t, findChild(fn, ast.KindOver))
}

func TestParseStatement_CaseExpression(t *testing.T) {
	n := parseOne(t, "SELECT CASE WHEN a = 1 THEN 'x' WHEN a = 2 THEN 'y' ELSE 'z' END FROM t")
	expr := n.FirstChild.FirstChild.FirstChild
	assert.Equal(t, ast.KindCase, expr.Kind)
	assert.Equal(t, uint16(3), expr.ChildCount) // 2 WhenClause + Else (no operand)
}

func TestParseStatement_CastTwoSyntaxes(t *testing.T) {
	n := parseOne(t, "SELECT CAST(a AS INTEGER) FROM t")
	expr := n.FirstChild.FirstChild.FirstChild
	assert.Equal(t, ast.KindCast, expr.Kind)
	assert.Equal(t, "INTEGER", expr.Aux)

	n2 := parseOne(t, "SELECT a::NUMERIC(10, 2) FROM t")
	expr2 := n2.FirstChild.FirstChild.FirstChild
	assert.Equal(t, ast.KindCast, expr2.Kind)
	assert.Equal(t, "NUMERIC(10, 2)", expr2.Aux)
}

func TestParseStatement_SetOperationUnion(t *testing.T) {
	n := parseOne(t, "SELECT a FROM t UNION ALL SELECT a FROM u")
	assert.Equal(t, ast.KindSetOperation, n.Kind)
	assert.NotZero(t, n.Flags&ast.FlagUnion)
	assert.NotZero(t, n.Flags&ast.FlagAll)
}

func TestParseStatement_RecursiveCTE(t *testing.T) {
	n := parseOne(t, `WITH RECURSIVE r(n) AS (SELECT 1 UNION ALL SELECT n + 1 FROM r) SELECT * FROM r`)
	with := findChild(n, ast.KindWithClause)
	require.NotNil(t, with)
	assert.NotZero(t, with.Flags&ast.FlagRecursive)
	cte := with.FirstChild
	assert.Equal(t, "r", cte.Text)
}

func TestParseStatement_InsertOnConflictAndReturning(t *testing.T) {
	n := parseOne(t, `INSERT INTO t (a, b) VALUES (1, 2) ON CONFLICT (a) DO UPDATE SET b = 3 RETURNING id`)
	assert.Equal(t, ast.KindInsert, n.Kind)
	assert.NotNil(t, findChild(n, ast.KindOnConflict))
	assert.NotNil(t, findChild(n, ast.KindReturning))
}

func TestParseStatement_UpdateDelete(t *testing.T) {
	n := parseOne(t, "UPDATE t SET a = 1, b = 2 WHERE id = 5")
	assert.Equal(t, ast.KindUpdate, n.Kind)

	n2 := parseOne(t, "DELETE FROM t WHERE id = 5")
	assert.Equal(t, ast.KindDelete, n2.Kind)
}

func TestParseStatement_CreateTableWithConstraints(t *testing.T) {
	n := parseOne(t, `CREATE TABLE IF NOT EXISTS t (
		id INTEGER PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		owner_id INTEGER REFERENCES users(id),
		PRIMARY KEY (id)
	)`)
	assert.Equal(t, ast.KindCreateTable, n.Kind)
	assert.NotZero(t, n.Flags&ast.FlagIfNotExists)
}

func TestParseStatement_AlterTableActions(t *testing.T) {
	n := parseOne(t, "ALTER TABLE t ADD COLUMN x INTEGER, DROP COLUMN y, RENAME COLUMN a TO b")
	assert.Equal(t, ast.KindAlterTable, n.Kind)
	actions := findChild(n, ast.KindAlterActionList)
	require.NotNil(t, actions)
	assert.Equal(t, uint16(3), actions.ChildCount)
}

func TestParseStatement_TransactionAndUtility(t *testing.T) {
	for _, sql := range []string{"BEGIN", "COMMIT", "ROLLBACK", "SAVEPOINT s1", "RELEASE s1", "VACUUM", "EXPLAIN SELECT 1"} {
		p := parser.New(lexer.New(sql), sql)
		res := p.ParseStatement()
		require.Nil(t, res.Failure, "sql=%q: %v", sql, res.Failure)
	}
}

func TestParseStatement_DeterministicAcrossRuns(t *testing.T) {
	sql := "SELECT a, b FROM t WHERE a = 1 ORDER BY b DESC LIMIT 10"
	n1 := parseOne(t, sql)
	n2 := parseOne(t, sql)
	_, h1 := ast.Digest(n1)
	_, h2 := ast.Digest(n2)
	assert.Equal(t, h1, h2)
}

func TestParseStatement_SourceRangesAreMonotonicWithinSiblings(t *testing.T) {
	n := parseOne(t, "SELECT a, b, c FROM t")
	list := n.FirstChild
	prev := list.FirstChild
	for c := prev.NextSibling; c != nil; c = c.NextSibling {
		assert.LessOrEqual(t, prev.End, c.Start)
		prev = c
	}
}

func TestParseStatement_ZeroCopyTextAliasesSource(t *testing.T) {
	sql := "SELECT name FROM users"
	n := parseOne(t, sql)
	id := n.FirstChild.FirstChild.FirstChild
	assert.Equal(t, "name", id.Text)
	assert.Equal(t, sql[id.Start:id.End], id.Text)
}

func TestParseStatement_UnexpectedTokenFailure(t *testing.T) {
	f := parseFails(t, "SELECT FROM")
	assert.Equal(t, parser.UnexpectedToken, f.Kind)
}

func TestParseStatement_UnexpectedEOFFailure(t *testing.T) {
	f := parseFails(t, "SELECT a FROM t WHERE")
	assert.Equal(t, parser.UnexpectedEOF, f.Kind)
}

func TestParseStatement_InvalidConstruct_HavingWithoutGroupByOrAggregate(t *testing.T) {
	f := parseFails(t, "SELECT a FROM t HAVING b")
	assert.Equal(t, parser.InvalidConstruct, f.Kind)
}

func TestParseStatement_SetOperationArityMismatchRejected(t *testing.T) {
	f := parseFails(t, "SELECT a, b FROM t UNION SELECT a FROM u")
	assert.Equal(t, parser.InvalidConstruct, f.Kind)
}

func TestParseStatement_DepthExceeded(t *testing.T) {
	deep := "SELECT "
	for i := 0; i < 50; i++ {
		deep += "("
	}
	deep += "1"
	for i := 0; i < 50; i++ {
		deep += ")"
	}
	f := parseFails(t, deep, config.WithMaxDepth(10))
	assert.Equal(t, parser.DepthExceeded, f.Kind)
}

func TestParseScript_RecoversAfterFailure(t *testing.T) {
	script := "SELECT 1; SELECT FROM; SELECT 2;"
	p := parser.New(lexer.New(script), script)
	out := p.ParseScript()
	assert.Len(t, out.Statements, 2)
	assert.Len(t, out.Failures, 1)
}

func TestParseScript_StopsAtMaxErrors(t *testing.T) {
	script := "SELECT FROM; SELECT FROM; SELECT 1;"
	p := parser.New(lexer.New(script), script, config.WithMaxErrors(1))
	out := p.ParseScript()
	assert.Len(t, out.Failures, 1)
	assert.Empty(t, out.Statements)
}

func findChild(n *ast.Node, kind ast.Kind) *ast.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Kind == kind {
			return c
		}
	}
	return nil
}

func TestParseStatement_ANSIDialectRejectsChainedComparison(t *testing.T) {
	f := parseFails(t, "SELECT a FROM t WHERE a = b = c")
	assert.Equal(t, parser.SyntaxError, f.Kind)
}

func TestParseStatement_ExtendedDialectAllowsChainedComparison(t *testing.T) {
	n := parseOne(t, "SELECT a FROM t WHERE a = b = c", config.WithDialect(config.DialectExtended))
	where := findChild(n, ast.KindWhere)
	require.NotNil(t, where)
	if diff := cmp.Diff(
		`(Where (BinaryExpr = (BinaryExpr = (Identifier a) (Identifier b)) (Identifier c)))`,
		ast.DumpSExpr(where),
	); diff != "" {
		t.Errorf("chained comparison shape mismatch (-want +got):\n%s", diff)
	}
}

func TestParseStatement_ANSIDialectDoesNotRecognizeCaret(t *testing.T) {
	f := parseFails(t, "SELECT (a ^ b) FROM t")
	assert.Equal(t, parser.UnexpectedToken, f.Kind)
}

func TestParseStatement_ExtendedDialectCaretIsRightAssociativeExponent(t *testing.T) {
	n := parseOne(t, "SELECT 2 ^ 3 ^ 2", config.WithDialect(config.DialectExtended))
	if diff := cmp.Diff(
		"(Select (SelectList (SelectItem (BinaryExpr ^ (IntLiteral 2) (BinaryExpr ^ (IntLiteral 3) (IntLiteral 2))))))",
		ast.DumpSExpr(n),
	); diff != "" {
		t.Errorf("exponent associativity shape mismatch (-want +got):\n%s", diff)
	}
}

func TestParseStatement_SetStatement(t *testing.T) {
	n := parseOne(t, "SET search_path = public")
	assert.Equal(t, ast.KindSet, n.Kind)
	assert.Equal(t, "search_path", n.Text)

	n2 := parseOne(t, "SET search_path TO public")
	assert.Equal(t, ast.KindSet, n2.Kind)
}

func TestParseStatement_ColumnReferencesWithActionsAndCollate(t *testing.T) {
	n := parseOne(t, `CREATE TABLE t (
		a INTEGER REFERENCES b(id) ON DELETE CASCADE ON UPDATE SET NULL,
		name TEXT COLLATE nocase
	)`)
	assert.Equal(t, ast.KindCreateTable, n.Kind)
	cols := findChild(n, ast.KindColumnDefList)
	require.NotNil(t, cols)
	require.NotNil(t, cols.FirstChild)

	refCol := cols.FirstChild
	refConstraint := findChild(refCol, ast.KindColumnConstraint)
	require.NotNil(t, refConstraint)
	refSpec := findChild(refConstraint, ast.KindRefSpec)
	require.NotNil(t, refSpec)
	assert.Equal(t, "b", refSpec.Text)
	// OpKind packs ON DELETE (low nibble) / ON UPDATE (high nibble) action
	// codes; CASCADE=1, SET NULL=3 (see parser/ddl.go's refAction enum).
	assert.Equal(t, uint8(1|3<<4), refSpec.OpKind)

	collateCol := cols.FirstChild.NextSibling
	var collateConstraint *ast.Node
	for c := collateCol.FirstChild; c != nil; c = c.NextSibling {
		if c.Kind == ast.KindColumnConstraint && c.FirstChild != nil && c.FirstChild.Kind == ast.KindCollateExpr {
			collateConstraint = c
		}
	}
	require.NotNil(t, collateConstraint)
	assert.Equal(t, "nocase", collateConstraint.FirstChild.Text)
}

func TestParseStatement_HavingAcceptsAggregateFromSelectList(t *testing.T) {
	n := parseOne(t, "SELECT COUNT(*) FROM t HAVING 1 = 1")
	assert.Equal(t, ast.KindSelect, n.Kind)
}
