package ast

// Kind discriminates the syntactic construct a Node represents. Child
// layout for each Kind is documented inline; see spec §3 "Node discriminator
// + number of children obey a static schema".
type Kind uint16

const (
	KindInvalid Kind = iota

	// --- Statements -----------------------------------------------------
	KindSelect       // children: [With?] SelectList From? Where? GroupBy? Having? OrderBy? Limit-or-Offset?
	KindSetOperation // children: [With?] Left, Right (both statement nodes), OrderBy?, Limit-or-Offset?; Flags carries UNION/INTERSECT/EXCEPT + ALL
	KindInsert       // children: TableRef, ColumnList?, ValuesOrSelect, OnConflict?, Returning?
	KindUpdate       // children: TableRef, AssignmentList, From?, Where?, Returning?
	KindDelete       // children: TableRef, Using?, Where?, Returning?
	KindValuesStmt   // children: N RowValues (each a ExprList)
	KindCreateTable  // children: TableName, ColumnDefList, TableConstraintList?
	KindCreateIndex  // children: IndexName, TableName, IndexColumnList, Where?
	KindCreateView   // children: ViewName, ColumnList?, SelectStmt
	KindDropTable    // children: N TableName
	KindDropIndex    // children: IndexName
	KindDropView     // children: ViewName
	KindDropTrigger  // children: TriggerName
	KindDropSchema   // children: SchemaName
	KindAlterTable   // children: TableName, AlterActionList
	KindTruncate     // children: N TableName
	KindBegin        // children: none
	KindCommit       // children: none
	KindRollback     // children: SavepointName?
	KindSavepoint    // children: SavepointName (Identifier)
	KindRelease      // children: SavepointName (Identifier)
	KindExplain      // children: Statement
	KindVacuum       // children: TableName?
	KindAnalyze      // children: TableName?
	KindAttach       // children: Expression, Identifier (alias)
	KindDetach       // children: Identifier
	KindPragma       // children: Identifier, Expression?
	KindReindex      // children: Identifier
	KindSet          // children: Identifier, Expression

	// --- Clauses ----------------------------------------------------------
	KindSelectList   // children: N SelectItem
	KindSelectItem   // children: Expression; Aux text = alias
	KindStar         // children: none
	KindQualifiedStar // children: none; Schema = qualifier
	KindFrom         // children: N table-reference expressions (TableRef/Join/Subquery)
	KindJoin         // children: Left, Right, On-or-Using; Flags carries join type
	KindTableRef     // children: none; Text = table name, Schema = schema, Aux = alias
	KindUsing        // children: N Identifier
	KindOnConflict   // children: ConflictTarget?, Action (AssignmentList, or nil = DO NOTHING)
	KindConflictTarget // children: N Identifier
	KindWhere        // children: Expression
	KindGroupBy      // children: N grouping expressions (plain Expression, Rollup, Cube, or GroupingSets)
	KindRollup       // children: N Expression
	KindCube         // children: N Expression
	KindGroupingSets // children: N ExprList (each a parenthesized group)
	KindExprList     // children: N Expression
	KindHaving       // children: Expression
	KindOrderBy      // children: N OrderByItem
	KindOrderByItem  // children: Expression; Flags carries ASC/DESC, NULLS FIRST/LAST
	KindLimit        // children: Expression (count), Expression? (offset, when expressed as LIMIT n OFFSET m)
	KindOffset       // children: Expression
	KindReturning    // children: N SelectItem
	KindWithClause   // children: N CTE
	KindCTE          // children: ColumnList?, Body (select-shaped statement); Text = CTE name
	KindColumnList   // children: N Identifier
	KindAssignmentList // children: N Assignment
	KindAssignment   // children: Identifier, Expression
	KindColumnDefList // children: N ColumnDef
	KindColumnDef    // children: ColumnConstraint*; Text = column name, Aux = type name
	KindColumnConstraint // children: Expression? (DEFAULT/CHECK), RefSpec (REFERENCES), or CollateExpr (COLLATE); Flags identifies which constraint
	KindTableConstraintList // children: N TableConstraint
	KindTableConstraint // children: ColumnList, RefSpec? (PRIMARY KEY/UNIQUE/FOREIGN KEY) or Expression (CHECK); only UNIQUE sets a flag (FlagUnique), a RefSpec child marks FOREIGN KEY
	KindRefSpec      // children: ColumnList?; Text = referenced table name; OpKind packs ON DELETE (low nibble) / ON UPDATE (high nibble) action codes
	KindIndexColumnList // children: N Expression (plain columns or expressions)
	KindAlterActionList // children: N AlterAction
	KindAlterAction  // children: ColumnDef (ADD COLUMN), Identifier (DROP COLUMN), or two Identifiers from, to (RENAME); OpKind identifies which

	// --- Window specs -------------------------------------------------
	KindWindowSpec   // children: PartitionBy?, OrderBy?, FrameClause?
	KindPartitionBy  // children: N Expression
	KindFrameClause  // children: Expression? (start bound), Expression? (end bound); OpKind carries ROWS (0) or RANGE (1)

	// --- Expressions -------------------------------------------------
	KindBinaryExpr   // children: Left, Right; Prec set, OpKind set for symbolic operators (0 for AND, OR, LIKE, ^); Text = operator symbol
	KindUnaryExpr    // children: Operand; Text = operator symbol
	KindIdentifier   // children: none; Text = name; Flags upper byte carries parse-context hint
	KindQualifiedIdentifier // children: none; Text = column, Schema = the qualifier before the dot; only two-part names are parsed, a third part is not consumed
	KindIntLiteral   // children: none; Text = lexeme
	KindFloatLiteral // children: none; Text = lexeme
	KindStringLiteral // children: none; Text = decoded value
	KindBoolLiteral  // children: none; Text = "TRUE"/"FALSE"
	KindNullLiteral  // children: none
	KindParam        // children: none
	KindFunctionCall // children: ArgList, Filter?, Over?; Text = function name; Flags carries DISTINCT/AGGREGATE/WINDOW
	KindArgList      // children: N Expression (or single Star for COUNT(*))
	KindFilterClause // children: Expression (the WHERE predicate)
	KindOver         // children: WindowSpec, or none when referencing a named window (Text = window name)
	KindCase         // children: Operand?, N WhenClause, Else?
	KindWhenClause   // children: Condition, Result
	KindCast         // children: Expression; Aux = target type name
	KindExtract      // children: Expression; Text = field name
	KindBetween      // children: Operand, Low, High; Flags carries NOT
	KindInList       // children: Operand, ExprList; Flags carries NOT
	KindInSubquery   // children: Operand, Subquery; Flags carries NOT
	KindExistsExpr   // children: Subquery; no NOT flag: NOT EXISTS is a UnaryExpr "NOT" over this node
	KindSubquery     // children: SelectStmt
	KindCollateExpr  // children: Expression; Text = collation name

	kindSentinel
)

var kindNames = [...]string{
	KindInvalid:             "Invalid",
	KindSelect:              "Select",
	KindSetOperation:        "SetOperation",
	KindInsert:              "Insert",
	KindUpdate:              "Update",
	KindDelete:              "Delete",
	KindValuesStmt:          "ValuesStmt",
	KindCreateTable:         "CreateTable",
	KindCreateIndex:         "CreateIndex",
	KindCreateView:          "CreateView",
	KindDropTable:           "DropTable",
	KindDropIndex:           "DropIndex",
	KindDropView:            "DropView",
	KindDropTrigger:         "DropTrigger",
	KindDropSchema:          "DropSchema",
	KindAlterTable:          "AlterTable",
	KindTruncate:            "Truncate",
	KindBegin:               "Begin",
	KindCommit:              "Commit",
	KindRollback:            "Rollback",
	KindSavepoint:           "Savepoint",
	KindRelease:             "Release",
	KindExplain:             "Explain",
	KindVacuum:              "Vacuum",
	KindAnalyze:             "Analyze",
	KindAttach:              "Attach",
	KindDetach:              "Detach",
	KindPragma:              "Pragma",
	KindReindex:             "Reindex",
	KindSet:                 "Set",
	KindSelectList:          "SelectList",
	KindSelectItem:          "SelectItem",
	KindStar:                "Star",
	KindQualifiedStar:       "QualifiedStar",
	KindFrom:                "From",
	KindJoin:                "Join",
	KindTableRef:            "TableRef",
	KindUsing:               "Using",
	KindOnConflict:          "OnConflict",
	KindConflictTarget:      "ConflictTarget",
	KindWhere:               "Where",
	KindGroupBy:             "GroupBy",
	KindRollup:              "Rollup",
	KindCube:                "Cube",
	KindGroupingSets:        "GroupingSets",
	KindExprList:            "ExprList",
	KindHaving:              "Having",
	KindOrderBy:             "OrderBy",
	KindOrderByItem:         "OrderByItem",
	KindLimit:               "Limit",
	KindOffset:              "Offset",
	KindReturning:           "Returning",
	KindWithClause:          "WithClause",
	KindCTE:                 "CTE",
	KindColumnList:          "ColumnList",
	KindAssignmentList:      "AssignmentList",
	KindAssignment:          "Assignment",
	KindColumnDefList:       "ColumnDefList",
	KindColumnDef:           "ColumnDef",
	KindColumnConstraint:    "ColumnConstraint",
	KindTableConstraintList: "TableConstraintList",
	KindTableConstraint:     "TableConstraint",
	KindRefSpec:             "RefSpec",
	KindIndexColumnList:     "IndexColumnList",
	KindAlterActionList:     "AlterActionList",
	KindAlterAction:         "AlterAction",
	KindWindowSpec:          "WindowSpec",
	KindPartitionBy:         "PartitionBy",
	KindFrameClause:         "FrameClause",
	KindBinaryExpr:          "BinaryExpr",
	KindUnaryExpr:           "UnaryExpr",
	KindIdentifier:          "Identifier",
	KindQualifiedIdentifier: "QualifiedIdentifier",
	KindIntLiteral:          "IntLiteral",
	KindFloatLiteral:        "FloatLiteral",
	KindStringLiteral:       "StringLiteral",
	KindBoolLiteral:         "BoolLiteral",
	KindNullLiteral:         "NullLiteral",
	KindParam:               "Param",
	KindFunctionCall:        "FunctionCall",
	KindArgList:             "ArgList",
	KindFilterClause:        "FilterClause",
	KindOver:                "Over",
	KindCase:                "Case",
	KindWhenClause:          "WhenClause",
	KindCast:                "Cast",
	KindExtract:             "Extract",
	KindBetween:             "Between",
	KindInList:              "InList",
	KindInSubquery:          "InSubquery",
	KindExistsExpr:          "ExistsExpr",
	KindSubquery:            "Subquery",
	KindCollateExpr:         "CollateExpr",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Unknown"
}
