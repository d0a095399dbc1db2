package parser

import "github.com/ha1tch/sqlcore/ast"

// validateQuery checks the grammar-level invariants spec §4.6 calls out
// explicitly (HAVING without GROUP BY or an aggregate, an empty select
// list, mismatched set-operation arities) that a purely structural parse
// cannot reject on its own. It records an InvalidConstruct Failure and
// leaves the tree as already built; the tree is discarded by the caller
// regardless; a non-nil p.failure afterward is the only signal that
// matters.
func (p *Parser) validateQuery(n *ast.Node) {
	switch n.Kind {
	case ast.KindSelect:
		p.validateSelect(n)
	case ast.KindSetOperation:
		p.validateSetOperation(n)
	}
}

func (p *Parser) validateSelect(n *ast.Node) {
	var selectList, groupBy, having *ast.Node
	for _, c := range ast.Children(n) {
		switch c.Kind {
		case ast.KindSelectList:
			selectList = c
		case ast.KindGroupBy:
			groupBy = c
		case ast.KindHaving:
			having = c
		}
	}

	if selectList != nil && selectList.ChildCount == 0 {
		p.invalid(selectList.Start, "select list must name at least one item")
		return
	}

	if having != nil && groupBy == nil {
		hasAggregate := containsAggregate(having) || containsAggregate(selectList)
		if !hasAggregate {
			p.invalid(having.Start, "HAVING without GROUP BY requires an aggregate function")
			return
		}
	}
}

func containsAggregate(n *ast.Node) bool {
	if n == nil {
		return false
	}
	if n.Kind == ast.KindFunctionCall && n.Flags&ast.FlagIsAggregate != 0 {
		return true
	}
	if n.Kind == ast.KindFunctionCall && isAggregateName(n.Text) {
		return true
	}
	for _, c := range ast.Children(n) {
		if containsAggregate(c) {
			return true
		}
	}
	return false
}

var aggregateNames = map[string]bool{
	"count": true, "sum": true, "avg": true, "min": true, "max": true,
}

func isAggregateName(name string) bool {
	return aggregateNames[toLower(name)]
}

func toLower(s string) string {
	out := []byte(s)
	for i, c := range out {
		if c >= 'A' && c <= 'Z' {
			out[i] = c + ('a' - 'A')
		}
	}
	return string(out)
}

// validateSetOperation checks that both arms of a UNION/INTERSECT/EXCEPT
// project the same number of columns (spec §8 Testable Property:
// "set-operation arity mismatch is rejected").
func (p *Parser) validateSetOperation(n *ast.Node) {
	left := n.FirstChild
	if left != nil && left.Kind == ast.KindWithClause {
		left = left.NextSibling
	}
	if left == nil {
		return
	}
	right := left.NextSibling
	if right == nil {
		return
	}
	lc, lok := projectionArity(left)
	rc, rok := projectionArity(right)
	if lok && rok && lc != rc {
		p.invalid(n.Start, "set operation arms project %d and %d columns respectively", lc, rc)
	}
}

// projectionArity reports how many columns a query expression's outermost
// SELECT list (or VALUES row) projects, or ok=false when it cannot be
// determined structurally (e.g. a SELECT * whose arity depends on schema
// the parser doesn't have).
func projectionArity(n *ast.Node) (int, bool) {
	switch n.Kind {
	case ast.KindSelect:
		for _, c := range ast.Children(n) {
			if c.Kind == ast.KindSelectList {
				for _, item := range ast.Children(c) {
					if item.FirstChild != nil && item.FirstChild.Kind == ast.KindStar {
						return 0, false
					}
				}
				return int(c.ChildCount), true
			}
		}
	case ast.KindValuesStmt:
		if n.FirstChild != nil {
			return int(n.FirstChild.ChildCount), true
		}
	case ast.KindSetOperation:
		return projectionArity(n.FirstChild)
	}
	return 0, false
}
