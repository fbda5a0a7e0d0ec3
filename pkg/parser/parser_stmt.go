package parser

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqltree/pkg/ast"
	"github.com/leapstack-labs/sqltree/pkg/dialect"
	"github.com/leapstack-labs/sqltree/pkg/token"
)

// Statement parsing: WITH clause, CTEs, SELECT body, SELECT list, ORDER BY.
//
// Grammar:
//
//	statement     → [WITH cte_list] select_body
//	cte_list      → cte ("," cte)*
//	cte           → identifier ["(" ident_list ")"] AS "(" statement ")"
//	select_list   → select_item ("," select_item)*
//	select_item   → expr [[AS] identifier]
//	order_list    → order_item ("," order_item)*
//	order_item    → expr [ASC|DESC] [NULLS FIRST|LAST]
//	window_defs   → identifier AS window_spec ("," identifier AS window_spec)*
//	fetch_clause  → FETCH (FIRST|NEXT) [expr [PERCENT]] (ROW|ROWS) (ONLY|WITH TIES)
//
// Table names inside a statement that match a CTE in scope are bound to it
// through TableName.CTE. A RECURSIVE CTE is in scope within its own body.

// parseStatement parses a complete SQL statement.
func (p *Parser) parseStatement() *ast.SelectStmt {
	first := p.pos()
	stmt := &ast.SelectStmt{}

	if p.check(token.WITH) {
		scope := p.pushCTEScope()
		defer p.popCTEScope()
		stmt.With = p.parseWithClause(scope)
	}

	stmt.Body = p.parseSelectBody()

	p.finish(stmt, first)
	return stmt
}

// parseWithClause parses a WITH clause, registering each CTE in scope.
func (p *Parser) parseWithClause(scope map[string]*ast.CTE) *ast.WithClause {
	first := p.pos()
	p.expect(token.WITH)
	with := &ast.WithClause{}

	if p.match(token.RECURSIVE) {
		with.Recursive = true
	}

	for {
		cte := p.parseCTE(scope, with.Recursive)
		with.CTEs = append(with.CTEs, cte)

		if !p.match(token.COMMA) {
			break
		}
	}

	p.finish(with, first)
	return with
}

// parseCTE parses a single CTE.
func (p *Parser) parseCTE(scope map[string]*ast.CTE, recursive bool) *ast.CTE {
	first := p.pos()
	cte := &ast.CTE{}

	if !p.check(token.IDENT) {
		p.addError("expected CTE name")
		p.finish(cte, first)
		return cte
	}
	cte.Name = p.token.Literal
	p.nextToken()

	if p.match(token.LPAREN) {
		cte.Columns = p.parseIdentList("column name in CTE column list")
		p.expect(token.RPAREN)
	}

	if recursive {
		scope[strings.ToLower(cte.Name)] = cte
	}

	p.expect(token.AS)
	p.expect(token.LPAREN)
	cte.Select = p.parseStatement()
	p.expect(token.RPAREN)

	scope[strings.ToLower(cte.Name)] = cte
	p.finish(cte, first)
	return cte
}

// parseSelectBody parses a SELECT body with possible set operations.
func (p *Parser) parseSelectBody() *ast.SelectBody {
	first := p.pos()
	body := &ast.SelectBody{}
	body.Left = p.parseSelectCore()

	switch p.token.Type {
	case token.UNION:
		p.nextToken()
		if p.match(token.ALL) {
			body.Op = ast.SetOpUnionAll
		} else {
			body.Op = ast.SetOpUnion
			p.match(token.DISTINCT)
		}
	case token.INTERSECT:
		p.nextToken()
		body.Op = ast.SetOpIntersect
		if p.match(token.ALL) {
			body.Op = ast.SetOpIntersectAll
		}
	case token.EXCEPT:
		p.nextToken()
		body.Op = ast.SetOpExcept
		if p.match(token.ALL) {
			body.Op = ast.SetOpExceptAll
		}
	}

	if body.Op != ast.SetOpNone {
		body.Right = p.parseSelectBody()
	}

	p.finish(body, first)
	return body
}

// parseSelectCore parses a single SELECT clause and its trailing clauses
// in their fixed order.
func (p *Parser) parseSelectCore() *ast.SelectCore {
	first := p.pos()
	core := &ast.SelectCore{}
	if !p.expect(token.SELECT) {
		p.finish(core, first)
		return core
	}

	if p.match(token.DISTINCT) {
		core.Distinct = true
	} else {
		p.match(token.ALL)
	}

	core.Columns = p.parseSelectList()

	if p.match(token.FROM) {
		core.From = p.parseFromClause()
	}
	if p.match(token.WHERE) {
		core.Where = p.parseExpression()
	}
	if p.match(token.GROUP) {
		p.expect(token.BY)
		core.GroupBy = p.parseExpressionList()
	}
	if p.match(token.HAVING) {
		core.Having = p.parseExpression()
	}
	if p.match(token.WINDOW) {
		core.Windows = p.parseWindowDefs()
	}
	p.parseQualify(core)
	if p.match(token.ORDER) {
		p.expect(token.BY)
		core.OrderBy = p.parseOrderByList()
	}
	if p.match(token.LIMIT) {
		core.Limit = p.parseExpression()
	}
	if p.match(token.OFFSET) {
		core.Offset = p.parseExpression()
		if !p.match(token.ROWS) {
			p.match(token.ROW)
		}
	}
	if p.check(token.FETCH) {
		core.Fetch = p.parseFetchClause()
	}

	p.finish(core, first)
	return core
}

// parseQualify handles QUALIFY, which only some dialects lex as a keyword.
func (p *Parser) parseQualify(core *ast.SelectCore) {
	if p.match(token.QUALIFY) {
		core.Qualify = p.parseExpression()
		return
	}
	if p.check(token.IDENT) && clauseWords[strings.ToLower(p.token.Raw)] {
		p.addError(fmt.Sprintf(ErrUnsupportedClause, strings.ToUpper(p.token.Raw), p.dialect.Name))
		p.nextToken()
	}
}

// parseSelectList parses the list of SELECT items.
func (p *Parser) parseSelectList() []*ast.SelectItem {
	var items []*ast.SelectItem

	for {
		items = append(items, p.parseSelectItem())

		if !p.match(token.COMMA) {
			break
		}
	}

	return items
}

// parseSelectItem parses a single SELECT item.
func (p *Parser) parseSelectItem() *ast.SelectItem {
	first := p.pos()
	item := &ast.SelectItem{}

	item.Expr = p.parseExpression()

	if _, isStar := item.Expr.(*ast.StarExpr); !isStar {
		item.Alias = p.parseAlias()
	}

	p.finish(item, first)
	return item
}

// parseAlias parses an optional [AS] identifier.
func (p *Parser) parseAlias() string {
	if p.match(token.AS) {
		if p.check(token.IDENT) {
			alias := p.token.Literal
			p.nextToken()
			return alias
		}
		p.addError("expected alias after AS")
		return ""
	}
	if p.canAlias() {
		alias := p.token.Literal
		p.nextToken()
		return alias
	}
	return ""
}

// parseOrderByList parses a list of ORDER BY items.
func (p *Parser) parseOrderByList() []*ast.OrderByItem {
	var items []*ast.OrderByItem

	for {
		items = append(items, p.parseOrderByItem())

		if !p.match(token.COMMA) {
			break
		}
	}

	return items
}

// parseOrderByItem parses a single ORDER BY item.
func (p *Parser) parseOrderByItem() *ast.OrderByItem {
	first := p.pos()
	item := &ast.OrderByItem{}
	item.Expr = p.parseExpression()

	if p.match(token.DESC) {
		item.Desc = true
	} else {
		p.match(token.ASC)
	}

	if p.match(token.NULLS) {
		switch {
		case p.match(token.FIRST):
			b := true
			item.NullsFirst = &b
		case p.match(token.LAST):
			b := false
			item.NullsFirst = &b
		default:
			p.addError("expected FIRST or LAST after NULLS")
		}
	}

	p.finish(item, first)
	return item
}

// parseWindowDefs parses the named windows of a WINDOW clause.
func (p *Parser) parseWindowDefs() []*ast.WindowDef {
	var defs []*ast.WindowDef
	for {
		first := p.pos()
		def := &ast.WindowDef{}
		if !p.check(token.IDENT) {
			p.addError("expected window name")
			return defs
		}
		def.Name = p.token.Literal
		p.nextToken()
		p.expect(token.AS)
		def.Spec = p.parseWindowSpec()
		p.finish(def, first)
		defs = append(defs, def)

		if !p.match(token.COMMA) {
			return defs
		}
	}
}

// parseFetchClause parses FETCH FIRST/NEXT n ROWS ONLY/WITH TIES.
func (p *Parser) parseFetchClause() *ast.FetchClause {
	first := p.pos()
	p.expect(token.FETCH)
	fetch := &ast.FetchClause{}

	switch {
	case p.match(token.FIRST):
		fetch.First = true
	case p.match(token.NEXT):
	default:
		p.addError("expected FIRST or NEXT after FETCH")
	}

	if !p.check(token.ROW) && !p.check(token.ROWS) {
		fetch.Count = p.parseExpression()
		if p.check(token.IDENT) && strings.EqualFold(p.token.Raw, "percent") {
			fetch.Percent = true
			p.nextToken()
		}
	}

	if !p.match(token.ROWS) {
		p.expect(token.ROW)
	}

	switch {
	case p.match(token.ONLY):
	case p.match(token.WITH):
		p.expect(token.TIES)
		fetch.WithTies = true
	default:
		p.addError("expected ONLY or WITH TIES")
	}

	p.finish(fetch, first)
	return fetch
}

// parseExpressionList parses a comma-separated list of expressions.
func (p *Parser) parseExpressionList() []ast.Expr {
	var exprs []ast.Expr

	for {
		if expr := p.parseExpression(); expr != nil {
			exprs = append(exprs, expr)
		}

		if !p.match(token.COMMA) {
			break
		}
	}

	return exprs
}

// parseIdentList parses identifier ("," identifier)*.
func (p *Parser) parseIdentList(what string) []string {
	var names []string
	for {
		if !p.check(token.IDENT) {
			p.addError("expected " + what)
			return names
		}
		names = append(names, p.token.Literal)
		p.nextToken()
		if !p.match(token.COMMA) {
			return names
		}
	}
}

// functionKind classifies a call by the parser's dialect.
func (p *Parser) functionKind(name string) dialect.FunctionKind {
	return p.dialect.FunctionKind(name)
}
