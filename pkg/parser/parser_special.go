package parser

import (
	"strings"

	"github.com/leapstack-labs/sqltree/pkg/ast"
	"github.com/leapstack-labs/sqltree/pkg/token"
)

// Special expression parsing: CASE, CAST, EXISTS, parenthesized expressions, subqueries.
//
// Grammar:
//
//	case_expr     → CASE [expr] (WHEN expr THEN expr)+ [ELSE expr] END
//	cast_expr     → CAST "(" expr AS type_name ")" | expr "::" type_name
//	exists_expr   → [NOT] EXISTS "(" statement ")"
//	paren_expr    → "(" expression ")" | "(" statement ")"  -- subquery if SELECT/WITH
//	type_name     → identifier+ ["(" literal ("," literal)* ")"]

// parseCaseExpr parses a CASE expression.
func (p *Parser) parseCaseExpr() ast.Expr {
	p.expect(token.CASE)
	caseExpr := &ast.CaseExpr{}

	if !p.check(token.WHEN) {
		caseExpr.Operand = p.parseExpression()
	}

	for p.check(token.WHEN) {
		first := p.pos()
		p.nextToken()
		when := &ast.WhenClause{}
		when.Condition = p.parseExpression()
		p.expect(token.THEN)
		when.Result = p.parseExpression()
		p.finish(when, first)
		caseExpr.Whens = append(caseExpr.Whens, when)
	}
	if len(caseExpr.Whens) == 0 {
		p.addError("expected WHEN in CASE expression")
	}

	if p.match(token.ELSE) {
		caseExpr.Else = p.parseExpression()
	}

	p.expect(token.END)
	return caseExpr
}

// parseCastExpr parses a CAST expression.
func (p *Parser) parseCastExpr() ast.Expr {
	p.expect(token.CAST)
	p.expect(token.LPAREN)

	cast := &ast.CastExpr{}
	cast.Expr = p.parseExpression()

	p.expect(token.AS)
	cast.Type = p.parseTypeName()

	p.expect(token.RPAREN)
	return cast
}

// typeNameSuffixes are the second words of multi-word type names.
var typeNameSuffixes = map[string]bool{"precision": true, "varying": true}

// parseTypeName parses a type name with optional parameters. Multi-word
// names such as DOUBLE PRECISION are joined with a single space. The result
// is interned, so equal types share one *ast.DataType.
func (p *Parser) parseTypeName() *ast.DataType {
	if !p.check(token.IDENT) {
		p.addError("expected type name")
		return nil
	}

	name := p.token.Literal
	p.nextToken()
	for p.check(token.IDENT) && typeNameSuffixes[strings.ToLower(p.token.Literal)] {
		name += " " + p.token.Literal
		p.nextToken()
	}

	var params []string
	if p.match(token.LPAREN) {
		for {
			if p.check(token.NUMBER) || p.check(token.IDENT) || p.check(token.STRING) {
				params = append(params, p.token.Raw)
				p.nextToken()
			} else {
				p.addError("expected type parameter")
				break
			}

			if !p.match(token.COMMA) {
				break
			}
		}
		p.expect(token.RPAREN)
	}

	return p.internType(name, params)
}

// parseParenExpr parses a parenthesized expression or scalar subquery.
func (p *Parser) parseParenExpr() ast.Expr {
	p.expect(token.LPAREN)

	if p.check(token.SELECT) || p.check(token.WITH) {
		subquery := &ast.SubqueryExpr{Select: p.parseStatement()}
		p.expect(token.RPAREN)
		return subquery
	}

	expr := p.parseExpression()
	p.expect(token.RPAREN)
	if expr == nil {
		return nil
	}
	return &ast.ParenExpr{Expr: expr}
}

// parseExistsExpr parses an EXISTS expression.
func (p *Parser) parseExistsExpr(not bool) ast.Expr {
	p.expect(token.EXISTS)

	p.expect(token.LPAREN)
	exists := &ast.ExistsExpr{Not: not, Select: p.parseStatement()}
	p.expect(token.RPAREN)

	return exists
}
