package parser

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqltree/pkg/ast"
	"github.com/leapstack-labs/sqltree/pkg/token"
)

// Primary expression parsing: literals, column refs, function calls.
//
// Grammar:
//
//	primary       → literal | column_ref | star | func_call | paren_expr | case_expr | cast_expr | exists_expr
//	literal       → NUMBER | STRING | TRUE | FALSE | NULL
//	column_ref    → [table "."] column | [schema "." table "."] column
//	star          → "*" | table "." "*"
//	func_call     → identifier "(" [DISTINCT] [expr_list | "*"] ")" [FILTER "(" WHERE expr ")"] [OVER window_spec]

// parsePrimary parses primary expressions.
func (p *Parser) parsePrimary() ast.Expr {
	first := p.pos()

	var expr ast.Expr
	switch p.token.Type {
	case token.NUMBER:
		expr = &ast.Literal{Type: ast.LiteralNumber, Value: p.token.Literal}
		p.nextToken()

	case token.STRING:
		expr = &ast.Literal{Type: ast.LiteralString, Value: p.token.Literal}
		p.nextToken()

	case token.TRUE:
		expr = &ast.Literal{Type: ast.LiteralBool, Value: "true"}
		p.nextToken()

	case token.FALSE:
		expr = &ast.Literal{Type: ast.LiteralBool, Value: "false"}
		p.nextToken()

	case token.NULL:
		expr = &ast.Literal{Type: ast.LiteralNull, Value: "null"}
		p.nextToken()

	case token.CASE:
		expr = p.parseCaseExpr()

	case token.CAST:
		expr = p.parseCastExpr()

	case token.NOT:
		// Only NOT EXISTS reaches here; prefix NOT is handled by parsePrefixExpr.
		p.nextToken()
		expr = p.parseExistsExpr(true)

	case token.EXISTS:
		expr = p.parseExistsExpr(false)

	case token.IDENT:
		expr = p.parseIdentifierExpr()

	case token.LPAREN:
		expr = p.parseParenExpr()

	case token.STAR:
		p.nextToken()
		expr = &ast.StarExpr{}

	default:
		p.addError(fmt.Sprintf("unexpected %s in expression", p.describe()))
		return nil
	}

	if expr == nil {
		return nil
	}
	p.finish(expr, first)
	return expr
}

// parseIdentifierExpr parses an identifier which could be a column ref or function call.
func (p *Parser) parseIdentifierExpr() ast.Expr {
	name := p.token.Literal
	p.nextToken()

	if p.check(token.LPAREN) {
		return p.parseFuncCall(name)
	}

	if p.check(token.DOT) {
		return p.parseQualifiedColumnRef(name)
	}

	return &ast.ColumnRef{Column: name}
}

// parseQualifiedColumnRef parses a qualified column reference.
func (p *Parser) parseQualifiedColumnRef(firstPart string) ast.Expr {
	parts := []string{firstPart}

	for p.match(token.DOT) {
		if p.check(token.STAR) {
			p.nextToken()
			return &ast.StarExpr{Table: strings.Join(parts, ".")}
		}

		if !p.check(token.IDENT) {
			p.addError(fmt.Sprintf(ErrUnexpectedToken, p.describe(), "identifier"))
			return nil
		}
		parts = append(parts, p.token.Literal)
		p.nextToken()
	}

	ref := &ast.ColumnRef{Column: parts[len(parts)-1]}
	if len(parts) > 1 {
		// schema.table.column keeps the full qualifier.
		ref.Table = strings.Join(parts[:len(parts)-1], ".")
	}
	return ref
}

// parseFuncCall parses a function call.
func (p *Parser) parseFuncCall(name string) ast.Expr {
	fn := &ast.FuncCall{Name: strings.ToUpper(name), Kind: p.functionKind(name)}

	p.expect(token.LPAREN)

	if p.check(token.STAR) {
		fn.Star = true
		p.nextToken()
	} else if !p.check(token.RPAREN) {
		if p.match(token.DISTINCT) {
			fn.Distinct = true
		}
		fn.Args = p.parseExpressionList()
	}

	p.expect(token.RPAREN)

	if p.match(token.FILTER) {
		p.expect(token.LPAREN)
		p.expect(token.WHERE)
		fn.Filter = p.parseExpression()
		p.expect(token.RPAREN)
	}

	if p.match(token.OVER) {
		fn.Window = p.parseWindowSpec()
	}

	return fn
}
