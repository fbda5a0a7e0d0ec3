package parser

import (
	"github.com/leapstack-labs/sqltree/pkg/ast"
	"github.com/leapstack-labs/sqltree/pkg/token"
)

// Expression precedence parsing using a Pratt parser.
//
// Precedence levels:
//
//	precedenceOr         = 1
//	precedenceAnd        = 2
//	precedenceNot        = 3
//	precedenceComparison = 4  (=, !=, <, >, <=, >=, IS, IN, BETWEEN, LIKE, ILIKE)
//	precedenceAddition   = 5  (+, -, ||)
//	precedenceMultiply   = 6  (*, /, %)
//	precedenceUnary      = 7  (-, +)
//	precedencePostfix    = 8  (::)
//
// ILIKE and :: only reach the parser when the dialect enables them; the
// lexer demotes or rejects them otherwise.
const (
	precedenceNone = iota
	precedenceOr
	precedenceAnd
	precedenceNot
	precedenceComparison
	precedenceAddition
	precedenceMultiply
	precedenceUnary
	precedencePostfix
)

// parseExpression parses an expression using precedence climbing.
func (p *Parser) parseExpression() ast.Expr {
	return p.parseExpressionWithPrecedence(precedenceNone + 1)
}

// parseExpressionWithPrecedence implements Pratt parsing.
func (p *Parser) parseExpressionWithPrecedence(minPrecedence int) ast.Expr {
	left := p.parsePrefixExpr()
	if left == nil {
		return nil
	}

	for {
		prec := infixPrecedence(p.token.Type)
		if prec < minPrecedence || prec == precedenceNone {
			break
		}

		next := p.parseInfixExpr(left, prec)
		if next == nil {
			break
		}
		left = next
	}

	return left
}

// parsePrefixExpr parses prefix expressions (unary operators and primary expressions).
func (p *Parser) parsePrefixExpr() ast.Expr {
	first := p.pos()
	var op token.TokenType
	var prec int

	switch p.token.Type {
	case token.NOT:
		if p.checkPeek(token.EXISTS) {
			return p.parsePrimary()
		}
		op, prec = token.NOT, precedenceNot
	case token.MINUS:
		op, prec = token.MINUS, precedenceUnary
	case token.PLUS:
		op, prec = token.PLUS, precedenceUnary
	default:
		return p.parsePrimary()
	}

	p.nextToken()
	operand := p.parseExpressionWithPrecedence(prec)
	if operand == nil {
		return nil
	}
	unary := &ast.UnaryExpr{Op: op, Expr: operand}
	p.finish(unary, first)
	return unary
}

// infixPrecedence returns the precedence of t as an infix operator, or
// precedenceNone.
func infixPrecedence(t token.TokenType) int {
	switch t {
	case token.OR:
		return precedenceOr
	case token.AND:
		return precedenceAnd
	case token.EQ, token.NE, token.LT, token.GT, token.LE, token.GE,
		token.IS, token.IN, token.BETWEEN, token.LIKE, token.ILIKE, token.NOT:
		return precedenceComparison
	case token.PLUS, token.MINUS, token.DPIPE:
		return precedenceAddition
	case token.STAR, token.SLASH, token.PERCENT:
		return precedenceMultiply
	case token.DCOLON:
		return precedencePostfix
	default:
		return precedenceNone
	}
}

// parseInfixExpr parses an infix expression given the left operand and current precedence.
func (p *Parser) parseInfixExpr(left ast.Expr, prec int) ast.Expr {
	first := left.Info().First

	var expr ast.Expr
	switch p.token.Type {
	case token.NOT:
		expr = p.parseNotInfixExpr(left)
	case token.IS:
		expr = p.parseIsExpr(left)
	case token.IN:
		p.nextToken()
		expr = p.parseInExpr(left, false)
	case token.BETWEEN:
		p.nextToken()
		expr = p.parseBetweenExpr(left, false)
	case token.LIKE, token.ILIKE:
		op := p.token.Type
		p.nextToken()
		expr = p.parseLikeExpr(left, false, op)
	case token.DCOLON:
		p.nextToken()
		expr = &ast.CastExpr{Expr: left, Type: p.parseTypeName(), Operator: true}
	default:
		op := p.token.Type
		p.nextToken()
		// Right operand binds tighter: left-associative.
		right := p.parseExpressionWithPrecedence(prec + 1)
		if right == nil {
			return nil
		}
		expr = &ast.BinaryExpr{Left: left, Op: op, Right: right}
	}

	if expr == nil {
		return nil
	}
	p.finish(expr, first)
	return expr
}

// parseNotInfixExpr handles NOT as an infix modifier (NOT IN, NOT BETWEEN, NOT LIKE).
func (p *Parser) parseNotInfixExpr(left ast.Expr) ast.Expr {
	p.nextToken() // consume NOT

	switch p.token.Type {
	case token.IN:
		p.nextToken()
		return p.parseInExpr(left, true)

	case token.BETWEEN:
		p.nextToken()
		return p.parseBetweenExpr(left, true)

	case token.LIKE, token.ILIKE:
		op := p.token.Type
		p.nextToken()
		return p.parseLikeExpr(left, true, op)

	default:
		p.addError("expected IN, BETWEEN, LIKE, or ILIKE after NOT")
		return nil
	}
}

// parseIsExpr parses IS [NOT] NULL / IS [NOT] TRUE / IS [NOT] FALSE.
func (p *Parser) parseIsExpr(left ast.Expr) ast.Expr {
	p.nextToken() // consume IS

	isNot := p.match(token.NOT)

	switch p.token.Type {
	case token.NULL:
		p.nextToken()
		return &ast.IsNullExpr{Expr: left, Not: isNot}

	case token.TRUE:
		p.nextToken()
		return &ast.IsBoolExpr{Expr: left, Not: isNot, Value: true}

	case token.FALSE:
		p.nextToken()
		return &ast.IsBoolExpr{Expr: left, Not: isNot, Value: false}

	default:
		p.addError("expected NULL, TRUE, or FALSE after IS")
		return nil
	}
}

// parseInExpr parses an IN expression.
func (p *Parser) parseInExpr(left ast.Expr, not bool) ast.Expr {
	p.expect(token.LPAREN)
	in := &ast.InExpr{Expr: left, Not: not}

	if p.check(token.SELECT) || p.check(token.WITH) {
		in.Query = p.parseStatement()
	} else {
		in.Values = p.parseExpressionList()
	}

	p.expect(token.RPAREN)
	return in
}

// parseBetweenExpr parses a BETWEEN expression.
func (p *Parser) parseBetweenExpr(left ast.Expr, not bool) ast.Expr {
	between := &ast.BetweenExpr{Expr: left, Not: not}
	// Bounds parse at addition precedence so the AND is not captured.
	between.Low = p.parseExpressionWithPrecedence(precedenceAddition)
	p.expect(token.AND)
	between.High = p.parseExpressionWithPrecedence(precedenceAddition)
	if between.Low == nil || between.High == nil {
		return nil
	}
	return between
}

// parseLikeExpr parses a LIKE/ILIKE expression.
func (p *Parser) parseLikeExpr(left ast.Expr, not bool, op token.TokenType) ast.Expr {
	like := &ast.LikeExpr{Expr: left, Not: not, Op: op}
	like.Pattern = p.parseExpressionWithPrecedence(precedenceAddition)
	if like.Pattern == nil {
		return nil
	}
	return like
}
