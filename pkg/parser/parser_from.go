package parser

import (
	"github.com/leapstack-labs/sqltree/pkg/ast"
	"github.com/leapstack-labs/sqltree/pkg/token"
)

// FROM clause parsing: table references, derived tables, lateral joins, JOINs.
//
// Grammar:
//
//	from_clause   → table_ref (join)*
//	table_ref     → table_name | derived_table | lateral_table
//	table_name    → [catalog "."] [schema "."] identifier [[AS] identifier]
//	derived_table → "(" statement ")" [AS] identifier
//	lateral_table → LATERAL "(" statement ")" [AS] identifier
//	join          → [NATURAL] join_type JOIN table_ref [ON expr | USING "(" ident_list ")"] | "," table_ref
//	join_type     → [INNER] | LEFT [OUTER] | RIGHT [OUTER] | FULL [OUTER] | CROSS

// joinKeywords maps join-introducing keywords to their join type.
var joinKeywords = map[token.TokenType]ast.JoinType{
	token.INNER: ast.JoinInner,
	token.LEFT:  ast.JoinLeft,
	token.RIGHT: ast.JoinRight,
	token.FULL:  ast.JoinFull,
	token.CROSS: ast.JoinCross,
}

// parseFromClause parses the FROM clause. The FROM keyword has been consumed.
func (p *Parser) parseFromClause() *ast.FromClause {
	first := p.last
	from := &ast.FromClause{}
	from.Source = p.parseTableRef()

	for {
		join := p.parseJoin()
		if join == nil {
			break
		}
		from.Joins = append(from.Joins, join)
	}

	p.finish(from, first)
	return from
}

// parseTableRef parses a table reference.
func (p *Parser) parseTableRef() ast.TableRef {
	first := p.pos()

	var ref ast.TableRef
	switch {
	case p.match(token.LATERAL):
		lateral := &ast.LateralTable{}
		lateral.Select, lateral.Alias = p.parseSubquerySource()
		ref = lateral
	case p.check(token.LPAREN):
		derived := &ast.DerivedTable{}
		derived.Select, derived.Alias = p.parseSubquerySource()
		ref = derived
	default:
		ref = p.parseTableName()
	}

	p.finish(ref, first)
	return ref
}

// parseTableName parses a table name with optional schema/catalog and binds
// unqualified names to a CTE in scope.
func (p *Parser) parseTableName() *ast.TableName {
	table := &ast.TableName{}

	if !p.check(token.IDENT) {
		p.addError("expected table name")
		return table
	}

	parts := []string{p.token.Literal}
	p.nextToken()

	for p.match(token.DOT) {
		if !p.check(token.IDENT) {
			p.addError("expected identifier after '.'")
			break
		}
		parts = append(parts, p.token.Literal)
		p.nextToken()
	}

	switch len(parts) {
	case 1:
		table.Name = parts[0]
		table.CTE = p.resolveCTE(table.Name)
	case 2:
		table.Schema = parts[0]
		table.Name = parts[1]
	case 3:
		table.Catalog = parts[0]
		table.Schema = parts[1]
		table.Name = parts[2]
	default:
		p.addError("too many name parts in table reference")
	}

	table.Alias = p.parseAlias()
	return table
}

// parseSubquerySource parses "(" statement ")" [AS] alias.
func (p *Parser) parseSubquerySource() (*ast.SelectStmt, string) {
	p.expect(token.LPAREN)
	stmt := p.parseStatement()
	p.expect(token.RPAREN)
	return stmt, p.parseAlias()
}

// parseJoin parses a JOIN clause, or returns nil when none follows.
func (p *Parser) parseJoin() *ast.Join {
	first := p.pos()
	join := &ast.Join{}

	// Comma join (implicit cross join)
	if p.match(token.COMMA) {
		join.Type = ast.JoinComma
		join.Right = p.parseTableRef()
		p.finish(join, first)
		return join
	}

	if p.match(token.NATURAL) {
		join.Natural = true
	}

	if typ, ok := joinKeywords[p.token.Type]; ok {
		join.Type = typ
		p.nextToken()
		if typ != ast.JoinInner && typ != ast.JoinCross {
			p.match(token.OUTER)
		}
	} else if p.check(token.JOIN) {
		join.Type = ast.JoinInner
	} else if !join.Natural {
		return nil
	}

	if !p.expect(token.JOIN) {
		return nil
	}

	join.Right = p.parseTableRef()
	p.parseJoinCondition(join)
	p.finish(join, first)
	return join
}

// parseJoinCondition handles ON/USING/NATURAL validation.
func (p *Parser) parseJoinCondition(join *ast.Join) {
	switch {
	case join.Natural:
		if p.check(token.ON) {
			p.addError("NATURAL JOIN cannot have ON clause")
		}
		if p.check(token.USING) {
			p.addError("NATURAL JOIN cannot have USING clause")
		}
	case join.Type == ast.JoinCross:
		if p.check(token.ON) || p.check(token.USING) {
			p.addError("CROSS JOIN cannot have a join condition")
		}
	case p.match(token.ON):
		join.Condition = p.parseExpression()
	case p.match(token.USING):
		p.expect(token.LPAREN)
		join.Using = p.parseIdentList("column name in USING clause")
		p.expect(token.RPAREN)
	}
}
