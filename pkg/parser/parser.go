// Package parser provides SQL parsing with dialect-aware syntax validation.
//
// # Usage
//
//	script, err := parser.Parse("SELECT a, b FROM t; SELECT 1", dialect.DuckDB)
//	if err != nil {
//	    var list parser.ErrorList
//	    errors.As(err, &list) // every error, with line and column
//	}
//
// # Grammar Overview
//
// The parser implements a recursive descent parser for a subset of SQL:
//
//	script        → statement (";" statement)* [";"]
//	statement     → [WITH cte_list] select_body
//	select_body   → select_core [(UNION|INTERSECT|EXCEPT) [ALL|DISTINCT] select_body]
//	select_core   → SELECT [DISTINCT] select_list [FROM from_clause]
//	                [WHERE expr] [GROUP BY expr_list] [HAVING expr]
//	                [WINDOW window_defs] [QUALIFY expr] [ORDER BY order_list]
//	                [LIMIT expr] [OFFSET expr [ROW|ROWS]] [fetch_clause]
//
// See each file for detailed grammar rules for that section.
//
// Every node records the span of tokens it was parsed from, so its source
// text can be reconstructed with ast.Text, comments and whitespace included.
package parser

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqltree/pkg/ast"
	"github.com/leapstack-labs/sqltree/pkg/dialect"
	"github.com/leapstack-labs/sqltree/pkg/token"
)

// Parser parses SQL into an AST.
type Parser struct {
	stream  *token.Stream
	sig     []int // stream indexes of significant tokens
	cur     int   // index into sig of the current token
	last    int   // stream index of the last consumed token
	token   token.Token
	errors  ErrorList
	dialect *dialect.Dialect

	types map[string]*ast.DataType // interned per script
	ctes  []map[string]*ast.CTE    // CTE scopes, innermost last
}

// NewParser creates a new parser for the given SQL input with dialect support.
// A nil dialect selects dialect.Default().
func NewParser(sql string, d *dialect.Dialect) *Parser {
	if d == nil {
		d = dialect.Default()
	}
	stream, lexErrs := Tokenize(sql, d)
	// Illegal tokens were already reported by the lexer.
	var sig []int
	for _, i := range stream.Significant() {
		if stream.Tokens[i].Type != token.ILLEGAL {
			sig = append(sig, i)
		}
	}
	p := &Parser{
		stream:  stream,
		sig:     sig,
		last:    -1,
		dialect: d,
		types:   make(map[string]*ast.DataType),
	}
	p.errors = append(p.errors, lexErrs...)
	p.syncToken()
	return p
}

// Parse parses a script of one or more statements. On failure the error is
// an ErrorList holding every error found, and the returned script is nil.
func Parse(sql string, d *dialect.Dialect) (*ast.Script, error) {
	p := NewParser(sql, d)
	script := p.ParseScript()
	if len(p.errors) > 0 {
		p.errors.sort()
		return nil, p.errors
	}
	return script, nil
}

// Dialect returns the parser's dialect.
func (p *Parser) Dialect() *dialect.Dialect {
	return p.dialect
}

// Stream returns the token stream being parsed.
func (p *Parser) Stream() *token.Stream {
	return p.stream
}

// Errors returns the errors collected so far.
func (p *Parser) Errors() ErrorList {
	return p.errors
}

// ParseScript parses statements until EOF. Statements that fail to parse are
// skipped up to the next semicolon so later errors are still reported.
func (p *Parser) ParseScript() *ast.Script {
	script := &ast.Script{}
	for !p.check(token.EOF) {
		if p.match(token.SEMICOLON) {
			continue
		}
		before := len(p.errors)
		stmt := p.parseStatement()
		if len(p.errors) > before {
			p.recover()
			continue
		}
		script.Statements = append(script.Statements, stmt)
		if !p.check(token.EOF) && !p.check(token.SEMICOLON) {
			p.addError(fmt.Sprintf(ErrUnexpectedToken, p.describe(), "; or end of input"))
			p.recover()
		}
	}
	// The script spans the whole input, leading and trailing trivia included.
	script.NodeInfo = ast.NodeInfo{First: 0, Last: p.stream.Len() - 2, Stream: p.stream}
	return script
}

// recover skips to just past the next semicolon.
func (p *Parser) recover() {
	for !p.check(token.EOF) && !p.check(token.SEMICOLON) {
		p.nextToken()
	}
	p.match(token.SEMICOLON)
}

// ---------- Token Helpers ----------

func (p *Parser) syncToken() {
	if p.cur < len(p.sig) {
		p.token = p.stream.Tokens[p.sig[p.cur]]
		return
	}
	p.token = p.stream.Tokens[p.stream.Len()-1] // EOF
}

// nextToken advances to the next significant token.
func (p *Parser) nextToken() {
	if p.cur < len(p.sig) {
		p.last = p.sig[p.cur]
		p.cur++
	}
	p.syncToken()
}

// pos returns the stream index of the current token.
func (p *Parser) pos() int {
	if p.cur < len(p.sig) {
		return p.sig[p.cur]
	}
	return p.stream.Len() - 1
}

// peekType returns the type of the significant token n places ahead.
func (p *Parser) peekType(n int) token.TokenType {
	if i := p.cur + n; i < len(p.sig) {
		return p.stream.Tokens[p.sig[i]].Type
	}
	return token.EOF
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t token.TokenType) bool {
	return p.token.Type == t
}

// checkPeek returns true if the next token is of the given type.
func (p *Parser) checkPeek(t token.TokenType) bool {
	return p.peekType(1) == t
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t token.TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes the current token if it matches, otherwise adds an error.
func (p *Parser) expect(t token.TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	p.addError(fmt.Sprintf(ErrUnexpectedToken, p.describe(), t))
	return false
}

// describe names the current token for error messages.
func (p *Parser) describe() string {
	switch p.token.Type {
	case token.EOF:
		return "end of input"
	case token.IDENT, token.NUMBER, token.STRING:
		return fmt.Sprintf("%s %q", p.token.Type, p.token.Raw)
	}
	return p.token.Type.String()
}

// addError adds a parse error at the current token.
func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, &ParseError{
		Pos:     p.token.Pos,
		Message: msg,
	})
}

// finish records the span of n as running from stream index first to the
// last consumed token.
func (p *Parser) finish(n ast.Node, first int) {
	last := p.last
	if last < first {
		last = first
	}
	*n.Info() = ast.NodeInfo{First: first, Last: last, Stream: p.stream}
}

// ---------- Keyword Helpers ----------

// clauseWords are identifiers that start a clause in some dialect. They are
// never taken as an implicit alias, so using them where unsupported yields
// a clear error instead of a confusing one.
var clauseWords = map[string]bool{"qualify": true}

// canAlias reports whether the current token may be an alias without AS.
func (p *Parser) canAlias() bool {
	return p.check(token.IDENT) && !clauseWords[strings.ToLower(p.token.Raw)]
}

// ---------- Semantic Helpers ----------

// internType returns the shared DataType for name and params.
func (p *Parser) internType(name string, params []string) *ast.DataType {
	dt := &ast.DataType{Name: strings.ToUpper(name), Params: params}
	key := dt.String()
	if existing, ok := p.types[key]; ok {
		return existing
	}
	p.types[key] = dt
	return dt
}

func (p *Parser) pushCTEScope() map[string]*ast.CTE {
	scope := make(map[string]*ast.CTE)
	p.ctes = append(p.ctes, scope)
	return scope
}

func (p *Parser) popCTEScope() {
	p.ctes = p.ctes[:len(p.ctes)-1]
}

// resolveCTE finds the innermost CTE visible under name.
func (p *Parser) resolveCTE(name string) *ast.CTE {
	key := strings.ToLower(name)
	for i := len(p.ctes) - 1; i >= 0; i-- {
		if cte, ok := p.ctes[i][key]; ok {
			return cte
		}
	}
	return nil
}
