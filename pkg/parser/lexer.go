package parser

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/leapstack-labs/sqltree/pkg/dialect"
	"github.com/leapstack-labs/sqltree/pkg/token"
)

// Lexer tokenizes SQL input. Whitespace and comments are emitted as trivia
// tokens so that the concatenated Raw text of all tokens equals the input.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // line of ch (1-based)
	col     int  // column of ch (1-based)

	dialect *dialect.Dialect
	errors  []*ParseError
}

// NewLexer creates a new Lexer for the given input. A nil dialect enables
// no optional syntax.
func NewLexer(input string, d *dialect.Dialect) *Lexer {
	l := &Lexer{
		input:   input,
		line:    1,
		col:     0,
		dialect: d,
	}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.col++
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) currentPos() token.Position {
	return token.Position{Line: l.line, Column: l.col, Offset: l.pos}
}

func (l *Lexer) errorf(pos token.Position, format string, args ...any) {
	l.errors = append(l.errors, &ParseError{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// Errors returns the lexical errors found so far.
func (l *Lexer) Errors() []*ParseError {
	return l.errors
}

// NextToken returns the next token, trivia included.
func (l *Lexer) NextToken() token.Token {
	pos := l.currentPos()
	start := l.pos

	if l.atEOF() {
		return token.Token{Type: token.EOF, Pos: pos}
	}

	typ, literal := l.scan(pos)
	raw := l.input[start:l.pos]
	if literal == "" && typ != token.STRING {
		literal = raw
	}
	return token.Token{Type: typ, Literal: literal, Raw: raw, Pos: pos}
}

// scan consumes one token and returns its type and, where it differs from
// the raw text, its semantic literal.
func (l *Lexer) scan(pos token.Position) (token.TokenType, string) {
	switch {
	case isSpace(l.ch):
		for isSpace(l.ch) && !l.atEOF() {
			l.readChar()
		}
		return token.WHITESPACE, ""
	case l.ch == '-' && l.peekChar() == '-':
		for l.ch != '\n' && !l.atEOF() {
			l.readChar()
		}
		return token.COMMENT, ""
	case l.ch == '/' && l.peekChar() == '*':
		l.readBlockComment(pos)
		return token.COMMENT, ""
	case l.ch == '\'':
		return token.STRING, l.readQuoted('\'', pos, "string literal")
	case l.ch == '"':
		return token.IDENT, l.readQuoted('"', pos, "quoted identifier")
	case isLetter(l.ch) || l.ch == '_':
		word := l.readIdentifier()
		return l.dialect.LookupKeyword(strings.ToLower(word)), word
	case isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())):
		l.readNumber()
		return token.NUMBER, ""
	}

	return l.scanOperator(pos), ""
}

func (l *Lexer) scanOperator(pos token.Position) token.TokenType {
	ch := l.ch
	l.readChar()

	switch ch {
	case '+':
		return token.PLUS
	case '-':
		return token.MINUS
	case '*':
		return token.STAR
	case '/':
		return token.SLASH
	case '%':
		return token.PERCENT
	case '=':
		return token.EQ
	case '.':
		return token.DOT
	case ',':
		return token.COMMA
	case ';':
		return token.SEMICOLON
	case '(':
		return token.LPAREN
	case ')':
		return token.RPAREN
	case '<':
		switch l.ch {
		case '=':
			l.readChar()
			return token.LE
		case '>':
			l.readChar()
			return token.NE
		}
		return token.LT
	case '>':
		if l.ch == '=' {
			l.readChar()
			return token.GE
		}
		return token.GT
	case '!':
		if l.ch == '=' {
			l.readChar()
			return token.NE
		}
	case '|':
		if l.ch == '|' {
			l.readChar()
			return token.DPIPE
		}
	case ':':
		if l.ch == ':' {
			l.readChar()
			if l.dialect.Has(dialect.FeatureCastOperator) {
				return token.DCOLON
			}
			l.errorf(pos, ErrUnsupportedOperator, "::", l.dialectName())
			return token.ILLEGAL
		}
	}

	// Consume the rest of a multi-byte rune so the raw text stays valid UTF-8.
	if ch >= utf8.RuneSelf {
		for !l.atEOF() && !utf8.RuneStart(l.ch) {
			l.readChar()
		}
	}
	l.errorf(pos, "unexpected character %q", l.input[pos.Offset:l.pos])
	return token.ILLEGAL
}

func (l *Lexer) dialectName() string {
	if l.dialect == nil {
		return "default"
	}
	return l.dialect.Name
}

func (l *Lexer) readBlockComment(pos token.Position) {
	l.readChar() // skip '/'
	l.readChar() // skip '*'
	for !l.atEOF() {
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			return
		}
		l.readChar()
	}
	l.errorf(pos, "unterminated block comment")
}

// readQuoted reads a quoted string or identifier. A doubled quote is an
// escaped quote: 'it''s' -> it's
func (l *Lexer) readQuoted(quote byte, pos token.Position, what string) string {
	l.readChar() // skip opening quote

	var result strings.Builder
	for !l.atEOF() {
		if l.ch == quote {
			if l.peekChar() == quote {
				result.WriteByte(quote)
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar() // skip closing quote
			return result.String()
		}
		result.WriteByte(l.ch)
		l.readChar()
	}
	l.errorf(pos, "unterminated %s", what)
	return result.String()
}

// readIdentifier reads an unquoted identifier.
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' || l.ch == '$' {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readNumber reads a numeric literal (integer, decimal, or scientific).
func (l *Lexer) readNumber() {
	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	if (l.ch == 'e' || l.ch == 'E') && (isDigit(l.peekChar()) || l.peekChar() == '+' || l.peekChar() == '-') {
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f'
}

// isLetter returns true if ch is an ASCII letter.
func isLetter(ch byte) bool {
	return ch < utf8.RuneSelf && unicode.IsLetter(rune(ch))
}

// isDigit returns true if ch is a digit.
func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// Tokenize lexes input into a complete stream. The stream always ends with
// an EOF token; lexical errors are returned alongside it.
func Tokenize(input string, d *dialect.Dialect) (*token.Stream, []*ParseError) {
	l := NewLexer(input, d)
	s := &token.Stream{}
	for {
		tok := l.NextToken()
		s.Tokens = append(s.Tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return s, l.errors
}
