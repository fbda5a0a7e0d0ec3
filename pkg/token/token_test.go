package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupIdent(t *testing.T) {
	tests := []struct {
		ident string
		want  TokenType
	}{
		{"select", SELECT},
		{"qualify", QUALIFY},
		{"ilike", ILIKE},
		{"with", WITH},
		{"customers", IDENT},
		{"SELECT", IDENT}, // lookups are lowercase
	}
	for _, tt := range tests {
		t.Run(tt.ident, func(t *testing.T) {
			assert.Equal(t, tt.want, LookupIdent(tt.ident))
		})
	}
}

func TestTokenType_String(t *testing.T) {
	assert.Equal(t, "SELECT", SELECT.String())
	assert.Equal(t, "WITH", WITH.String())
	assert.Equal(t, "::", DCOLON.String())
	assert.Equal(t, "TOKEN(9999)", TokenType(9999).String())
}

func TestClassification(t *testing.T) {
	assert.True(t, IsKeyword(ALL))
	assert.True(t, IsKeyword(WITH))
	assert.False(t, IsKeyword(IDENT))
	assert.True(t, IsOperator(DCOLON))
	assert.False(t, IsOperator(SELECT))
	assert.True(t, IsTrivia(COMMENT))
	assert.False(t, IsTrivia(IDENT))
}

func TestStream_Text(t *testing.T) {
	s := &Stream{Tokens: []Token{
		{Type: SELECT, Raw: "SELECT"},
		{Type: WHITESPACE, Raw: " "},
		{Type: NUMBER, Raw: "1"},
		{Type: WHITESPACE, Raw: "  "},
		{Type: COMMENT, Raw: "-- one"},
		{Type: EOF},
	}}

	assert.Equal(t, "SELECT 1", s.Text(0, 2))
	assert.Equal(t, "1", s.Text(2, 2))
	assert.Equal(t, "", s.Text(2, 1))
	assert.Equal(t, "", s.Text(-1, 2))
	assert.Equal(t, "", s.Text(0, 99))
	assert.Equal(t, "SELECT 1  -- one", s.Source())
	assert.Equal(t, []int{0, 2}, s.Significant())
	assert.Equal(t, EOF, s.At(42).Type)

	var empty *Stream
	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, "", empty.Text(0, 0))
}

func TestPosition_String(t *testing.T) {
	assert.Equal(t, "3,14", Position{Line: 3, Column: 14}.String())
	assert.False(t, Position{}.IsValid())
}
