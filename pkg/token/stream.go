package token

import "strings"

// Stream is the complete token sequence of one input, trivia included.
// The last token is always EOF.
type Stream struct {
	Tokens []Token
}

// Len returns the number of tokens in the stream.
func (s *Stream) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Tokens)
}

// At returns the token at index i, or an EOF token when i is out of range.
func (s *Stream) At(i int) Token {
	if s == nil || i < 0 || i >= len(s.Tokens) {
		return Token{Type: EOF}
	}
	return s.Tokens[i]
}

// Text returns the source text covered by tokens first..last inclusive.
// An inverted or out-of-range span yields "".
func (s *Stream) Text(first, last int) string {
	if s == nil || first < 0 || last >= len(s.Tokens) || first > last {
		return ""
	}
	var sb strings.Builder
	for i := first; i <= last; i++ {
		sb.WriteString(s.Tokens[i].Raw)
	}
	return sb.String()
}

// Source reconstructs the full input text.
func (s *Stream) Source() string {
	if s.Len() == 0 {
		return ""
	}
	return s.Text(0, len(s.Tokens)-1)
}

// Significant returns the indexes of all non-trivia tokens, EOF excluded.
func (s *Stream) Significant() []int {
	var out []int
	for i := 0; i < s.Len(); i++ {
		t := s.Tokens[i].Type
		if t == EOF || IsTrivia(t) {
			continue
		}
		out = append(out, i)
	}
	return out
}
