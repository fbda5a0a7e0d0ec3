package token

import "fmt"

// Position represents a location in the source text.
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number
	Offset int // 0-based byte offset
}

// IsValid returns true if the position is valid (line > 0).
func (p Position) IsValid() bool {
	return p.Line > 0
}

// String formats the position as "line,column", the form used in
// parse error reports.
func (p Position) String() string {
	return fmt.Sprintf("%d,%d", p.Line, p.Column)
}
