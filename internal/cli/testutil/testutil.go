// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

// SampleSQL is a small script that exercises joins, CTEs and expressions.
const SampleSQL = `WITH recent AS (
    SELECT id, amount FROM orders WHERE created_at > '2024-01-01'
)
SELECT c.name, SUM(r.amount) AS total
FROM customers c
JOIN recent r ON r.id = c.id
GROUP BY c.name
ORDER BY total DESC;`

// WriteSQLFile writes sql to name inside a fresh temporary directory and
// returns its path.
func WriteSQLFile(t *testing.T, name, sql string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(sql), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown checks that a rendered tree is an outline: every
// non-blank line is a numbered node item or a property bullet.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	if fences := strings.Count(md, "```"); fences%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fences)
	}

	for i, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimLeft(line, " ")
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, "1. ") && !strings.HasPrefix(trimmed, "- ") {
			t.Errorf("line %d: not a list item: %q", i+1, line)
		}
	}
}
