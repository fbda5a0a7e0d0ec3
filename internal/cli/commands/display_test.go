package commands

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/glamour/styles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqltree/internal/cli/testutil"
)

func TestMarkdownStyle_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, styles.NoTTYStyle, markdownStyle())
}

func TestTerminalWidth_NotATerminal(t *testing.T) {
	assert.Equal(t, defaultTerminalWidth, terminalWidth(&bytes.Buffer{}))
}

func TestDisplayMarkdown(t *testing.T) {
	md := []byte("1. **Script**: `SELECT a`\n   1. **SelectStmt**: `SELECT a`\n")

	var buf bytes.Buffer
	require.NoError(t, displayMarkdown(&buf, md, styles.NoTTYStyle, 80))
	assert.Contains(t, buf.String(), "SelectStmt")
	assert.NotContains(t, buf.String(), "**")
	testutil.AssertNoANSI(t, buf.String())
}
