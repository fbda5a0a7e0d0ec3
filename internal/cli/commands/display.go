package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

const defaultTerminalWidth = 100

// markdownStyle picks the glamour style for the current terminal.
func markdownStyle() string {
	switch {
	case termenv.EnvNoColor():
		return styles.NoTTYStyle
	case termenv.HasDarkBackground():
		return styles.DarkStyle
	default:
		return styles.LightStyle
	}
}

// terminalWidth returns the width of the terminal w writes to.
func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return defaultTerminalWidth
}

// displayMarkdown renders a markdown document for a terminal.
func displayMarkdown(w io.Writer, md []byte, style string, width int) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("markdown renderer: %w", err)
	}
	out, err := r.RenderBytes(md)
	if err != nil {
		return fmt.Errorf("display markdown: %w", err)
	}
	_, err = w.Write(out)
	return err
}
