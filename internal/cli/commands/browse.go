package commands

import (
	"errors"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqltree/internal/tui"
)

// NewBrowseCommand creates the browse command.
func NewBrowseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <file>",
		Short: "Explore the parse tree of a SQL file interactively",
		Long: `Open the parse tree of a SQL file as a collapsible outline in the terminal.

Keys:
  ↑/↓ j/k      move
  enter        expand or collapse the selected node
  ←/→ h/l      collapse, or move to the parent / expand
  E / C        expand / collapse everything
  /            search type names and node text by prefix
  n            next match
  q            quit`,
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{LongRunningAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			if !isTerminal(cmd.OutOrStdout()) {
				return &ExitError{Code: ExitUsage, Err: errors.New("browse needs a terminal")}
			}

			sql, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			tree, err := cc.capture(cmd, sql)
			if err != nil {
				return err
			}

			p := tea.NewProgram(tui.NewTreeModel(filepath.Base(args[0]), tree),
				tea.WithContext(cmd.Context()),
				tea.WithOutput(cmd.OutOrStdout()),
				tea.WithAltScreen(),
			)
			if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return fmt.Errorf("browse: %w", err)
			}
			return nil
		},
	}
}
