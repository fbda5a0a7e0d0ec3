package commands

import (
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqltree/pkg/parsetree"
)

var titleStyle = lipgloss.NewStyle().Bold(true)

// TypeCount is the number of nodes of one type in a tree.
type TypeCount struct {
	TypeName string
	Count    int
}

// TreeStats summarizes a captured tree.
type TreeStats struct {
	Nodes    int
	MaxDepth int
	Types    []TypeCount
}

// NewStatsCommand creates the stats command.
func NewStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats [file]",
		Short: "Show node type counts of a SQL parse tree",
		Long:  `Parse SQL from a file or redirected stdin and print how many nodes of each type its tree holds.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			sql, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			tree, err := cc.capture(cmd, sql)
			if err != nil {
				return err
			}
			renderStats(cmd.OutOrStdout(), collectStats(tree))
			return nil
		},
	}
}

// collectStats counts nodes per type, most frequent first.
func collectStats(tree *parsetree.ParseData) TreeStats {
	var stats TreeStats
	counts := make(map[string]int)
	tree.Walk(func(n *parsetree.ParseData, depth int) {
		stats.Nodes++
		stats.MaxDepth = max(stats.MaxDepth, depth)
		counts[n.TypeName]++
	})

	for name, n := range counts {
		stats.Types = append(stats.Types, TypeCount{TypeName: name, Count: n})
	}
	slices.SortFunc(stats.Types, func(a, b TypeCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.TypeName, b.TypeName)
	})
	return stats
}

func renderStats(w io.Writer, stats TreeStats) {
	title := fmt.Sprintf("%d nodes, %d node types, depth %d", stats.Nodes, len(stats.Types), stats.MaxDepth)
	_, _ = fmt.Fprintln(w, titleStyle.Render(title))

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Type", "Count", "Share"})
	for _, tc := range stats.Types {
		share := float64(tc.Count) * 100 / float64(stats.Nodes)
		t.AppendRow(table.Row{tc.TypeName, tc.Count, fmt.Sprintf("%.1f%%", share)})
	}
	t.Render()
}
