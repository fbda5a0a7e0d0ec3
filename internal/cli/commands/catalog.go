package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqltree/internal/pipeline"
)

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the syntax tree node types",
		Long:  `List every node type the SQL engine can produce, with its structural fields.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog := pipeline.Catalog()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(catalog)
			}
			renderCatalog(cmd.OutOrStdout(), catalog)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the catalog as JSON")
	return cmd
}

func renderCatalog(w io.Writer, catalog []pipeline.NodeType) {
	_, _ = fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%d node types", len(catalog))))

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Type", "Fields"})
	for i, nt := range catalog {
		t.AppendRow(table.Row{i + 1, nt.Name, strings.Join(nt.Fields, ", ")})
	}
	t.Render()
}
