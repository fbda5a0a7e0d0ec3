package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqltree/pkg/render"
)

var formatDescriptions = map[render.Format]string{
	render.FormatJSON:     "indented JSON document",
	render.FormatYAML:     "YAML document",
	render.FormatHTML:     "collapsible HTML page with search",
	render.FormatMarkdown: "nested Markdown outline",
}

// NewFormatsCommand creates the formats command.
func NewFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the output formats",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, f := range render.Formats() {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-5s %s (.%s)\n", f, formatDescriptions[f], f.Extension())
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-5s every format, one file each\n", "all")
		},
	}
}
