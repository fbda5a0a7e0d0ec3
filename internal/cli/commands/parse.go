package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqltree/pkg/parsetree"
	"github.com/leapstack-labs/sqltree/pkg/render"
)

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "parse [file]",
		Short: "Render the parse tree of a SQL script",
		Long: `Parse SQL from a file or redirected stdin and render its parse tree.

Output goes to the console unless --to-file or --output-path is given, in
which case the absolute path of each written file is printed. With
--format all every format is rendered into its own file.`,
		Example: `  sqltree parse query.sql
  sqltree parse -f html -t < query.sql
  cat query.sql | sqltree parse -f all -o report`,
		Args: cobra.MaximumNArgs(1),
		RunE: RunParse,
	}
}

// RunParse reads SQL, captures its tree and writes the rendered output.
// The run log is delivered whether or not the run succeeded.
func RunParse(cmd *cobra.Command, args []string) error {
	cc := NewCommandContext(cmd)

	var files []string
	err := cc.parse(cmd, args, &files)
	if derr := cc.Log.Deliver(cc.Cfg.LogDestination, cmd.OutOrStdout(), cmd.ErrOrStderr(), files...); derr != nil && err == nil {
		err = derr
	}
	return err
}

func (cc *CommandContext) parse(cmd *cobra.Command, args []string, files *[]string) error {
	sql, err := readInput(cmd, args)
	if err != nil {
		cc.Logger.Error("read input failed", slog.Any("error", err))
		return err
	}

	tree, err := cc.capture(cmd, sql)
	if err != nil {
		return err
	}

	if cc.Cfg.WritesFiles() {
		written, err := cc.writeFiles(cmd, tree)
		*files = written
		return err
	}
	return cc.writeConsole(cmd, tree)
}

// writeFiles renders every selected format before writing any file.
func (cc *CommandContext) writeFiles(cmd *cobra.Command, tree *parsetree.ParseData) ([]string, error) {
	docs, err := cc.Pipeline.RenderAll(cmd.Context(), tree, cc.Cfg.Format)
	if err != nil {
		cc.Logger.Error("render failed", slog.Any("error", err))
		return nil, &ExitError{Code: ExitRender, Err: err}
	}

	var written []string
	for _, doc := range docs {
		name := cc.Cfg.OutputFile(doc.Format)
		if err := os.WriteFile(name, doc.Data, 0o644); err != nil { //nolint:gosec // world-readable output
			return written, &ExitError{Code: ExitRender, Err: fmt.Errorf("write output: %w", err)}
		}
		written = append(written, name)

		abs, err := filepath.Abs(name)
		if err != nil {
			abs = name
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), abs)
	}
	return written, nil
}

// writeConsole writes the single selected format to stdout. Markdown going
// to a terminal is displayed rather than printed.
func (cc *CommandContext) writeConsole(cmd *cobra.Command, tree *parsetree.ParseData) error {
	format := cc.Cfg.Format[0]
	data, err := cc.Pipeline.Render(tree, format)
	if err != nil {
		cc.Logger.Error("render failed", slog.Any("error", err))
		return &ExitError{Code: ExitRender, Err: err}
	}

	out := cmd.OutOrStdout()
	if format == render.FormatMarkdown && isTerminal(out) {
		start := time.Now()
		if err := displayMarkdown(out, data, markdownStyle(), terminalWidth(out)); err != nil {
			return &ExitError{Code: ExitRender, Err: err}
		}
		cc.Logger.Info("display finished", slog.Duration("elapsed", time.Since(start)))
		return nil
	}

	if _, err := out.Write(data); err != nil {
		return err
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		_, err = io.WriteString(out, "\n")
	}
	return err
}
