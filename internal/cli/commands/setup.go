package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leapstack-labs/sqltree/internal/cli/config"
	"github.com/leapstack-labs/sqltree/internal/cli/runlog"
	"github.com/leapstack-labs/sqltree/internal/pipeline"
	"github.com/leapstack-labs/sqltree/pkg/parsetree"
)

// LongRunningAnnotation marks commands whose logs go to stderr as they
// happen instead of into the run log.
const LongRunningAnnotation = "sqltree/long-running"

// IsLongRunning reports whether cmd is annotated as long running.
func IsLongRunning(cmd *cobra.Command) bool {
	_, ok := cmd.Annotations[LongRunningAnnotation]
	return ok
}

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Log      *runlog.Log
	Pipeline *pipeline.Pipeline
}

// NewCommandContext builds a CommandContext from the command's context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	logger := config.GetLogger(ctx)

	log := runlog.FromContext(ctx)
	if log == nil {
		log = runlog.New(cfg.Verbose)
		logger = log.Logger()
	}

	return &CommandContext{
		Cfg:    cfg,
		Logger: logger,
		Log:    log,
		Pipeline: pipeline.New(pipeline.Config{
			Dialect: cfg.Dialect,
			Render:  cfg.RenderOptions(),
			Logger:  logger,
		}),
	}
}

// readInput reads SQL from the named file, or from stdin when no file is
// given. Reading from an interactive terminal is refused.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", &ExitError{Code: ExitUsage, Err: fmt.Errorf("read input: %w", err)}
		}
		return string(data), nil
	}

	in := cmd.InOrStdin()
	if isTerminal(in) {
		return "", &ExitError{Code: ExitUsage, Err: ErrInputNotRedirected}
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", &ExitError{Code: ExitUsage, Err: fmt.Errorf("read stdin: %w", err)}
	}
	return string(data), nil
}

// capture runs sql through the pipeline. Parse errors are written to stderr
// one per line as "line,column: message".
func (cc *CommandContext) capture(cmd *cobra.Command, sql string) (*parsetree.ParseData, error) {
	tree, err := cc.Pipeline.Capture(sql)
	if err == nil {
		return tree, nil
	}

	if list := pipeline.ParseErrors(err); list != nil {
		for _, e := range list {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%d,%d: %s\n", e.Pos.Line, e.Pos.Column, e.Message)
			cc.Logger.Error("parse error",
				slog.Int("line", e.Pos.Line),
				slog.Int("column", e.Pos.Column),
				slog.String("message", e.Message))
		}
		return nil, &ExitError{Code: ExitParse, Err: err, Reported: true}
	}

	cc.Logger.Error("capture failed", slog.Any("error", err))
	return nil, &ExitError{Code: ExitRender, Err: err}
}

// isTerminal reports whether v is a file attached to a terminal.
func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
