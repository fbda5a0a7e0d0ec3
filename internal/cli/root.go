// Package cli provides the command-line interface for sqltree.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqltree/internal/cli/commands"
	"github.com/leapstack-labs/sqltree/internal/cli/config"
	"github.com/leapstack-labs/sqltree/internal/cli/runlog"
	"github.com/leapstack-labs/sqltree/pkg/dialect"
	"github.com/leapstack-labs/sqltree/pkg/render"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command. Run without a subcommand
// it behaves like parse.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "sqltree [file]",
		Short: "sqltree - SQL parse tree renderer",
		Long: `sqltree parses a SQL script and renders its complete parse tree, every
node with its source text and properties, as JSON, YAML, HTML or Markdown.

SQL is read from the file argument or from redirected stdin.`,
		Example: `  sqltree query.sql
  sqltree -f md < query.sql
  sqltree -f all -o build/tree query.sql`,
		Version: Version,
		Args:    cobra.MaximumNArgs(1),
		RunE:    commands.RunParse,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == cobra.ShellCompRequestCmd {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Flags())
			if err != nil {
				return &commands.ExitError{Code: commands.ExitUsage, Err: err}
			}

			log := runlog.New(cfg.Verbose)
			logger := log.Logger()
			if commands.IsLongRunning(cmd) {
				logger = newConsoleLogger(cmd.ErrOrStderr(), cfg.Verbose).With(slog.String("run_id", log.ID()))
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = config.WithConfig(ctx, cfg)
			ctx = config.WithLogger(ctx, logger)
			ctx = runlog.WithLog(ctx, log)
			cmd.SetContext(ctx)

			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Using config file: %s\n", configFile)
				}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
SQL parse tree renderer
`)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: sqltree.yaml in this or a parent directory)")
	flags.StringP("format", "f", config.DefaultFormat, "Output format (json|yaml|html|md|all)")
	flags.String("dialect", dialect.Default().Name, "SQL dialect ("+strings.Join(dialect.List(), "|")+")")
	flags.BoolP("to-file", "t", false, "Write output to out.<ext> instead of the console")
	flags.StringP("output-path", "o", "", "Write output to this file")
	flags.StringP("log-destination", "l", config.DefaultLogDestination, "Where the run log goes (none|stdout|stderr|output)")
	flags.BoolP("verbose", "v", false, "Verbose output")
	flags.Bool("minify", false, "Minify HTML output")
	flags.String("title", render.DefaultTitle, "HTML page title")
	flags.Int("yaml-max-depth", render.DefaultMaxDepth, "Deepest tree the YAML renderer accepts")

	_ = rootCmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		names := []string{"all"}
		for _, f := range render.Formats() {
			names = append(names, f.String())
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("dialect", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return dialect.List(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-destination", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"none", "stdout", "stderr", "output"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(commands.BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
	}))
	rootCmd.AddCommand(commands.NewParseCommand())
	rootCmd.AddCommand(commands.NewStatsCommand())
	rootCmd.AddCommand(commands.NewCatalogCommand())
	rootCmd.AddCommand(commands.NewFormatsCommand())
	rootCmd.AddCommand(commands.NewBrowseCommand())
	rootCmd.AddCommand(commands.NewREPLCommand())
	rootCmd.AddCommand(commands.NewWatchCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// newConsoleLogger logs straight to w. Long-running commands use it since
// their run never ends in a delivery.
func newConsoleLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Execute runs the root command. Errors already shown to the user are not
// printed again.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !commands.Reported(err) {
			_, _ = fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		}
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for sqltree.

To load completions:

Bash:
  $ source <(sqltree completion bash)

Zsh:
  $ sqltree completion zsh > "${fpath[1]}/_sqltree"

Fish:
  $ sqltree completion fish | source

PowerShell:
  PS> sqltree completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
