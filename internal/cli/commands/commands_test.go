package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqltree/internal/cli/config"
	"github.com/leapstack-labs/sqltree/internal/cli/runlog"
	clitest "github.com/leapstack-labs/sqltree/internal/cli/testutil"
	"github.com/leapstack-labs/sqltree/internal/pipeline"
	"github.com/leapstack-labs/sqltree/internal/testutil"
	"github.com/leapstack-labs/sqltree/pkg/parsetree"
	"github.com/leapstack-labs/sqltree/pkg/render"
)

type result struct {
	stdout string
	stderr string
	err    error
}

// execute runs cmd with cfg in its context, as the root command would set it up.
func execute(t *testing.T, cmd *cobra.Command, cfg *config.Config, stdin string, args ...string) result {
	t.Helper()
	require.NoError(t, cfg.Validate())

	log := runlog.New(cfg.Verbose)
	ctx := config.WithConfig(context.Background(), cfg)
	ctx = config.WithLogger(ctx, log.Logger())
	ctx = runlog.WithLog(ctx, log)

	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{}, args...))
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.ExecuteContext(ctx)
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// newTestCommandContext builds a CommandContext that logs to the test log.
func newTestCommandContext(t *testing.T, cfg *config.Config) *CommandContext {
	t.Helper()
	require.NoError(t, cfg.Validate())
	logger := testutil.NewTestLogger(t)
	return &CommandContext{
		Cfg:    cfg,
		Logger: logger,
		Log:    runlog.New(cfg.Verbose),
		Pipeline: pipeline.New(pipeline.Config{
			Dialect: cfg.Dialect,
			Render:  cfg.RenderOptions(),
			Logger:  logger,
		}),
	}
}

func withFormat(cfg *config.Config, name string) *config.Config {
	if err := cfg.Format.UnmarshalText([]byte(name)); err != nil {
		panic(err)
	}
	return cfg
}

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd         *cobra.Command
		use         string
		flags       []string
		longRunning bool
	}{
		{cmd: NewParseCommand(), use: "parse [file]"},
		{cmd: NewStatsCommand(), use: "stats [file]"},
		{cmd: NewCatalogCommand(), use: "catalog", flags: []string{"json"}},
		{cmd: NewBrowseCommand(), use: "browse <file>", longRunning: true},
		{cmd: NewREPLCommand(), use: "repl", longRunning: true},
		{cmd: NewWatchCommand(), use: "watch <file>", flags: []string{"debounce"}, longRunning: true},
		{cmd: NewServeCommand(), use: "serve", flags: []string{"addr"}, longRunning: true},
		{cmd: NewFormatsCommand(), use: "formats"},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			assert.Equal(t, tt.longRunning, IsLongRunning(tt.cmd))
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestParse_JSONToStdout(t *testing.T) {
	res := execute(t, NewParseCommand(), config.Default(), "SELECT a + 1")
	require.NoError(t, res.err)

	var tree parsetree.ParseData
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &tree))
	assert.Equal(t, "Script", tree.TypeName)
	assert.Equal(t, "SELECT a + 1", tree.Text)
	assert.Empty(t, res.stderr)
}

func TestParse_MarkdownToPipe(t *testing.T) {
	res := execute(t, NewParseCommand(), withFormat(config.Default(), "md"), "SELECT a")
	require.NoError(t, res.err)
	assert.True(t, strings.HasPrefix(res.stdout, "1. **Script**: `SELECT a`\n"), res.stdout)
}

func TestParse_SampleMarkdown(t *testing.T) {
	res := execute(t, NewParseCommand(), withFormat(config.Default(), "md"), clitest.SampleSQL)
	require.NoError(t, res.err)
	clitest.AssertValidMarkdown(t, res.stdout)
	clitest.AssertNoANSI(t, res.stdout)
	assert.Contains(t, res.stdout, "**CTE**")
	assert.Contains(t, res.stdout, "**Join**")
}

func TestParse_FileArgument(t *testing.T) {
	path := clitest.WriteSQLFile(t, "query.sql", "SELECT b FROM t")

	res := execute(t, NewParseCommand(), withFormat(config.Default(), "yaml"), "", path)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Text: SELECT b FROM t")
}

func TestParse_MissingFile(t *testing.T) {
	res := execute(t, NewParseCommand(), config.Default(), "", filepath.Join(t.TempDir(), "missing.sql"))
	require.Error(t, res.err)
	assert.Equal(t, ExitUsage, ExitCode(res.err))
}

func TestParse_ToFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg := withFormat(config.Default(), "html")
	cfg.ToFile = true
	res := execute(t, NewParseCommand(), cfg, "SELECT 1")
	require.NoError(t, res.err)

	abs, err := filepath.Abs("out.html")
	require.NoError(t, err)
	assert.Equal(t, abs+"\n", res.stdout)

	data, err := os.ReadFile(filepath.Join(dir, "out.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "<html")
}

func TestParse_AllFormats(t *testing.T) {
	dir := t.TempDir()
	cfg := withFormat(config.Default(), "all")
	cfg.OutputPath = filepath.Join(dir, "report.txt")

	res := execute(t, NewParseCommand(), cfg, "SELECT a FROM t")
	require.NoError(t, res.err)

	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, len(render.Formats()))
	for i, f := range render.Formats() {
		want := filepath.Join(dir, "report."+f.Extension())
		assert.Equal(t, want, lines[i])
		assert.FileExists(t, want)
	}
}

func TestParse_ParseErrors(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg := config.Default()
	cfg.ToFile = true
	res := execute(t, NewParseCommand(), cfg, "SELECT (1")
	require.Error(t, res.err)

	assert.Equal(t, ExitParse, ExitCode(res.err))
	assert.True(t, Reported(res.err))
	assert.True(t, strings.HasPrefix(res.stderr, "1,"), res.stderr)
	assert.Empty(t, res.stdout)
	assert.NoFileExists(t, filepath.Join(dir, "out.json"))
}

func TestParse_LogDestinations(t *testing.T) {
	t.Run("stderr", func(t *testing.T) {
		cfg := config.Default()
		cfg.LogDestination = config.LogStderr
		res := execute(t, NewParseCommand(), cfg, "SELECT 1")
		require.NoError(t, res.err)
		assert.Contains(t, res.stderr, "parse finished")
		assert.Contains(t, res.stderr, "render finished")
		assert.NotContains(t, res.stdout, "run_id=")
	})

	t.Run("output to console", func(t *testing.T) {
		cfg := config.Default()
		cfg.LogDestination = config.LogOutput
		res := execute(t, NewParseCommand(), cfg, "SELECT 1")
		require.NoError(t, res.err)

		body, log, found := strings.Cut(res.stdout, "time=")
		require.True(t, found, res.stdout)
		assert.True(t, json.Valid([]byte(body)))
		assert.Contains(t, log, "capture finished")
	})

	t.Run("output appended to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tree.md")
		cfg := withFormat(config.Default(), "md")
		cfg.OutputPath = path
		cfg.LogDestination = config.LogOutput
		res := execute(t, NewParseCommand(), cfg, "SELECT 1")
		require.NoError(t, res.err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "1. **Script**"))
		assert.Contains(t, string(data), "run_id=")
	})

	t.Run("delivered after failure", func(t *testing.T) {
		cfg := config.Default()
		cfg.LogDestination = config.LogStdout
		res := execute(t, NewParseCommand(), cfg, "SELECT (1")
		require.Error(t, res.err)
		assert.Contains(t, res.stdout, "parse error")
	})
}

func TestBrowse_NeedsTerminal(t *testing.T) {
	path := clitest.WriteSQLFile(t, "query.sql", "SELECT 1")
	res := execute(t, NewBrowseCommand(), config.Default(), "", path)
	require.Error(t, res.err)
	assert.Equal(t, ExitUsage, ExitCode(res.err))
	assert.Contains(t, res.err.Error(), "terminal")
}

func TestReadInput_Pipe(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, err = w.WriteString("SELECT 2")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	defer func() { _ = r.Close() }()

	cmd := &cobra.Command{}
	cmd.SetIn(r)
	sql, err := readInput(cmd, nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 2", sql)
}

func TestStats(t *testing.T) {
	tree, err := pipeline.New(pipeline.Config{}).Capture("SELECT a, b, c")
	require.NoError(t, err)

	stats := collectStats(tree)
	assert.Equal(t, 10, stats.Nodes)
	assert.Equal(t, 5, stats.MaxDepth)
	require.Len(t, stats.Types, 6)
	assert.Equal(t, TypeCount{TypeName: "ColumnRef", Count: 3}, stats.Types[0])
	assert.Equal(t, TypeCount{TypeName: "SelectItem", Count: 3}, stats.Types[1])
	assert.Equal(t, "Script", stats.Types[2].TypeName)

	res := execute(t, NewStatsCommand(), config.Default(), "SELECT a, b, c")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "10 nodes, 6 node types, depth 5")
	assert.Contains(t, res.stdout, "ColumnRef")
	assert.Contains(t, res.stdout, "30.0%")
}

func TestStats_ParseError(t *testing.T) {
	res := execute(t, NewStatsCommand(), config.Default(), "SELECT (")
	assert.Equal(t, ExitParse, ExitCode(res.err))
}

func TestCatalog(t *testing.T) {
	res := execute(t, NewCatalogCommand(), config.Default(), "")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, fmt.Sprintf("%d node types", len(pipeline.Catalog())))
	assert.Contains(t, res.stdout, "Left, Op, Right")

	res = execute(t, NewCatalogCommand(), config.Default(), "", "--json")
	require.NoError(t, res.err)
	var got []pipeline.NodeType
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &got))
	assert.Equal(t, pipeline.Catalog(), got)
}

func TestFormats(t *testing.T) {
	res := execute(t, NewFormatsCommand(), config.Default(), "")
	require.NoError(t, res.err)
	for _, name := range []string{"json", "yaml", "html", "md", "all"} {
		assert.Contains(t, res.stdout, name)
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitUsage, ExitCode(errors.New("bad flag")))
	assert.Equal(t, ExitRender, ExitCode(fmt.Errorf("wrapped: %w", &ExitError{Code: ExitRender, Err: assert.AnError})))

	err := &ExitError{Code: ExitUsage, Err: ErrInputNotRedirected}
	assert.ErrorIs(t, err, ErrInputNotRedirected)
	assert.Equal(t, "input is not redirected", err.Error())
	assert.False(t, Reported(err))
}
