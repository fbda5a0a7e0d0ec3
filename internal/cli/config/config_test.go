package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqltree/pkg/dialect"
	"github.com/leapstack-labs/sqltree/pkg/render"
)

func writeConfigFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "sqltree.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newFlagSet(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("config", "", "")
	fs.StringP("format", "f", DefaultFormat, "")
	fs.String("dialect", "", "")
	fs.BoolP("to-file", "t", false, "")
	fs.StringP("output-path", "o", "", "")
	fs.StringP("log-destination", "l", DefaultLogDestination, "")
	fs.Bool("minify", false, "")
	fs.Int("yaml-max-depth", render.DefaultMaxDepth, "")
	fs.Duration("debounce", DefaultWatchDebounce, "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	defer ResetConfig()

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, FormatSelection{render.FormatJSON}, cfg.Format)
	assert.Same(t, dialect.Default(), cfg.Dialect)
	assert.Equal(t, LogNone, cfg.LogDestination)
	assert.False(t, cfg.ToFile)
	assert.Empty(t, cfg.OutputPath)
	assert.Equal(t, render.DefaultTitle, cfg.HTML.Title)
	assert.Equal(t, render.DefaultMaxDepth, cfg.YAML.MaxDepth)
	assert.Equal(t, DefaultServeAddr, cfg.Serve.Addr)
	assert.Equal(t, DefaultWatchDebounce, cfg.Watch.Debounce)
	assert.Empty(t, GetConfigFileUsed())
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	defer ResetConfig()

	writeConfigFile(t, dir, `
format: yaml
dialect: postgres
log_destination: stderr
html:
  title: From File
yaml:
  max_depth: 800
`)
	t.Setenv("SQLTREE_FORMAT", "html")
	t.Setenv("SQLTREE_HTML__MINIFY", "true")
	t.Setenv("SQLTREE_WATCH__DEBOUNCE", "1s")

	cfg, err := LoadConfig("", newFlagSet(t, "--format", "md", "--yaml-max-depth", "900"))
	require.NoError(t, err)

	assert.Equal(t, FormatSelection{render.FormatMarkdown}, cfg.Format, "flag beats env")
	assert.True(t, cfg.HTML.Minify, "env beats default")
	assert.Equal(t, "From File", cfg.HTML.Title, "file beats default")
	assert.Equal(t, 900, cfg.YAML.MaxDepth, "flag beats file")
	assert.Equal(t, LogStderr, cfg.LogDestination)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
	assert.Equal(t, "postgres", cfg.Dialect.Name)
	assert.Equal(t, filepath.Join(dir, "sqltree.yaml"), GetConfigFileUsed())
}

func TestLoadConfig_UnchangedFlagsDoNotOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	defer ResetConfig()
	t.Setenv("SQLTREE_FORMAT", "yaml")

	cfg, err := LoadConfig("", newFlagSet(t))
	require.NoError(t, err)
	assert.Equal(t, FormatSelection{render.FormatYAML}, cfg.Format)
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())
	defer ResetConfig()

	path := writeConfigFile(t, t.TempDir(), "format: all\noutput_path: report.txt\n")
	cfg, err := LoadConfig(path, newFlagSet(t, "--config", path))
	require.NoError(t, err)

	assert.Equal(t, FormatSelection(render.Formats()), cfg.Format)
	assert.Equal(t, "report.txt", cfg.OutputPath)
	assert.Equal(t, path, GetConfigFileUsed())
}

func TestLoadConfig_SearchesParents(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))
	writeConfigFile(t, root, "format: md\n")
	t.Chdir(nested)
	defer ResetConfig()

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, FormatSelection{render.FormatMarkdown}, cfg.Format)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		errSubstr string
		target    error
	}{
		{name: "unknown format", args: []string{"--format", "xml"}, errSubstr: "unknown output format"},
		{name: "unknown dialect", args: []string{"--dialect", "oracle"}, target: dialect.ErrUnknownDialect},
		{name: "unknown log destination", args: []string{"-l", "file"}, errSubstr: "unknown log destination"},
		{name: "shallow yaml depth", args: []string{"--yaml-max-depth", "10"}, errSubstr: "yaml.max_depth must be at least 500"},
		{name: "negative debounce", args: []string{"--debounce=-1s"}, errSubstr: "watch.debounce"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			defer ResetConfig()

			_, err := LoadConfig("", newFlagSet(t, tt.args...))
			require.Error(t, err)
			if tt.errSubstr != "" {
				assert.Contains(t, err.Error(), tt.errSubstr)
			}
			if tt.target != nil {
				assert.True(t, errors.Is(err, tt.target), "got %v", err)
			}
		})
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())
	defer ResetConfig()

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestFormatSelection(t *testing.T) {
	tests := []struct {
		input    string
		want     FormatSelection
		multiple bool
		text     string
	}{
		{input: "json", want: FormatSelection{render.FormatJSON}, text: "json"},
		{input: "YML", want: FormatSelection{render.FormatYAML}, text: "yaml"},
		{input: "markdown", want: FormatSelection{render.FormatMarkdown}, text: "md"},
		{input: " all ", want: FormatSelection(render.Formats()), multiple: true, text: "all"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var s FormatSelection
			require.NoError(t, s.UnmarshalText([]byte(tt.input)))
			assert.Equal(t, tt.want, s)
			assert.Equal(t, tt.multiple, s.Multiple())
			assert.Equal(t, tt.text, s.String())
		})
	}

	var s FormatSelection
	err := s.UnmarshalText([]byte("pdf"))
	assert.ErrorIs(t, err, render.ErrUnknownFormat)
}

func TestLogDestination(t *testing.T) {
	tests := []struct {
		input string
		want  LogDestination
	}{
		{"", LogNone},
		{"none", LogNone},
		{"stdOut", LogStdout},
		{"StdError", LogStderr},
		{"stderr", LogStderr},
		{"output", LogOutput},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var d LogDestination
			require.NoError(t, d.UnmarshalText([]byte(tt.input)))
			assert.Equal(t, tt.want, d)

			text, err := d.MarshalText()
			require.NoError(t, err)
			assert.Equal(t, tt.want.String(), string(text))
		})
	}

	assert.Equal(t, "LogDestination(9)", LogDestination(9).String())
	_, err := LogDestination(9).MarshalText()
	assert.Error(t, err)
}

func TestConfig_OutputFile(t *testing.T) {
	all := FormatSelection(render.Formats())
	tests := []struct {
		name   string
		cfg    Config
		format render.Format
		want   string
	}{
		{"default name", Config{Format: FormatSelection{render.FormatYAML}}, render.FormatYAML, "out.yaml"},
		{"explicit path", Config{Format: FormatSelection{render.FormatHTML}, OutputPath: "tree.htm"}, render.FormatHTML, "tree.htm"},
		{"all without path", Config{Format: all}, render.FormatMarkdown, "out.md"},
		{"all replaces extension", Config{Format: all, OutputPath: "dir/report.txt"}, render.FormatJSON, "dir/report.json"},
		{"all without extension", Config{Format: all, OutputPath: "report"}, render.FormatHTML, "report.html"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.OutputFile(tt.format))
		})
	}
}

func TestConfig_WritesFiles(t *testing.T) {
	assert.False(t, Default().WritesFiles())
	assert.True(t, (&Config{ToFile: true}).WritesFiles())
	assert.True(t, (&Config{OutputPath: "x.json"}).WritesFiles())
	assert.True(t, (&Config{Format: FormatSelection(render.Formats())}).WritesFiles())
}

func TestConfig_RenderOptions(t *testing.T) {
	cfg := Default()
	cfg.HTML.Minify = true
	cfg.HTML.Title = "Query"
	cfg.YAML.MaxDepth = 600

	opts := cfg.RenderOptions()
	assert.Equal(t, render.HTMLOptions{Title: "Query", Minify: true}, opts.HTML)
	assert.Equal(t, 600, opts.YAML.MaxDepth)
}

func TestContextAccessors(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, Default(), FromContext(ctx))
	assert.NotNil(t, GetLogger(ctx))

	cfg := Default()
	cfg.Verbose = true
	ctx = WithConfig(ctx, cfg)
	assert.Same(t, cfg, FromContext(ctx))
}
