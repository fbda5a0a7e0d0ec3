// Package config provides configuration management for the sqltree CLI.
//
// Settings are layered from defaults, an optional sqltree.yaml file,
// SQLTREE_* environment variables and explicitly set flags, in increasing
// order of precedence.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/leapstack-labs/sqltree/pkg/dialect"
	"github.com/leapstack-labs/sqltree/pkg/render"
)

// Default values for configuration.
const (
	DefaultFormat         = "json"
	DefaultLogDestination = "none"
	DefaultServeAddr      = "127.0.0.1:8790"
	DefaultWatchDebounce  = 150 * time.Millisecond
	DefaultOutputStem     = "out"
)

// LogDestination selects where the run log is delivered.
type LogDestination int

// Log destinations.
const (
	LogNone LogDestination = iota
	LogStdout
	LogStderr
	LogOutput
)

var logDestinationNames = [...]string{
	LogNone:   "none",
	LogStdout: "stdout",
	LogStderr: "stderr",
	LogOutput: "output",
}

func (d LogDestination) String() string {
	if d < 0 || int(d) >= len(logDestinationNames) {
		return fmt.Sprintf("LogDestination(%d)", int(d))
	}
	return logDestinationNames[d]
}

// MarshalText implements encoding.TextMarshaler.
func (d LogDestination) MarshalText() ([]byte, error) {
	if d < 0 || int(d) >= len(logDestinationNames) {
		return nil, fmt.Errorf("invalid log destination %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. "stdError" and
// "stdOut" spellings are accepted.
func (d *LogDestination) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	switch name {
	case "", "none":
		*d = LogNone
	case "stdout":
		*d = LogStdout
	case "stderr", "stderror":
		*d = LogStderr
	case "output":
		*d = LogOutput
	default:
		return fmt.Errorf("unknown log destination %q (expected one of none, stdout, stderr, output)", name)
	}
	return nil
}

// FormatSelection is the set of formats one run renders, in render order.
type FormatSelection []render.Format

// AllFormats is the selection name for every output format.
const AllFormats = "all"

// UnmarshalText implements encoding.TextUnmarshaler. It accepts "all" or a
// single format name.
func (s *FormatSelection) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	if name == AllFormats {
		*s = render.Formats()
		return nil
	}
	f, err := render.ParseFormat(name)
	if err != nil {
		return err
	}
	*s = FormatSelection{f}
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (s FormatSelection) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s FormatSelection) String() string {
	if s.Multiple() {
		return AllFormats
	}
	if len(s) == 0 {
		return DefaultFormat
	}
	return s[0].String()
}

// Multiple reports whether more than one format is selected.
func (s FormatSelection) Multiple() bool {
	return len(s) > 1
}

// Config holds all CLI configuration options.
type Config struct {
	Format         FormatSelection `koanf:"format"`
	DialectName    string          `koanf:"dialect"`
	ToFile         bool            `koanf:"to_file"`
	OutputPath     string          `koanf:"output_path"`
	LogDestination LogDestination  `koanf:"log_destination"`
	Verbose        bool            `koanf:"verbose"`
	HTML           HTMLConfig      `koanf:"html"`
	YAML           YAMLConfig      `koanf:"yaml"`
	Serve          ServeConfig     `koanf:"serve"`
	Watch          WatchConfig     `koanf:"watch"`

	// Dialect is resolved from DialectName after loading.
	Dialect *dialect.Dialect `koanf:"-"`
}

// HTMLConfig holds options of the HTML renderer.
type HTMLConfig struct {
	Minify bool   `koanf:"minify"`
	Title  string `koanf:"title"`
}

// YAMLConfig holds options of the YAML renderer.
type YAMLConfig struct {
	MaxDepth int `koanf:"max_depth"`
}

// ServeConfig holds options of the serve command.
type ServeConfig struct {
	Addr string `koanf:"addr"`
}

// WatchConfig holds options of the watch command.
type WatchConfig struct {
	Debounce time.Duration `koanf:"debounce"`
}

// Default returns the configuration used when nothing else is loaded.
func Default() *Config {
	return &Config{
		Format:      FormatSelection{render.FormatJSON},
		DialectName: dialect.Default().Name,
		Dialect:     dialect.Default(),
		HTML:        HTMLConfig{Title: render.DefaultTitle},
		YAML:        YAMLConfig{MaxDepth: render.DefaultMaxDepth},
		Serve:       ServeConfig{Addr: DefaultServeAddr},
		Watch:       WatchConfig{Debounce: DefaultWatchDebounce},
	}
}

// RenderOptions returns the renderer options carried by the configuration.
func (c *Config) RenderOptions() render.Options {
	return render.Options{
		HTML: render.HTMLOptions{Title: c.HTML.Title, Minify: c.HTML.Minify},
		YAML: render.YAMLOptions{MaxDepth: c.YAML.MaxDepth},
	}
}

// WritesFiles reports whether output goes to files instead of the console.
// Rendering several formats always writes files.
func (c *Config) WritesFiles() bool {
	return c.ToFile || c.OutputPath != "" || c.Format.Multiple()
}

// OutputFile returns the file name output of format f is written to. Without
// an output path it is out.<ext>; with several formats the output path's
// extension is replaced by each format's.
func (c *Config) OutputFile(f render.Format) string {
	if c.OutputPath == "" {
		return DefaultOutputStem + "." + f.Extension()
	}
	if !c.Format.Multiple() {
		return c.OutputPath
	}
	stem := strings.TrimSuffix(c.OutputPath, filepath.Ext(c.OutputPath))
	return stem + "." + f.Extension()
}
