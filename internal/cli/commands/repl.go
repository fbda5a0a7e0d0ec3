package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqltree/internal/pipeline"
	"github.com/leapstack-labs/sqltree/pkg/dialect"
	"github.com/leapstack-labs/sqltree/pkg/render"
)

const (
	replPrompt             = "sqltree> "
	replContinuationPrompt = "     ...> "
)

// lineReader is the part of a readline instance the REPL loop uses.
type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
}

// replSession is the state of one REPL: the format and dialect can be
// switched between statements.
type replSession struct {
	cc     *CommandContext
	out    io.Writer
	errOut io.Writer
	format render.Format
}

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactively render parse trees",
		Long: `Start an interactive session. SQL is rendered when a line ends with a
semicolon; dot commands switch the format and dialect.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{LongRunningAnnotation: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          replPrompt,
				HistoryFile:     replHistoryFile(),
				AutoComplete:    newREPLCompleter(),
				InterruptPrompt: "^C",
				EOFPrompt:       ".quit",
			})
			if err != nil {
				return fmt.Errorf("failed to initialize REPL: %w", err)
			}
			defer func() { _ = rl.Close() }()

			s := newREPLSession(cc, cmd.OutOrStdout(), cmd.ErrOrStderr())
			_, _ = fmt.Fprintf(s.out, "sqltree REPL (dialect: %s, format: %s)\n", cc.Pipeline.Dialect().Name, s.format)
			_, _ = fmt.Fprintln(s.out, "Type .help for commands, .quit to exit")
			return s.run(rl)
		},
	}
}

func newREPLSession(cc *CommandContext, out, errOut io.Writer) *replSession {
	format := render.FormatJSON
	if len(cc.Cfg.Format) == 1 {
		format = cc.Cfg.Format[0]
	}
	return &replSession{cc: cc, out: out, errOut: errOut, format: format}
}

func replHistoryFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir = filepath.Join(dir, "sqltree")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return ""
	}
	return filepath.Join(dir, "repl_history")
}

func newREPLCompleter() *readline.PrefixCompleter {
	var formats []readline.PrefixCompleterInterface
	for _, f := range render.Formats() {
		formats = append(formats, readline.PcItem(f.String()))
	}
	var dialects []readline.PrefixCompleterInterface
	for _, name := range dialect.List() {
		dialects = append(dialects, readline.PcItem(name))
	}
	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".format", formats...),
		readline.PcItem(".dialect", dialects...),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}

func (s *replSession) run(rl lineReader) error {
	var buf strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buf.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if buf.Len() == 0 && strings.HasPrefix(line, ".") {
			if quit := s.handleDotCommand(line); quit {
				return nil
			}
			continue
		}

		// Accumulate multi-line SQL until semicolon
		buf.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			buf.WriteString("\n")
			rl.SetPrompt(replContinuationPrompt)
			continue
		}
		rl.SetPrompt(replPrompt)

		sql := buf.String()
		buf.Reset()
		s.execute(sql)
	}
}

func (s *replSession) execute(sql string) {
	tree, err := s.cc.Pipeline.Capture(sql)
	if err != nil {
		if list := pipeline.ParseErrors(err); list != nil {
			for _, e := range list {
				_, _ = fmt.Fprintf(s.errOut, "%d,%d: %s\n", e.Pos.Line, e.Pos.Column, e.Message)
			}
			return
		}
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		return
	}

	data, err := s.cc.Pipeline.Render(tree, s.format)
	if err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		return
	}
	_, _ = s.out.Write(data)
	if len(data) > 0 && data[len(data)-1] != '\n' {
		_, _ = fmt.Fprintln(s.out)
	}
}

// handleDotCommand runs one dot command and reports whether to quit.
func (s *replSession) handleDotCommand(line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(s.out)

	case ".format":
		if len(parts) < 2 {
			_, _ = fmt.Fprintf(s.out, "format: %s\n", s.format)
			return false
		}
		f, err := render.ParseFormat(parts[1])
		if err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return false
		}
		s.format = f
		_, _ = fmt.Fprintf(s.out, "format: %s\n", f)

	case ".dialect":
		if len(parts) < 2 {
			_, _ = fmt.Fprintf(s.out, "dialect: %s\n", s.cc.Pipeline.Dialect().Name)
			return false
		}
		d, err := dialect.Lookup(parts[1])
		if err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return false
		}
		s.cc.Pipeline = pipeline.New(pipeline.Config{
			Dialect: d,
			Render:  s.cc.Cfg.RenderOptions(),
			Logger:  s.cc.Logger,
		})
		_, _ = fmt.Fprintf(s.out, "dialect: %s\n", d.Name)

	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help             Show this help message
  .format [name]    Show or set the output format (json, yaml, html, md)
  .dialect [name]   Show or set the SQL dialect
  .quit / .exit     Exit the REPL

Tips:
  - SQL is rendered once a line ends with a semicolon (;)
  - Use arrow keys to navigate history
`
	_, _ = fmt.Fprintln(w, help)
}
