// Package runlog collects the log of one CLI run in memory and delivers it
// once the run's output has been written.
package runlog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/leapstack-labs/sqltree/internal/cli/config"
)

type logKey struct{}

// Log is an in-memory run log. It is safe for concurrent use.
type Log struct {
	id     string
	mu     sync.Mutex
	buf    bytes.Buffer
	logger *slog.Logger
}

// New creates a run log tagged with a fresh run id. Verbose logs include
// debug records.
func New(verbose bool) *Log {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	l := &Log{id: uuid.NewString()}
	handler := slog.NewTextHandler(l, &slog.HandlerOptions{Level: level})
	l.logger = slog.New(handler).With(slog.String("run_id", l.id))
	return l
}

// ID returns the run id.
func (l *Log) ID() string {
	return l.id
}

// Logger returns the logger writing to the run log.
func (l *Log) Logger() *slog.Logger {
	return l.logger
}

func (l *Log) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Write(p)
}

func (l *Log) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.String()
}

// Deliver sends the collected log to dest. LogOutput appends it to each of
// files, or writes it to stdout when no file was written.
func (l *Log) Deliver(dest config.LogDestination, stdout, stderr io.Writer, files ...string) error {
	text := l.String()
	switch dest {
	case config.LogNone:
		return nil
	case config.LogStdout:
		_, err := io.WriteString(stdout, text)
		return err
	case config.LogStderr:
		_, err := io.WriteString(stderr, text)
		return err
	case config.LogOutput:
		if len(files) == 0 {
			_, err := io.WriteString(stdout, text)
			return err
		}
		for _, name := range files {
			if err := appendFile(name, text); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown log destination %v", dest)
	}
}

func appendFile(name, text string) error {
	f, err := os.OpenFile(name, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("append run log: %w", err)
	}
	if _, err := f.WriteString(text); err != nil {
		_ = f.Close()
		return fmt.Errorf("append run log to %s: %w", name, err)
	}
	return f.Close()
}

// WithLog returns a copy of ctx carrying l.
func WithLog(ctx context.Context, l *Log) context.Context {
	return context.WithValue(ctx, logKey{}, l)
}

// FromContext returns the run log carried by ctx, or nil.
func FromContext(ctx context.Context) *Log {
	l, _ := ctx.Value(logKey{}).(*Log)
	return l
}
