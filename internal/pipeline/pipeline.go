// Package pipeline runs SQL text through parsing, tree capture and rendering,
// logging how long each stage took.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/leapstack-labs/sqltree/pkg/dialect"
	"github.com/leapstack-labs/sqltree/pkg/parser"
	"github.com/leapstack-labs/sqltree/pkg/parsetree"
	"github.com/leapstack-labs/sqltree/pkg/render"
	"golang.org/x/sync/errgroup"
)

// Config configures a Pipeline.
type Config struct {
	Dialect *dialect.Dialect
	Render  render.Options
	Logger  *slog.Logger
}

// Pipeline turns SQL into rendered documents. It holds no per-run state and
// may be used concurrently.
type Pipeline struct {
	dialect *dialect.Dialect
	options render.Options
	logger  *slog.Logger
}

// Document is one rendered output.
type Document struct {
	Format render.Format
	Data   []byte
}

// New creates a pipeline. A nil dialect selects the default one.
func New(cfg Config) *Pipeline {
	d := cfg.Dialect
	if d == nil {
		d = dialect.Default()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{dialect: d, options: cfg.Render, logger: logger}
}

// Dialect returns the dialect SQL is parsed with.
func (p *Pipeline) Dialect() *dialect.Dialect {
	return p.dialect
}

// Capture parses sql and captures its tree. When the SQL does not parse the
// error is a parser.ErrorList.
func (p *Pipeline) Capture(sql string) (*parsetree.ParseData, error) {
	start := time.Now()
	script, err := parser.Parse(sql, p.dialect)
	p.logger.Info("parse finished",
		slog.String("dialect", p.dialect.Name),
		slog.Duration("elapsed", time.Since(start)))
	if err != nil {
		return nil, err
	}

	start = time.Now()
	tree, err := parsetree.CaptureSQL(script, parsetree.Options{Logger: p.logger})
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}
	p.logger.Info("capture finished",
		slog.Int("nodes", tree.Count()),
		slog.Duration("elapsed", time.Since(start)))
	return tree, nil
}

// Render renders tree in format f.
func (p *Pipeline) Render(tree *parsetree.ParseData, f render.Format) ([]byte, error) {
	start := time.Now()
	data, err := render.Bytes(f, tree, p.options)
	if err != nil {
		return nil, err
	}
	p.logger.Info("render finished",
		slog.String("format", f.String()),
		slog.Int("bytes", len(data)),
		slog.Duration("elapsed", time.Since(start)))
	return data, nil
}

// RenderAll renders tree in each of formats concurrently. Documents are
// returned in the order of formats; any failure fails the whole call.
func (p *Pipeline) RenderAll(ctx context.Context, tree *parsetree.ParseData, formats []render.Format) ([]Document, error) {
	docs := make([]Document, len(formats))
	g, ctx := errgroup.WithContext(ctx)
	for i, f := range formats {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := p.Render(tree, f)
			if err != nil {
				return err
			}
			docs[i] = Document{Format: f, Data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// ParseErrors returns the parse errors carried by err, if any.
func ParseErrors(err error) parser.ErrorList {
	var list parser.ErrorList
	if errors.As(err, &list) {
		return list
	}
	return nil
}
