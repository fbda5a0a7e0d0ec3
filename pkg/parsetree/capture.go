package parsetree

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"time"
)

// Capture errors.
var (
	ErrHookInstall = errors.New("cannot install node hook")
	ErrEmptyTree   = errors.New("traversal entered no node")
)

// HookFunc observes one node. Calling next continues the engine's default
// traversal into the node's children.
type HookFunc func(node any, next func())

// Engine is a traversal engine over some syntax tree.
type Engine interface {
	// NodeTypes returns every concrete node type the engine can visit.
	NodeTypes() []reflect.Type
	// NewTraversal returns a traversal with no hooks installed.
	NewTraversal() Traversal
	// Text returns the source text spanned by node.
	Text(node any) string
}

// Traversal is a single depth-first walk with per-type hooks.
type Traversal interface {
	Hook(t reflect.Type, fn HookFunc) error
	Walk(root any) error
}

// BaseTyper is implemented by engines whose nodes embed common base types.
// Fields of those types are not reflected into properties.
type BaseTyper interface {
	BaseTypes() []reflect.Type
}

// Options configures a Capturer.
type Options struct {
	Logger *slog.Logger
}

// Capturer builds ParseData trees from the nodes of one engine.
type Capturer struct {
	engine    Engine
	reflector *Reflector
	logger    *slog.Logger
}

// NewCapturer creates a capturer for engine.
func NewCapturer(engine Engine, opts Options) *Capturer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	var base []reflect.Type
	if bt, ok := engine.(BaseTyper); ok {
		base = bt.BaseTypes()
	}
	return &Capturer{
		engine:    engine,
		reflector: NewReflector(ReflectorOptions{Base: base, Logger: logger}),
		logger:    logger,
	}
}

// Capture walks the tree rooted at root once, recording one ParseData per
// node entered, then fills in the properties of every captured node.
func (c *Capturer) Capture(root any) (*ParseData, error) {
	start := time.Now()
	traversal := c.engine.NewTraversal()

	var (
		tree  *ParseData
		stack []*ParseData
	)
	enter := func(node any, next func()) {
		d := &ParseData{
			TypeName: typeName(node),
			Text:     c.engine.Text(node),
			node:     node,
		}
		if tree == nil {
			tree = d
		}
		if len(stack) > 0 {
			stack[len(stack)-1].AddChild(d)
		}
		stack = append(stack, d)
		next()
		stack = stack[:len(stack)-1]
	}

	types := c.engine.NodeTypes()
	for _, t := range types {
		if err := traversal.Hook(t, enter); err != nil {
			return nil, fmt.Errorf("%w for %v: %w", ErrHookInstall, t, err)
		}
	}
	c.logger.Debug("hooks installed",
		slog.Int("types", len(types)),
		slog.Duration("elapsed", time.Since(start)))

	start = time.Now()
	if err := traversal.Walk(root); err != nil {
		return nil, fmt.Errorf("walk: %w", err)
	}
	if tree == nil {
		return nil, ErrEmptyTree
	}
	c.logger.Debug("tree captured",
		slog.Int("nodes", tree.Count()),
		slog.Duration("elapsed", time.Since(start)))

	start = time.Now()
	c.populate(tree)
	c.logger.Debug("properties reflected",
		slog.Duration("elapsed", time.Since(start)))

	return tree, nil
}

// populate reflects properties over the whole tree with one visited set,
// seeded with every captured node.
func (c *Capturer) populate(tree *ParseData) {
	visited := NewVisited()
	tree.Walk(func(d *ParseData, _ int) {
		visited.Add(d.node)
	})
	tree.Walk(func(d *ParseData, _ int) {
		d.Properties = c.reflector.Reflect(d.node, visited)
	})
}

// typeName is the name of node's concrete type without pointer indirection.
func typeName(node any) string {
	t := reflect.TypeOf(node)
	if t == nil {
		return "<nil>"
	}
	t = indirect(t)
	if name := t.Name(); name != "" {
		return name
	}
	return t.String()
}
