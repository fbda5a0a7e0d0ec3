package parsetree

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/leapstack-labs/sqltree/pkg/ast"
)

// ErrNotNode is returned when a SQL traversal is started from a value that
// is not a syntax tree node.
var ErrNotNode = errors.New("not a syntax tree node")

// SQLEngine adapts the SQL syntax tree in package ast to Engine.
type SQLEngine struct{}

// NewSQLEngine returns the SQL engine.
func NewSQLEngine() *SQLEngine {
	return &SQLEngine{}
}

// NodeTypes returns the published SQL node catalog.
func (*SQLEngine) NodeTypes() []reflect.Type {
	return ast.NodeTypes()
}

// BaseTypes returns the base embedded in every SQL node.
func (*SQLEngine) BaseTypes() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[ast.NodeInfo]()}
}

// Text returns the source text of a SQL node, or "" for any other value.
func (*SQLEngine) Text(node any) string {
	n, ok := node.(ast.Node)
	if !ok {
		return ""
	}
	return ast.Text(n)
}

// NewTraversal returns a traversal backed by an ast.Visitor.
func (*SQLEngine) NewTraversal() Traversal {
	return &sqlTraversal{visitor: ast.NewVisitor()}
}

type sqlTraversal struct {
	visitor *ast.Visitor
}

func (t *sqlTraversal) Hook(typ reflect.Type, fn HookFunc) error {
	return t.visitor.Hook(typ, func(n ast.Node, next func()) {
		fn(n, next)
	})
}

func (t *sqlTraversal) Walk(root any) error {
	n, ok := root.(ast.Node)
	if !ok {
		return fmt.Errorf("%w: %T", ErrNotNode, root)
	}
	t.visitor.Walk(n)
	return nil
}

// CaptureSQL captures a parsed SQL script.
func CaptureSQL(script *ast.Script, opts Options) (*ParseData, error) {
	return NewCapturer(NewSQLEngine(), opts).Capture(script)
}
