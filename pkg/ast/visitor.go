package ast

import (
	"errors"
	"fmt"
	"reflect"
)

// Hook registration errors.
var (
	ErrUnknownNodeType = errors.New("unknown node type")
	ErrHookExists      = errors.New("hook already registered")
)

// HookFunc observes one node. Calling next continues the default traversal
// into the node's children; a hook that never calls next prunes the subtree.
type HookFunc func(n Node, next func())

// Visitor walks a syntax tree depth-first, dispatching to the hook
// registered for each node's concrete type.
type Visitor struct {
	hooks map[reflect.Type]HookFunc
}

// NewVisitor returns a visitor with no hooks. Walking with it visits every
// node without observing any.
func NewVisitor() *Visitor {
	return &Visitor{hooks: make(map[reflect.Type]HookFunc)}
}

// Hook installs fn for nodes whose dynamic type is exactly t.
func (v *Visitor) Hook(t reflect.Type, fn HookFunc) error {
	if !IsNodeType(t) {
		return fmt.Errorf("%w: %v", ErrUnknownNodeType, t)
	}
	if _, ok := v.hooks[t]; ok {
		return fmt.Errorf("%w: %v", ErrHookExists, t)
	}
	v.hooks[t] = fn
	return nil
}

// Hooked returns the number of installed hooks.
func (v *Visitor) Hooked() int {
	return len(v.hooks)
}

// Walk traverses the tree rooted at root in depth-first pre-order.
func (v *Visitor) Walk(root Node) {
	v.visit(root)
}

func (v *Visitor) visit(n Node) {
	if isNil(n) {
		return
	}
	fn, ok := v.hooks[reflect.TypeOf(n)]
	if !ok {
		walkChildren(n, v.visit)
		return
	}
	done := false
	fn(n, func() {
		if done {
			return
		}
		done = true
		walkChildren(n, v.visit)
	})
}

// Inspect calls fn for every node in pre-order. It is a convenience over a
// Visitor for callers that do not need per-type dispatch.
func Inspect(root Node, fn func(Node)) {
	var visit func(Node)
	visit = func(n Node) {
		if isNil(n) {
			return
		}
		fn(n)
		walkChildren(n, visit)
	}
	visit(root)
}

func isNil(n Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
