package ast

import "reflect"

//go:generate go run ../../scripts/gencatalog -pkg . -out catalog_gen.go

var nodeTypeSet = func() map[reflect.Type]struct{} {
	m := make(map[reflect.Type]struct{}, len(nodeTypes))
	for _, t := range nodeTypes {
		m[t] = struct{}{}
	}
	return m
}()

// NodeTypes returns every concrete node type of the syntax tree, as
// pointer types, sorted by name. The slice is a copy.
func NodeTypes() []reflect.Type {
	out := make([]reflect.Type, len(nodeTypes))
	copy(out, nodeTypes)
	return out
}

// IsNodeType reports whether t is in the node catalog.
func IsNodeType(t reflect.Type) bool {
	_, ok := nodeTypeSet[t]
	return ok
}
