package pipeline

import (
	"reflect"

	"github.com/leapstack-labs/sqltree/pkg/parsetree"
)

// NodeType describes one entry of the engine's node catalog.
type NodeType struct {
	Name   string   `json:"name"`
	Fields []string `json:"fields,omitempty"`
}

// Catalog lists the node types of the SQL engine with their structural
// fields, in catalog order. Embedded fields shared by every node are left
// out.
func Catalog() []NodeType {
	types := parsetree.NewSQLEngine().NodeTypes()
	out := make([]NodeType, 0, len(types))
	for _, t := range types {
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		nt := NodeType{Name: t.Name()}
		if t.Kind() == reflect.Struct {
			for _, f := range reflect.VisibleFields(t) {
				if f.Anonymous || !f.IsExported() || len(f.Index) > 1 {
					continue
				}
				nt.Fields = append(nt.Fields, f.Name)
			}
		}
		out = append(out, nt)
	}
	return out
}
