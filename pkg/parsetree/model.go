// Package parsetree captures a syntax tree into an explicit, serializable
// tree of ParseData nodes and reflects each node's own structural data into
// Property lists.
//
// Capture happens in two passes. The first walks the source graph once and
// records one ParseData per visited node. The second reflects properties
// over the finished tree with a single visited set, so a value reachable
// from several places is only described at the first place reached.
package parsetree

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ParseData is one captured node.
type ParseData struct {
	TypeName   string       `json:"TypeName"`
	Text       string       `json:"Text"`
	Children   []*ParseData `json:"Children,omitempty"`
	Properties []Property   `json:"Properties,omitempty"`

	node any
}

// Node returns the source node d was captured from, or nil for trees that
// were decoded rather than captured.
func (d *ParseData) Node() any {
	return d.node
}

// AddChild appends child as the last child of d.
func (d *ParseData) AddChild(child *ParseData) {
	d.Children = append(d.Children, child)
}

// Count returns the number of nodes in the tree rooted at d.
func (d *ParseData) Count() int {
	n := 1
	for _, c := range d.Children {
		n += c.Count()
	}
	return n
}

// Walk calls fn for d and every descendant in depth-first pre-order, with
// the depth of each node (0 for d).
func (d *ParseData) Walk(fn func(n *ParseData, depth int)) {
	var walk func(n *ParseData, depth int)
	walk = func(n *ParseData, depth int) {
		fn(n, depth)
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(d, 0)
}

// Property is a named or positional value attached to a node. Value is a
// string or a []Property; elements of a list-valued property have no Name.
type Property struct {
	Name  string `json:"Name,omitempty"`
	Value any    `json:"Value,omitempty"`
}

// List returns the value as a property list, or nil when it is not one.
func (p Property) List() []Property {
	l, _ := p.Value.([]Property)
	return l
}

// UnmarshalJSON restores Value as a string or a []Property.
func (p *Property) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name  string          `json:"Name"`
		Value json.RawMessage `json:"Value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Name = raw.Name
	p.Value = nil

	v := bytes.TrimSpace(raw.Value)
	switch {
	case len(v) == 0 || bytes.Equal(v, []byte("null")):
	case v[0] == '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return err
		}
		p.Value = s
	case v[0] == '[':
		var list []Property
		if err := json.Unmarshal(v, &list); err != nil {
			return err
		}
		p.Value = list
	default:
		return fmt.Errorf("property %q: unsupported value %s", raw.Name, v)
	}
	return nil
}
