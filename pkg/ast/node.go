// Package ast defines the SQL syntax tree and its traversal engine.
//
// Every concrete node is a pointer to a struct that embeds NodeInfo. The set
// of node types is published through NodeTypes so that observers can attach
// a hook per type without enumerating the catalog by hand.
package ast

import "github.com/leapstack-labs/sqltree/pkg/token"

// Node is implemented by every syntax tree node.
type Node interface {
	Info() *NodeInfo
}

// Expr is a marker interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a marker interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// TableRef represents a table reference in a FROM clause.
type TableRef interface {
	Node
	tableRefNode()
}

// NodeInfo is the base shared by all nodes: the inclusive token span in
// the stream the node was parsed from.
type NodeInfo struct {
	First  int
	Last   int
	Stream *token.Stream
}

// Info returns the node's base information.
func (n *NodeInfo) Info() *NodeInfo {
	return n
}

// Pos returns the position of the node's first token.
func (n *NodeInfo) Pos() token.Position {
	return n.Stream.At(n.First).Pos
}

// Text reconstructs the source text spanned by n, trivia between its first
// and last token included.
func Text(n Node) string {
	if isNil(n) {
		return ""
	}
	info := n.Info()
	return info.Stream.Text(info.First, info.Last)
}

// DataType is a type name as written in a CAST. It is not a node: the parser
// interns one DataType per distinct spelling, so equal types within one
// script share a pointer.
type DataType struct {
	Name   string
	Params []string
}

// String renders the type as SQL, e.g. DECIMAL(10, 2).
func (d *DataType) String() string {
	if len(d.Params) == 0 {
		return d.Name
	}
	s := d.Name + "("
	for i, p := range d.Params {
		if i > 0 {
			s += ", "
		}
		s += p
	}
	return s + ")"
}
