package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/sqltree/pkg/parsetree"
)

// DefaultMaxDepth is the YAML nesting ceiling used when none is configured.
const DefaultMaxDepth = 500

// ErrMaxDepth is returned when a tree nests deeper than the YAML ceiling.
var ErrMaxDepth = errors.New("maximum depth exceeded")

// YAMLOptions configures the YAML renderer.
type YAMLOptions struct {
	// MaxDepth bounds the nesting of nodes and property lists. Zero means
	// DefaultMaxDepth.
	MaxDepth int
}

// YAML writes tree as a YAML document. Empty strings and empty lists are
// omitted.
func YAML(w io.Writer, tree *parsetree.ParseData, opts YAMLOptions) error {
	b := yamlBuilder{max: opts.MaxDepth}
	if b.max <= 0 {
		b.max = DefaultMaxDepth
	}
	root, err := b.node(tree, 1)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}); err != nil {
		return err
	}
	return enc.Close()
}

type yamlBuilder struct {
	max int
}

func (b *yamlBuilder) check(depth int) error {
	if depth > b.max {
		return fmt.Errorf("%w: yaml nesting deeper than %d", ErrMaxDepth, b.max)
	}
	return nil
}

func (b *yamlBuilder) node(d *parsetree.ParseData, depth int) (*yaml.Node, error) {
	if err := b.check(depth); err != nil {
		return nil, err
	}
	m := mapping()
	addScalar(m, "TypeName", d.TypeName)
	addScalar(m, "Text", d.Text)

	if len(d.Children) > 0 {
		seq := sequence()
		for _, c := range d.Children {
			child, err := b.node(c, depth+1)
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, child)
		}
		m.Content = append(m.Content, scalar("Children"), seq)
	}

	if len(d.Properties) > 0 {
		seq, err := b.properties(d.Properties, depth+1)
		if err != nil {
			return nil, err
		}
		m.Content = append(m.Content, scalar("Properties"), seq)
	}
	return m, nil
}

func (b *yamlBuilder) properties(props []parsetree.Property, depth int) (*yaml.Node, error) {
	if err := b.check(depth); err != nil {
		return nil, err
	}
	seq := sequence()
	for _, p := range props {
		m := mapping()
		addScalar(m, "Name", p.Name)
		switch v := p.Value.(type) {
		case nil:
		case string:
			addScalar(m, "Value", v)
		case []parsetree.Property:
			if len(v) > 0 {
				nested, err := b.properties(v, depth+1)
				if err != nil {
					return nil, err
				}
				m.Content = append(m.Content, scalar("Value"), nested)
			}
		default:
			addScalar(m, "Value", placeholder(v))
		}
		seq.Content = append(seq.Content, m)
	}
	return seq, nil
}

func mapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func sequence() *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
}

// scalar returns a string node. The explicit tag keeps values such as
// "1" or "true" quoted.
func scalar(value string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
	if strings.Contains(value, "\n") {
		n.Style = yaml.LiteralStyle
	}
	return n
}

func addScalar(m *yaml.Node, key, value string) {
	if value == "" {
		return
	}
	m.Content = append(m.Content, scalar(key), scalar(value))
}
