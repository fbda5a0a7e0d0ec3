package render

import (
	"fmt"
	"html/template"
	"io"
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/sqltree/pkg/parsetree"
)

const (
	// DefaultTitle is the HTML page title used when none is configured.
	DefaultTitle = "SQL"

	maxDetailRows = 5
)

// HTMLOptions configures the HTML renderer.
type HTMLOptions struct {
	Title  string
	Minify bool
}

var pageTemplate = template.Must(template.ParseFS(assetFiles, "assets/page.html.tmpl"))

type htmlPage struct {
	Title  string
	Style  template.CSS
	Script template.JS
	Count  int
	Nodes  []*htmlNode
	Root   *htmlNode
}

type htmlNode struct {
	ID         int
	TypeName   string
	Type       string // lower-cased type name, searched by prefix
	Text       string
	FirstLine  string
	Detail     bool
	Rows       int
	TextAreaID string
	Properties []htmlProperty
	Children   []*htmlNode
}

type htmlProperty struct {
	Name   string
	Text   string
	Nested []htmlProperty
}

// HTML writes tree as a self-contained page with collapsible children,
// expandable node text and a prefix search over type names and text.
func HTML(w io.Writer, tree *parsetree.ParseData, opts HTMLOptions) error {
	a, err := assets(opts.Minify)
	if err != nil {
		return err
	}

	b := &htmlBuilder{lower: cases.Lower(language.Und)}
	root := b.node(tree)

	page := htmlPage{
		Title:  opts.Title,
		Style:  template.CSS(a.CSS), //nolint:gosec // embedded asset
		Script: template.JS(a.JS),   //nolint:gosec // embedded asset
		Count:  len(b.nodes),
		Nodes:  b.nodes,
		Root:   root,
	}
	if page.Title == "" {
		page.Title = DefaultTitle
	}
	if err := pageTemplate.Execute(w, page); err != nil {
		return fmt.Errorf("execute html template: %w", err)
	}
	return nil
}

// htmlBuilder numbers nodes in depth-first order, starting at 0 for each
// page.
type htmlBuilder struct {
	lower cases.Caser
	nodes []*htmlNode
}

func (b *htmlBuilder) node(d *parsetree.ParseData) *htmlNode {
	line, lines := firstLine(d.Text)
	n := &htmlNode{
		ID:         len(b.nodes),
		TypeName:   d.TypeName,
		Type:       b.lower.String(d.TypeName),
		Text:       d.Text,
		FirstLine:  line,
		Detail:     len(line) < len(d.Text),
		Rows:       min(lines, maxDetailRows),
		Properties: htmlProperties(d.Properties),
	}
	n.TextAreaID = "txt_" + strconv.Itoa(n.ID)
	b.nodes = append(b.nodes, n)

	for _, c := range d.Children {
		n.Children = append(n.Children, b.node(c))
	}
	return n
}

func htmlProperties(props []parsetree.Property) []htmlProperty {
	if len(props) == 0 {
		return nil
	}
	out := make([]htmlProperty, 0, len(props))
	for _, p := range props {
		hp := htmlProperty{Name: p.Name}
		switch v := p.Value.(type) {
		case nil:
		case string:
			hp.Text = oneLine(v)
		case []parsetree.Property:
			hp.Nested = htmlProperties(v)
		default:
			hp.Text = placeholder(v)
		}
		out = append(out, hp)
	}
	return out
}
