package render

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/leapstack-labs/sqltree/pkg/parsetree"
)

const (
	mdNodeIndent     = 3
	mdPropertyIndent = 2
	mdMaxText        = 20
)

// Markdown writes tree as a nested numbered outline with each node's
// properties listed beneath it.
func Markdown(w io.Writer, tree *parsetree.ParseData) error {
	md := &markdownWriter{}
	md.node(tree)
	_, err := w.Write(md.buf.Bytes())
	return err
}

type markdownWriter struct {
	buf bytes.Buffer
	pad int
}

func (md *markdownWriter) indent() {
	md.buf.WriteString(strings.Repeat(" ", md.pad))
}

func (md *markdownWriter) node(d *parsetree.ParseData) {
	md.indent()
	md.buf.WriteString("1. **")
	md.buf.WriteString(d.TypeName)
	md.buf.WriteString("**: ")
	if text, truncated := summarize(d.Text); text != "" {
		md.buf.WriteString("`" + text + "`")
		if truncated {
			md.buf.WriteString("...")
		}
	}
	md.buf.WriteByte('\n')

	md.pad += mdNodeIndent
	md.properties(d.Properties)
	for _, c := range d.Children {
		md.node(c)
	}
	md.pad -= mdNodeIndent
}

func (md *markdownWriter) properties(props []parsetree.Property) {
	for _, p := range props {
		md.indent()
		md.buf.WriteString("- ")
		if p.Name != "" {
			md.buf.WriteString(p.Name + ": ")
		}
		switch v := p.Value.(type) {
		case nil:
			md.buf.WriteByte('\n')
		case string:
			if v = oneLine(v); v != "" {
				md.buf.WriteString("_" + v + "_")
			}
			md.buf.WriteByte('\n')
		case []parsetree.Property:
			md.buf.WriteByte('\n')
			md.pad += mdPropertyIndent
			md.properties(v)
			md.pad -= mdPropertyIndent
		default:
			md.buf.WriteString(placeholder(v) + "\n")
		}
	}
}

// summarize returns the trimmed first line of text, cut to mdMaxText
// characters.
func summarize(text string) (string, bool) {
	line, _ := firstLine(text)
	line = strings.TrimSpace(line)
	if utf8.RuneCountInString(line) <= mdMaxText {
		return line, false
	}
	return strings.TrimSpace(string([]rune(line)[:mdMaxText])), true
}
