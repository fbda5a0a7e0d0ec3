// Package render turns captured parse trees into text.
//
// Every renderer is a pure function of the tree. State needed while
// rendering, such as the HTML node ids or the Markdown indentation, lives
// in a value created per call, so renderers may run concurrently.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/leapstack-labs/sqltree/pkg/parsetree"
)

// ErrUnknownFormat is returned for a format name no renderer handles.
var ErrUnknownFormat = errors.New("unknown output format")

// Format selects a renderer.
type Format int

// Supported formats.
const (
	FormatJSON Format = iota
	FormatYAML
	FormatHTML
	FormatMarkdown
)

var formatNames = [...]string{
	FormatJSON:     "json",
	FormatYAML:     "yaml",
	FormatHTML:     "html",
	FormatMarkdown: "md",
}

// Formats returns every supported format in declaration order.
func Formats() []Format {
	return []Format{FormatJSON, FormatYAML, FormatHTML, FormatMarkdown}
}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return formatNames[f]
}

// Extension returns the file extension used for the format, without a dot.
func (f Format) Extension() string {
	return f.String()
}

// ParseFormat parses a format name. Matching is case-insensitive and
// accepts "markdown" and "yml" as aliases.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "html", "htm":
		return FormatHTML, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	}
	return 0, fmt.Errorf("%w: %q (expected one of json, yaml, html, md)", ErrUnknownFormat, name)
}

// MarshalText implements encoding.TextMarshaler.
func (f Format) MarshalText() ([]byte, error) {
	if f < 0 || int(f) >= len(formatNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Options holds per-format settings.
type Options struct {
	HTML HTMLOptions
	YAML YAMLOptions
}

// Render writes tree to w in format f. Nothing is written unless the whole
// document rendered successfully.
func Render(w io.Writer, f Format, tree *parsetree.ParseData, opts Options) error {
	data, err := Bytes(f, tree, opts)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Bytes renders tree in format f.
func Bytes(f Format, tree *parsetree.ParseData, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch f {
	case FormatJSON:
		err = JSON(&buf, tree)
	case FormatYAML:
		err = YAML(&buf, tree, opts.YAML)
	case FormatHTML:
		err = HTML(&buf, tree, opts.HTML)
	case FormatMarkdown:
		err = Markdown(&buf, tree)
	default:
		err = fmt.Errorf("%w: %v", ErrUnknownFormat, f)
	}
	if err != nil {
		return nil, fmt.Errorf("render %v: %w", f, err)
	}
	return buf.Bytes(), nil
}

// placeholder names the declared type of a value no renderer can show.
func placeholder(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return "nil"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if name := t.Name(); name != "" {
		return name
	}
	return t.String()
}

// oneLine joins the lines of s with single spaces, dropping blank ones, so
// a multi-line value stays inside one outline entry.
func oneLine(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	var parts []string
	for _, l := range strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' }) {
		if l = strings.TrimSpace(l); l != "" {
			parts = append(parts, l)
		}
	}
	return strings.Join(parts, " ")
}

// firstLine returns the first line of text with any non-blank content and
// the total number of lines.
func firstLine(text string) (line string, lines int) {
	all := strings.Split(text, "\n")
	for _, l := range all {
		l = strings.TrimSuffix(l, "\r")
		if strings.TrimSpace(l) != "" {
			return l, len(all)
		}
	}
	return "", len(all)
}
