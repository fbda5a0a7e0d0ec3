// Package dialect provides SQL dialect configuration for the lexer and parser.
//
// A dialect decides which optional syntax is recognized (ILIKE, the :: cast
// operator, the QUALIFY clause) and how function names are classified.
// The builtin dialects are registered when the package is loaded.
package dialect

import (
	"strings"

	"github.com/leapstack-labs/sqltree/pkg/token"
)

// FunctionKind classifies a function call by how it consumes rows.
type FunctionKind int

const (
	// FunctionScalar is the default for unknown functions.
	FunctionScalar FunctionKind = iota
	// FunctionAggregate means many rows aggregate to one value (SUM, COUNT, etc.).
	FunctionAggregate
	// FunctionGenerator means the function produces a value from no input (NOW, RANDOM, etc.).
	FunctionGenerator
	// FunctionWindow means the function requires an OVER clause (ROW_NUMBER, LAG, etc.).
	FunctionWindow
)

// String returns the string representation of FunctionKind.
func (k FunctionKind) String() string {
	switch k {
	case FunctionScalar:
		return "scalar"
	case FunctionAggregate:
		return "aggregate"
	case FunctionGenerator:
		return "generator"
	case FunctionWindow:
		return "window"
	default:
		return "unknown"
	}
}

// Feature is an optional piece of syntax.
type Feature uint8

// Optional syntax features.
const (
	FeatureIlike        Feature = 1 << iota // a ILIKE b
	FeatureCastOperator                     // a::type
	FeatureQualify                          // SELECT ... QUALIFY cond
)

// Dialect represents a SQL dialect configuration.
type Dialect struct {
	Name        string
	Description string

	features Feature

	aggregates map[string]struct{}
	generators map[string]struct{}
	windows    map[string]struct{}
}

// Has reports whether the dialect enables feature f.
func (d *Dialect) Has(f Feature) bool {
	return d != nil && d.features&f != 0
}

// LookupKeyword resolves a lowercase word to its token type, demoting
// keywords of disabled features to plain identifiers.
func (d *Dialect) LookupKeyword(word string) token.TokenType {
	t := token.LookupIdent(word)
	switch t {
	case token.ILIKE:
		if !d.Has(FeatureIlike) {
			return token.IDENT
		}
	case token.QUALIFY:
		if !d.Has(FeatureQualify) {
			return token.IDENT
		}
	}
	return t
}

// FunctionKind classifies the named function. Names are case-insensitive.
func (d *Dialect) FunctionKind(name string) FunctionKind {
	if d == nil {
		return FunctionScalar
	}
	n := strings.ToLower(name)
	if _, ok := d.windows[n]; ok {
		return FunctionWindow
	}
	if _, ok := d.aggregates[n]; ok {
		return FunctionAggregate
	}
	if _, ok := d.generators[n]; ok {
		return FunctionGenerator
	}
	return FunctionScalar
}

// Builder provides a fluent API for constructing dialects.
type Builder struct {
	d *Dialect
}

// NewDialect starts building a dialect with the given name.
func NewDialect(name string) *Builder {
	return &Builder{d: &Dialect{
		Name:       name,
		aggregates: make(map[string]struct{}),
		generators: make(map[string]struct{}),
		windows:    make(map[string]struct{}),
	}}
}

// Extend starts a new dialect that inherits everything from base.
func Extend(name string, base *Dialect) *Builder {
	b := NewDialect(name)
	b.d.features = base.features
	for k := range base.aggregates {
		b.d.aggregates[k] = struct{}{}
	}
	for k := range base.generators {
		b.d.generators[k] = struct{}{}
	}
	for k := range base.windows {
		b.d.windows[k] = struct{}{}
	}
	return b
}

// Describe sets the human readable description.
func (b *Builder) Describe(desc string) *Builder {
	b.d.Description = desc
	return b
}

// Enable turns on optional syntax features.
func (b *Builder) Enable(features ...Feature) *Builder {
	for _, f := range features {
		b.d.features |= f
	}
	return b
}

// Aggregates adds aggregate function names.
func (b *Builder) Aggregates(funcs ...string) *Builder {
	addAll(b.d.aggregates, funcs)
	return b
}

// Generators adds generator function names.
func (b *Builder) Generators(funcs ...string) *Builder {
	addAll(b.d.generators, funcs)
	return b
}

// Windows adds window function names.
func (b *Builder) Windows(funcs ...string) *Builder {
	addAll(b.d.windows, funcs)
	return b
}

// Build returns the constructed dialect.
func (b *Builder) Build() *Dialect {
	return b.d
}

func addAll(set map[string]struct{}, funcs []string) {
	for _, f := range funcs {
		set[strings.ToLower(f)] = struct{}{}
	}
}
