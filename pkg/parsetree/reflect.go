package parsetree

import (
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"slices"
	"strings"
)

// Attribute is one named structural value of a node.
type Attribute struct {
	Name  string
	Value any
}

// Inspectable lets a type describe its own attributes instead of having
// its exported fields reflected.
type Inspectable interface {
	Properties() []Attribute
}

var (
	stringerType    = reflect.TypeFor[fmt.Stringer]()
	inspectableType = reflect.TypeFor[Inspectable]()
)

// Visited is an identity set of references. Pointers and maps are tracked
// by type and address; values of any other kind are never members.
type Visited struct {
	seen map[identity]struct{}
}

type identity struct {
	typ  reflect.Type
	addr uintptr
}

// NewVisited returns an empty set.
func NewVisited() *Visited {
	return &Visited{seen: make(map[identity]struct{})}
}

// Add records x and reports whether it was not already present. Values that
// have no identity are never recorded and Add returns false for them.
func (v *Visited) Add(x any) bool {
	id, ok := identityOf(reflect.ValueOf(x))
	if !ok {
		return false
	}
	return v.add(id)
}

// Has reports whether x has been recorded.
func (v *Visited) Has(x any) bool {
	id, ok := identityOf(reflect.ValueOf(x))
	if !ok {
		return false
	}
	_, found := v.seen[id]
	return found
}

// Len returns the number of recorded references.
func (v *Visited) Len() int {
	return len(v.seen)
}

func (v *Visited) add(id identity) bool {
	if _, found := v.seen[id]; found {
		return false
	}
	v.seen[id] = struct{}{}
	return true
}

func identityOf(rv reflect.Value) (identity, bool) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map:
		if rv.IsNil() {
			return identity{}, false
		}
		return identity{typ: rv.Type(), addr: rv.Pointer()}, true
	default:
		return identity{}, false
	}
}

// ReflectorOptions configures a Reflector.
type ReflectorOptions struct {
	// Base lists embedded types whose fields are common to every node and
	// are never reported as attributes.
	Base []reflect.Type

	// Logger receives introspection failures at debug level.
	Logger *slog.Logger
}

// Reflector converts the structural data of a value into properties.
type Reflector struct {
	base   map[reflect.Type]bool
	logger *slog.Logger
}

// NewReflector creates a reflector.
func NewReflector(opts ReflectorOptions) *Reflector {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	base := make(map[reflect.Type]bool, len(opts.Base))
	for _, t := range opts.Base {
		base[indirect(t)] = true
	}
	return &Reflector{base: base, logger: logger}
}

// Reflect returns the properties of node sorted by name, or nil when it has
// none. node itself is not checked against visited; every reference reached
// from it is, and is recorded before it is described.
func (r *Reflector) Reflect(node any, visited *Visited) []Property {
	if node == nil {
		return nil
	}
	rv := reflect.ValueOf(node)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		if _, ok := node.(Inspectable); !ok {
			rv = rv.Elem()
		}
	}
	return r.properties(rv, visited)
}

// properties describes the attributes of rv, which is either an Inspectable
// or a struct.
func (r *Reflector) properties(rv reflect.Value, visited *Visited) []Property {
	attrs := r.attributes(rv)
	if len(attrs) == 0 {
		return nil
	}

	var props []Property
	for _, a := range attrs {
		if v, ok := r.convertAttr(a, visited); ok {
			props = append(props, Property{Name: a.Name, Value: v})
		}
	}
	slices.SortStableFunc(props, func(a, b Property) int {
		return strings.Compare(a.Name, b.Name)
	})
	return props
}

// attributes lists rv's attributes. A panic while reading them means the
// value has none.
func (r *Reflector) attributes(rv reflect.Value) (attrs []Attribute) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Debug("attribute introspection failed",
				slog.String("type", rv.Type().String()),
				slog.Any("panic", p))
			attrs = nil
		}
	}()

	if rv.CanInterface() && rv.Type().Implements(inspectableType) {
		return rv.Interface().(Inspectable).Properties()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	var skip [][]int
	for _, f := range reflect.VisibleFields(rv.Type()) {
		if underAny(f.Index, skip) {
			continue
		}
		if f.Anonymous {
			ft := indirect(f.Type)
			if r.base[ft] {
				skip = append(skip, f.Index)
				continue
			}
			if ft.Kind() == reflect.Struct {
				// Its promoted fields follow.
				continue
			}
		}
		if !f.IsExported() {
			continue
		}
		fv, err := rv.FieldByIndexErr(f.Index)
		if err != nil {
			// Promoted through a nil embedded pointer.
			continue
		}
		attrs = append(attrs, Attribute{Name: f.Name, Value: fv.Interface()})
	}
	return attrs
}

func (r *Reflector) convertAttr(a Attribute, visited *Visited) (v any, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Debug("attribute conversion failed",
				slog.String("attribute", a.Name),
				slog.Any("panic", p))
			v, ok = nil, false
		}
	}()
	return r.convert(reflect.ValueOf(a.Value), visited)
}

// convert turns one value into a property value: a string, a []Property, or
// nothing at all. An empty string is how the AST stores an unset optional
// field, so it converts to nothing.
func (r *Reflector) convert(rv reflect.Value, visited *Visited) (any, bool) {
	if !rv.IsValid() {
		return nil, false
	}
	if rv.Kind() != reflect.Pointer && rv.Kind() != reflect.Interface &&
		rv.CanInterface() && rv.Type().Implements(stringerType) {
		return nonBlank(rv.Interface().(fmt.Stringer).String())
	}

	switch rv.Kind() {
	case reflect.String:
		return nonBlank(rv.String())

	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return fmt.Sprint(rv.Interface()), true

	case reflect.Interface:
		if rv.IsNil() {
			return nil, false
		}
		return r.convert(rv.Elem(), visited)

	case reflect.Pointer:
		if rv.IsNil() {
			return nil, false
		}
		if isScalar(rv.Type().Elem()) {
			return r.convert(rv.Elem(), visited)
		}
		id, _ := identityOf(rv)
		if !visited.add(id) {
			return nil, false
		}
		if rv.Type().Implements(inspectableType) {
			return nonEmpty(r.properties(rv, visited))
		}
		elem := rv.Elem()
		if elem.Kind() == reflect.Struct {
			return nonEmpty(r.properties(elem, visited))
		}
		return r.convert(elem, visited)

	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil, false
		}
		var items []Property
		for i := range rv.Len() {
			if v, ok := r.convert(rv.Index(i), visited); ok {
				items = append(items, Property{Value: v})
			}
		}
		return nonEmpty(items)

	case reflect.Map:
		if rv.IsNil() || rv.Len() == 0 {
			return nil, false
		}
		id, _ := identityOf(rv)
		if !visited.add(id) {
			return nil, false
		}
		keys := rv.MapKeys()
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = fmt.Sprint(k.Interface())
		}
		order := make([]int, len(keys))
		for i := range order {
			order[i] = i
		}
		slices.SortStableFunc(order, func(a, b int) int {
			return strings.Compare(names[a], names[b])
		})
		var entries []Property
		for _, i := range order {
			if v, ok := r.convert(rv.MapIndex(keys[i]), visited); ok {
				entries = append(entries, Property{Name: names[i], Value: v})
			}
		}
		return nonEmpty(entries)

	case reflect.Struct:
		return nonEmpty(r.properties(rv, visited))

	default:
		// func, chan and unsafe pointers carry no structural data.
		return nil, false
	}
}

func nonBlank(s string) (any, bool) {
	if s == "" {
		return nil, false
	}
	return s, true
}

func nonEmpty(props []Property) (any, bool) {
	if len(props) == 0 {
		return nil, false
	}
	return props, true
}

func isScalar(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// underAny reports whether index lies inside one of the embedded fields in
// prefixes.
func underAny(index []int, prefixes [][]int) bool {
	for _, p := range prefixes {
		if len(index) > len(p) && slices.Equal(index[:len(p)], p) {
			return true
		}
	}
	return false
}
