package parsetree

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqltree/internal/testutil"
)

type base struct {
	ID   int
	Span string
}

type color int

func (c color) String() string {
	return [...]string{"red", "green"}[c]
}

type mode string

func (m mode) String() string {
	return string(m)
}

type optional struct {
	Alias  string
	Schema string
	Mode   mode
	Names  []string
	Kept   string
}

type extra struct {
	Note  string
	Label string
}

type record struct {
	base
	extra
	Label    string
	Count    int
	Enabled  bool
	Color    color
	Optional *bool
	Missing  *record
	Tags     []string
	Grid     [][]string
	Attrs    map[string]int
	Callback func()
	hidden   string
}

type shared struct {
	Name string
	Next *shared
}

type holder struct {
	First  *shared
	Second *shared
}

type custom struct {
	Secret string
}

func (c *custom) Properties() []Attribute {
	return []Attribute{{Name: "Shown", Value: "yes"}}
}

type faulty struct {
	Value string
}

func (*faulty) Properties() []Attribute {
	panic("broken")
}

type badStringer struct{}

func (badStringer) String() string {
	panic("broken")
}

type withBad struct {
	Bad  badStringer
	Good string
}

func newReflector(t *testing.T) *Reflector {
	return NewReflector(ReflectorOptions{
		Base:   []reflect.Type{reflect.TypeFor[base]()},
		Logger: testutil.NewTestLogger(t),
	})
}

func names(props []Property) []string {
	out := make([]string, len(props))
	for i, p := range props {
		out[i] = p.Name
	}
	return out
}

func find(t *testing.T, props []Property, name string) Property {
	t.Helper()
	for _, p := range props {
		if p.Name == name {
			return p
		}
	}
	require.Failf(t, "property not found", "%s in %v", name, names(props))
	return Property{}
}

func TestReflector_ScalarsAndOrdering(t *testing.T) {
	yes := true
	rec := &record{
		base:     base{ID: 7, Span: "1-3"},
		extra:    extra{Note: "n", Label: "shadowed"},
		Label:    "outer",
		Count:    3,
		Color:    1,
		Optional: &yes,
		Callback: func() {},
		hidden:   "h",
	}

	props := newReflector(t).Reflect(rec, NewVisited())

	assert.Equal(t, []string{"Color", "Count", "Enabled", "Label", "Note", "Optional"}, names(props))
	assert.Equal(t, "green", find(t, props, "Color").Value)
	assert.Equal(t, "3", find(t, props, "Count").Value)
	assert.Equal(t, "false", find(t, props, "Enabled").Value)
	assert.Equal(t, "outer", find(t, props, "Label").Value)
	assert.Equal(t, "n", find(t, props, "Note").Value)
	assert.Equal(t, "true", find(t, props, "Optional").Value)
}

func TestReflector_EmptyStringsAreAbsent(t *testing.T) {
	props := newReflector(t).Reflect(&optional{
		Names: []string{"", "x", ""},
		Kept:  "k",
	}, NewVisited())

	assert.Equal(t, []Property{
		{Name: "Kept", Value: "k"},
		{Name: "Names", Value: []Property{{Value: "x"}}},
	}, props)

	assert.Nil(t, newReflector(t).Reflect(&optional{Names: []string{""}}, NewVisited()))
}

func TestReflector_Collections(t *testing.T) {
	rec := &record{
		Tags:  []string{"b", "a"},
		Grid:  [][]string{{"x"}, {}, {"y", "z"}},
		Attrs: map[string]int{"zeta": 2, "alpha": 1},
	}

	props := newReflector(t).Reflect(rec, NewVisited())

	assert.Equal(t, []Property{{Value: "b"}, {Value: "a"}}, find(t, props, "Tags").Value,
		"list elements keep source order")
	assert.Equal(t, []Property{
		{Value: []Property{{Value: "x"}}},
		{Value: []Property{{Value: "y"}, {Value: "z"}}},
	}, find(t, props, "Grid").Value, "nested lists stay nested and empty ones are dropped")
	assert.Equal(t, []Property{
		{Name: "alpha", Value: "1"},
		{Name: "zeta", Value: "2"},
	}, find(t, props, "Attrs").Value)
}

func TestReflector_SharedReference(t *testing.T) {
	s := &shared{Name: "common"}
	h := &holder{First: s, Second: s}

	props := newReflector(t).Reflect(h, NewVisited())

	assert.Equal(t, []string{"First"}, names(props))
	assert.Equal(t, []Property{{Name: "Name", Value: "common"}}, find(t, props, "First").Value)
}

func TestReflector_SharedAcrossCalls(t *testing.T) {
	s := &shared{Name: "common"}
	r := newReflector(t)
	visited := NewVisited()

	first := r.Reflect(&holder{Second: s}, visited)
	second := r.Reflect(&holder{First: s}, visited)

	assert.Equal(t, []string{"Second"}, names(first))
	assert.Empty(t, second)
}

func TestReflector_Cycle(t *testing.T) {
	s := &shared{Name: "loop"}
	s.Next = s
	a := &shared{Name: "a"}
	b := &shared{Name: "b", Next: a}
	a.Next = b

	r := newReflector(t)
	visited := NewVisited()
	visited.Add(s)
	assert.Equal(t, []Property{{Name: "Name", Value: "loop"}},
		r.Reflect(s, visited), "self reference is omitted")

	visited = NewVisited()
	visited.Add(a)
	props := r.Reflect(a, visited)
	assert.Equal(t, []Property{
		{Name: "Name", Value: "a"},
		{Name: "Next", Value: []Property{{Name: "Name", Value: "b"}}},
	}, props)
}

func TestReflector_Inspectable(t *testing.T) {
	props := newReflector(t).Reflect(&custom{Secret: "s"}, NewVisited())
	assert.Equal(t, []Property{{Name: "Shown", Value: "yes"}}, props)
}

func TestReflector_IntrospectionFailure(t *testing.T) {
	r := newReflector(t)

	assert.Nil(t, r.Reflect(&faulty{Value: "v"}, NewVisited()))

	props := r.Reflect(&withBad{Good: "g"}, NewVisited())
	assert.Equal(t, []Property{{Name: "Good", Value: "g"}}, props)
}

func TestReflector_Nil(t *testing.T) {
	r := newReflector(t)
	assert.Nil(t, r.Reflect(nil, NewVisited()))
	assert.Nil(t, r.Reflect((*record)(nil), NewVisited()))
}

func TestVisited(t *testing.T) {
	v := NewVisited()
	s := &shared{}
	m := map[string]int{}

	assert.True(t, v.Add(s))
	assert.False(t, v.Add(s))
	assert.True(t, v.Has(s))
	assert.False(t, v.Has(&shared{}))

	assert.True(t, v.Add(m))
	assert.False(t, v.Add("value"), "values without identity are never recorded")
	assert.False(t, v.Add((*shared)(nil)))
	assert.Equal(t, 2, v.Len())
}
