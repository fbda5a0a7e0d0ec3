package parsetree

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqltree/internal/testutil"
)

// A small engine over a two-type tree, used to exercise capture without a
// parser.

type fakeBase struct {
	Pos int
}

type fakeList struct {
	fakeBase
	Name  string
	Items []any
}

type fakeLeaf struct {
	fakeBase
	Value  string
	Shared *payload
	Owner  *fakeList
}

type payload struct {
	Note string
	Self *payload
}

type fakeEngine struct {
	types   []reflect.Type
	failOn  reflect.Type
	walkErr error
	calls   int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{types: []reflect.Type{
		reflect.TypeFor[*fakeList](),
		reflect.TypeFor[*fakeLeaf](),
	}}
}

func (e *fakeEngine) NodeTypes() []reflect.Type { return e.types }

func (e *fakeEngine) BaseTypes() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[fakeBase]()}
}

func (e *fakeEngine) Text(node any) string {
	switch n := node.(type) {
	case *fakeList:
		parts := make([]string, 0, len(n.Items))
		for _, item := range n.Items {
			parts = append(parts, e.Text(item))
		}
		return n.Name + "(" + strings.Join(parts, " ") + ")"
	case *fakeLeaf:
		return n.Value
	}
	return ""
}

func (e *fakeEngine) NewTraversal() Traversal {
	return &fakeTraversal{engine: e, hooks: make(map[reflect.Type]HookFunc)}
}

type fakeTraversal struct {
	engine *fakeEngine
	hooks  map[reflect.Type]HookFunc
}

func (t *fakeTraversal) Hook(typ reflect.Type, fn HookFunc) error {
	if typ == t.engine.failOn {
		return errors.New("no such visit method")
	}
	t.hooks[typ] = fn
	return nil
}

func (t *fakeTraversal) Walk(root any) error {
	if t.engine.walkErr != nil {
		return t.engine.walkErr
	}
	t.visit(root)
	return nil
}

func (t *fakeTraversal) visit(node any) {
	if list, ok := node.(*fakeList); ok && list == nil {
		return
	}
	children := func() {
		if list, ok := node.(*fakeList); ok {
			for _, item := range list.Items {
				t.visit(item)
			}
		}
	}
	fn, ok := t.hooks[reflect.TypeOf(node)]
	if !ok {
		children()
		return
	}
	t.engine.calls++
	fn(node, children)
}

func sampleFakeTree() (*fakeList, *payload) {
	p := &payload{Note: "shared"}
	p.Self = p
	inner := &fakeList{Name: "inner"}
	inner.Items = []any{&fakeLeaf{Value: "b", Shared: p, Owner: inner}}
	root := &fakeList{Name: "root", Items: []any{
		&fakeLeaf{Value: "a", Shared: p},
		inner,
		&fakeLeaf{Value: "c"},
	}}
	return root, p
}

func newFakeCapturer(t *testing.T, e *fakeEngine) *Capturer {
	return NewCapturer(e, Options{Logger: testutil.NewTestLogger(t)})
}

func TestCapture_TreeShape(t *testing.T) {
	root, _ := sampleFakeTree()
	tree, err := newFakeCapturer(t, newFakeEngine()).Capture(root)
	require.NoError(t, err)

	var got []string
	tree.Walk(func(n *ParseData, depth int) {
		got = append(got, strings.Repeat(".", depth)+n.TypeName+" "+n.Text)
	})
	assert.Equal(t, []string{
		"fakeList root(a inner(b) c)",
		".fakeLeaf a",
		".fakeList inner(b)",
		"..fakeLeaf b",
		".fakeLeaf c",
	}, got)
	assert.Same(t, root, tree.Node())
}

func TestCapture_CountMatchesCallbacks(t *testing.T) {
	e := newFakeEngine()
	root, _ := sampleFakeTree()
	tree, err := newFakeCapturer(t, e).Capture(root)
	require.NoError(t, err)
	assert.Equal(t, e.calls, tree.Count())
	assert.Equal(t, 5, tree.Count())
}

func TestCapture_UnhookedTypesAreTransparent(t *testing.T) {
	e := newFakeEngine()
	e.types = e.types[:1] // lists only
	root, _ := sampleFakeTree()

	tree, err := newFakeCapturer(t, e).Capture(root)
	require.NoError(t, err)
	assert.Equal(t, 2, tree.Count())
	assert.Equal(t, "fakeList", tree.Children[0].TypeName)
}

func TestCapture_Properties(t *testing.T) {
	root, _ := sampleFakeTree()
	tree, err := newFakeCapturer(t, newFakeEngine()).Capture(root)
	require.NoError(t, err)

	assert.Equal(t, []Property{{Name: "Name", Value: "root"}}, tree.Properties,
		"items are tree nodes and base fields are not attributes")

	first := tree.Children[0]
	assert.Equal(t, []Property{
		{Name: "Shared", Value: []Property{{Name: "Note", Value: "shared"}}},
		{Name: "Value", Value: "a"},
	}, first.Properties, "first encounter describes the shared payload in full")

	nested := tree.Children[1].Children[0]
	assert.Equal(t, []Property{
		{Name: "Value", Value: "b"},
	}, nested.Properties, "shared payload and owning node are omitted")
}

func TestCapture_HookInstallFailure(t *testing.T) {
	e := newFakeEngine()
	e.failOn = reflect.TypeFor[*fakeLeaf]()
	root, _ := sampleFakeTree()

	tree, err := newFakeCapturer(t, e).Capture(root)
	require.Error(t, err)
	assert.Nil(t, tree)
	assert.ErrorIs(t, err, ErrHookInstall)
	assert.Contains(t, err.Error(), "fakeLeaf")
	assert.Contains(t, err.Error(), "no such visit method")
	assert.Zero(t, e.calls, "nothing is walked after a failed install")
}

func TestCapture_WalkFailure(t *testing.T) {
	e := newFakeEngine()
	e.walkErr = errors.New("boom")
	root, _ := sampleFakeTree()

	_, err := newFakeCapturer(t, e).Capture(root)
	assert.ErrorIs(t, err, e.walkErr)
}

func TestCapture_EmptyTree(t *testing.T) {
	_, err := newFakeCapturer(t, newFakeEngine()).Capture((*fakeList)(nil))
	assert.ErrorIs(t, err, ErrEmptyTree)
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "fakeLeaf", typeName(&fakeLeaf{}))
	assert.Equal(t, "payload", typeName(payload{}))
	assert.Equal(t, "[]string", typeName([]string{}))
	assert.Equal(t, "<nil>", typeName(nil))
}
