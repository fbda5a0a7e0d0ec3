package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/sqltree/pkg/parsetree"
)

func TestYAML_Document(t *testing.T) {
	tree := &parsetree.ParseData{
		TypeName: "Literal",
		Text:     "1",
		Properties: []parsetree.Property{
			{Name: "Type", Value: "Number"},
			{Name: "Value", Value: "1"},
			{Name: "Alias", Value: ""},
			{Name: "Flags", Value: []parsetree.Property{{Value: "true"}}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, YAML(&buf, tree, YAMLOptions{}))

	want := `TypeName: Literal
Text: "1"
Properties:
  - Name: Type
    Value: Number
  - Name: Value
    Value: "1"
  - Name: Alias
  - Name: Flags
    Value:
      - Value: "true"
`
	assert.Equal(t, want, buf.String())
}

func TestYAML_DecodesToSameShape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, YAML(&buf, sampleTree(), YAMLOptions{}))

	var doc struct {
		TypeName string `yaml:"TypeName"`
		Text     string `yaml:"Text"`
		Children []struct {
			TypeName string `yaml:"TypeName"`
			Children []struct {
				TypeName   string `yaml:"TypeName"`
				Properties []struct {
					Name  string `yaml:"Name"`
					Value any    `yaml:"Value"`
				} `yaml:"Properties"`
			} `yaml:"Children"`
		} `yaml:"Children"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "Script", doc.TypeName)
	assert.Equal(t, "SELECT a + 1 AS total\nFROM t", doc.Text)
	require.Len(t, doc.Children, 1)
	require.Len(t, doc.Children[0].Children, 2)
	table := doc.Children[0].Children[1]
	assert.Equal(t, "TableName", table.TypeName)
	require.Len(t, table.Properties, 2)
	assert.Equal(t, "t", table.Properties[0].Value)
	assert.IsType(t, []any{}, table.Properties[1].Value)
}

func TestYAML_MaxDepth(t *testing.T) {
	build := func(depth int) *parsetree.ParseData {
		root := &parsetree.ParseData{TypeName: "Paren", Text: "x"}
		cur := root
		for i := 1; i < depth; i++ {
			next := &parsetree.ParseData{TypeName: "Paren", Text: "x"}
			cur.AddChild(next)
			cur = next
		}
		return root
	}

	var buf bytes.Buffer
	require.NoError(t, YAML(&buf, build(DefaultMaxDepth), YAMLOptions{}))

	buf.Reset()
	err := YAML(&buf, build(DefaultMaxDepth+1), YAMLOptions{})
	assert.ErrorIs(t, err, ErrMaxDepth)
	assert.Zero(t, buf.Len(), "nothing is encoded before the depth check passes")

	props := &parsetree.ParseData{TypeName: "N", Properties: []parsetree.Property{
		{Name: "A", Value: []parsetree.Property{{Name: "B", Value: "c"}}},
	}}
	assert.NoError(t, YAML(&buf, props, YAMLOptions{MaxDepth: 3}))
	assert.ErrorIs(t, YAML(&buf, props, YAMLOptions{MaxDepth: 2}), ErrMaxDepth)
}
