package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqltree/pkg/parsetree"
)

func TestJSON_RoundTrip(t *testing.T) {
	tree := sampleTree()

	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, tree))

	var back parsetree.ParseData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))

	if diff := cmp.Diff(tree, &back, cmpopts.IgnoreUnexported(parsetree.ParseData{})); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestJSON_Layout(t *testing.T) {
	tree := &parsetree.ParseData{
		TypeName: "Literal",
		Text:     "'<b>'",
		Properties: []parsetree.Property{
			{Name: "Value", Value: "<b>"},
			{Name: "Empty"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, tree))

	want := `{
  "TypeName": "Literal",
  "Text": "'<b>'",
  "Properties": [
    {
      "Name": "Value",
      "Value": "<b>"
    },
    {
      "Name": "Empty"
    }
  ]
}
`
	assert.Equal(t, want, buf.String())
	assert.False(t, strings.Contains(buf.String(), "Children"), "leaf has no children field")
}
