package parsetree

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() *ParseData {
	root := &ParseData{TypeName: "Script", Text: "SELECT 1"}
	stmt := &ParseData{TypeName: "SelectStmt", Text: "SELECT 1"}
	stmt.AddChild(&ParseData{
		TypeName: "Literal",
		Text:     "1",
		Properties: []Property{
			{Name: "Type", Value: "Number"},
			{Name: "Value", Value: "1"},
		},
	})
	root.AddChild(stmt)
	root.AddChild(&ParseData{TypeName: "Empty"})
	return root
}

func TestParseData_Count(t *testing.T) {
	assert.Equal(t, 1, (&ParseData{}).Count())
	assert.Equal(t, 4, sampleTree().Count())
}

func TestParseData_Walk(t *testing.T) {
	var got []string
	var depths []int
	sampleTree().Walk(func(n *ParseData, depth int) {
		got = append(got, n.TypeName)
		depths = append(depths, depth)
	})
	assert.Equal(t, []string{"Script", "SelectStmt", "Literal", "Empty"}, got)
	assert.Equal(t, []int{0, 1, 2, 1}, depths)
}

func TestParseData_JSONFieldNames(t *testing.T) {
	leaf := &ParseData{TypeName: "Literal", Text: "1", Properties: []Property{
		{Value: "positional"},
	}}
	data, err := json.Marshal(leaf)
	require.NoError(t, err)
	assert.JSONEq(t, `{"TypeName":"Literal","Text":"1","Properties":[{"Value":"positional"}]}`, string(data))
}

func TestProperty_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Property
		wantErr bool
	}{
		{
			name:  "string value",
			input: `{"Name":"Alias","Value":"x"}`,
			want:  Property{Name: "Alias", Value: "x"},
		},
		{
			name:  "nested list",
			input: `{"Name":"Type","Value":[{"Name":"Name","Value":"INT"},{"Value":[{"Value":"a"}]}]}`,
			want: Property{Name: "Type", Value: []Property{
				{Name: "Name", Value: "INT"},
				{Value: []Property{{Value: "a"}}},
			}},
		},
		{
			name:  "null value",
			input: `{"Name":"Empty","Value":null}`,
			want:  Property{Name: "Empty"},
		},
		{
			name:  "missing value",
			input: `{"Name":"Empty"}`,
			want:  Property{Name: "Empty"},
		},
		{
			name:    "number is not a property value",
			input:   `{"Name":"Count","Value":3}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Property
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProperty_List(t *testing.T) {
	assert.Nil(t, Property{Value: "x"}.List())
	assert.Len(t, Property{Value: []Property{{Value: "a"}}}.List(), 1)
}
