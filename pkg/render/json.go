package render

import (
	"encoding/json"
	"io"

	"github.com/leapstack-labs/sqltree/pkg/parsetree"
)

// JSON writes tree as indented JSON. Absent children, properties and values
// are omitted.
func JSON(w io.Writer, tree *parsetree.ParseData) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(tree)
}
