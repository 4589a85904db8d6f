// Package output serializes inventory reports and history diffs.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"tsurface/internal/engine/inventory"
)

// WriteJSON encodes v with two-space indentation. HTML escaping is off so
// names like "<anonymous>" are written literally.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// WriteReport writes the report document. Nil collections are written as
// empty arrays.
func WriteReport(w io.Writer, report *inventory.Report) error {
	doc := inventory.NewReport()
	if report != nil {
		if report.Functions != nil {
			doc.Functions = report.Functions
		}
		if report.Externals != nil {
			doc.Externals = report.Externals
		}
	}
	for i := range doc.Functions {
		if doc.Functions[i].Params == nil {
			doc.Functions[i].Params = []inventory.Param{}
		}
	}
	return WriteJSON(w, doc)
}

func WriteDiff(w io.Writer, diff inventory.Diff) error {
	return WriteJSON(w, diff)
}
