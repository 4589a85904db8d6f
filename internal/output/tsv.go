package output

import (
	"fmt"
	"io"
	"strings"

	"tsurface/internal/engine/inventory"
)

// TSVGenerator renders a report as one row per parameter, for shell
// pipelines that do not want to parse JSON.
type TSVGenerator struct {
	report *inventory.Report
}

func NewTSVGenerator(report *inventory.Report) *TSVGenerator {
	return &TSVGenerator{report: report}
}

func (t *TSVGenerator) Generate() (string, error) {
	var buf strings.Builder

	buf.WriteString("Kind\tFile\tFunction\tIndex\tParam\tType\n")
	if t.report == nil {
		return buf.String(), nil
	}
	for _, fn := range t.report.Functions {
		if len(fn.Params) == 0 {
			buf.WriteString(fmt.Sprintf("function\t%s\t%s\t\t\t\n", fn.File, fn.Name))
			continue
		}
		for i, p := range fn.Params {
			buf.WriteString(fmt.Sprintf("param\t%s\t%s\t%d\t%s\t%s\n",
				fn.File, fn.Name, i, tsvField(p.Name), tsvField(p.Type)))
		}
	}
	for _, ext := range t.report.Externals {
		buf.WriteString(fmt.Sprintf("external\t\t\t\t%s\t\n", ext))
	}

	return buf.String(), nil
}

// WriteTSV writes the generated table to w.
func WriteTSV(w io.Writer, report *inventory.Report) error {
	out, err := NewTSVGenerator(report).Generate()
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func tsvField(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
