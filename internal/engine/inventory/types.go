// Package inventory extracts exported function signatures and external
// module dependencies from a loaded program.
package inventory

import (
	"sort"
	"strings"
)

// AnonymousName is the name recorded for exported declarations without an
// identifier.
const AnonymousName = "<anonymous>"

type Param struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type FunctionRecord struct {
	Name   string  `json:"name"`
	Params []Param `json:"params"`
	File   string  `json:"file"`
}

// Report is the document emitted for one run.
type Report struct {
	Functions []FunctionRecord `json:"functions"`
	Externals []string         `json:"externals"`
}

// NewReport returns an empty report whose collections encode as [].
func NewReport() *Report {
	return &Report{Functions: []FunctionRecord{}, Externals: []string{}}
}

// ExternalSet is a set of non-relative module specifiers.
type ExternalSet map[string]struct{}

// Add inserts spec unless it is relative.
func (s ExternalSet) Add(spec string) {
	if spec == "" || strings.HasPrefix(spec, ".") {
		return
	}
	s[spec] = struct{}{}
}

func (s ExternalSet) Union(other ExternalSet) {
	for spec := range other {
		s[spec] = struct{}{}
	}
}

// Sorted returns the specifiers in lexical order, never nil.
func (s ExternalSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for spec := range s {
		out = append(out, spec)
	}
	sort.Strings(out)
	return out
}
