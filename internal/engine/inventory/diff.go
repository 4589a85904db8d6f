package inventory

import (
	"fmt"
	"sort"

	"tsurface/internal/shared/util"
)

type SignatureChange struct {
	Key    string         `json:"key"`
	Before FunctionRecord `json:"before"`
	After  FunctionRecord `json:"after"`
}

// Diff describes how the exported surface changed between two reports.
type Diff struct {
	Added            []FunctionRecord  `json:"added"`
	Removed          []FunctionRecord  `json:"removed"`
	Changed          []SignatureChange `json:"changed"`
	ExternalsAdded   []string          `json:"externals_added"`
	ExternalsRemoved []string          `json:"externals_removed"`
}

func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0 &&
		len(d.ExternalsAdded) == 0 && len(d.ExternalsRemoved) == 0
}

// Compare matches functions by file and name. A nil prev is treated as an
// empty report.
func Compare(prev, next *Report) Diff {
	if prev == nil {
		prev = NewReport()
	}
	if next == nil {
		next = NewReport()
	}
	d := Diff{
		Added:            []FunctionRecord{},
		Removed:          []FunctionRecord{},
		Changed:          []SignatureChange{},
		ExternalsAdded:   []string{},
		ExternalsRemoved: []string{},
	}

	before := keyed(prev.Functions)
	after := keyed(next.Functions)

	for _, key := range util.SortedStringKeys(after) {
		rec := after[key]
		old, ok := before[key]
		switch {
		case !ok:
			d.Added = append(d.Added, rec)
		case !sameParams(old.Params, rec.Params):
			d.Changed = append(d.Changed, SignatureChange{Key: key, Before: old, After: rec})
		}
	}
	for _, key := range util.SortedStringKeys(before) {
		if _, ok := after[key]; !ok {
			d.Removed = append(d.Removed, before[key])
		}
	}

	prevExt := make(map[string]bool, len(prev.Externals))
	for _, e := range prev.Externals {
		prevExt[e] = true
	}
	nextExt := make(map[string]bool, len(next.Externals))
	for _, e := range next.Externals {
		nextExt[e] = true
		if !prevExt[e] {
			d.ExternalsAdded = append(d.ExternalsAdded, e)
		}
	}
	for _, e := range prev.Externals {
		if !nextExt[e] {
			d.ExternalsRemoved = append(d.ExternalsRemoved, e)
		}
	}
	sort.Strings(d.ExternalsAdded)
	sort.Strings(d.ExternalsRemoved)
	return d
}

// keyed indexes records by "file#name". Repeated names in one file, such as
// several anonymous default exports, get an occurrence suffix.
func keyed(records []FunctionRecord) map[string]FunctionRecord {
	out := make(map[string]FunctionRecord, len(records))
	seen := make(map[string]int)
	for _, r := range records {
		key := r.File + "#" + r.Name
		seen[key]++
		if n := seen[key]; n > 1 {
			key = fmt.Sprintf("%s#%d", key, n)
		}
		out[key] = r
	}
	return out
}

func sameParams(a, b []Param) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
