package output

import (
	"fmt"
	"io"
	"strings"

	"tsurface/internal/engine/inventory"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	addedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))

	removedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171"))

	changedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

// RenderDiffSummary returns a short human-readable summary of diff for the
// diagnostics stream.
func RenderDiffSummary(diff inventory.Diff) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("API surface changes"))
	b.WriteString("\n")

	if diff.Empty() {
		b.WriteString(statusStyle.Render("  no changes since the previous snapshot"))
		b.WriteString("\n")
		return b.String()
	}

	for _, fn := range diff.Added {
		b.WriteString(addedStyle.Render("  + " + signature(fn)))
		b.WriteString("\n")
	}
	for _, fn := range diff.Removed {
		b.WriteString(removedStyle.Render("  - " + signature(fn)))
		b.WriteString("\n")
	}
	for _, c := range diff.Changed {
		b.WriteString(changedStyle.Render(fmt.Sprintf("  ~ %s -> %s", signature(c.Before), signature(c.After))))
		b.WriteString("\n")
	}
	for _, ext := range diff.ExternalsAdded {
		b.WriteString(addedStyle.Render("  + import " + ext))
		b.WriteString("\n")
	}
	for _, ext := range diff.ExternalsRemoved {
		b.WriteString(removedStyle.Render("  - import " + ext))
		b.WriteString("\n")
	}
	b.WriteString(statusStyle.Render(fmt.Sprintf("  %d added, %d removed, %d changed",
		len(diff.Added), len(diff.Removed), len(diff.Changed))))
	b.WriteString("\n")
	return b.String()
}

func WriteDiffSummary(w io.Writer, diff inventory.Diff) error {
	_, err := io.WriteString(w, RenderDiffSummary(diff))
	return err
}

func signature(fn inventory.FunctionRecord) string {
	params := make([]string, 0, len(fn.Params))
	for _, p := range fn.Params {
		params = append(params, p.Name+": "+p.Type)
	}
	return fmt.Sprintf("%s(%s) %s", fn.Name, strings.Join(params, ", "), fn.File)
}
