package history

import (
	"time"

	"tsurface/internal/engine/inventory"
)

// SchemaVersion is the current snapshot table layout.
const SchemaVersion = 1

// Snapshot is one recorded inventory run.
type Snapshot struct {
	ID            string
	ProjectKey    string
	SchemaVersion int
	Timestamp     time.Time
	Mode          string
	FileCount     int
	FunctionCount int
	ExternalCount int
	Report        *inventory.Report
}

// NewSnapshot summarises report for storage.
func NewSnapshot(mode string, fileCount int, report *inventory.Report) Snapshot {
	if report == nil {
		report = inventory.NewReport()
	}
	return Snapshot{
		Mode:          mode,
		FileCount:     fileCount,
		FunctionCount: len(report.Functions),
		ExternalCount: len(report.Externals),
		Report:        report,
	}
}
