package observability

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every tsurface collector. It is separate from the default
// registry so the textfile export only contains tool metrics.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// Metrics definitions
var (
	ParsingDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tsurface_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	FilesProcessed = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "tsurface_files_processed_total",
		Help: "Source files loaded, by outcome (parsed, cached, skipped).",
	}, []string{"outcome"})

	ExportedFunctions = factory.NewGauge(prometheus.GaugeOpts{
		Name: "tsurface_exported_functions",
		Help: "Exported functions found by the last run.",
	})

	ExternalDependencies = factory.NewGauge(prometheus.GaugeOpts{
		Name: "tsurface_external_dependencies",
		Help: "Distinct external module specifiers found by the last run.",
	})

	RunDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tsurface_run_seconds",
		Help:    "Time spent on one inventory run, by resolution mode.",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})

	WatcherEventsTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "tsurface_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	SnapshotsSaved = factory.NewCounter(prometheus.CounterOpts{
		Name: "tsurface_history_snapshots_total",
		Help: "Reports recorded in the history store.",
	})
)

// WriteMetricsFile writes the registry in the Prometheus text format to path,
// creating parent directories as needed.
func WriteMetricsFile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create metrics dir: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("write metrics file %s: %w", path, err)
	}
	return nil
}
