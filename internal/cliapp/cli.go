package cliapp

import (
	"flag"
	"fmt"
	"io"

	"tsurface/internal/core/config"
)

const versionString = "1.0.0"

const (
	formatJSON = "json"
	formatTSV  = "tsv"
)

type cliOptions struct {
	configPath  string
	verbose     bool
	version     bool
	watch       bool
	historyPath string
	diff        bool
	trend       bool
	metricsPath string
	format      string
	args        []string
}

func parseOptions(args []string, stderr io.Writer) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("tsurface", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: tsurface [flags] <root>")
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.configPath, "config", config.DefaultConfigPath, "Path to config file")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")
	fs.BoolVar(&opts.watch, "watch", false, "Re-emit the document whenever a source file changes")
	fs.StringVar(&opts.historyPath, "history", "", "Record each run as a snapshot in this SQLite file")
	fs.BoolVar(&opts.diff, "diff", false, "Print the API-surface diff against the previous snapshot (requires -history)")
	fs.BoolVar(&opts.trend, "trend", false, "Print the recorded snapshot trend and exit (requires -history)")
	fs.StringVar(&opts.metricsPath, "metrics", "", "Write Prometheus text-format metrics to this file")
	fs.StringVar(&opts.format, "format", formatJSON, "Report format: json or tsv")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	opts.args = fs.Args()
	return opts, nil
}

// applyModeOptions checks flag combinations and folds flag overrides into
// cfg.
func applyModeOptions(opts *cliOptions, cfg *config.Config) error {
	if len(opts.args) != 1 {
		return fmt.Errorf("expected exactly one root directory argument, got %d", len(opts.args))
	}
	if opts.format != formatJSON && opts.format != formatTSV {
		return fmt.Errorf("unknown -format %q; use json or tsv", opts.format)
	}

	if opts.historyPath != "" {
		cfg.History.Path = opts.historyPath
	}
	if opts.metricsPath != "" {
		cfg.Observability.MetricsFile = opts.metricsPath
	}

	if (opts.diff || opts.trend) && cfg.History.Path == "" {
		return fmt.Errorf("-diff and -trend require -history or history.path")
	}
	if opts.diff && opts.trend {
		return fmt.Errorf("-diff and -trend cannot be used together")
	}
	if opts.trend && opts.watch {
		return fmt.Errorf("-trend cannot be used with -watch")
	}
	if opts.format == formatTSV && (opts.diff || opts.trend) {
		return fmt.Errorf("-format tsv only applies to the report document")
	}
	return nil
}
