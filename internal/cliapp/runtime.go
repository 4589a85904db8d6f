package cliapp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	coreapp "tsurface/internal/core/app"
	"tsurface/internal/core/config"
	"tsurface/internal/output"
	"tsurface/internal/shared/observability"
)

// trendWindow is the moving-average window of -trend.
const trendWindow = 24 * time.Hour

func Run(args []string) int {
	return RunWithIO(args, os.Stdout, os.Stderr)
}

// RunWithIO runs the command line with the document written to stdout and
// diagnostics to stderr. Nothing is written to stdout on failure.
func RunWithIO(args []string, stdout, stderr io.Writer) int {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		return 2
	}

	if opts.version {
		fmt.Fprintf(stdout, "tsurface v%s\n", versionString)
		return 0
	}

	configureLogging(stderr, opts.verbose)

	cfg, err := config.LoadOrDefault(opts.configPath)
	if err != nil {
		slog.Error("failed to load config", "path", opts.configPath, "error", err)
		return 1
	}

	if err := applyModeOptions(&opts, cfg); err != nil {
		fmt.Fprintln(stderr, err.Error())
		fmt.Fprintln(stderr, "usage: tsurface [flags] <root>")
		return 1
	}

	cwd, err := os.Getwd()
	if err != nil {
		slog.Error("failed to resolve working directory", "error", err)
		return 1
	}
	paths, err := config.ResolvePaths(cfg, opts.args[0], cwd)
	if err != nil {
		slog.Error("failed to resolve paths", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := observability.SetupTracing(ctx, observability.TracingConfig{
		Enabled:  cfg.Observability.EnableTracing,
		Endpoint: cfg.Observability.OTLPEndpoint,
	})
	if err != nil {
		slog.Error("failed to set up tracing", "error", err)
		return 1
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Warn("tracing shutdown failed", "error", err)
		}
	}()

	app, err := coreapp.New(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return 1
	}
	defer app.Close()

	if paths.HistoryPath != "" {
		if err := app.OpenHistory(paths.HistoryPath); err != nil {
			slog.Error("failed to open history", "error", err)
			return 1
		}
	}

	if opts.trend {
		report, err := app.Trend(paths.ProjectKey, time.Time{}, trendWindow)
		if err != nil {
			slog.Error("failed to build trend", "error", err)
			return 1
		}
		if err := output.WriteJSON(stdout, report); err != nil {
			slog.Error("failed to write trend", "error", err)
			return 1
		}
		return 0
	}

	emit := func(res coreapp.Result) error {
		return emitResult(app, opts, paths, res, stdout, stderr)
	}

	if opts.watch {
		if err := app.Watch(ctx, paths.Root, emit); err != nil {
			slog.Error("watch failed", "error", err)
			return 1
		}
		return 0
	}

	res, err := app.Analyze(ctx, paths.Root)
	if err != nil {
		slog.Error("analysis failed", "error", err)
		return 1
	}
	if err := emit(res); err != nil {
		slog.Error("failed to write output", "error", err)
		return 1
	}
	return 0
}

// emitResult records res when history is enabled, then writes either the
// report or the diff against the previous snapshot.
func emitResult(app *coreapp.App, opts cliOptions, paths config.ResolvedPaths, res coreapp.Result, stdout, stderr io.Writer) error {
	if app.HistoryEnabled() {
		diff, err := app.Record(paths.ProjectKey, res)
		if err != nil {
			return err
		}
		if opts.diff {
			if err := output.WriteDiff(stdout, diff); err != nil {
				return err
			}
			if err := output.WriteDiffSummary(stderr, diff); err != nil {
				return err
			}
			return writeMetrics(paths.MetricsFile)
		}
	}

	var err error
	switch opts.format {
	case formatTSV:
		err = output.WriteTSV(stdout, res.Report)
	default:
		err = output.WriteReport(stdout, res.Report)
	}
	if err != nil {
		return err
	}
	return writeMetrics(paths.MetricsFile)
}

func writeMetrics(path string) error {
	if path == "" {
		return nil
	}
	if err := observability.WriteMetricsFile(path); err != nil {
		return err
	}
	slog.Debug("wrote metrics", "path", path)
	return nil
}

func configureLogging(stderr io.Writer, verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
}
