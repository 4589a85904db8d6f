package app

import (
	"context"
	"log/slog"
	"time"

	"tsurface/internal/core/config"
	"tsurface/internal/core/errors"
	"tsurface/internal/data/history"
	"tsurface/internal/engine/inventory"
	"tsurface/internal/engine/mode"
	"tsurface/internal/engine/parser"
	"tsurface/internal/engine/program"
	"tsurface/internal/shared/observability"
	"tsurface/internal/shared/util"
)

// Result is the outcome of one analysis run.
type Result struct {
	Root     string
	Mode     mode.Mode
	Files    int
	Report   *inventory.Report
	Duration time.Duration
}

// App wires the loader, extractor and optional history store for one
// configuration.
type App struct {
	Config  *config.Config
	parser  *parser.Parser
	scanner *program.Scanner
	cache   *program.Cache
	loader  *program.Loader
	history *history.Store
}

func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	gl, err := parser.NewGrammarLoader()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "load grammars")
	}
	p := parser.NewParser(gl)

	scanner, err := program.NewScanner(cfg.Project.Extensions, cfg.Exclude.Dirs, cfg.Exclude.Files)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "compile exclude patterns")
	}
	cache, err := program.NewCache(cfg.Parse.CacheSize)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "create parse cache")
	}

	loader := program.NewLoader(p, scanner, cache, program.Options{
		Names: mode.Names{
			ProjectConfig: cfg.Project.TSConfig,
			DepsDir:       cfg.Project.DepsDir,
		},
		SourceDir: cfg.Project.SourceDir,
		Workers:   cfg.Parse.Workers,
	})

	return &App{
		Config:  cfg,
		parser:  p,
		scanner: scanner,
		cache:   cache,
		loader:  loader,
	}, nil
}

// Analyze loads root, extracts the exported surface and reports counts on
// the default logger.
func (a *App) Analyze(ctx context.Context, root string) (Result, error) {
	start := time.Now()
	ctx, span := observability.Tracer.Start(ctx, "app.Analyze")
	defer span.End()

	prog, err := a.loader.Load(ctx, root)
	if err != nil {
		span.RecordError(err)
		return Result{}, err
	}
	report, err := inventory.Build(ctx, prog, a.Config.Parse.Workers)
	if err != nil {
		span.RecordError(err)
		return Result{}, err
	}

	res := Result{
		Root:     root,
		Mode:     prog.Mode(),
		Files:    len(prog.Files()),
		Report:   report,
		Duration: time.Since(start),
	}
	observability.RunDuration.WithLabelValues(res.Mode.String()).Observe(res.Duration.Seconds())
	observability.ExportedFunctions.Set(float64(len(report.Functions)))
	observability.ExternalDependencies.Set(float64(len(report.Externals)))

	slog.Info("processed files", "count", res.Files, "mode", res.Mode.String())
	slog.Info("found exported functions", "count", len(report.Functions), "externals", len(report.Externals))
	slog.Debug("analysis finished",
		"duration", res.Duration,
		"cached_files", a.cache.Len(),
		"leased_parsers", a.parser.Leased(),
		"heap_mb", util.HeapAllocMB(),
	)
	return res, nil
}

func (a *App) Close() error {
	if a == nil || a.history == nil {
		return nil
	}
	err := a.history.Close()
	a.history = nil
	return err
}
