package program

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"tsurface/internal/core/errors"
	"tsurface/internal/engine/checker"
	"tsurface/internal/engine/mode"
	"tsurface/internal/engine/parser"
	"tsurface/internal/engine/tsconfig"
	"tsurface/internal/shared/observability"
	"tsurface/internal/shared/util"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	Names     mode.Names
	SourceDir string // restricts the project file set in full-resolution mode
	Workers   int    // 0 uses GOMAXPROCS
	Probe     mode.Probe
}

// Loader discovers and parses the files of a source tree.
type Loader struct {
	parser  *parser.Parser
	scanner *Scanner
	cache   *Cache
	opts    Options
}

func NewLoader(p *parser.Parser, scanner *Scanner, cache *Cache, opts Options) *Loader {
	if opts.Probe == nil {
		opts.Probe = mode.OSProbe{}
	}
	return &Loader{parser: p, scanner: scanner, cache: cache, opts: opts}
}

// Load selects the resolution mode for root and parses the files in scope.
// A project configuration that exists but cannot be loaded is returned as
// an errors.CodeConfigLoad error.
func (l *Loader) Load(ctx context.Context, root string) (Program, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUsage, "invalid root directory")
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		return nil, errors.AddContext(errors.New(errors.CodeUsage, "root is not a directory"), errors.CtxPath, abs)
	}

	decision := mode.Select(abs, l.opts.Probe, l.opts.Names)
	ctx, span := observability.Tracer.Start(ctx, "program.Load", trace.WithAttributes(
		attribute.String("root", abs),
		attribute.String("mode", decision.Mode.String()),
	))
	defer span.End()

	var prog Program
	if decision.Mode == mode.FullResolution {
		slog.Info("using full type resolution", "config", decision.ConfigPath, "deps", decision.DepsDir)
		prog, err = l.loadFull(ctx, decision)
	} else {
		slog.Info("falling back to syntax-only mode", "root", abs)
		prog, err = l.loadSyntax(ctx, abs)
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if len(prog.Files()) == 0 {
		slog.Warn("no TypeScript files found", "root", abs)
	}
	span.SetAttributes(attribute.Int("files", len(prog.Files())))
	return prog, nil
}

func (l *Loader) loadSyntax(ctx context.Context, root string) (Program, error) {
	paths, err := l.scanner.Scan(root)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "scan source tree")
	}
	files, err := l.parseAll(ctx, paths)
	if err != nil {
		return nil, err
	}
	return NewSyntaxProgram(files), nil
}

func (l *Loader) loadFull(ctx context.Context, d mode.Decision) (Program, error) {
	cfg, err := tsconfig.Load(d.ConfigPath)
	if err != nil {
		return nil, err
	}
	project, err := cfg.FileSet(l.scanner.Extensions())
	if err != nil {
		return nil, err
	}

	selected := withinDir(project, filepath.Join(d.Root, l.opts.SourceDir))
	if len(selected) == 0 {
		slog.Debug("project selects no files under source dir, scanning root", "source_dir", l.opts.SourceDir)
		if selected, err = l.scanner.Scan(d.Root); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "scan source tree")
		}
	}

	all := union(project, selected)
	parsed, err := l.parseAll(ctx, all)
	if err != nil {
		return nil, err
	}
	byPath := make(map[string]*parser.File, len(parsed))
	for _, f := range parsed {
		byPath[f.Path] = f
	}

	files := pick(byPath, selected)
	return NewSemanticProgram(files, pick(byPath, project), checker.Options{
		StrictNullChecks: cfg.CompilerOptions.StrictNullChecksEnabled(),
	}), nil
}

// parseAll parses paths on a bounded worker pool and returns the parsed
// files in the order of paths. Unreadable or unparsable files are skipped.
func (l *Loader) parseAll(ctx context.Context, paths []string) ([]*parser.File, error) {
	workers := l.opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]*parser.File, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = l.parseOne(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "load cancelled")
	}

	files := results[:0]
	for _, f := range results {
		if f != nil {
			files = append(files, f)
		}
	}
	return files, nil
}

func (l *Loader) parseOne(path string) *parser.File {
	content, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("skipping unreadable file", "path", path, "error", err)
		observability.FilesProcessed.WithLabelValues("skipped").Inc()
		return nil
	}
	if cached, ok := l.cache.Get(path, content); ok {
		observability.FilesProcessed.WithLabelValues("cached").Inc()
		return cached
	}

	start := time.Now()
	file, err := l.parser.ParseFile(path, content)
	if err != nil {
		slog.Warn("skipping file", "path", path, "error", err)
		observability.FilesProcessed.WithLabelValues("skipped").Inc()
		return nil
	}
	observability.ParsingDuration.WithLabelValues(file.Language).Observe(time.Since(start).Seconds())
	observability.FilesProcessed.WithLabelValues("parsed").Inc()
	if file.HasErrors {
		slog.Debug("file has syntax errors, using partial tree", "path", path)
	}
	l.cache.Add(path, content, file)
	return file
}

func withinDir(paths []string, dir string) []string {
	var out []string
	for _, p := range paths {
		if p != dir && util.HasPathPrefix(p, dir) {
			out = append(out, p)
		}
	}
	return out
}

func union(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, p := range list {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out
}

func pick(byPath map[string]*parser.File, paths []string) []*parser.File {
	out := make([]*parser.File, 0, len(paths))
	for _, p := range paths {
		if f, ok := byPath[p]; ok {
			out = append(out, f)
		}
	}
	return out
}
