package inventory

import (
	"context"
	"runtime"

	"tsurface/internal/core/errors"
	"tsurface/internal/engine/parser"
	"tsurface/internal/engine/program"
	"tsurface/internal/shared/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// FileResult is the contribution of a single file.
type FileResult struct {
	Records    []FunctionRecord
	Specifiers ExternalSet
}

// ExtractFunctions returns one record per exported top-level function of
// file, in declaration order.
func ExtractFunctions(prog program.Program, file *parser.File) []FunctionRecord {
	var records []FunctionRecord
	for _, fn := range file.Functions {
		if !fn.Exported {
			continue
		}
		name := fn.Name
		if fn.Anonymous() {
			name = AnonymousName
		}
		params := make([]Param, 0, len(fn.Params))
		for _, p := range fn.Params {
			params = append(params, Param{Name: p.Name, Type: prog.ParamType(file, p)})
		}
		records = append(records, FunctionRecord{Name: name, Params: params, File: file.Path})
	}
	return records
}

// CollectExternals returns the non-relative specifiers imported by file.
func CollectExternals(file *parser.File) ExternalSet {
	set := make(ExternalSet, len(file.Imports))
	for _, imp := range file.Imports {
		set.Add(imp.Module)
	}
	return set
}

// Fold computes the records and specifiers of one file. It reads only file
// and the program, so folds of different files may run concurrently.
func Fold(prog program.Program, file *parser.File) FileResult {
	return FileResult{
		Records:    ExtractFunctions(prog, file),
		Specifiers: CollectExternals(file),
	}
}

// Merge concatenates records in the order of results and unions their
// specifier sets.
func Merge(results []FileResult) *Report {
	report := NewReport()
	externals := make(ExternalSet)
	for _, r := range results {
		report.Functions = append(report.Functions, r.Records...)
		externals.Union(r.Specifiers)
	}
	report.Externals = externals.Sorted()
	return report
}

// Build folds every file of prog on up to workers goroutines and merges the
// results in file discovery order.
func Build(ctx context.Context, prog program.Program, workers int) (*Report, error) {
	files := prog.Files()
	ctx, span := observability.Tracer.Start(ctx, "inventory.Build", trace.WithAttributes(
		attribute.Int("files", len(files)),
	))
	defer span.End()

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]FileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = Fold(prog, file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, errors.CodeInternal, "extraction cancelled")
	}

	report := Merge(results)
	span.SetAttributes(
		attribute.Int("functions", len(report.Functions)),
		attribute.Int("externals", len(report.Externals)),
	)
	return report, nil
}
