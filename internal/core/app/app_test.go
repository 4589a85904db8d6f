package app

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"tsurface/internal/core/config"
	"tsurface/internal/core/errors"
	"tsurface/internal/engine/mode"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newApp(t *testing.T) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Watch.Debounce = 50 * time.Millisecond
	cfg.Watch.MinInterval = 0
	a, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestApp_Analyze(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.ts"), `import { z } from "lodash";
export function add(x: number, y: number) { return x + y; }`)
	writeFile(t, filepath.Join(root, "node_modules", "lodash", "index.d.ts"), `export declare function z(): void;`)

	res, err := newApp(t).Analyze(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if res.Mode != mode.SyntaxOnly {
		t.Fatalf("expected syntax-only mode, got %s", res.Mode)
	}
	if res.Files != 1 {
		t.Fatalf("expected node_modules to be excluded, got %d files", res.Files)
	}
	if len(res.Report.Functions) != 1 || res.Report.Functions[0].Name != "add" {
		t.Fatalf("unexpected functions %+v", res.Report.Functions)
	}
	if len(res.Report.Externals) != 1 || res.Report.Externals[0] != "lodash" {
		t.Fatalf("unexpected externals %v", res.Report.Externals)
	}
}

func TestApp_AnalyzeMissingRoot(t *testing.T) {
	_, err := newApp(t).Analyze(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if !errors.IsCode(err, errors.CodeUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestApp_RecordRequiresHistory(t *testing.T) {
	a := newApp(t)
	if a.HistoryEnabled() {
		t.Fatal("history should be disabled by default")
	}
	if _, err := a.Record("p", Result{}); !errors.IsCode(err, errors.CodeUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if _, err := a.Trend("p", time.Time{}, time.Hour); !errors.IsCode(err, errors.CodeUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestApp_RecordDiffsAgainstPreviousSnapshot(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.ts")
	writeFile(t, file, `export function f(a: number) {}`)

	a := newApp(t)
	if err := a.OpenHistory(filepath.Join(t.TempDir(), "history.db")); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	first, err := a.Analyze(ctx, root)
	if err != nil {
		t.Fatal(err)
	}
	diff, err := a.Record("proj", first)
	if err != nil {
		t.Fatal(err)
	}
	if len(diff.Added) != 1 {
		t.Fatalf("first snapshot should add every function, got %+v", diff)
	}

	writeFile(t, file, `import "zod";
export function f(a: string) {}
export function g() {}`)
	second, err := a.Analyze(ctx, root)
	if err != nil {
		t.Fatal(err)
	}
	diff, err = a.Record("proj", second)
	if err != nil {
		t.Fatal(err)
	}
	if len(diff.Added) != 1 || diff.Added[0].Name != "g" {
		t.Fatalf("unexpected added %+v", diff.Added)
	}
	if len(diff.Changed) != 1 || diff.Changed[0].After.Params[0].Type != "string" {
		t.Fatalf("unexpected changed %+v", diff.Changed)
	}
	if len(diff.ExternalsAdded) != 1 || diff.ExternalsAdded[0] != "zod" {
		t.Fatalf("unexpected externals added %v", diff.ExternalsAdded)
	}

	trend, err := a.Trend("proj", time.Time{}, 24*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if trend.ScanCount != 2 || trend.Points[1].DeltaFunctions != 1 {
		t.Fatalf("unexpected trend %+v", trend)
	}

	if _, err := a.Trend("other", time.Time{}, time.Hour); !errors.IsCode(err, errors.CodeNoSnapshots) {
		t.Fatalf("expected not found for unknown project, got %v", err)
	}
}

func TestApp_OpenHistoryRejectsDirectory(t *testing.T) {
	if err := newApp(t).OpenHistory(t.TempDir()); err == nil {
		t.Fatal("expected error for directory path")
	}
}

func TestApp_WatchReemitsOnChange(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.ts")
	writeFile(t, file, `export function f() {}`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var counts []int
	emitted := make(chan struct{}, 8)

	done := make(chan error, 1)
	go func() {
		done <- newApp(t).Watch(ctx, root, func(res Result) error {
			mu.Lock()
			counts = append(counts, len(res.Report.Functions))
			mu.Unlock()
			emitted <- struct{}{}
			return nil
		})
	}()

	select {
	case <-emitted:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for initial document")
	}

	// Give the watcher time to register the root before changing it.
	time.Sleep(200 * time.Millisecond)
	writeFile(t, file, `export function f() {}
export function g() {}`)

	select {
	case <-emitted:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for re-emitted document")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watch returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(counts) < 2 || counts[0] != 1 || counts[len(counts)-1] != 2 {
		t.Fatalf("unexpected emitted function counts %v", counts)
	}
}

func TestApp_WatchRerunsWhenDepsDirChanges(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "tsconfig.json"), `{}`)
	writeFile(t, filepath.Join(root, "src", "a.ts"), `export function f(a = 1) {}`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	modes := make(chan mode.Mode, 8)
	done := make(chan error, 1)
	go func() {
		done <- newApp(t).Watch(ctx, root, func(res Result) error {
			modes <- res.Mode
			return nil
		})
	}()

	next := func(step string) mode.Mode {
		t.Helper()
		select {
		case m := <-modes:
			return m
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for %s document", step)
			return 0
		}
	}

	if m := next("initial"); m != mode.SyntaxOnly {
		t.Fatalf("expected syntax-only without deps dir, got %s", m)
	}

	time.Sleep(200 * time.Millisecond)
	if err := os.Mkdir(filepath.Join(root, "node_modules"), 0o755); err != nil {
		t.Fatal(err)
	}
	if m := next("full-resolution"); m != mode.FullResolution {
		t.Fatalf("expected full resolution once deps dir exists, got %s", m)
	}

	if err := os.Remove(filepath.Join(root, "node_modules")); err != nil {
		t.Fatal(err)
	}
	if m := next("fallback"); m != mode.SyntaxOnly {
		t.Fatalf("expected syntax-only after deps dir removal, got %s", m)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watch returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
