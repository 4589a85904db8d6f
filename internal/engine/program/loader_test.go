package program

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"tsurface/internal/core/errors"
	"tsurface/internal/engine/mode"
	"tsurface/internal/engine/parser"
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

func newTestLoader(t *testing.T, cache *Cache) *Loader {
	t.Helper()
	gl, err := parser.NewGrammarLoader()
	if err != nil {
		t.Fatal(err)
	}
	scanner, err := NewScanner([]string{".ts"}, []string{"node_modules", ".git"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return NewLoader(parser.NewParser(gl), scanner, cache, Options{
		Names:     mode.Names{ProjectConfig: "tsconfig.json", DepsDir: "node_modules"},
		SourceDir: "src",
		Workers:   2,
	})
}

func paths(t *testing.T, root string, files []*parser.File) []string {
	t.Helper()
	out := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(root, f.Path)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func sameList(a, b []string) bool {
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

func TestLoad_SyntaxOnlyScansRoot(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "tsconfig.json"), `{ not json`)
	writeFile(t, filepath.Join(root, "b.ts"), `export function b(x: Foo) {}`)
	writeFile(t, filepath.Join(root, "src", "a.ts"), `export function a(y) {}`)
	writeFile(t, filepath.Join(root, ".git", "hooks.ts"), `export function hook() {}`)

	prog, err := newTestLoader(t, nil).Load(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if prog.Mode() != mode.SyntaxOnly {
		t.Fatalf("expected syntax-only, got %v", prog.Mode())
	}
	if got := paths(t, root, prog.Files()); !sameList(got, []string{"b.ts", "src/a.ts"}) {
		t.Fatalf("unexpected files %v", got)
	}

	b := prog.Files()[0]
	if got := prog.ParamType(b, b.Functions[0].Params[0]); got != "Foo" {
		t.Fatalf("expected verbatim annotation, got %q", got)
	}
	a := prog.Files()[1]
	if got := prog.ParamType(a, a.Functions[0].Params[0]); got != "any" {
		t.Fatalf("expected any for unannotated param, got %q", got)
	}
}

func TestLoad_FullResolutionRestrictsToSourceDir(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "tsconfig.json"), `{"compilerOptions": {"strict": true}}`)
	writeFile(t, filepath.Join(root, "node_modules", "lib", "index.ts"), `export function lib() {}`)
	writeFile(t, filepath.Join(root, "scripts", "build.ts"), `export interface Opts {}`)
	writeFile(t, filepath.Join(root, "src", "a.ts"), `import { Opts } from "../scripts/build";
export function a(o?: Opts, n = 1) {}`)

	prog, err := newTestLoader(t, nil).Load(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if prog.Mode() != mode.FullResolution {
		t.Fatalf("expected full resolution, got %v", prog.Mode())
	}
	if got := paths(t, root, prog.Files()); !sameList(got, []string{"src/a.ts"}) {
		t.Fatalf("unexpected files %v", got)
	}

	a := prog.Files()[0]
	want := `import("` + filepath.ToSlash(filepath.Join(root, "scripts", "build")) + `").Opts | undefined`
	if got := prog.ParamType(a, a.Functions[0].Params[0]); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got := prog.ParamType(a, a.Functions[0].Params[1]); got != "number" {
		t.Fatalf("expected inferred number, got %q", got)
	}
}

func TestLoad_FullResolutionFallsBackToRootScan(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "tsconfig.json"), `{"include": ["lib"]}`)
	if err := os.MkdirAll(filepath.Join(root, "node_modules"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "lib", "x.ts"), `export function x() {}`)
	writeFile(t, filepath.Join(root, "other", "y.ts"), `export function y() {}`)

	prog, err := newTestLoader(t, nil).Load(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if got := paths(t, root, prog.Files()); !sameList(got, []string{"lib/x.ts", "other/y.ts"}) {
		t.Fatalf("unexpected files %v", got)
	}
}

func TestLoad_MalformedConfigIsFatal(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "tsconfig.json"), `{ "include": [ `)
	if err := os.MkdirAll(filepath.Join(root, "node_modules"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "src", "a.ts"), `export function a() {}`)

	_, err := newTestLoader(t, nil).Load(context.Background(), root)
	if !errors.IsCode(err, errors.CodeConfigLoad) {
		t.Fatalf("expected config load error, got %v", err)
	}
}

func TestLoad_MissingRoot(t *testing.T) {
	t.Parallel()
	_, err := newTestLoader(t, nil).Load(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if !errors.IsCode(err, errors.CodeUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestLoad_EmptyCorpus(t *testing.T) {
	t.Parallel()
	prog, err := newTestLoader(t, nil).Load(context.Background(), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(prog.Files()) != 0 {
		t.Fatalf("expected no files, got %d", len(prog.Files()))
	}
}

func TestLoad_UsesCache(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.ts"), `export function a() {}`)

	cache, err := NewCache(16)
	if err != nil {
		t.Fatal(err)
	}
	loader := newTestLoader(t, cache)

	first, err := loader.Load(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	second, err := loader.Load(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if first.Files()[0] != second.Files()[0] {
		t.Fatal("expected unchanged file to be served from cache")
	}

	writeFile(t, filepath.Join(root, "a.ts"), `export function a(x: number) {}`)
	third, err := loader.Load(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if third.Files()[0] == first.Files()[0] || len(third.Files()[0].Functions[0].Params) != 1 {
		t.Fatal("expected changed file to be re-parsed")
	}
	if cache.Len() != 2 {
		t.Fatalf("expected 2 cache entries, got %d", cache.Len())
	}
}

func TestLoad_CancelledContext(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.ts"), `export function a() {}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestLoader(t, nil).Load(ctx, root); err == nil {
		t.Fatal("expected cancelled load to fail")
	}
}

func TestScanner_Excludes(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	for _, f := range []string{"a.ts", "a.d.ts", "gen/b.ts", "c.tsx", "keep/d.ts"} {
		writeFile(t, filepath.Join(root, filepath.FromSlash(f)), "")
	}
	s, err := NewScanner([]string{".ts"}, []string{"gen"}, []string{"*.d.ts"})
	if err != nil {
		t.Fatal(err)
	}
	files, err := s.Scan(root)
	if err != nil {
		t.Fatal(err)
	}
	rel := make([]string, 0, len(files))
	for _, f := range files {
		r, _ := filepath.Rel(root, f)
		rel = append(rel, filepath.ToSlash(r))
	}
	if !sameList(rel, []string{"a.ts", "keep/d.ts"}) {
		t.Fatalf("unexpected scan result %v", rel)
	}
}
