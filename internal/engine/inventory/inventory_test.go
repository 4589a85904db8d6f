package inventory

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"tsurface/internal/engine/mode"
	"tsurface/internal/engine/parser"
	"tsurface/internal/engine/program"
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

func load(t *testing.T, root string) program.Program {
	t.Helper()
	gl, err := parser.NewGrammarLoader()
	if err != nil {
		t.Fatal(err)
	}
	scanner, err := program.NewScanner([]string{".ts"}, []string{"node_modules", ".git"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	loader := program.NewLoader(parser.NewParser(gl), scanner, nil, program.Options{
		Names:     mode.Names{ProjectConfig: "tsconfig.json", DepsDir: "node_modules"},
		SourceDir: "src",
	})
	prog, err := loader.Load(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	return prog
}

func build(t *testing.T, root string) *Report {
	t.Helper()
	report, err := Build(context.Background(), load(t, root), 4)
	if err != nil {
		t.Fatal(err)
	}
	return report
}

func TestBuild_Scenarios(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		source    string
		functions func(file string) []FunctionRecord
		externals []string
	}{
		{
			name:   "ExportedFunction",
			source: `export function add(x: number, y: number) { return x+y; }`,
			functions: func(file string) []FunctionRecord {
				return []FunctionRecord{{Name: "add", Params: []Param{{Name: "x", Type: "number"}, {Name: "y", Type: "number"}}, File: file}}
			},
			externals: []string{},
		},
		{
			name: "ExternalImport",
			source: `import { z } from "lodash";
export function add(x: number, y: number) { return x+y; }`,
			functions: func(file string) []FunctionRecord {
				return []FunctionRecord{{Name: "add", Params: []Param{{Name: "x", Type: "number"}, {Name: "y", Type: "number"}}, File: file}}
			},
			externals: []string{"lodash"},
		},
		{
			name: "NonExportedHelper",
			source: `function helper() {}
export function add(x: number, y: number) { return x+y; }`,
			functions: func(file string) []FunctionRecord {
				return []FunctionRecord{{Name: "add", Params: []Param{{Name: "x", Type: "number"}, {Name: "y", Type: "number"}}, File: file}}
			},
			externals: []string{},
		},
		{
			name:   "UntypedParameter",
			source: `export function f(a) {}`,
			functions: func(file string) []FunctionRecord {
				return []FunctionRecord{{Name: "f", Params: []Param{{Name: "a", Type: "any"}}, File: file}}
			},
			externals: []string{},
		},
		{
			name:   "AnonymousDefault",
			source: `export default function (a: string) {}`,
			functions: func(file string) []FunctionRecord {
				return []FunctionRecord{{Name: AnonymousName, Params: []Param{{Name: "a", Type: "string"}}, File: file}}
			},
			externals: []string{},
		},
		{
			name:   "CommentsInAnnotations",
			source: `export function f(x: /* num */ number, ... /* r */ rest: string[]) {}`,
			functions: func(file string) []FunctionRecord {
				return []FunctionRecord{{Name: "f", Params: []Param{{Name: "x", Type: "number"}, {Name: "rest", Type: "string[]"}}, File: file}}
			},
			externals: []string{},
		},
		{
			name:   "ZeroParams",
			source: `export function none() {}`,
			functions: func(file string) []FunctionRecord {
				return []FunctionRecord{{Name: "none", Params: []Param{}, File: file}}
			},
			externals: []string{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root := t.TempDir()
			file := filepath.Join(root, "a.ts")
			writeFile(t, file, tt.source)

			report := build(t, root)
			if want := tt.functions(file); !reflect.DeepEqual(report.Functions, want) {
				t.Fatalf("functions = %+v, want %+v", report.Functions, want)
			}
			if !reflect.DeepEqual(report.Externals, tt.externals) {
				t.Fatalf("externals = %v, want %v", report.Externals, tt.externals)
			}
		})
	}
}

func TestBuild_EmptyCorpus(t *testing.T) {
	t.Parallel()
	report := build(t, t.TempDir())
	if report.Functions == nil || report.Externals == nil {
		t.Fatal("expected empty, non-nil collections")
	}
	if len(report.Functions) != 0 || len(report.Externals) != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
}

func TestBuild_ExternalsAreDeduplicatedAndNeverRelative(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	for i, name := range []string{"a.ts", "b.ts", "nested/c.ts"} {
		writeFile(t, filepath.Join(root, filepath.FromSlash(name)), `import fs from "fs";
import { x } from "./x";
import { y } from "../y";
import "react";
export function f`+string(rune('a'+i))+`() {}`)
	}

	report := build(t, root)
	if want := []string{"fs", "react"}; !reflect.DeepEqual(report.Externals, want) {
		t.Fatalf("externals = %v, want %v", report.Externals, want)
	}
	for _, e := range report.Externals {
		if strings.HasPrefix(e, ".") {
			t.Fatalf("relative specifier %q leaked into externals", e)
		}
	}
	names := make([]string, 0, len(report.Functions))
	for _, f := range report.Functions {
		names = append(names, f.Name)
	}
	if want := []string{"fa", "fb", "fc"}; !reflect.DeepEqual(names, want) {
		t.Fatalf("functions not in discovery order: %v", names)
	}
}

func TestBuild_SyntaxOnlyTypesAreVerbatimOrAny(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.ts"), `
export function f(a: Array<string>, b?: { k: number }, c = 1, ...d) {}
`)
	report := build(t, root)
	got := report.Functions[0].Params
	want := []Param{
		{Name: "a", Type: "Array<string>"},
		{Name: "b", Type: "{ k: number }"},
		{Name: "c", Type: "any"},
		{Name: "d", Type: "any"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("params = %+v, want %+v", got, want)
	}
}

func TestBuild_FullResolution(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "tsconfig.json"), `{"compilerOptions": {"strict": true}}`)
	if err := os.MkdirAll(filepath.Join(root, "node_modules"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "src", "a.ts"), `
export function f(a: Array<string>, b?: { k: number }, c = 1, ...d) {}
`)
	report := build(t, root)
	want := []Param{
		{Name: "a", Type: "string[]"},
		{Name: "b", Type: "{ k: number; } | undefined"},
		{Name: "c", Type: "number"},
		{Name: "d", Type: "any[]"},
	}
	if got := report.Functions[0].Params; !reflect.DeepEqual(got, want) {
		t.Fatalf("params = %+v, want %+v", got, want)
	}
}

func TestBuild_FullResolutionIgnoresAnnotationComments(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "tsconfig.json"), `{}`)
	if err := os.MkdirAll(filepath.Join(root, "node_modules"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "src", "a.ts"), `
export function f(x: /* c */ number, ... /* r */ rest: string[]) {}
`)
	report := build(t, root)
	want := []Param{{Name: "x", Type: "number"}, {Name: "rest", Type: "string[]"}}
	if got := report.Functions[0].Params; !reflect.DeepEqual(got, want) {
		t.Fatalf("params = %+v, want %+v", got, want)
	}
}

func TestBuild_Idempotent(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	for _, name := range []string{"z.ts", "a.ts", "m/k.ts"} {
		writeFile(t, filepath.Join(root, filepath.FromSlash(name)), `import "b"; import "a";
export function f(x: string) {}
export function g() {}`)
	}
	first := build(t, root)
	second := build(t, root)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("runs differ:\n%+v\n%+v", first, second)
	}
}

func TestExternalSet(t *testing.T) {
	t.Parallel()
	set := make(ExternalSet)
	for _, spec := range []string{"b", "./x", "../y", ".", "a", "b", ""} {
		set.Add(spec)
	}
	if got := set.Sorted(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("Sorted() = %v", got)
	}
}

func TestCompare(t *testing.T) {
	t.Parallel()
	prev := &Report{
		Functions: []FunctionRecord{
			{Name: "keep", Params: []Param{{Name: "a", Type: "number"}}, File: "/p/a.ts"},
			{Name: "gone", Params: []Param{}, File: "/p/a.ts"},
			{Name: "edit", Params: []Param{{Name: "a", Type: "number"}}, File: "/p/b.ts"},
		},
		Externals: []string{"lodash", "react"},
	}
	next := &Report{
		Functions: []FunctionRecord{
			{Name: "keep", Params: []Param{{Name: "a", Type: "number"}}, File: "/p/a.ts"},
			{Name: "edit", Params: []Param{{Name: "a", Type: "string"}}, File: "/p/b.ts"},
			{Name: "fresh", Params: []Param{}, File: "/p/c.ts"},
		},
		Externals: []string{"react", "zod"},
	}

	d := Compare(prev, next)
	if len(d.Added) != 1 || d.Added[0].Name != "fresh" {
		t.Fatalf("unexpected added: %+v", d.Added)
	}
	if len(d.Removed) != 1 || d.Removed[0].Name != "gone" {
		t.Fatalf("unexpected removed: %+v", d.Removed)
	}
	if len(d.Changed) != 1 || d.Changed[0].Key != "/p/b.ts#edit" || d.Changed[0].After.Params[0].Type != "string" {
		t.Fatalf("unexpected changed: %+v", d.Changed)
	}
	if !reflect.DeepEqual(d.ExternalsAdded, []string{"zod"}) || !reflect.DeepEqual(d.ExternalsRemoved, []string{"lodash"}) {
		t.Fatalf("unexpected externals diff: +%v -%v", d.ExternalsAdded, d.ExternalsRemoved)
	}
	if d.Empty() {
		t.Fatal("expected non-empty diff")
	}
	if !Compare(next, next).Empty() {
		t.Fatal("expected identical reports to have an empty diff")
	}
}

func TestCompare_NilPrevious(t *testing.T) {
	t.Parallel()
	next := &Report{Functions: []FunctionRecord{{Name: "f", Params: []Param{}, File: "/p/a.ts"}}, Externals: []string{"x"}}
	d := Compare(nil, next)
	if len(d.Added) != 1 || !reflect.DeepEqual(d.ExternalsAdded, []string{"x"}) {
		t.Fatalf("unexpected diff from empty history: %+v", d)
	}
}
