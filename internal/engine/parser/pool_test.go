package parser

import (
	"sync"
	"testing"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

func typescriptLanguage() *sitter.Language {
	return sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
}

func TestParserPool_GetPut(t *testing.T) {
	pool := NewParserPool(typescriptLanguage())

	sp := pool.Get()
	if sp == nil {
		t.Fatal("expected non-nil parser from pool")
	}
	if got := pool.Stats(); got != 1 {
		t.Fatalf("expected 1 leased parser, got %d", got)
	}
	pool.Put(sp)
	if got := pool.Stats(); got != 0 {
		t.Fatalf("expected 0 leased parsers after Put, got %d", got)
	}
}

func TestParserPool_PutNil(t *testing.T) {
	pool := NewParserPool(typescriptLanguage())
	pool.Put(nil)
}

func TestParserPool_ParsesValidTypeScript(t *testing.T) {
	pool := NewParserPool(typescriptLanguage())

	sp := pool.Get()
	defer pool.Put(sp)

	tree := sp.Parse([]byte("export function f(a: number): void {}\n"), nil)
	if tree == nil {
		t.Fatal("expected parse tree")
	}
	defer tree.Close()

	if root := tree.RootNode(); root.HasError() {
		t.Fatalf("unexpected syntax error in %s", root.ToSexp())
	}
}

func TestParserPool_ConcurrentAccess(t *testing.T) {
	pool := NewParserPool(typescriptLanguage())

	const goroutines = 16
	const iters = 25
	src := []byte("export const run = (): void => {};\n")

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iters; j++ {
				sp := pool.Get()
				tree := sp.Parse(src, nil)
				if tree == nil {
					t.Errorf("expected parse tree")
				} else {
					tree.Close()
				}
				pool.Put(sp)
			}
		}()
	}
	wg.Wait()

	if got := pool.Stats(); got != 0 {
		t.Fatalf("expected all parsers returned, got %d leased", got)
	}
}
