package parser

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// LanguageSpec describes one grammar the loader can provide.
type LanguageSpec struct {
	Name       string
	Extensions []string
}

var defaultLanguages = []LanguageSpec{
	{Name: "typescript", Extensions: []string{".ts", ".mts", ".cts"}},
	{Name: "tsx", Extensions: []string{".tsx"}},
}

type GrammarLoader struct {
	languages map[string]*sitter.Language
	registry  map[string]LanguageSpec
}

func NewGrammarLoader() (*GrammarLoader, error) {
	gl := &GrammarLoader{
		languages: make(map[string]*sitter.Language),
		registry:  make(map[string]LanguageSpec),
	}

	for _, spec := range defaultLanguages {
		switch spec.Name {
		case "typescript":
			gl.languages[spec.Name] = sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
		case "tsx":
			gl.languages[spec.Name] = sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
		default:
			return nil, fmt.Errorf("language %q is registered but runtime grammar loading is not implemented", spec.Name)
		}
		gl.registry[spec.Name] = spec
	}

	return gl, nil
}

func (gl *GrammarLoader) Language(name string) *sitter.Language {
	return gl.languages[name]
}

func (gl *GrammarLoader) LanguageRegistry() map[string]LanguageSpec {
	out := make(map[string]LanguageSpec, len(gl.registry))
	for name, spec := range gl.registry {
		spec.Extensions = append([]string(nil), spec.Extensions...)
		out[name] = spec
	}
	return out
}
