package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"tsurface/internal/core/errors"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type Parser struct {
	loader     *GrammarLoader
	extractors map[string]Extractor // language -> extractor
	extensions map[string]string
	pools      map[string]*ParserPool
}

type Extractor interface {
	Extract(node *sitter.Node, source []byte, filePath string) (*File, error)
}

// NewParser builds a parser for every language the loader registers, with
// the TypeScript extractor installed for each of them. The returned parser is
// safe for concurrent use.
func NewParser(loader *GrammarLoader) *Parser {
	p := &Parser{
		loader:     loader,
		extractors: make(map[string]Extractor),
		extensions: make(map[string]string),
		pools:      make(map[string]*ParserPool),
	}
	for lang, spec := range loader.LanguageRegistry() {
		for _, ext := range spec.Extensions {
			p.extensions[strings.ToLower(ext)] = lang
		}
		p.pools[lang] = NewParserPool(loader.Language(lang))
		p.extractors[lang] = NewTypeScriptExtractor(lang)
	}
	return p
}

func (p *Parser) ParseFile(path string, content []byte) (*File, error) {
	lang := p.detectLanguage(path)
	if lang == "" {
		return nil, errors.New(errors.CodeUnsupportedFile, "unsupported language")
	}

	extractor := p.extractors[lang]
	if extractor == nil {
		return nil, errors.New(errors.CodeUnsupportedFile, fmt.Sprintf("no extractor for: %s", lang))
	}

	pool := p.pools[lang]
	if pool == nil {
		return nil, errors.New(errors.CodeInternal, fmt.Sprintf("grammar not loaded: %s", lang))
	}

	sp := pool.Get()
	defer pool.Put(sp)

	tree := sp.Parse(content, nil)
	if tree == nil {
		return nil, errors.New(errors.CodeInternal, "parse failed")
	}
	defer tree.Close()

	res, err := extractor.Extract(tree.RootNode(), content, path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "extraction failed")
	}
	return res, nil
}

func (p *Parser) detectLanguage(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	return p.extensions[ext]
}

// Leased reports how many tree-sitter parsers are currently checked out.
func (p *Parser) Leased() int {
	total := 0
	for _, pool := range p.pools {
		total += pool.Stats()
	}
	return total
}
