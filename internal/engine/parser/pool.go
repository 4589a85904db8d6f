package parser

import (
	"sync"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ParserPool hands out tree-sitter parsers bound to one grammar so that the
// parallel parse phase does not allocate a parser per file. It is safe for
// concurrent use.
//
//	sp := pool.Get()
//	defer pool.Put(sp)
//	tree := sp.Parse(source, nil)
type ParserPool struct {
	lang *sitter.Language
	pool sync.Pool

	mu     sync.Mutex
	leases map[*sitter.Parser]time.Time
}

// NewParserPool creates a pool for lang. The language must outlive the pool.
func NewParserPool(lang *sitter.Language) *ParserPool {
	p := &ParserPool{
		lang:   lang,
		leases: make(map[*sitter.Parser]time.Time),
	}
	p.pool.New = func() any {
		sp := sitter.NewParser()
		_ = sp.SetLanguage(lang)
		return sp
	}
	return p
}

// Get leases a parser configured for the pool's grammar.
func (p *ParserPool) Get() *sitter.Parser {
	sp := p.pool.Get().(*sitter.Parser)
	// Reset() does not clear the language, but callers may have swapped it.
	_ = sp.SetLanguage(p.lang)

	p.mu.Lock()
	p.leases[sp] = time.Now()
	p.mu.Unlock()
	return sp
}

// Put resets sp and returns it to the pool. sp must not be used afterwards.
func (p *ParserPool) Put(sp *sitter.Parser) {
	if sp == nil {
		return
	}
	p.mu.Lock()
	delete(p.leases, sp)
	p.mu.Unlock()

	sp.Reset()
	p.pool.Put(sp)
}

// Stats returns the number of parsers currently leased.
func (p *ParserPool) Stats() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.leases)
}
