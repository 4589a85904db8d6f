package program

import (
	"crypto/sha256"
	"encoding/hex"

	"tsurface/internal/engine/parser"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache keeps parsed files keyed by path and content hash, so watch-mode
// re-runs only parse files that changed.
type Cache struct {
	entries *lru.Cache[string, *parser.File]
}

// NewCache returns nil when size is not positive, which disables caching.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		return nil, nil
	}
	entries, err := lru.New[string, *parser.File](size)
	if err != nil {
		return nil, err
	}
	return &Cache{entries: entries}, nil
}

func cacheKey(path string, content []byte) string {
	sum := sha256.Sum256(content)
	return path + "\x00" + hex.EncodeToString(sum[:])
}

func (c *Cache) Get(path string, content []byte) (*parser.File, bool) {
	if c == nil {
		return nil, false
	}
	return c.entries.Get(cacheKey(path, content))
}

func (c *Cache) Add(path string, content []byte, file *parser.File) {
	if c == nil {
		return
	}
	c.entries.Add(cacheKey(path, content), file)
}

func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}
