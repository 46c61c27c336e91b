package rustsyntax

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

type cacheEntry struct {
	ContentHash string
	File        *File
}

// fileCache keeps the last successful parse of each path. An entry is only
// reused while the file content hashes the same. Returned Files are shared
// and must not be modified.
type fileCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	hits    int
	misses  int
}

func newFileCache() *fileCache {
	return &fileCache{entries: make(map[string]cacheEntry)}
}

func hashContent(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}

func (c *fileCache) get(path, hash string) (*File, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[path]
	if !ok || entry.ContentHash != hash {
		c.misses++
		return nil, false
	}
	c.hits++
	return entry.File, true
}

func (c *fileCache) put(path, hash string, file *File) {
	c.mu.Lock()
	c.entries[path] = cacheEntry{ContentHash: hash, File: file}
	c.mu.Unlock()
}

// CacheStats reports how many ParseFile calls were served from the cache
func (p *Parser) CacheStats() (hits, misses int) {
	p.cache.mu.Lock()
	defer p.cache.mu.Unlock()
	return p.cache.hits, p.cache.misses
}
