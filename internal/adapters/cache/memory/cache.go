// Package memory is the in-process translation cache. Entries never expire.
package memory

import (
	"sync"

	"github.com/bnema/voxlate/internal/domain"
	"github.com/bnema/voxlate/internal/ports"
)

type Cache struct {
	mu      sync.RWMutex
	entries map[string]domain.Translation
}

var _ ports.TranslationCache = (*Cache)(nil)

func New() *Cache {
	return &Cache{entries: make(map[string]domain.Translation)}
}

func (c *Cache) Get(text string) (domain.Translation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	translation, ok := c.entries[text]
	return translation, ok
}

func (c *Cache) Put(text string, translation domain.Translation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[text] = translation
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
