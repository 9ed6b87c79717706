package mustache

import (
	"sync"
	"sync/atomic"
)

// CacheStats reports how a TemplateCache has been used.
type CacheStats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// TemplateCache maps template text to its parsed token tree so a template is
// parsed once no matter how often it is rendered. Entries live until Remove or
// Clear; there is no eviction.
//
// Cached trees are shared between renders and must not be modified.
type TemplateCache struct {
	mu      sync.RWMutex
	entries map[string][]*Token
	hits    atomic.Uint64
	misses  atomic.Uint64
}

// NewTemplateCache creates an empty template cache
func NewTemplateCache() *TemplateCache {
	return &TemplateCache{
		entries: make(map[string][]*Token),
	}
}

// cacheKey is the template text itself for the default tags. Other tag pairs
// are folded into the key so the same text parsed with different delimiters
// gets its own entry.
func cacheKey(template string, tags Tags) string {
	if tags == DefaultTags {
		return template
	}
	return tags.Open + "\x00" + tags.Close + "\x00" + template
}

// Get retrieves a parsed template from the cache
func (tc *TemplateCache) Get(key string) ([]*Token, bool) {
	tc.mu.RLock()
	tokens, exists := tc.entries[key]
	tc.mu.RUnlock()

	if exists {
		tc.hits.Add(1)
	} else {
		tc.misses.Add(1)
	}
	return tokens, exists
}

// Set adds a parsed template to the cache. An existing entry for key is kept,
// so concurrent parses of the same text settle on one tree.
func (tc *TemplateCache) Set(key string, tokens []*Token) []*Token {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if existing, exists := tc.entries[key]; exists {
		return existing
	}
	tc.entries[key] = tokens
	return tokens
}

// Remove removes a template from the cache
func (tc *TemplateCache) Remove(key string) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	delete(tc.entries, key)
}

// Clear removes all templates from the cache. Later lookups parse again.
func (tc *TemplateCache) Clear() {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	tc.entries = make(map[string][]*Token)
}

// Size returns the current number of cached templates
func (tc *TemplateCache) Size() int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return len(tc.entries)
}

// Stats returns the hit and miss counters and the current size.
func (tc *TemplateCache) Stats() CacheStats {
	return CacheStats{
		Hits:    tc.hits.Load(),
		Misses:  tc.misses.Load(),
		Entries: tc.Size(),
	}
}
