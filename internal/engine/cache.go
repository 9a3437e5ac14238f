package engine

import (
	"crypto/sha256"
	"encoding/hex"
)

// cacheEntry is one memoized publicness verdict.
type cacheEntry struct {
	Public *bool
}

// QueryCache memoizes publicness query outcomes keyed by a hash of the
// solver's base-assertion log plus the differential expression (spec.md
// §4.3's query cache). It is process-local, not thread-safe, and reused
// across paths within one engine instance — one QueryCache should be
// constructed per engine instance and threaded through every AnalyzePath
// call, per §5's concurrency model (distinct paths on distinct engine
// instances, each with its own cache).
type QueryCache struct {
	entries map[string]cacheEntry
}

// NewQueryCache builds an empty cache.
func NewQueryCache() *QueryCache {
	return &QueryCache{entries: map[string]cacheEntry{}}
}

// Key builds the cache key for a publicness query: the solver's serialized
// base-assertion log, the literal separator, and a serialization of the
// differential expression (the A and B literals being compared). Because
// the key names the compared literals themselves rather than a def_id, a
// cache reused across paths or functions only hits when the query is the
// same.
func Key(baseSexpr, diffSexpr string) string {
	h := sha256.New()
	h.Write([]byte(baseSexpr))
	h.Write([]byte("|"))
	h.Write([]byte(diffSexpr))
	return hex.EncodeToString(h.Sum(nil))
}

func (c *QueryCache) get(key string) (cacheEntry, bool) {
	if c == nil {
		return cacheEntry{}, false
	}
	e, ok := c.entries[key]
	return e, ok
}

func (c *QueryCache) put(key string, e cacheEntry) {
	if c == nil {
		return
	}
	c.entries[key] = e
}
