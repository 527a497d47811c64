// Package cache provides content-addressed storage for fuse execution
// artifacts. Keys are SHA-256 digests of the exact snippet text; values are
// captured stdout. The cache is in-memory, bounded, and scoped to a session.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/riftlang/rift/pkg/errdefs"
)

// DefaultCapacity bounds the cache when no capacity is configured.
const DefaultCapacity = 1024

// HashSnippet returns the hex SHA-256 digest of the exact snippet text.
// The language is not part of the key, so identical text fused under two
// different languages collides on one entry. That keying is load-bearing
// for cache hits and is kept as-is.
func HashSnippet(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// ArtifactCache is a bounded LRU of execution outputs keyed by content hash.
// It is safe for concurrent use. Racing writes for one hash are idempotent:
// the same snippet text produces the same output.
type ArtifactCache struct {
	entries *lru.Cache[string, string]

	hits   atomic.Uint64
	misses atomic.Uint64
}

// New creates an ArtifactCache holding at most capacity entries.
func New(capacity int) (*ArtifactCache, error) {
	entries, err := lru.New[string, string](capacity)
	if err != nil {
		return nil, errdefs.NewCache("invalid cache capacity", err)
	}
	return &ArtifactCache{entries: entries}, nil
}

// Get returns the cached output for hash, recording a hit or miss.
func (c *ArtifactCache) Get(hash string) (string, bool) {
	output, ok := c.entries.Get(hash)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return output, ok
}

// Contains reports presence without recording a hit or disturbing recency.
func (c *ArtifactCache) Contains(hash string) bool {
	return c.entries.Contains(hash)
}

// Peek returns the cached output without recording a hit or disturbing
// recency. Deploy payload compilation reads through Peek so rendering a
// payload does not skew hit rates.
func (c *ArtifactCache) Peek(hash string) (string, bool) {
	return c.entries.Peek(hash)
}

// Put stores output under hash, evicting the least recently used entry when
// the cache is full.
func (c *ArtifactCache) Put(hash, output string) {
	c.entries.Add(hash, output)
}

// Len returns the number of cached artifacts.
func (c *ArtifactCache) Len() int {
	return c.entries.Len()
}

// Purge drops every entry. Hit and miss counters are kept.
func (c *ArtifactCache) Purge() {
	c.entries.Purge()
}

// Stats returns cumulative hit and miss counts.
func (c *ArtifactCache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}
