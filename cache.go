package img2ascii

import (
	"sync"

	"github.com/wbrown/img2ascii/ann"
)

// tileCache memoizes the glyph id chosen for a tile vector. Keys are the
// exact vector bytes, so a hit returns the id the index chose for the
// same vector. Edge maps are mostly empty, which makes blank and
// near-blank tiles repeat heavily.
type tileCache struct {
	mu      sync.Mutex
	entries map[string]int
	hits    int
	misses  int
}

func newTileCache() *tileCache {
	return &tileCache{entries: make(map[string]int)}
}

// get returns the cached id for v.
func (c *tileCache) get(v ann.Vector) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.entries[string(v)]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return id, ok
}

// put records the id chosen for v.
func (c *tileCache) put(v ann.Vector, id int) {
	c.mu.Lock()
	c.entries[string(v)] = id
	c.mu.Unlock()
}

// CacheStats reports tile cache usage since the last Prepare.
type CacheStats struct {
	Entries int
	Hits    int
	Misses  int
}

// HitRate returns the fraction of lookups served from the cache.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

func (c *tileCache) stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
}
