// Package evalcache caches position evaluations so repeated positions —
// transpositions within a game, or the same opening across games — skip
// the engine entirely.
package evalcache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/discochess/gamereview/internal/engine"
	"github.com/discochess/gamereview/internal/fen"
	"github.com/discochess/gamereview/internal/stats"
)

// Cache is an LRU of evaluations keyed by normalized position, depth and
// line count. Safe for concurrent use.
type Cache struct {
	cache *lru.Cache[string, engine.Evaluation]
	stats stats.Collector
}

// New creates a cache holding up to capacity evaluations.
// If collector is nil, metrics are discarded.
func New(capacity int, collector stats.Collector) (*Cache, error) {
	c, err := lru.New[string, engine.Evaluation](capacity)
	if err != nil {
		return nil, err
	}
	if collector == nil {
		collector = stats.NewNoop()
	}
	return &Cache{cache: c, stats: collector}, nil
}

// Key derives the cache key for a position query. Halfmove and fullmove
// counters are excluded so transpositions share entries. Falls back to
// the raw FEN when it cannot be normalized.
func Key(fenStr string, depth, lines int) string {
	normalized, err := fen.Normalize(fenStr)
	if err != nil {
		normalized = fenStr
	}
	return fmt.Sprintf("%s|d%d|l%d", normalized, depth, lines)
}

// Get retrieves a cached evaluation.
func (c *Cache) Get(key string) (engine.Evaluation, bool) {
	ev, ok := c.cache.Get(key)
	if ok {
		c.stats.IncCounter(stats.MetricCacheHits, 1)
	} else {
		c.stats.IncCounter(stats.MetricCacheMisses, 1)
	}
	return ev, ok
}

// Add stores an evaluation.
func (c *Cache) Add(key string, ev engine.Evaluation) {
	c.cache.Add(key, ev)
}

// Len returns the number of cached evaluations.
func (c *Cache) Len() int {
	return c.cache.Len()
}
