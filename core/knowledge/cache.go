package knowledge

import (
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/adalundhe/relay/core/capability"
)

const (
	defaultNumCounters = 1e5
	defaultMaxCost     = 1 << 24 // 16MB of cached result sets
	defaultBufferItems = 64
	defaultCacheTTL    = 5 * time.Minute
)

// =============================================================================
// Query Cache
// =============================================================================

// QueryCacheConfig configures the retrieval result cache.
type QueryCacheConfig struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	TTL         time.Duration
}

// DefaultQueryCacheConfig returns sensible defaults.
func DefaultQueryCacheConfig() QueryCacheConfig {
	return QueryCacheConfig{
		NumCounters: defaultNumCounters,
		MaxCost:     defaultMaxCost,
		BufferItems: defaultBufferItems,
		TTL:         defaultCacheTTL,
	}
}

// QueryCache memoizes retrieval results per query string with a TTL, so
// repeated questions in one conversation skip the index entirely.
type QueryCache struct {
	cache *ristretto.Cache
	ttl   time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// NewQueryCache creates a query cache.
func NewQueryCache(cfg QueryCacheConfig) (*QueryCache, error) {
	if cfg.NumCounters <= 0 {
		cfg.NumCounters = defaultNumCounters
	}
	if cfg.MaxCost <= 0 {
		cfg.MaxCost = defaultMaxCost
	}
	if cfg.BufferItems <= 0 {
		cfg.BufferItems = defaultBufferItems
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultCacheTTL
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
	})
	if err != nil {
		return nil, err
	}

	return &QueryCache{
		cache: cache,
		ttl:   cfg.TTL,
	}, nil
}

// Get returns the cached passages for a query.
func (c *QueryCache) Get(query string) ([]capability.Passage, bool) {
	value, ok := c.cache.Get(query)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}

	passages, ok := value.([]capability.Passage)
	if !ok {
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	return passages, true
}

// Put stores passages for a query. Cost is the passage count so large result
// sets are evicted first.
func (c *QueryCache) Put(query string, passages []capability.Passage) {
	c.cache.SetWithTTL(query, passages, int64(len(passages)+1), c.ttl)
}

// Wait blocks until buffered writes have been applied.
func (c *QueryCache) Wait() {
	c.cache.Wait()
}

// Hits returns the cache hit count.
func (c *QueryCache) Hits() int64 { return c.hits.Load() }

// Misses returns the cache miss count.
func (c *QueryCache) Misses() int64 { return c.misses.Load() }

// Close releases the cache's resources.
func (c *QueryCache) Close() {
	c.cache.Close()
}
