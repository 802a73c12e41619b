package validation

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/erraggy/reqgate/gateerrors"
	"github.com/erraggy/reqgate/logging"
	"github.com/erraggy/reqgate/model"
)

// DefaultCapacity is the number of compiled validators a Cache keeps when no
// capacity is configured.
const DefaultCapacity = 128

// Cache memoizes compiled validators per descriptor, evicting the least
// recently used entry once capacity is reached. It is safe for concurrent
// use.
type Cache struct {
	entries  *lru.Cache[*model.Descriptor, *Compiled]
	capacity int
	logger   logging.Logger

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// CacheStats is a snapshot of cache counters.
type CacheStats struct {
	Hits      uint64 `json:"hits" yaml:"hits"`
	Misses    uint64 `json:"misses" yaml:"misses"`
	Evictions uint64 `json:"evictions" yaml:"evictions"`
	Len       int    `json:"len" yaml:"len"`
	Capacity  int    `json:"capacity" yaml:"capacity"`
}

// CacheOption configures a Cache.
type CacheOption func(*cacheConfig) error

type cacheConfig struct {
	capacity int
	logger   logging.Logger
}

func defaultCacheConfig() *cacheConfig {
	return &cacheConfig{
		capacity: DefaultCapacity,
		logger:   logging.NopLogger{},
	}
}

// WithCapacity sets the maximum number of resident validators.
func WithCapacity(n int) CacheOption {
	return func(cfg *cacheConfig) error {
		if n <= 0 {
			return &gateerrors.ConfigError{
				Option:  "WithCapacity",
				Value:   n,
				Message: "cache capacity must be positive",
			}
		}
		cfg.capacity = n
		return nil
	}
}

// WithCacheLogger sets the logger for cache misses, evictions and
// derivation failures. Nil restores the no-op logger.
func WithCacheLogger(l logging.Logger) CacheOption {
	return func(cfg *cacheConfig) error {
		cfg.logger = logging.OrNop(l)
		return nil
	}
}

// NewCache creates an empty cache.
func NewCache(opts ...CacheOption) (*Cache, error) {
	cfg := defaultCacheConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	c := &Cache{
		capacity: cfg.capacity,
		logger:   cfg.logger.With("component", "schema-cache"),
	}
	entries, err := lru.NewWithEvict(cfg.capacity, func(d *model.Descriptor, _ *Compiled) {
		c.logger.Debug("evicted compiled validator", "model", d.Name())
	})
	if err != nil {
		return nil, &gateerrors.ConfigError{Option: "WithCapacity", Value: cfg.capacity, Cause: err}
	}
	c.entries = entries
	return c, nil
}

// Get returns the compiled validator for desc, compiling and inserting it on
// a miss. A hit marks the entry as most recently used.
//
// Compilation runs outside the cache lock. When goroutines race on the same
// descriptor, the first inserted result is kept and returned to all of them.
// Failures are returned as *gateerrors.SchemaDerivationError and are not
// cached.
func (c *Cache) Get(desc *model.Descriptor) (*Compiled, error) {
	if desc == nil {
		return nil, &gateerrors.SchemaDerivationError{Message: "descriptor is nil"}
	}
	if compiled, ok := c.entries.Get(desc); ok {
		c.hits.Add(1)
		return compiled, nil
	}

	c.misses.Add(1)
	c.logger.Debug("schema cache miss", "model", desc.Name())

	compiled, err := Compile(desc)
	if err != nil {
		c.logger.Warn("schema derivation failed", "model", desc.Name(), "error", err)
		return nil, err
	}

	previous, found, evicted := c.entries.PeekOrAdd(desc, compiled)
	if evicted {
		c.evictions.Add(1)
	}
	if found {
		// Lost the race; promote and return the resident entry.
		c.entries.Get(desc)
		return previous, nil
	}
	return compiled, nil
}

// Contains reports whether desc has a resident validator without changing
// its recency.
func (c *Cache) Contains(desc *model.Descriptor) bool {
	return c.entries.Contains(desc)
}

// Len returns the number of resident validators.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Capacity returns the configured maximum number of resident validators.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Purge drops every resident validator. Counters are kept.
func (c *Cache) Purge() {
	c.entries.Purge()
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Len:       c.entries.Len(),
		Capacity:  c.capacity,
	}
}
