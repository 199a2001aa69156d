// Package cache provides a thread-safe LRU cache with optional TTL,
// and a specialization for grouped query results keyed by content
// fingerprint.
package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/FocuswithJustin/TallyBook/core/fingerprint"
	"github.com/FocuswithJustin/TallyBook/core/tally"
)

// Cache is a generic LRU cache interface.
type Cache[K comparable, V any] interface {
	// Get retrieves a value from the cache.
	Get(key K) (V, bool)

	// Put stores a value in the cache.
	Put(key K, value V)

	// Remove removes a value from the cache.
	Remove(key K)

	// Clear removes all entries from the cache.
	Clear()

	// Len returns the number of entries in the cache.
	Len() int

	// Stats returns cache statistics.
	Stats() Stats
}

// Stats contains cache statistics.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
	MaxSize   int
}

// Config contains cache configuration options.
type Config struct {
	// MaxSize is the maximum number of entries (0 = unlimited).
	MaxSize int

	// TTL is the time-to-live for entries (0 = no expiration).
	TTL time.Duration

	// OnEvict is called when an entry is evicted.
	OnEvict func(key, value interface{})
}

// DefaultConfig returns a default cache configuration.
func DefaultConfig() Config {
	return Config{MaxSize: 100}
}

type entry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time
}

type lruCache[K comparable, V any] struct {
	mu        sync.RWMutex
	config    Config
	entries   map[K]*list.Element
	evictList *list.List
	stats     Stats
}

// NewLRU creates a new LRU cache with the given configuration.
func NewLRU[K comparable, V any](config Config) Cache[K, V] {
	if config.MaxSize < 0 {
		config.MaxSize = 0
	}
	return &lruCache[K, V]{
		config:    config,
		entries:   make(map[K]*list.Element),
		evictList: list.New(),
	}
}

func (c *lruCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		var zero V
		return zero, false
	}

	e := ent.Value.(*entry[K, V])
	if c.config.TTL > 0 && time.Now().After(e.expiresAt) {
		c.removeElement(ent)
		c.stats.Misses++
		var zero V
		return zero, false
	}

	c.evictList.MoveToFront(ent)
	c.stats.Hits++
	return e.value, true
}

func (c *lruCache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.entries[key]; ok {
		c.evictList.MoveToFront(ent)
		e := ent.Value.(*entry[K, V])
		e.value = value
		if c.config.TTL > 0 {
			e.expiresAt = time.Now().Add(c.config.TTL)
		}
		return
	}

	e := &entry[K, V]{key: key, value: value}
	if c.config.TTL > 0 {
		e.expiresAt = time.Now().Add(c.config.TTL)
	}

	c.entries[key] = c.evictList.PushFront(e)

	if c.config.MaxSize > 0 && c.evictList.Len() > c.config.MaxSize {
		c.removeOldest()
	}
}

func (c *lruCache[K, V]) Remove(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.entries[key]; ok {
		c.removeElement(ent)
	}
}

func (c *lruCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]*list.Element)
	c.evictList.Init()
	c.stats.Size = 0
}

func (c *lruCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.evictList.Len()
}

func (c *lruCache[K, V]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := c.stats
	s.Size = c.evictList.Len()
	s.MaxSize = c.config.MaxSize
	return s
}

func (c *lruCache[K, V]) removeOldest() {
	if ent := c.evictList.Back(); ent != nil {
		c.removeElement(ent)
		c.stats.Evictions++
	}
}

func (c *lruCache[K, V]) removeElement(ent *list.Element) {
	c.evictList.Remove(ent)
	e := ent.Value.(*entry[K, V])
	delete(c.entries, e.key)

	if c.config.OnEvict != nil {
		c.config.OnEvict(e.key, e.value)
	}
}

// ResultCache caches grouped query results keyed by the query
// fingerprint, so re-running an identical request over identical input
// is a lookup.
type ResultCache struct {
	cache Cache[string, *tally.Result]
}

// NewResultCache creates a result cache.
func NewResultCache(config Config) *ResultCache {
	return &ResultCache{cache: NewLRU[string, *tally.Result](config)}
}

// NewDefaultResultCache creates a result cache sized for interactive
// use.
func NewDefaultResultCache() *ResultCache {
	config := DefaultConfig()
	config.MaxSize = 256
	return NewResultCache(config)
}

// Get retrieves a cached result by query digest.
func (c *ResultCache) Get(key fingerprint.Digest) (*tally.Result, bool) {
	return c.cache.Get(key.BLAKE3)
}

// Put stores a result under its query digest.
func (c *ResultCache) Put(key fingerprint.Digest, res *tally.Result) {
	c.cache.Put(key.BLAKE3, res)
}

// GetOrCompute returns the cached result for key, computing and
// storing it on a miss. The boolean reports whether the result came
// from the cache. Concurrent misses on the same key may compute more
// than once; the last write wins.
func (c *ResultCache) GetOrCompute(key fingerprint.Digest, compute func() (*tally.Result, error)) (*tally.Result, bool, error) {
	if res, ok := c.Get(key); ok {
		return res, true, nil
	}
	res, err := compute()
	if err != nil {
		return nil, false, err
	}
	c.Put(key, res)
	return res, false, nil
}

// Remove drops one cached result.
func (c *ResultCache) Remove(key fingerprint.Digest) {
	c.cache.Remove(key.BLAKE3)
}

// Clear drops all cached results.
func (c *ResultCache) Clear() {
	c.cache.Clear()
}

// Len returns the number of cached results.
func (c *ResultCache) Len() int {
	return c.cache.Len()
}

// Stats returns cache statistics.
func (c *ResultCache) Stats() Stats {
	return c.cache.Stats()
}
