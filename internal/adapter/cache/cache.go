// Package cache implements the concurrent LRU segment cache (§4.3): a
// byte- and entry-count-bounded map with TTL expiry and a periodic sweep.
package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/kestrelstream/hlsproxy/internal/core/domain"
	"github.com/kestrelstream/hlsproxy/internal/util"
)

// Config bounds the cache's footprint.
type Config struct {
	MaxEntries    int
	MaxMemoryBytes int64
	ExpiryMs      int64
	SweepInterval time.Duration
}

type entry struct {
	key        string
	data       domain.CacheEntry
	elem       *list.Element
}

// Cache is a mutex-guarded map plus a recency list: the canonical LRU
// shape from §9 (a finer-grained scheme is permitted, this one is not).
type Cache struct {
	cfg Config

	mu       sync.Mutex
	index    map[string]*entry
	recency  *list.List // front = most-recently-used, back = eviction candidate
	memBytes int64

	stopSweep chan struct{}
	sweepOnce sync.Once
}

// New constructs a Cache and starts its periodic sweep goroutine.
func New(cfg Config) *Cache {
	c := &Cache{
		cfg:       cfg,
		index:     make(map[string]*entry),
		recency:   list.New(),
		stopSweep: make(chan struct{}),
	}
	if cfg.SweepInterval > 0 {
		go c.sweepLoop()
	}
	return c
}

func (c *Cache) sweepLoop() {
	ticker := time.NewTicker(c.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.Cleanup()
		case <-c.stopSweep:
			return
		}
	}
}

// Close stops the sweep goroutine. The cache must not be used afterwards.
func (c *Cache) Close() {
	c.sweepOnce.Do(func() { close(c.stopSweep) })
}

func nowMs() int64 {
	return time.Now().UnixMilli()
}

// Get returns the entry for key, promoting it to most-recently-used. An
// expired entry is deleted and reported as a miss.
func (c *Cache) Get(key string) (domain.CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.index[key]
	if !ok {
		return domain.CacheEntry{}, false
	}
	if c.cfg.ExpiryMs > 0 && nowMs()-e.data.InsertedAt > c.cfg.ExpiryMs {
		c.removeLocked(e)
		return domain.CacheEntry{}, false
	}

	c.recency.MoveToFront(e.elem)
	return e.data, true
}

// Set inserts or replaces the entry for key, evicting least-recently-used
// entries until both the byte budget and the entry-count budget are
// satisfied.
func (c *Cache) Set(key string, data domain.CacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.index[key]; ok {
		c.removeLocked(existing)
	}

	for c.cfg.MaxMemoryBytes > 0 && c.memBytes+data.SizeBytes > c.cfg.MaxMemoryBytes && c.recency.Len() > 0 {
		c.evictOldestLocked()
	}
	if c.cfg.MaxEntries > 0 && len(c.index) >= c.cfg.MaxEntries {
		c.evictOldestLocked()
	}

	elem := c.recency.PushFront(key)
	c.index[key] = &entry{key: key, data: data, elem: elem}
	c.memBytes = util.SafeAddInt64(c.memBytes, data.SizeBytes)
}

func (c *Cache) evictOldestLocked() {
	back := c.recency.Back()
	if back == nil {
		return
	}
	key := back.Value.(string)
	e, ok := c.index[key]
	if !ok {
		c.recency.Remove(back)
		return
	}
	c.removeLocked(e)
}

func (c *Cache) removeLocked(e *entry) {
	c.recency.Remove(e.elem)
	delete(c.index, e.key)
	c.memBytes = util.SafeSubInt64(c.memBytes, e.data.SizeBytes)
}

// Delete removes key, reporting whether an entry was present.
func (c *Cache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.index[key]
	if !ok {
		return false
	}
	c.removeLocked(e)
	return true
}

// Cleanup deletes every entry past its TTL and returns how many were removed.
func (c *Cache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfg.ExpiryMs <= 0 {
		return 0
	}

	now := nowMs()
	removed := 0
	for _, e := range c.index {
		if now-e.data.InsertedAt > c.cfg.ExpiryMs {
			c.removeLocked(e)
			removed++
		}
	}
	return removed
}

// Clear drops every entry and resets byte accounting to zero.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.index = make(map[string]*entry)
	c.recency.Init()
	c.memBytes = 0
}

const bytesPerMB = 1 << 20

// Stats returns a read-only snapshot (§4.3).
func (c *Cache) Stats() domain.CacheStats {
	c.mu.Lock()
	entries := len(c.index)
	mem := c.memBytes
	c.mu.Unlock()

	currentMB := float64(mem) / bytesPerMB
	var avgEntryKB float64
	if entries > 0 {
		avgEntryKB = float64(mem) / float64(entries) / 1024
	}

	return domain.CacheStats{
		Entries:     entries,
		TotalMB:     currentMB,
		AvgEntryKB:  avgEntryKB,
		MaxEntries:  c.cfg.MaxEntries,
		MaxMB:       float64(c.cfg.MaxMemoryBytes) / bytesPerMB,
		CurrentMB:   currentMB,
		ExpiryHours: float64(c.cfg.ExpiryMs) / float64(time.Hour.Milliseconds()),
	}
}
