// Package ttlcache provides a small string-keyed cache with per-entry age
// expiry and optional whole-file JSON snapshot persistence. It exists to
// keep repeated identical upstream lookups off the wire; it is never on the
// critical path of correctness, so storage failures degrade to an empty
// cache instead of erroring.
package ttlcache

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type entry[V any] struct {
	Value     V         `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// Cache is a string-keyed TTL cache. Entries older than the TTL are
// logically absent; they are only physically removed by Cleanup.
// All methods are safe for concurrent use.
type Cache[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	path    string // empty means in-memory only
	entries map[string]entry[V]
	loaded  bool
	logger  *slog.Logger

	now func() time.Time // test hook
}

// New builds a cache with the given TTL. When path is non-empty the cache
// snapshots itself to that file on every write and reloads it lazily on
// first access; a missing or corrupt file is treated as an empty cache.
func New[V any](path string, ttl time.Duration, logger *slog.Logger) *Cache[V] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache[V]{
		ttl:     ttl,
		path:    path,
		entries: make(map[string]entry[V]),
		logger:  logger,
		now:     time.Now,
	}
}

// Get returns the value for key, or ok=false when the key is absent or its
// entry has outlived the TTL. Expired entries are not evicted on read.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadLocked()

	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.Timestamp) >= c.ttl {
		var zero V
		return zero, false
	}
	return e.Value, true
}

// Set stores value under key, replacing any previous entry whole, and
// rewrites the snapshot file. Snapshot write failures are logged and
// swallowed; the in-memory entry always lands.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadLocked()

	c.entries[key] = entry[V]{Value: value, Timestamp: c.now()}
	c.persistLocked()
}

// Len reports the number of live (unexpired) entries.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadLocked()

	n := 0
	now := c.now()
	for _, e := range c.entries {
		if now.Sub(e.Timestamp) < c.ttl {
			n++
		}
	}
	return n
}

// Cleanup physically removes expired entries and rewrites the snapshot.
func (c *Cache[V]) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loadLocked()

	now := c.now()
	for key, e := range c.entries {
		if now.Sub(e.Timestamp) >= c.ttl {
			delete(c.entries, key)
		}
	}
	c.persistLocked()
}

// loadLocked reads the snapshot file into memory once. Any failure leaves
// the cache empty; the cache must never be the reason a request fails.
func (c *Cache[V]) loadLocked() {
	if c.loaded {
		return
	}
	c.loaded = true

	if c.path == "" {
		return
	}

	raw, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("cache snapshot unreadable, starting empty", "path", c.path, "err", err)
		}
		return
	}

	var snapshot map[string]entry[V]
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		c.logger.Warn("cache snapshot corrupt, starting empty", "path", c.path, "err", err)
		return
	}
	if snapshot != nil {
		c.entries = snapshot
	}
}

// persistLocked rewrites the whole snapshot file. Best effort only.
func (c *Cache[V]) persistLocked() {
	if c.path == "" {
		return
	}

	raw, err := json.Marshal(c.entries)
	if err != nil {
		c.logger.Warn("cache snapshot encode failed", "path", c.path, "err", err)
		return
	}

	// Write-then-rename so a crash mid-write can't leave a torn file.
	tmp := c.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(c.path), 0750); err != nil {
		c.logger.Warn("cache snapshot write failed", "path", c.path, "err", err)
		return
	}
	if err := os.WriteFile(tmp, raw, 0600); err != nil {
		c.logger.Warn("cache snapshot write failed", "path", c.path, "err", err)
		return
	}
	if err := os.Rename(tmp, c.path); err != nil {
		c.logger.Warn("cache snapshot rename failed", "path", c.path, "err", err)
	}
}
