// Package groupcache holds the last-known metadata per group chat so the
// transport can answer metadata pulls without a protocol round trip.
package groupcache

import (
	"sync"
	"time"

	"wabridge/pkg/models"
	"wabridge/pkg/telemetry"
)

// DefaultTTL bounds how long a pushed metadata blob stays servable.
const DefaultTTL = 300 * time.Second

type entry struct {
	meta    models.GroupMetadata
	expires time.Time
}

// Cache is a TTL map keyed by group JID. Reads never refresh expiry.
type Cache struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]entry
	now func() time.Time // test hook
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{ttl: ttl, m: make(map[string]entry), now: time.Now}
}

// Set stores metadata with expiry = now + TTL, unconditionally
// overwriting any prior entry.
func (c *Cache) Set(jid string, meta models.GroupMetadata) {
	c.mu.Lock()
	c.m[jid] = entry{meta: meta, expires: c.now().Add(c.ttl)}
	n := len(c.m)
	c.mu.Unlock()
	telemetry.GroupCacheEntries.Set(float64(n))
}

// Get returns the metadata for jid if present and unexpired. Expired
// entries read as absent; they are reclaimed lazily by Sweep.
func (c *Cache) Get(jid string) (models.GroupMetadata, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.m[jid]
	if !ok || c.now().After(e.expires) {
		return models.GroupMetadata{}, false
	}
	return e.meta, true
}

// Sweep removes expired entries and returns how many were reclaimed.
func (c *Cache) Sweep() int {
	now := c.now()
	c.mu.Lock()
	removed := 0
	for jid, e := range c.m {
		if now.After(e.expires) {
			delete(c.m, jid)
			removed++
		}
	}
	n := len(c.m)
	c.mu.Unlock()
	telemetry.GroupCacheEntries.Set(float64(n))
	return removed
}

// Len returns the number of entries currently held, expired included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
