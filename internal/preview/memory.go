package preview

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	img     Image
	expires time.Time
}

// DefaultMaxEntries bounds a MemoryCache.
const DefaultMaxEntries = 64

// MemoryCache is the fallback used when Redis is unavailable. Once full,
// the entry closest to expiry makes room for a new one.
type MemoryCache struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	entries    map[string]memEntry
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl, maxEntries: DefaultMaxEntries, now: time.Now, entries: make(map[string]memEntry)}
}

func (c *MemoryCache) Put(ctx context.Context, img Image) (string, error) {
	token := newToken()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evictLocked()
	for len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}
	img.Data = append([]byte(nil), img.Data...)
	c.entries[token] = memEntry{img: img, expires: c.now().Add(c.ttl)}
	return token, nil
}

func (c *MemoryCache) Get(ctx context.Context, token string) (Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[token]
	if !ok || !c.now().Before(e.expires) {
		delete(c.entries, token)
		return Image{}, ErrNotFound
	}
	return e.img, nil
}

func (c *MemoryCache) Release(ctx context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, token)
	return nil
}

// Len reports live entries.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evictLocked()
	return len(c.entries)
}

func (c *MemoryCache) evictLocked() {
	now := c.now()
	for k, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, k)
		}
	}
}

func (c *MemoryCache) evictOldestLocked() {
	var (
		oldest string
		at     time.Time
	)
	for k, e := range c.entries {
		if oldest == "" || e.expires.Before(at) {
			oldest, at = k, e.expires
		}
	}
	delete(c.entries, oldest)
}
