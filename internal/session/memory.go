package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var errCacheMiss = errors.New("cache miss")

// sweepThreshold is the entry count above which a write also drops expired
// entries.
const sweepThreshold = 1024

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryCache is the in-process CacheRepository used when Redis is not
// configured. Entries are only visible to this instance.
type MemoryCache struct {
	mu    sync.Mutex
	items map[string]memoryEntry
	now   func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string]memoryEntry), now: time.Now}
}

func (c *MemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		s = fmt.Sprint(v)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if len(c.items) >= sweepThreshold {
		for k, e := range c.items {
			if e.expired(now) {
				delete(c.items, k)
			}
		}
	}

	entry := memoryEntry{value: s}
	if expiration > 0 {
		entry.expiresAt = now.Add(expiration)
	}
	c.items[key] = entry
	return nil
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return "", errCacheMiss
	}
	if e.expired(c.now()) {
		delete(c.items, key)
		return "", errCacheMiss
	}
	return e.value, nil
}

func (c *MemoryCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.items, k)
	}
	return nil
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}
