package cache

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/smart-faq/internal/domain/faq"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is a process-local cache for tests/dev. Expired entries are
// dropped lazily on read.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryCache constructs an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get implements faq.Cache.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	item, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if c.expired(item.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	out := make([]byte, len(item.value))
	copy(out, item.value)
	return out, true, nil
}

// Set stores value under key. A non-positive ttl never expires.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	exp := time.Time{}
	if ttl > 0 {
		exp = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = entry{value: stored, expiresAt: exp}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) expired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return !c.now().Before(ts)
}

var _ faq.Cache = (*MemoryCache)(nil)
