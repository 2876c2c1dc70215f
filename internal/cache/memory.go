package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache holds recently fetched source pages in process memory. It
// fronts the disk layer so repeated lookups within one run never touch
// the filesystem.
type MemoryCache struct {
	store *gocache.Cache
}

func NewMemoryCache(ttl, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{store: gocache.New(ttl, cleanupInterval)}
}

func (m *MemoryCache) Get(key string) ([]byte, bool) {
	val, found := m.store.Get(key)
	if !found {
		return nil, false
	}
	body, ok := val.([]byte)
	return body, ok
}

// Set stores body under key. A zero ttl means the cache default.
func (m *MemoryCache) Set(key string, body []byte, ttl time.Duration) error {
	m.store.Set(key, body, ttl)
	return nil
}

func (m *MemoryCache) Delete(key string) error {
	m.store.Delete(key)
	return nil
}

func (m *MemoryCache) Clear() error {
	m.store.Flush()
	return nil
}
