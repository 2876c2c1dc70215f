package cache

import "time"

// LayeredCache reads through memory into disk. The memory layer keeps
// one run fast; the disk layer survives restarts.
type LayeredCache struct {
	memory *MemoryCache
	disk   *DiskCache
}

func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(memoryTTL, 10*time.Minute),
		disk:   NewDiskCache(diskDir, diskTTL),
	}
}

func (l *LayeredCache) Get(key string) ([]byte, bool) {
	if body, found := l.memory.Get(key); found {
		return body, true
	}
	body, found := l.disk.Get(key)
	if !found {
		return nil, false
	}
	// promote so the next lookup stays in memory
	_ = l.memory.Set(key, body, 0)
	return body, true
}

func (l *LayeredCache) Set(key string, body []byte, ttl time.Duration) error {
	if err := l.memory.Set(key, body, ttl); err != nil {
		return err
	}
	return l.disk.Set(key, body, ttl)
}

func (l *LayeredCache) Delete(key string) error {
	_ = l.memory.Delete(key)
	_ = l.disk.Delete(key)
	return nil
}

func (l *LayeredCache) Clear() error {
	_ = l.memory.Clear()
	return l.disk.Clear()
}
