package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"time"

	"github.com/daishir0/AutoErrorArticleGen/internal/model"
)

// Cache defines the interface for caching provider responses
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey generates a cache key from a URL
func CacheKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "errorgen:v1:" + hex.EncodeToString(hash[:])
}

// FromConfig builds the response cache described by the configuration.
// Returns nil when caching is disabled; callers treat a nil cache as a
// pass-through.
func FromConfig(cfg model.CacheConfig, storageDir string) Cache {
	if !cfg.Enabled {
		return nil
	}
	diskDir := filepath.Join(storageDir, ".cache")
	return NewLayeredCache(cfg.TTL, diskDir, 24*time.Hour)
}
