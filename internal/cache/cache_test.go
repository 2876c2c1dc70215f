package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/daishir0/AutoErrorArticleGen/internal/model"
)

func TestCacheKey(t *testing.T) {
	a := CacheKey("https://learn.microsoft.com/search?q=error")
	b := CacheKey("https://learn.microsoft.com/search?q=error")
	c := CacheKey("https://learn.microsoft.com/search?q=other")

	if a != b {
		t.Error("same URL produced different keys")
	}
	if a == c {
		t.Error("different URLs produced the same key")
	}
	if len(a) <= len("errorgen:v1:") {
		t.Errorf("suspicious key: %q", a)
	}
}

func TestFromConfig_Disabled(t *testing.T) {
	if c := FromConfig(model.CacheConfig{Enabled: false}, t.TempDir()); c != nil {
		t.Error("disabled cache config produced a cache")
	}
}

func TestLayeredCache_RoundTrip(t *testing.T) {
	c := FromConfig(model.CacheConfig{Enabled: true, TTL: time.Minute}, t.TempDir())
	if c == nil {
		t.Fatal("enabled cache config produced nil")
	}

	key := CacheKey("https://example.com/page")
	if _, found := c.Get(key); found {
		t.Error("empty cache reported a hit")
	}

	if err := c.Set(key, []byte("response body"), time.Minute); err != nil {
		t.Fatal(err)
	}
	val, found := c.Get(key)
	if !found || string(val) != "response body" {
		t.Errorf("Get = %q, %v", val, found)
	}

	if err := c.Delete(key); err != nil {
		t.Fatal(err)
	}
	if _, found := c.Get(key); found {
		t.Error("deleted key still present")
	}
}

func TestLayeredCache_DiskPromotion(t *testing.T) {
	dir := t.TempDir()
	diskDir := filepath.Join(dir, ".cache")

	first := NewLayeredCache(time.Minute, diskDir, time.Hour)
	key := CacheKey("https://example.com/persistent")
	if err := first.Set(key, []byte("persisted"), time.Minute); err != nil {
		t.Fatal(err)
	}

	// a fresh layered cache has cold memory but warm disk
	second := NewLayeredCache(time.Minute, diskDir, time.Hour)
	val, found := second.Get(key)
	if !found || string(val) != "persisted" {
		t.Errorf("disk layer miss: %q, %v", val, found)
	}
}

func TestMemoryCache_TTLExpiry(t *testing.T) {
	c := NewMemoryCache(10*time.Millisecond, time.Minute)
	if err := c.Set("k", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(30 * time.Millisecond)
	if _, found := c.Get("k"); found {
		t.Error("expired entry still present")
	}
}
