package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// DiskCache persists fetched source pages under a dot directory inside
// the articles tree, so a run interrupted after collection can resume
// without refetching.
type DiskCache struct {
	dir        string
	defaultTTL time.Duration
}

func NewDiskCache(dir string, defaultTTL time.Duration) *DiskCache {
	return &DiskCache{dir: dir, defaultTTL: defaultTTL}
}

type diskEntry struct {
	Body      []byte    `json:"body"`
	FetchedAt time.Time `json:"fetched_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (d *DiskCache) Get(key string) ([]byte, bool) {
	raw, err := os.ReadFile(d.entryPath(key))
	if err != nil {
		return nil, false
	}

	var entry diskEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		// unreadable entry, drop it
		_ = os.Remove(d.entryPath(key))
		return nil, false
	}
	if time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(d.entryPath(key))
		return nil, false
	}
	return entry.Body, true
}

func (d *DiskCache) Set(key string, body []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = d.defaultTTL
	}
	now := time.Now()
	raw, err := json.Marshal(diskEntry{
		Body:      body,
		FetchedAt: now,
		ExpiresAt: now.Add(ttl),
	})
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	if err := os.WriteFile(d.entryPath(key), raw, 0o644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

func (d *DiskCache) Delete(key string) error {
	return os.Remove(d.entryPath(key))
}

func (d *DiskCache) Clear() error {
	return os.RemoveAll(d.dir)
}

// entryPath maps a key to a filename, replacing characters that are not
// filesystem-safe everywhere (keys carry a colon-separated prefix).
func (d *DiskCache) entryPath(key string) string {
	return filepath.Join(d.dir, unsafeFileChars.ReplaceAllString(key, "-")+".json")
}
