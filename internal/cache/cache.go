// Package cache persists per-file analysis results between runs, keyed
// by content hash. The cache is off by default: every invocation
// produces a fresh report unless caching is explicitly enabled.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/loupe-dev/loupe/pkg/models"
	"github.com/zeebo/blake3"
)

// FileResult is the cacheable analysis outcome for one file. Paths
// inside are relative to the analyzed root, so a cache entry is only
// valid for the same relative location.
type FileResult struct {
	Score  *models.ComplexityScore `json:"score,omitempty"`
	Smells []models.Smell          `json:"smells,omitempty"`
}

// entry wraps a stored result with its freshness metadata.
type entry struct {
	Key    string     `json:"key"`
	Stored time.Time  `json:"stored"`
	Result FileResult `json:"result"`
}

// Cache is a directory of JSON entries named by the BLAKE3 hash of
// their key. A disabled cache is a valid value whose operations all
// no-op, which keeps call sites free of nil checks.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

// New opens (and creates if needed) a cache directory.
func New(dir string, ttlHours int, enabled bool) (*Cache, error) {
	if !enabled {
		return &Cache{}, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Cache{
		dir:     dir,
		ttl:     time.Duration(ttlHours) * time.Hour,
		enabled: true,
	}, nil
}

// Key derives the cache key for a file from its relative path, its
// content, and the threshold settings that shaped the analysis. Any
// threshold change invalidates every entry.
func Key(rel string, content []byte, thresholdFingerprint string) string {
	h := blake3.New()
	h.WriteString(rel)
	h.Write([]byte{0})
	h.Write(content)
	h.Write([]byte{0})
	h.WriteString(thresholdFingerprint)
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the stored result for key, if present and fresh. Expired
// entries are removed on read.
func (c *Cache) Get(key string) (FileResult, bool) {
	if !c.enabled {
		return FileResult{}, false
	}

	path := c.entryPath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return FileResult{}, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil || e.Key != key {
		return FileResult{}, false
	}
	if time.Since(e.Stored) > c.ttl {
		os.Remove(path)
		return FileResult{}, false
	}
	return e.Result, true
}

// Put stores a result under key. Errors are returned so the caller can
// surface them as warnings; a failed write never fails the run.
func (c *Cache) Put(key string, result FileResult) error {
	if !c.enabled {
		return nil
	}

	data, err := json.Marshal(entry{
		Key:    key,
		Stored: time.Now(),
		Result: result,
	})
	if err != nil {
		return err
	}
	return os.WriteFile(c.entryPath(key), data, 0o600)
}

// Clear removes every entry.
func (c *Cache) Clear() error {
	if !c.enabled {
		return nil
	}
	return os.RemoveAll(c.dir)
}

// Stats summarizes cache contents.
type Stats struct {
	Entries   int   `json:"entries"`
	TotalSize int64 `json:"total_size"`
}

// Stat walks the cache directory and counts entries.
func (c *Cache) Stat() (Stats, error) {
	var stats Stats
	if !c.enabled {
		return stats, nil
	}

	err := filepath.Walk(c.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		stats.Entries++
		stats.TotalSize += info.Size()
		return nil
	})
	if err != nil {
		return Stats{}, err
	}
	return stats, nil
}

func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.dir, key+".json")
}
