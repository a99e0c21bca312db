// Package cache stores generated component files on disk so unchanged
// inputs are not compiled twice across runs of the CLI.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const indexVersion = "lwcgen/1"

// Cache maps input keys to previously generated output.
type Cache struct {
	mu      sync.RWMutex
	dir     string
	index   *index
	maxSize int64
	maxAge  time.Duration
	log     *slog.Logger
	stats   Stats
}

type index struct {
	Version string            `json:"version"`
	Entries map[string]*Entry `json:"entries"`
	Updated time.Time         `json:"updated"`
}

// Entry describes one cached output.
type Entry struct {
	Key        string    `json:"key"`
	Source     string    `json:"source,omitempty"`
	File       string    `json:"file"`
	Size       int64     `json:"size"`
	Created    time.Time `json:"created"`
	LastAccess time.Time `json:"last_access"`
}

// Stats counts cache activity since the cache was opened.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Entries   int   `json:"entries"`
	TotalSize int64 `json:"total_size"`
}

// Config holds cache configuration.
type Config struct {
	Dir     string        // default: $XDG_CACHE_HOME/lwcgen
	MaxSize int64         // bytes, zero means unbounded
	MaxAge  time.Duration // zero means entries never expire
	Logger  *slog.Logger
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return Config{
		Dir:     filepath.Join(dir, "lwcgen"),
		MaxSize: 64 << 20,
		MaxAge:  7 * 24 * time.Hour,
	}
}

// New opens the cache in config.Dir, creating it if needed. A missing or
// unreadable index starts an empty cache.
func New(config Config) (*Cache, error) {
	if config.Dir == "" {
		def := DefaultConfig()
		def.Logger = config.Logger
		config = def
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Join(config.Dir, "outputs"), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	c := &Cache{
		dir:     config.Dir,
		maxSize: config.MaxSize,
		maxAge:  config.MaxAge,
		log:     config.Logger.With("component", "cache"),
		index:   newIndex(),
	}
	if err := c.load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		c.log.Warn("discarding unreadable cache index", "error", err)
		c.index = newIndex()
	}
	c.expire()
	return c, nil
}

func newIndex() *index {
	return &index{Version: indexVersion, Entries: make(map[string]*Entry), Updated: time.Now()}
}

// Key derives a cache key from the given inputs. Each input is length
// prefixed so ("ab", "c") and ("a", "bc") differ.
func Key(inputs ...string) string {
	h := sha256.New()
	for _, in := range inputs {
		fmt.Fprintf(h, "%d:", len(in))
		h.Write([]byte(in))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the output stored under key.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.index.Entries[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	if c.expired(entry) {
		c.remove(key, entry)
		c.stats.Misses++
		return nil, false
	}
	data, err := os.ReadFile(filepath.Join(c.dir, "outputs", entry.File))
	if err != nil {
		c.log.Debug("cached output unreadable", "key", key, "error", err)
		c.remove(key, entry)
		c.stats.Misses++
		return nil, false
	}
	entry.LastAccess = time.Now()
	c.stats.Hits++
	return data, true
}

// Put stores data under key. source names the input file the output was
// generated from and may be empty.
func (c *Cache) Put(key, source string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.index.Entries[key]; ok {
		c.remove(key, old)
	}
	size := int64(len(data))
	c.evictFor(size)

	file := Key(key)[:32] + ".lwc"
	if err := os.WriteFile(filepath.Join(c.dir, "outputs", file), data, 0o644); err != nil {
		return fmt.Errorf("write cached output: %w", err)
	}
	now := time.Now()
	c.index.Entries[key] = &Entry{
		Key:        key,
		Source:     source,
		File:       file,
		Size:       size,
		Created:    now,
		LastAccess: now,
	}
	c.stats.TotalSize += size
	c.index.Updated = now
	return nil
}

// InvalidateSource drops every entry generated from source, or from a file
// below it when source is a directory. It returns the number removed.
func (c *Cache) InvalidateSource(source string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	source = filepath.Clean(source)
	removed := 0
	for key, entry := range c.index.Entries {
		if entry.Source == "" {
			continue
		}
		src := filepath.Clean(entry.Source)
		if src == source || strings.HasPrefix(src, source+string(filepath.Separator)) {
			c.remove(key, entry)
			removed++
		}
	}
	return removed
}

// Clear removes every entry.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.index.Entries {
		c.remove(key, entry)
	}
	c.index = newIndex()
	return c.saveLocked()
}

// GetStats returns a snapshot of the cache counters.
func (c *Cache) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.stats
	s.Entries = len(c.index.Entries)
	return s
}

// Close persists the index.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveLocked()
}

func (c *Cache) load() error {
	data, err := os.ReadFile(filepath.Join(c.dir, "index.json"))
	if err != nil {
		return err
	}
	var idx index
	if err := json.Unmarshal(data, &idx); err != nil {
		return fmt.Errorf("decode cache index: %w", err)
	}
	if idx.Version != indexVersion {
		return fmt.Errorf("cache index version %q, want %q", idx.Version, indexVersion)
	}
	if idx.Entries == nil {
		idx.Entries = make(map[string]*Entry)
	}
	c.index = &idx
	for _, e := range idx.Entries {
		c.stats.TotalSize += e.Size
	}
	return nil
}

func (c *Cache) saveLocked() error {
	data, err := json.MarshalIndent(c.index, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(c.dir, "index.json"), data, 0o644); err != nil {
		return fmt.Errorf("write cache index: %w", err)
	}
	return nil
}

func (c *Cache) expired(e *Entry) bool {
	return c.maxAge > 0 && time.Since(e.Created) > c.maxAge
}

func (c *Cache) expire() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.index.Entries {
		if c.expired(entry) {
			c.remove(key, entry)
		}
	}
}

// evictFor drops least recently used entries until needed more bytes fit.
// Caller holds c.mu.
func (c *Cache) evictFor(needed int64) {
	if c.maxSize <= 0 {
		return
	}
	for c.stats.TotalSize+needed > c.maxSize && len(c.index.Entries) > 0 {
		var oldestKey string
		var oldest *Entry
		for key, entry := range c.index.Entries {
			if oldest == nil || entry.LastAccess.Before(oldest.LastAccess) {
				oldestKey, oldest = key, entry
			}
		}
		c.remove(oldestKey, oldest)
		c.stats.Evictions++
	}
}

// remove deletes an entry and its file. Caller holds c.mu.
func (c *Cache) remove(key string, e *Entry) {
	path := filepath.Join(c.dir, "outputs", e.File)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		c.log.Warn("failed to remove cached output", "path", path, "error", err)
	}
	delete(c.index.Entries, key)
	c.stats.TotalSize -= e.Size
}
