// Package cache keeps translation results of batch runs on disk, keyed by
// the md5 of everything that decides the output.
package cache

import (
	"crypto/md5"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const fileName = "translate_cache.gob"

type Entry[T any] struct {
	Value        T
	CreatedAt    time.Time
	LastAccessed time.Time
}

// Cache maps content keys to values of type T. T must be gob-encodable.
type Cache[T any] struct {
	Dir     string
	entries map[string]Entry[T]
	mutex   sync.Mutex
	maxAge  time.Duration
	dirty   bool
}

// New opens the cache stored in dir, creating dir when needed.
func New[T any](dir string) (*Cache[T], error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	c := &Cache[T]{
		Dir:     dir,
		entries: make(map[string]Entry[T]),
	}
	if err := c.load(); err != nil {
		return nil, fmt.Errorf("failed to load cache: %w", err)
	}
	return c, nil
}

// Key digests parts into a cache key. Each part is length-prefixed so
// ("ab", "c") and ("a", "bc") differ.
func Key(parts ...[]byte) string {
	h := md5.New()
	for _, p := range parts {
		fmt.Fprintf(h, "%d:", len(p))
		h.Write(p)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

func (c *Cache[T]) path() string {
	return filepath.Join(c.Dir, fileName)
}

func (c *Cache[T]) load() error {
	file, err := os.Open(c.path())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(&c.entries); err != nil {
		return fmt.Errorf("failed to decode cache file: %w", err)
	}
	return nil
}

// Save writes the entries to disk if anything changed since the last save.
func (c *Cache[T]) Save() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.dirty {
		return nil
	}
	file, err := os.Create(c.path())
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(c.entries); err != nil {
		return fmt.Errorf("failed to encode cache file: %w", err)
	}
	c.dirty = false
	return nil
}

func (c *Cache[T]) Set(key string, value T) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	c.entries[key] = Entry[T]{
		Value:        value,
		CreatedAt:    now,
		LastAccessed: now,
	}
	c.dirty = true
}

func (c *Cache[T]) Get(key string) (T, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		var zero T
		return zero, false
	}

	if c.maxAge > 0 && time.Since(entry.CreatedAt) > c.maxAge {
		delete(c.entries, key)
		c.dirty = true
		var zero T
		return zero, false
	}

	entry.LastAccessed = time.Now()
	c.entries[key] = entry
	return entry.Value, true
}

// SetMaxAge bounds how long an entry stays valid. Zero means forever.
func (c *Cache[T]) SetMaxAge(duration time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.maxAge = duration
}

func (c *Cache[T]) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return len(c.entries)
}

func (c *Cache[T]) InvalidateAll() error {
	c.mutex.Lock()
	c.entries = make(map[string]Entry[T])
	c.dirty = true
	c.mutex.Unlock()

	return c.Save()
}
