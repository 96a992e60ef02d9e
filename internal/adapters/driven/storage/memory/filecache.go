package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/cartographer/internal/core/domain"
	"github.com/custodia-labs/cartographer/internal/core/ports/driven"
)

// Ensure FileCache implements the interface.
var _ driven.FileCache = (*FileCache)(nil)

// FileCache is an in-memory implementation of driven.FileCache.
// A single mutex stands in for the per-entry locks of the file adapter,
// so cleanup never has to skip an entry.
type FileCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]domain.CachedFile
	now     func() time.Time
}

// NewFileCache creates a new in-memory file cache whose entries expire after ttl.
func NewFileCache(ttl time.Duration) *FileCache {
	if ttl <= 0 {
		ttl = domain.DefaultCacheTTL
	}
	return &FileCache{
		ttl:     ttl,
		entries: make(map[string]domain.CachedFile),
		now:     time.Now,
	}
}

// Store saves a parsed file and returns its new id.
func (c *FileCache) Store(_ context.Context, filename, content string, tokens int) (string, error) {
	id := uuid.NewString()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = domain.CachedFile{
		ID:        id,
		Filename:  filename,
		Content:   content,
		Tokens:    tokens,
		CreatedAt: c.now(),
	}
	return id, nil
}

// Get returns the entry, or domain.ErrNotFound when absent or expired.
func (c *FileCache) Get(_ context.Context, id string) (*domain.CachedFile, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.entries[id]
	if !ok || f.Expired(c.now(), c.ttl) {
		return nil, domain.ErrNotFound
	}
	return &f, nil
}

// Delete removes an entry and reports whether it existed.
func (c *FileCache) Delete(_ context.Context, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[id]
	delete(c.entries, id)
	return ok, nil
}

// CleanupExpired removes expired entries.
func (c *FileCache) CleanupExpired(_ context.Context) (domain.CleanupStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var stats domain.CleanupStats
	now := c.now()
	for id, f := range c.entries {
		if f.Expired(now, c.ttl) {
			delete(c.entries, id)
			stats.Removed++
		}
	}
	return stats, nil
}
