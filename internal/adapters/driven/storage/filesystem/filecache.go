package filesystem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/custodia-labs/cartographer/internal/core/domain"
	"github.com/custodia-labs/cartographer/internal/core/ports/driven"
	"github.com/custodia-labs/cartographer/internal/logger"
)

// Ensure FileCache implements the interface.
var _ driven.FileCache = (*FileCache)(nil)

const (
	entryExt = ".json"
	tmpExt   = entryExt + ".tmp"
	lockExt  = ".lock"
)

// FileCache stores parsed uploads in a directory. Writers and deleters
// hold an exclusive lock on the entry's sidecar lock file, readers a
// shared one. Cleanup only tries the lock and skips busy entries.
// A lock file outlives its entry and is swept by cleanup once it is
// older than the TTL, so no holder ever locks an unlinked file.
type FileCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewFileCache creates a cache in dir whose entries expire after ttl.
// The directory is created on first write.
func NewFileCache(dir string, ttl time.Duration) *FileCache {
	if ttl <= 0 {
		ttl = domain.DefaultCacheTTL
	}
	return &FileCache{dir: dir, ttl: ttl, now: time.Now}
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string {
	return c.dir
}

// Store saves a parsed file and returns its new id.
func (c *FileCache) Store(ctx context.Context, filename, content string, tokens int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(c.dir, 0700); err != nil {
		return "", fmt.Errorf("create cache directory: %w", err)
	}

	id := uuid.NewString()
	entry := domain.CachedFile{
		ID:        id,
		Filename:  filename,
		Content:   content,
		Tokens:    tokens,
		CreatedAt: c.now().UTC(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("encode cache entry: %w", err)
	}

	lock := flock.New(c.lockPath(id))
	if err := lock.Lock(); err != nil {
		return "", fmt.Errorf("lock cache entry %s: %w", id, err)
	}
	defer lock.Unlock()

	// Readers never see a partial entry
	tmp := c.tmpPath(id)
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return "", fmt.Errorf("write cache entry %s: %w", id, err)
	}
	if err := os.Rename(tmp, c.entryPath(id)); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("write cache entry %s: %w", id, err)
	}

	logger.Debug("Cached %s as %s (%d tokens)", filename, id, tokens)
	return id, nil
}

// Get returns the entry, or domain.ErrNotFound when absent, expired or malformed.
func (c *FileCache) Get(ctx context.Context, id string) (*domain.CachedFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	if _, err := os.Stat(c.entryPath(id)); err != nil {
		return nil, domain.ErrNotFound
	}

	lock := flock.New(c.lockPath(id))
	if err := lock.RLock(); err != nil {
		return nil, fmt.Errorf("lock cache entry %s: %w", id, err)
	}
	defer lock.Unlock()

	entry, err := c.read(id)
	if err != nil {
		return nil, err
	}
	if entry.Expired(c.now(), c.ttl) {
		return nil, domain.ErrNotFound
	}
	return entry, nil
}

// Delete removes an entry and reports whether it existed.
func (c *FileCache) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if !validID(id) {
		return false, nil
	}
	if _, err := os.Stat(c.entryPath(id)); err != nil {
		return false, nil
	}

	lock := flock.New(c.lockPath(id))
	if err := lock.Lock(); err != nil {
		return false, fmt.Errorf("lock cache entry %s: %w", id, err)
	}
	defer lock.Unlock()

	existed, err := c.remove(id)
	if err != nil {
		return existed, fmt.Errorf("delete cache entry %s: %w", id, err)
	}
	return existed, nil
}

// CleanupExpired removes expired and malformed entries, temp files left
// by an interrupted Store, and lock files of entries gone for longer
// than the TTL. Entries whose lock is held elsewhere are skipped and
// counted.
func (c *FileCache) CleanupExpired(ctx context.Context) (domain.CleanupStats, error) {
	var stats domain.CleanupStats

	entries, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return stats, nil
	}
	if err != nil {
		return stats, fmt.Errorf("read cache directory: %w", err)
	}

	now := c.now()
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if e.IsDir() {
			continue
		}
		name := e.Name()

		switch {
		case strings.HasSuffix(name, entryExt):
			c.cleanupEntry(strings.TrimSuffix(name, entryExt), now, &stats)
		case strings.HasSuffix(name, tmpExt):
			c.cleanupTemp(strings.TrimSuffix(name, tmpExt), &stats)
		case strings.HasSuffix(name, lockExt):
			c.cleanupLock(strings.TrimSuffix(name, lockExt), e, now)
		}
	}

	if stats.Removed > 0 || stats.Skipped > 0 {
		logger.Info("Cache cleanup: removed %d, skipped %d", stats.Removed, stats.Skipped)
	}
	return stats, nil
}

func (c *FileCache) cleanupEntry(id string, now time.Time, stats *domain.CleanupStats) {
	lock := flock.New(c.lockPath(id))
	locked, err := lock.TryLock()
	if err != nil || !locked {
		logger.Debug("Skipping locked cache entry %s", id)
		stats.Skipped++
		return
	}
	defer lock.Unlock()

	entry, readErr := c.read(id)
	if readErr == nil && !entry.Expired(now, c.ttl) {
		return
	}
	if _, err := c.remove(id); err != nil {
		logger.Warn("Failed to remove cache entry %s: %v", id, err)
		return
	}
	stats.Removed++
}

// cleanupTemp removes a temp file whose writer is gone. A running Store
// holds the entry lock for as long as the temp file exists.
func (c *FileCache) cleanupTemp(id string, stats *domain.CleanupStats) {
	lock := flock.New(c.lockPath(id))
	locked, err := lock.TryLock()
	if err != nil || !locked {
		stats.Skipped++
		return
	}
	defer lock.Unlock()

	if err := os.Remove(c.tmpPath(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Failed to remove temp cache file %s: %v", id, err)
		return
	}
	logger.Debug("Removed stale temp cache file %s", id)
	stats.Removed++
}

// cleanupLock unlinks the lock file of a long gone entry. It must be
// unheld and older than the TTL, which no in-flight call can outlast.
func (c *FileCache) cleanupLock(id string, e fs.DirEntry, now time.Time) {
	if _, err := os.Stat(c.entryPath(id)); err == nil {
		return
	}
	info, err := e.Info()
	if err != nil || now.Sub(info.ModTime()) <= c.ttl {
		return
	}

	lock := flock.New(c.lockPath(id))
	locked, err := lock.TryLock()
	if err != nil || !locked {
		return
	}
	defer lock.Unlock()

	if err := os.Remove(c.lockPath(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Failed to remove cache lock %s: %v", id, err)
	}
}

// read decodes an entry. The caller holds its lock.
func (c *FileCache) read(id string) (*domain.CachedFile, error) {
	data, err := os.ReadFile(c.entryPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read cache entry %s: %w", id, err)
	}

	var entry domain.CachedFile
	if err := json.Unmarshal(data, &entry); err != nil || entry.ID == "" || entry.CreatedAt.IsZero() {
		logger.Debug("Malformed cache entry %s", id)
		return nil, domain.ErrNotFound
	}
	return &entry, nil
}

// remove deletes the entry. The caller holds the lock, so the lock file
// stays in place for cleanupLock.
func (c *FileCache) remove(id string) (bool, error) {
	err := os.Remove(c.entryPath(id))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}
	return err == nil, nil
}

func (c *FileCache) entryPath(id string) string {
	return filepath.Join(c.dir, id+entryExt)
}

func (c *FileCache) tmpPath(id string) string {
	return filepath.Join(c.dir, id+tmpExt)
}

func (c *FileCache) lockPath(id string) string {
	return filepath.Join(c.dir, id+lockExt)
}

// validID rejects anything that is not a plain uuid, so ids cannot escape the directory.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && !strings.ContainsAny(id, `/\.`)
}
