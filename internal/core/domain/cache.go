package domain

import "time"

// CachedFile is a parsed upload held in the file cache.
type CachedFile struct {
	ID        string    `json:"file_id"`
	Filename  string    `json:"filename"`
	Content   string    `json:"content"`
	Tokens    int       `json:"tokens"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the entry is older than ttl at now.
func (f CachedFile) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(f.CreatedAt) > ttl
}

// UploadResult describes a file accepted into the cache.
type UploadResult struct {
	ID       string `json:"file_id" yaml:"file_id"`
	Filename string `json:"filename" yaml:"filename"`
	Tokens   int    `json:"tokens" yaml:"tokens"`
	Preview  string `json:"preview" yaml:"preview"`
	Language string `json:"language" yaml:"language"`

	// Error is set when a file of a batch upload was rejected.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// CleanupStats summarises a cache sweep.
type CleanupStats struct {
	Removed int `json:"removed" yaml:"removed"`
	Skipped int `json:"skipped" yaml:"skipped"`
}
