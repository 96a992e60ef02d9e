package memory

import (
	"context"
	"path/filepath"
	"sort"
	"sync"

	"github.com/custodia-labs/cartographer/internal/core/ports/driven"
)

// Ensure ArtifactStore implements the interface.
var _ driven.ArtifactStore = (*ArtifactStore)(nil)

// ArtifactStore is an in-memory implementation of driven.ArtifactStore.
type ArtifactStore struct {
	mu    sync.RWMutex
	root  string
	files map[string][]byte
}

// NewArtifactStore creates a new in-memory artifact store. Paths returned
// by Write are joined onto root.
func NewArtifactStore(root string) *ArtifactStore {
	return &ArtifactStore{
		root:  root,
		files: make(map[string][]byte),
	}
}

// Write stores a copy of data and returns its path.
func (s *ArtifactStore) Write(_ context.Context, data []byte, elems ...string) (string, error) {
	path := filepath.Join(append([]string{s.root}, elems...)...)
	copied := append([]byte(nil), data...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = copied
	return path, nil
}

// Read returns the data written at path.
func (s *ArtifactStore) Read(path string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.files[path]
	return data, ok
}

// Paths returns every written path, sorted.
func (s *ArtifactStore) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
