package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/cartographer/internal/core/domain"
	"github.com/custodia-labs/cartographer/internal/core/ports/driven"
)

// Ensure ArtifactStore implements the interface.
var _ driven.ArtifactStore = (*ArtifactStore)(nil)

// ArtifactStore writes generated files below a root directory.
type ArtifactStore struct {
	root string
}

// NewArtifactStore creates an artifact store rooted at root.
func NewArtifactStore(root string) *ArtifactStore {
	return &ArtifactStore{root: root}
}

// Root returns the root directory.
func (s *ArtifactStore) Root() string {
	return s.root
}

// Write stores data at root/elems..., creating parent directories.
func (s *ArtifactStore) Write(ctx context.Context, data []byte, elems ...string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rel := filepath.Join(elems...)
	if rel == "" || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("artifact path %q: %w", rel, domain.ErrInvalidInput)
	}
	path := filepath.Join(s.root, rel)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
