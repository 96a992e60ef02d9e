package driven

import "context"

// ArtifactStore writes generated files.
//
// Paths are given as elements relative to the store's root (output or
// debug directory) and joined by the implementation.
type ArtifactStore interface {
	// Write stores data at the path built from elems and returns the full path.
	Write(ctx context.Context, data []byte, elems ...string) (string, error)
}
