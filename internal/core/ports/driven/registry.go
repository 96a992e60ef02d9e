package driven

import (
	"context"

	"github.com/custodia-labs/cartographer/internal/core/domain"
)

// NormaliserRegistry selects the appropriate normaliser for a file.
// It maintains a priority-ordered list of normalisers and dispatches
// on file extension.
type NormaliserRegistry interface {
	// Normalise extracts text with the best matching normaliser.
	// Returns a *domain.UnsupportedFormatError for unknown extensions and a
	// *domain.DocumentParsingError wrapping any extraction failure.
	Normalise(ctx context.Context, raw *domain.RawFile) (*NormaliseResult, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// SupportedExtensions returns all extensions that can be normalised, sorted.
	SupportedExtensions() []string

	// Supports reports whether a file name has a supported extension.
	Supports(filename string) bool
}
