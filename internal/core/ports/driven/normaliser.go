package driven

import (
	"context"

	"github.com/custodia-labs/cartographer/internal/core/domain"
)

// Normaliser extracts plain text from one family of file formats.
// Each normaliser handles specific extensions (e.g., ".pdf", ".docx").
type Normaliser interface {
	// SupportedExtensions returns the lowercased extensions, including the dot.
	SupportedExtensions() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise returns the text content of the file.
	Normalise(ctx context.Context, raw *domain.RawFile) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
type NormaliseResult struct {
	// Content is the extracted plain text.
	Content string

	// Format names the parser that produced Content (e.g. "docx").
	Format string

	// Units is the number of paragraphs or pages seen, when known.
	Units int
}
