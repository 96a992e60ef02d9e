package plaintext

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/cartographer/internal/core/domain"
	"github.com/custodia-labs/cartographer/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// ErrInvalidEncoding is returned for text files that are not valid UTF-8.
var ErrInvalidEncoding = errors.New("file is not valid UTF-8")

const bom = "\ufeff"

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".txt"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise returns the file content unchanged apart from a leading byte order mark.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawFile) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	content, err := Decode(raw.Content)
	if err != nil {
		return nil, err
	}

	return &driven.NormaliseResult{
		Content: content,
		Format:  "text",
	}, nil
}

// Decode converts UTF-8 bytes to a string, dropping a leading byte order mark.
func Decode(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", ErrInvalidEncoding
	}
	return strings.TrimPrefix(string(data), bom), nil
}
