package normalisers

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/cartographer/internal/core/domain"
	"github.com/custodia-labs/cartographer/internal/core/ports/driven"
	"github.com/custodia-labs/cartographer/internal/normalisers/docx"
	"github.com/custodia-labs/cartographer/internal/normalisers/markdown"
	"github.com/custodia-labs/cartographer/internal/normalisers/pdf"
	"github.com/custodia-labs/cartographer/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches files to normalisers by extension.
// When several normalisers claim an extension the highest priority wins.
type Registry struct {
	mu          sync.RWMutex
	byExtension map[string][]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExtension: make(map[string][]driven.Normaliser)}
}

// NewDefaultRegistry creates a registry with every built-in normaliser.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

// RegisterDefaults registers the .txt, .md, .docx and .pdf normalisers.
func RegisterDefaults(r driven.NormaliserRegistry) {
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(docx.New())
	r.Register(pdf.New())
}

// Register adds a normaliser for each extension it supports.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range n.SupportedExtensions() {
		ext = strings.ToLower(ext)
		list := append(r.byExtension[ext], n)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority() > list[j].Priority()
		})
		r.byExtension[ext] = list
	}
}

// SupportedExtensions returns every registered extension, sorted.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.byExtension))
	for ext := range r.byExtension {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Supports reports whether filename has a registered extension.
func (r *Registry) Supports(filename string) bool {
	return r.lookup(strings.ToLower(filepath.Ext(filename))) != nil
}

// Normalise extracts text with the preferred normaliser for the file's extension.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawFile) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	ext := raw.Extension()
	n := r.lookup(ext)
	if n == nil {
		return nil, &domain.UnsupportedFormatError{Path: raw.Path, Extension: ext}
	}

	result, err := n.Normalise(ctx, raw)
	if err != nil {
		return nil, &domain.DocumentParsingError{Path: raw.Path, Err: err}
	}
	return result, nil
}

func (r *Registry) lookup(ext string) driven.Normaliser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if list := r.byExtension[ext]; len(list) > 0 {
		return list[0]
	}
	return nil
}
