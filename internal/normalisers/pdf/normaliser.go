package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/cartographer/internal/core/domain"
	"github.com/custodia-labs/cartographer/internal/core/ports/driven"
	"github.com/custodia-labs/cartographer/internal/logger"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// PageSource exposes the text of a PDF page by page.
// Pages are numbered from 1.
type PageSource interface {
	NumPage() int
	PageText(page int) (string, error)
}

// Opener parses PDF bytes into a PageSource.
type Opener func(content []byte) (PageSource, error)

// Normaliser handles PDF documents.
type Normaliser struct {
	open Opener
}

// New creates a new PDF normaliser backed by github.com/ledongthuc/pdf.
func New() *Normaliser {
	return &Normaliser{open: openReader}
}

// NewWithOpener creates a PDF normaliser with a custom opener (for testing).
func NewWithOpener(open Opener) *Normaliser {
	return &Normaliser{open: open}
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".pdf"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic format normaliser
}

// Normalise extracts the text of every page, joined by blank lines.
// Pages without text are skipped. Units is the page count.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawFile) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	src, err := n.open(raw.Content)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	pages := src.NumPage()
	parts := make([]string, 0, pages)
	for i := 1; i <= pages; i++ {
		text, err := src.PageText(i)
		if err != nil {
			// Some pages fail to decode; keep the rest
			logger.Debug("pdf %s: page %d: %v", raw.Name, i, err)
			continue
		}
		if strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}

	return &driven.NormaliseResult{
		Content: strings.Join(parts, "\n\n"),
		Format:  "pdf",
		Units:   pages,
	}, nil
}

// reader adapts *pdf.Reader to PageSource.
type reader struct {
	r *pdf.Reader
}

func openReader(content []byte) (ps PageSource, err error) {
	// The parser panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			ps, err = nil, fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}
	return &reader{r: r}, nil
}

func (p *reader) NumPage() int {
	return p.r.NumPage()
}

func (p *reader) PageText(i int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed page: %v", r)
		}
	}()

	page := p.r.Page(i)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}
