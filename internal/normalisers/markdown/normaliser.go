package markdown

import (
	"context"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/cartographer/internal/core/domain"
	"github.com/custodia-labs/cartographer/internal/core/ports/driven"
	"github.com/custodia-labs/cartographer/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

var (
	frontMatter = regexp.MustCompile(`(?s)\A---[ \t]*\r?\n(.*?)\r?\n---[ \t]*(?:\r?\n|\z)`)
	headings    = regexp.MustCompile(`(?m)^#{1,6}\s+\S`)
)

// Normaliser handles Markdown documents.
// Formatting is kept: headings, lists and emphasis are part of the copy.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".md", ".markdown"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic format normaliser, higher than plaintext
}

// Normalise returns the markdown source without its YAML front matter.
// Units is the number of headings.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawFile) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	content, err := plaintext.Decode(raw.Content)
	if err != nil {
		return nil, err
	}
	content = stripFrontMatter(content)

	return &driven.NormaliseResult{
		Content: content,
		Format:  "markdown",
		Units:   len(headings.FindAllStringIndex(content, -1)),
	}, nil
}

// stripFrontMatter removes a leading --- block when it parses as a YAML mapping.
// A leading horizontal rule followed by prose is left alone.
func stripFrontMatter(content string) string {
	m := frontMatter.FindStringSubmatchIndex(content)
	if m == nil {
		return content
	}

	var meta map[string]any
	if err := yaml.Unmarshal([]byte(content[m[2]:m[3]]), &meta); err != nil || len(meta) == 0 {
		return content
	}
	return strings.TrimLeft(content[m[1]:], "\r\n")
}
