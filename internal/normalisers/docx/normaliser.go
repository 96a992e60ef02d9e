package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/cartographer/internal/core/domain"
	"github.com/custodia-labs/cartographer/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// ErrMissingDocument is returned when the archive has no word/document.xml part.
var ErrMissingDocument = errors.New("docx: missing word/document.xml")

const documentPart = "word/document.xml"

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".docx"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic format normaliser
}

// Normalise extracts the text of every body paragraph, joined by blank lines.
// Empty paragraphs are kept so spacing in the source survives.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawFile) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("open docx archive: %w", err)
	}

	data, err := readPart(reader, documentPart)
	if err != nil {
		return nil, err
	}

	paragraphs, err := parseParagraphs(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", documentPart, err)
	}

	return &driven.NormaliseResult{
		Content: strings.Join(paragraphs, "\n\n"),
		Format:  "docx",
		Units:   len(paragraphs),
	}, nil
}

// readPart returns the bytes of a named archive member.
func readPart(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()

		content, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return content, nil
	}
	return nil, ErrMissingDocument
}

// parseParagraphs walks document.xml and returns the text of paragraphs that
// are direct children of the body. Paragraphs nested in tables are skipped.
func parseParagraphs(content []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(content))

	var (
		stack      []string
		paragraphs []string
		current    strings.Builder
		inPara     bool
		inText     bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch el := tok.(type) {
		case xml.StartElement:
			name := el.Name.Local
			switch {
			case name == "p" && len(stack) > 0 && stack[len(stack)-1] == "body":
				inPara = true
				current.Reset()
			case inPara && name == "t":
				inText = true
			case inPara && name == "tab":
				current.WriteByte('\t')
			case inPara && (name == "br" || name == "cr"):
				current.WriteByte('\n')
			}
			stack = append(stack, name)

		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			stack = stack[:len(stack)-1]
			switch {
			case el.Name.Local == "t":
				inText = false
			case el.Name.Local == "p" && inPara && len(stack) > 0 && stack[len(stack)-1] == "body":
				paragraphs = append(paragraphs, current.String())
				inPara = false
			}

		case xml.CharData:
			if inPara && inText {
				current.Write(el)
			}
		}
	}

	return paragraphs, nil
}
