package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrConfiguration", ErrConfiguration},
		{"ErrClientNotFound", ErrClientNotFound},
		{"ErrNoDocuments", ErrNoDocuments},
		{"ErrDocumentParsing", ErrDocumentParsing},
		{"ErrUnsupportedFormat", ErrUnsupportedFormat},
		{"ErrExtraction", ErrExtraction},
		{"ErrResponseParsing", ErrResponseParsing},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrRateLimited", ErrRateLimited},
		{"ErrTransient", ErrTransient},
		{"ErrServer", ErrServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestExtractionError(t *testing.T) {
	cause := errors.New("upstream 529")
	err := fmt.Errorf("run: %w", &ExtractionError{Subtype: "gift_cards", Err: cause})

	assert.ErrorIs(t, err, ErrExtraction)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrResponseParsing)
	assert.Contains(t, err.Error(), "(subtype: gift_cards)")

	var extErr *ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, "gift_cards", extErr.Subtype)
}

func TestResponseParsingError_IsAlsoExtraction(t *testing.T) {
	err := &ResponseParsingError{Subtype: "batch", Err: errors.New("bad fence")}

	assert.ErrorIs(t, err, ErrResponseParsing)
	assert.ErrorIs(t, err, ErrExtraction)
	assert.Contains(t, err.Error(), "(subtype: batch)")

	var extErr *ExtractionError
	assert.False(t, errors.As(err, &extErr), "parse failures stay distinguishable from call failures")
}

func TestUnsupportedFormatError(t *testing.T) {
	err := &UnsupportedFormatError{Path: "in/a.rtf", Extension: ".rtf"}

	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.ErrorIs(t, err, ErrDocumentParsing)
	assert.Equal(t, "unsupported file format: .rtf (file: in/a.rtf)", err.Error())
}

func TestDocumentParsingError(t *testing.T) {
	cause := errors.New("zip: not a valid zip file")
	err := &DocumentParsingError{Path: "in/a.docx", Err: cause}

	assert.ErrorIs(t, err, ErrDocumentParsing)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), "(file: in/a.docx)")
}

func TestClientNotFoundError(t *testing.T) {
	err := &ClientNotFoundError{Client: "acme", InputDir: "input"}

	assert.ErrorIs(t, err, ErrClientNotFound)
	assert.Contains(t, err.Error(), "input/acme")
}

func TestNoDocumentsFoundError(t *testing.T) {
	err := &NoDocumentsFoundError{Path: "input/acme"}

	assert.ErrorIs(t, err, ErrNoDocuments)
	assert.Equal(t, "no documents found in input/acme", err.Error())
}

func TestConfigurationError(t *testing.T) {
	err := &ConfigurationError{Field: "ANTHROPIC_API_KEY", Reason: "cannot be empty"}

	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Equal(t, "configuration error: ANTHROPIC_API_KEY cannot be empty", err.Error())
}
