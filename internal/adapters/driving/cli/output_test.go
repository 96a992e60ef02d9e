package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cartographer/internal/core/domain"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want outputFormat
	}{
		{"text", formatText},
		{"JSON", formatJSON},
		{" yaml ", formatYAML},
		{"", formatText},
	}
	for _, tt := range tests {
		got, err := parseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := parseFormat("xml")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "a\nb", preview("a\nb\n", 3))

	text := strings.Repeat("line\n", 20)
	got := preview(text, 15)
	assert.Equal(t, 16, strings.Count(got, "\n")+1)
	assert.True(t, strings.HasSuffix(got, "... (5 more lines)"))
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"Client", "Subtypes"}, [][]string{{"acme", "2"}, {"globex", "1"}})

	assert.Contains(t, out, "Client")
	assert.Contains(t, out, "acme")
	assert.Contains(t, out, "globex")
	assert.Contains(t, out, "╭")
}

func TestKeyValue(t *testing.T) {
	out := keyValue("Model", "claude")

	assert.True(t, strings.HasPrefix(out, "Model"))
	assert.True(t, strings.HasSuffix(out, "claude"))
}
