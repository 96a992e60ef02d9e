package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cartographer/internal/adapters/driving/tui"
	"github.com/custodia-labs/cartographer/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/cartographer/internal/core/domain"
)

var promptOptions = []list.Option{
	{Label: "emails", Detail: "3 documents"},
	{Label: "gift_cards"},
	{Label: "general"},
}

func TestLinePrompter_Select(t *testing.T) {
	var out bytes.Buffer
	p := newLinePrompter(strings.NewReader("2\n"), &out)

	i, err := p.Select("Pick one", promptOptions)

	require.NoError(t, err)
	assert.Equal(t, 1, i)
	assert.Contains(t, out.String(), "Pick one")
	assert.Contains(t, out.String(), "1) emails  (3 documents)")
	assert.Contains(t, out.String(), "2) gift_cards\n")
}

func TestLinePrompter_SelectDefault(t *testing.T) {
	p := newLinePrompter(strings.NewReader("\n"), &bytes.Buffer{})

	i, err := p.Select("Pick one", promptOptions)

	require.NoError(t, err)
	assert.Equal(t, 0, i)
}

func TestLinePrompter_SelectInvalid(t *testing.T) {
	for _, in := range []string{"0\n", "4\n", "two\n"} {
		p := newLinePrompter(strings.NewReader(in), &bytes.Buffer{})
		_, err := p.Select("Pick one", promptOptions)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, in)
	}
}

func TestLinePrompter_NoOptions(t *testing.T) {
	p := newLinePrompter(strings.NewReader(""), &bytes.Buffer{})

	_, err := p.Select("Pick one", nil)
	assert.ErrorIs(t, err, tui.ErrNoOptions)

	_, err = p.MultiSelect("Pick some", nil)
	assert.ErrorIs(t, err, tui.ErrNoOptions)
}

func TestLinePrompter_MultiSelect(t *testing.T) {
	tests := []struct {
		in   string
		want []int
	}{
		{"\n", []int{0, 1, 2}},
		{"all\n", []int{0, 1, 2}},
		{"3, 1\n", []int{2, 0}},
		{"2,2,\n", []int{1}},
	}
	for _, tt := range tests {
		p := newLinePrompter(strings.NewReader(tt.in), &bytes.Buffer{})
		got, err := p.MultiSelect("Pick some", promptOptions)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	p := newLinePrompter(strings.NewReader("1,9\n"), &bytes.Buffer{})
	_, err := p.MultiSelect("Pick some", promptOptions)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLinePrompter_Confirm(t *testing.T) {
	tests := []struct {
		in         string
		defaultYes bool
		want       bool
	}{
		{"y\n", false, true},
		{"YES\n", false, true},
		{"n\n", true, false},
		{"\n", true, true},
		{"\n", false, false},
		{"maybe\n", false, false},
		{"", true, true},
	}
	for _, tt := range tests {
		p := newLinePrompter(strings.NewReader(tt.in), &bytes.Buffer{})
		got, err := p.Confirm("Continue?", tt.defaultYes)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q default %v", tt.in, tt.defaultYes)
	}
}

func TestLinePrompter_ConfirmShowsDefault(t *testing.T) {
	var out bytes.Buffer
	p := newLinePrompter(strings.NewReader("\n\n"), &out)

	_, _ = p.Confirm("Save?", true)
	_, _ = p.Confirm("Delete?", false)

	assert.Contains(t, out.String(), "Save? [Y/n]: ")
	assert.Contains(t, out.String(), "Delete? [y/N]: ")
}

func TestLineReporter(t *testing.T) {
	var out bytes.Buffer
	r := &lineReporter{out: &out}

	r.Status("Processing emails", 1, 2)
	r.Status("Preparing", 0, 0)
	r.Println("done emails")
	r.Fail("gift_cards: boom")
	require.NoError(t, r.Stop("finished", nil))
	require.NoError(t, r.Stop("", nil))

	assert.Equal(t, "[1/2] Processing emails\nPreparing\ndone emails\ngift_cards: boom\nfinished\n", out.String())
}

func TestNewPrompter_NonInteractiveUsesLines(t *testing.T) {
	cmd := rootCmd
	cmd.SetIn(strings.NewReader(""))
	cmd.SetOut(&bytes.Buffer{})
	defer func() {
		cmd.SetIn(nil)
		cmd.SetOut(nil)
	}()

	_, ok := newPrompter(cmd).(*linePrompter)
	assert.True(t, ok)

	_, ok = newReporter(cmd, "start").(*lineReporter)
	assert.True(t, ok)
}
