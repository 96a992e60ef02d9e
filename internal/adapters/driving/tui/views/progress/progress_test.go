package progress

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cartographer/internal/adapters/driving/tui/messages"
)

func TestModel_Init(t *testing.T) {
	m := New("Starting")

	assert.NotNil(t, m.Init())
	assert.Contains(t, m.View(), "Starting")
}

func TestModel_Status(t *testing.T) {
	m := New("Starting")

	_, cmd := m.Update(messages.Status{Message: "Processing emails", Step: 2, Total: 3})

	assert.Nil(t, cmd)
	view := m.View()
	assert.Contains(t, view, "Processing emails")
	assert.Contains(t, view, "[2/3]")
}

func TestModel_StepFailed(t *testing.T) {
	m := New("Starting")

	m.Update(messages.StepFailed{Message: "gift_cards failed"})

	assert.Equal(t, 1, m.Failures())
	assert.Contains(t, m.View(), "(1 failed)")
}

func TestModel_Done(t *testing.T) {
	m := New("Starting")
	m.Update(messages.Status{Message: "Processing", Step: 1, Total: 1})

	_, cmd := m.Update(messages.Done{Message: "Extraction complete"})

	require.NotNil(t, cmd)
	assert.True(t, m.Finished())
	view := m.View()
	assert.Contains(t, view, "✓")
	assert.Contains(t, view, "Extraction complete")
	assert.NotContains(t, view, "[1/1]")
}

func TestModel_DoneWithError(t *testing.T) {
	m := New("Starting")

	m.Update(messages.Done{Message: "all subtypes failed", Err: errors.New("boom")})

	assert.Contains(t, m.View(), "✗")
}

func TestModel_IgnoresKeys(t *testing.T) {
	m := New("Starting")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.False(t, m.Finished())
}
