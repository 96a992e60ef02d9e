package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cartographer/internal/core/domain"
)

func TestHistoryCmd_Empty(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand(t, "", "history")

	require.NoError(t, err)
	assert.Contains(t, out, "No extraction runs recorded.")
}

func TestHistoryCmd_Table(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.history.records = []domain.ExtractionRecord{{
		ID: "r1", ClientName: "acme", Subtype: "emails", Mode: domain.ModeIndividual,
		Status: domain.RunSucceeded, InputTokens: 1500, OutputTokens: 400, Cost: 0.0175,
		CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}}

	out, err := executeCommand(t, "", "history", "acme", "--limit", "5")

	require.NoError(t, err)
	assert.Equal(t, "acme", ts.history.lastClient)
	assert.Equal(t, 5, ts.history.lastLimit)
	assert.Contains(t, out, "emails")
	assert.Contains(t, out, "succeeded")
	assert.Contains(t, out, "1.5k / 400")
	assert.Contains(t, out, "$0.0175")
}

func TestHistoryCmd_JSONEmptyIsArray(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand(t, "", "history", "--format", "json")

	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}
