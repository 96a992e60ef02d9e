package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cartographer/internal/core/domain"
)

func TestEstimateCmd_Text(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand(t, "", "estimate", "acme")

	require.NoError(t, err)
	assert.Contains(t, out, "gift_cards")
	assert.Contains(t, out, "individual")
	assert.Contains(t, out, "1.6k")
	assert.Contains(t, out, "$0.0500")
}

func TestEstimateCmd_BatchJSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand(t, "", "estimate", "acme", "--batch", "--format", "json")
	require.NoError(t, err)

	var e domain.CostEstimate
	require.NoError(t, json.Unmarshal([]byte(out), &e))
	assert.Equal(t, domain.ModeBatch, e.Mode)
	assert.Equal(t, 1, e.Calls)
}

func TestEstimateCmd_BatchFromSettings(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	settings.BatchProcessing = true

	out, err := executeCommand(t, "", "estimate", "acme")

	require.NoError(t, err)
	assert.Contains(t, out, "batch")
}
