package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPServeCmd_PortFlag(t *testing.T) {
	flag := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, flag)
	assert.Equal(t, "p", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}

func TestNewMCPServer(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	server, err := newMCPServer()

	require.NoError(t, err)
	assert.NotNil(t, server)
}

func TestNewMCPServer_NoServices(t *testing.T) {
	SetServices(nil)

	_, err := newMCPServer()

	assert.EqualError(t, err, "extraction service not configured")
}
