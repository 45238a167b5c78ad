package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/papermentor/internal/adapters/driving/watcher"
)

func TestServeCmd_Flags(t *testing.T) {
	addr := serveCmd.Flags().Lookup("addr")
	require.NotNil(t, addr)
	assert.Equal(t, ":8000", addr.DefValue)
	assert.NotNil(t, serveCmd.Flags().Lookup("max-upload-mb"))
	assert.Contains(t, serveCmd.Long, "/api/upload_pdf")
}

func TestMCPCmd_Structure(t *testing.T) {
	assert.Equal(t, "mcp", mcpCmd.Use)

	var serve bool
	for _, sub := range mcpCmd.Commands() {
		if sub.Name() == "serve" {
			serve = true
			assert.NotNil(t, sub.Flags().Lookup("port"))
		}
	}
	assert.True(t, serve)
}

func TestWatchCmd_RequiresDir(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "", "watch")

	assert.Error(t, err)
}

func TestWatchCmd_NotADirectory(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "", "watch", writeTempPDF(t))

	assert.ErrorIs(t, err, watcher.ErrNotDirectory)
}

func TestWatchCmd_ServiceNotConfigured(t *testing.T) {
	SetServices(nil)

	_, err := execute(t, "", "watch", t.TempDir())

	assert.EqualError(t, err, "ingest service not configured")
}
