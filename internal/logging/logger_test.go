package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chemassist/assistant/backend/internal/config"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud", Format: "console"})
	require.Error(t, err)
}

func TestNewWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assistant.log")

	logger, err := New(config.LogConfig{Level: "info", Format: "json", File: path})
	require.NoError(t, err)

	logger.Info("lookup finished")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"lookup finished"`)
}

func TestNewFileOnlyWithoutFileIsNop(t *testing.T) {
	logger, err := NewFileOnly(config.LogConfig{Level: "info"})
	require.NoError(t, err)
	assert.NotNil(t, logger)
	assert.False(t, logger.Core().Enabled(-1))
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, OrNop(nil))
}
