package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vitalvas/oasdocs/internal/config"
)

func TestNew(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer

		logger, closeFn, err := New(config.LogConfig{Level: "info", Format: "json"}, &buf)
		require.NoError(t, err)
		defer closeFn()

		logger.Debug("hidden")
		logger.Info("document built", zap.Int("operations", 3))
		require.NoError(t, logger.Sync())

		var entry map[string]any
		require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
		assert.Equal(t, "info", entry["level"])
		assert.Equal(t, "document built", entry["msg"])
		assert.Equal(t, float64(3), entry["operations"])
		assert.NotContains(t, buf.String(), "hidden")
	})

	t.Run("console", func(t *testing.T) {
		var buf bytes.Buffer

		logger, _, err := New(config.LogConfig{Level: "debug", Format: "console"}, &buf)
		require.NoError(t, err)

		logger.Debug("starting")
		assert.Contains(t, buf.String(), "DEBUG")
		assert.Contains(t, buf.String(), "starting")
	})

	t.Run("rotated file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "oasdocs.log")

		logger, closeFn, err := New(config.LogConfig{Level: "info", Format: "json", File: path, MaxSizeMB: 1}, nil)
		require.NoError(t, err)

		logger.Info("to file")
		require.NoError(t, closeFn())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "to file")
	})

	t.Run("invalid level", func(t *testing.T) {
		_, _, err := New(config.LogConfig{Level: "loud"}, nil)
		assert.Error(t, err)
	})
}
