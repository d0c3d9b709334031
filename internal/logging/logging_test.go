package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewLogger_WritesJSONToBothSinks(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var stderr bytes.Buffer
	path := filepath.Join(t.TempDir(), "nested", "app.log")

	logger, cleanup, err := newLogger(&stderr, "info", path)
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("screen saved", "screen_id", "abc")
	cleanup()

	var line map[string]any
	require.NoError(t, json.Unmarshal(stderr.Bytes(), &line))
	assert.Equal(t, "screen saved", line["msg"])
	assert.Equal(t, "abc", line["screen_id"])

	fileData, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, stderr.String(), string(fileData))
}
