package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_NoFileIsNop(t *testing.T) {
	log, err := New(Options{})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zap.ErrorLevel))
}

func TestNew_ProductionWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "lingo.log")
	log, err := New(Options{File: path})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("request", zap.String("endpoint", "/chat"))
	Sync(log)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 1, "debug is filtered in production mode")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "request", entry["msg"])
	assert.Equal(t, "/chat", entry["endpoint"])
	assert.Equal(t, "lingo", entry["logger"])
}

func TestNew_DebugEnablesDebugLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lingo.log")
	log, err := New(Options{File: path, Debug: true})
	require.NoError(t, err)

	log.Debug("transition", zap.String("mode", "exercise"))
	Sync(log)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "transition")
	assert.Contains(t, string(raw), "exercise")
}
