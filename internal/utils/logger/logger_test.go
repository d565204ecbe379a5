package logger

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoggerWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curvesim.log")
	cfg := DefaultConfig()
	cfg.LogFile = path
	cfg.Console = false
	cfg.Development = true

	log, err := New(cfg)
	require.NoError(t, err)

	log.WithComponent("runner").Info("Scenario simulated", zap.Int("steps", 3))
	done := log.TrackPerformance("forecast")
	done()
	require.NoError(t, log.Sync())

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var entries []map[string]any
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		entries = append(entries, entry)
	}
	require.NoError(t, scanner.Err())
	require.Len(t, entries, 3)

	assert.Equal(t, "runner", entries[0]["component"])
	assert.Contains(t, entries[0], "timestamp")

	assert.Equal(t, "forecast", entries[1]["operation"])
	assert.NotEmpty(t, entries[1]["correlation_id"])
	assert.Equal(t, entries[1]["correlation_id"], entries[2]["correlation_id"])
	assert.Contains(t, entries[2], "duration")
}

func TestNopLogger(t *testing.T) {
	log := NewNop()
	log.LogError("ignored", assert.AnError)
	assert.NoError(t, log.Sync())
}
