package logger

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZapLoggerWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orl.log")
	log := NewZapLogger(path, true, true)

	log.Debug("SESSION", "not written to file", nil)
	log.Info("SESSION", "Session restored from storage", nil)
	log.Error("XANO", "Request failed", map[string]interface{}{"error": "timeout"})
	_ = log.Sync()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []map[string]interface{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var line map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		lines = append(lines, line)
	}

	require.Len(t, lines, 2)
	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "SESSION", lines[0]["module"])
	assert.Equal(t, "Session restored from storage", lines[0]["message"])
	assert.Equal(t, "timeout", lines[1]["error_ref"])
}

func TestNopLogger(t *testing.T) {
	var log ILogger = NewNopLogger()
	log.Warn("ANY", "dropped", nil)
	assert.NoError(t, log.Sync())
}
