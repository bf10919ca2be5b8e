package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileLogger(t *testing.T, cfg Config) (*Logger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.log")
	cfg.Output = path
	logger, err := New(cfg)
	require.NoError(t, err)
	return logger, path
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestNew(t *testing.T) {
	t.Run("creates text logger", func(t *testing.T) {
		logger, path := newFileLogger(t, Config{Level: LevelInfo, Format: FormatText})
		logger.Info("scan started", "target", "10.0.0.1")

		out := readLog(t, path)
		assert.Contains(t, out, "scan started")
		assert.Contains(t, out, "target=10.0.0.1")
	})

	t.Run("creates json logger", func(t *testing.T) {
		logger, path := newFileLogger(t, Config{Level: LevelInfo, Format: FormatJSON})
		logger.Info("scan started", "target", "10.0.0.1")

		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(readLog(t, path))), &entry))
		assert.Equal(t, "scan started", entry["msg"])
		assert.Equal(t, "10.0.0.1", entry["target"])
	})

	t.Run("respects level threshold", func(t *testing.T) {
		logger, path := newFileLogger(t, Config{Level: LevelWarn, Format: FormatText})
		logger.Info("quiet")
		logger.Warn("loud")

		out := readLog(t, path)
		assert.NotContains(t, out, "quiet")
		assert.Contains(t, out, "loud")
	})

	t.Run("unknown level defaults to info", func(t *testing.T) {
		logger, path := newFileLogger(t, Config{Level: "chatty", Format: FormatText})
		logger.Debug("hidden")
		logger.Info("visible")

		out := readLog(t, path)
		assert.NotContains(t, out, "hidden")
		assert.Contains(t, out, "visible")
	})
}

func TestWithHelpers(t *testing.T) {
	logger, path := newFileLogger(t, Config{Level: LevelDebug, Format: FormatText})

	logger.WithComponent("engine").Info("ready")
	logger.WithScanID("scan-123").Info("running")
	logger.WithTarget("192.168.1.0/24").Info("resolved")

	out := readLog(t, path)
	assert.Contains(t, out, "component=engine")
	assert.Contains(t, out, "scan_id=scan-123")
	assert.Contains(t, out, "target=192.168.1.0/24")
}

func TestScanHelpers(t *testing.T) {
	logger, path := newFileLogger(t, Config{Level: LevelDebug, Format: FormatText})

	logger.InfoScan("scan complete", "10.0.0.1", "hosts", 4)
	logger.DebugProbe("connect failed", "10.0.0.2", "port", 81)
	logger.ErrorScan("shutdown failed", "10.0.0.3", assert.AnError)
	logger.WithError(assert.AnError).Warn("degraded")

	out := readLog(t, path)
	assert.Contains(t, out, "scan complete")
	assert.Contains(t, out, "target=10.0.0.1")
	assert.Contains(t, out, "host=10.0.0.2")
	assert.Contains(t, out, "port=81")
	assert.Contains(t, out, "shutdown failed")
	assert.Contains(t, out, "target=10.0.0.3")
	assert.Contains(t, out, "error=")
	assert.Contains(t, out, "degraded")
}

func TestDefaultLogger(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	logger, path := newFileLogger(t, Config{Level: LevelInfo, Format: FormatText})
	SetDefault(logger)

	Info("via package function")
	assert.Contains(t, readLog(t, path), "via package function")
}
