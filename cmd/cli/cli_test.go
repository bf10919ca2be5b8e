package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netrecon/netrecon/internal/config"
	"github.com/netrecon/netrecon/internal/engine"
	"github.com/netrecon/netrecon/internal/errors"
	"github.com/netrecon/netrecon/internal/export"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestResolveCommand(t *testing.T) {
	t.Run("expands cidr", func(t *testing.T) {
		out, err := executeCommand(t, "resolve", "192.168.1.0/30")
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(out), "\n")
		assert.Equal(t, []string{"192.168.1.1", "192.168.1.2"}, lines)
	})

	t.Run("counts hosts", func(t *testing.T) {
		defer func() { resolveCount = false }()

		out, err := executeCommand(t, "resolve", "10.0.0.1-50", "--count")
		require.NoError(t, err)
		assert.Equal(t, "50", strings.TrimSpace(out))
	})

	t.Run("literal passes through", func(t *testing.T) {
		out, err := executeCommand(t, "resolve", "example.com")
		require.NoError(t, err)
		assert.Equal(t, "example.com", strings.TrimSpace(out))
	})
}

func TestValidatePortSpec(t *testing.T) {
	assert.NoError(t, validatePortSpec(""))
	assert.NoError(t, validatePortSpec("22,80,443"))
	assert.Error(t, validatePortSpec("garbage"))
}

func TestApplyScanFlags(t *testing.T) {
	cfg := config.Default()

	require.NoError(t, scanCmd.Flags().Set("ports", "22,80"))
	require.NoError(t, scanCmd.Flags().Set("banners", "true"))
	require.NoError(t, scanCmd.Flags().Set("rate-limit", "10"))
	defer func() {
		_ = scanCmd.Flags().Set("ports", "")
		_ = scanCmd.Flags().Set("banners", "false")
		_ = scanCmd.Flags().Set("rate-limit", "0")
	}()

	applyScanFlags(scanCmd.Flags(), cfg)

	assert.Equal(t, "22,80", cfg.Scan.Ports)
	assert.True(t, cfg.Scan.GrabBanners)
	assert.Equal(t, 10, cfg.Scan.RateLimit)
	// Untouched flags keep config values.
	assert.True(t, cfg.Scan.PingFirst)
}

func TestWriteSummary(t *testing.T) {
	summary := &engine.Summary{
		ID:      "run-1",
		Target:  "10.0.0.1",
		Results: []engine.ScanResult{{Host: "10.0.0.1", Online: true}},
		State:   engine.StateCompleted,
	}

	writer, err := export.New("json")
	require.NoError(t, err)

	t.Run("writes to output file and closes it", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "results.json")
		scanOutput = path
		defer func() { scanOutput = "" }()

		require.NoError(t, writeSummary(writer, summary))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "10.0.0.1")
	})

	t.Run("unwritable output path fails with scan error", func(t *testing.T) {
		scanOutput = filepath.Join(t.TempDir(), "missing", "results.json")
		defer func() { scanOutput = "" }()

		err := writeSummary(writer, summary)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.CodeScanFailed))
	})
}

func TestVersionString(t *testing.T) {
	SetVersion("1.2.3", "abcdef", "2026-08-31")
	assert.Contains(t, getVersion(), "1.2.3")
	assert.Contains(t, getVersion(), "abcdef")
}
