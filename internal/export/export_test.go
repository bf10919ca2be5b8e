package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netrecon/netrecon/internal/engine"
	"github.com/netrecon/netrecon/internal/probe"
)

func sampleSummary() *engine.Summary {
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return &engine.Summary{
		ID:         "test-scan",
		Target:     "192.168.1.0/30",
		StartTime:  start,
		EndTime:    start.Add(2 * time.Second),
		Duration:   2 * time.Second,
		TotalHosts: 2,
		Results: []engine.ScanResult{
			{
				Host:    "192.168.1.1",
				Online:  true,
				Latency: 4 * time.Millisecond,
				OpenPorts: []probe.PortResult{
					{Port: 22, Open: true, Service: "SSH", Banner: "SSH-2.0-OpenSSH_9.6"},
					{Port: 80, Open: true, Service: "HTTP"},
				},
			},
			{
				Host:      "192.168.1.2",
				Online:    false,
				OpenPorts: []probe.PortResult{},
			},
		},
		Stats: engine.HostStats{Up: 1, Down: 1, Total: 2},
		State: engine.StateCompleted,
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		format string
		want   Writer
	}{
		{"json", &JSONWriter{}},
		{"JSON", &JSONWriter{}},
		{"csv", &CSVWriter{}},
		{"table", &TableWriter{}},
		{"", &TableWriter{}},
	}
	for _, tt := range tests {
		t.Run("format "+tt.format, func(t *testing.T) {
			w, err := New(tt.format)
			require.NoError(t, err)
			assert.IsType(t, tt.want, w)
		})
	}

	t.Run("unknown format", func(t *testing.T) {
		_, err := New("xml")
		assert.Error(t, err)
	})
}

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONWriter{}).Write(&buf, sampleSummary()))

	var decoded engine.Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "test-scan", decoded.ID)
	assert.Equal(t, "192.168.1.0/30", decoded.Target)
	require.Len(t, decoded.Results, 2)
	assert.Equal(t, 22, decoded.Results[0].OpenPorts[0].Port)
	assert.Equal(t, engine.StateCompleted, decoded.State)
}

func TestCSVWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&CSVWriter{}).Write(&buf, sampleSummary()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	// Header, two rows for the live host, one row for the offline host.
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"host", "online", "latency_ms", "port", "service", "banner"}, rows[0])
	assert.Equal(t, "192.168.1.1", rows[1][0])
	assert.Equal(t, "22", rows[1][3])
	assert.Equal(t, "SSH", rows[1][4])
	assert.Equal(t, "80", rows[2][3])

	offline := rows[3]
	assert.Equal(t, "192.168.1.2", offline[0])
	assert.Equal(t, "false", offline[1])
	assert.Equal(t, "", offline[3], "offline hosts still appear with empty port column")
}

func TestTableWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TableWriter{}).Write(&buf, sampleSummary()))

	out := buf.String()
	assert.Contains(t, out, "192.168.1.1")
	assert.Contains(t, out, "192.168.1.2")
	assert.Contains(t, out, "SSH")
	assert.Contains(t, out, "22")
	assert.Contains(t, out, "Scanned 2/2 hosts")
	assert.Contains(t, out, "1 up, 1 down")
}

func TestTableWriterTruncatesBanners(t *testing.T) {
	summary := sampleSummary()
	summary.Results[0].OpenPorts[0].Banner = strings.Repeat("x", 120)

	var buf bytes.Buffer
	require.NoError(t, (&TableWriter{}).Write(&buf, summary))

	assert.Contains(t, buf.String(), strings.Repeat("x", maxTableBanner)+"...")
	assert.NotContains(t, buf.String(), strings.Repeat("x", maxTableBanner+1))
}

func TestTableWriterMarksCancelled(t *testing.T) {
	summary := sampleSummary()
	summary.State = engine.StateCancelled

	var buf bytes.Buffer
	require.NoError(t, (&TableWriter{}).Write(&buf, summary))
	assert.Contains(t, buf.String(), "(cancelled)")
}
