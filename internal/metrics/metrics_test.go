package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCounter(t *testing.T) {
	registry := NewRegistry()

	registry.Counter("ports_probed_total", Labels{"outcome": "open"})
	registry.Counter("ports_probed_total", Labels{"outcome": "open"})
	registry.Counter("ports_probed_total", Labels{"outcome": "closed"})

	all := registry.GetMetrics()
	require.Len(t, all, 2)

	var open, closed float64
	for _, m := range all {
		assert.Equal(t, TypeCounter, m.Type)
		switch m.Labels["outcome"] {
		case "open":
			open = m.Value
		case "closed":
			closed = m.Value
		}
	}
	assert.Equal(t, 2.0, open)
	assert.Equal(t, 1.0, closed)
}

func TestRegistryGauge(t *testing.T) {
	registry := NewRegistry()

	registry.Gauge("active_scans", 1, nil)
	registry.Gauge("active_scans", 0, nil)

	all := registry.GetMetrics()
	require.Len(t, all, 1)
	for _, m := range all {
		assert.Equal(t, TypeGauge, m.Type)
		assert.Equal(t, 0.0, m.Value)
	}
}

func TestRegistryDisabled(t *testing.T) {
	registry := NewRegistry()
	registry.SetEnabled(false)

	registry.Counter("scan_total", nil)
	assert.Empty(t, registry.GetMetrics())

	registry.SetEnabled(true)
	registry.Counter("scan_total", nil)
	assert.Len(t, registry.GetMetrics(), 1)
}

func TestRegistryReset(t *testing.T) {
	registry := NewRegistry()
	registry.Counter("scan_total", nil)
	require.Len(t, registry.GetMetrics(), 1)

	registry.Reset()
	assert.Empty(t, registry.GetMetrics())
}

func TestTimer(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	registry := NewRegistry()
	SetDefault(registry)

	timer := NewTimer(MetricScanDuration, Labels{LabelTarget: "10.0.0.1"})
	time.Sleep(5 * time.Millisecond)
	timer.Stop()

	all := registry.GetMetrics()
	require.Len(t, all, 1)
	for _, m := range all {
		assert.Equal(t, TypeHistogram, m.Type)
		assert.Greater(t, m.Value, 0.0)
	}
}

func TestHelpers(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	registry := NewRegistry()
	SetDefault(registry)

	IncrementScanTotal("completed")
	IncrementHostsScanned("up")
	IncrementPortsProbed("open")
	RecordScanDuration("10.0.0.0/24", 250*time.Millisecond)

	all := registry.GetMetrics()
	assert.Len(t, all, 4)
}

func TestMakeKeyStableForSameLabels(t *testing.T) {
	registry := NewRegistry()

	registry.Counter("scan_total", Labels{"status": "completed"})
	registry.Counter("scan_total", Labels{"status": "completed"})

	all := registry.GetMetrics()
	require.Len(t, all, 1)
	for _, m := range all {
		assert.Equal(t, 2.0, m.Value)
	}
}
