package engine

import (
	"time"

	"github.com/netrecon/netrecon/internal/errors"
	"github.com/netrecon/netrecon/internal/ports"
	"github.com/netrecon/netrecon/internal/probe"
)

// State represents the lifecycle state of a scan.
type State string

const (
	StateIdle      State = "idle"
	StateResolving State = "resolving"
	StateScanning  State = "scanning"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
	StateFailed    State = "failed"
)

// Default option values.
const (
	DefaultPortTimeout     = 300 * time.Millisecond
	DefaultPingTimeout     = 500 * time.Millisecond
	DefaultResolveTimeout  = 2 * time.Second
	DefaultHostConcurrency = 50
	DefaultPortConcurrency = 100
)

// Options is the immutable per-scan configuration.
type Options struct {
	// Ports is the set of ports to probe on each live host.
	Ports []int
	// PortTimeout bounds each TCP connect attempt.
	PortTimeout time.Duration
	// PingTimeout bounds each liveness probe.
	PingTimeout time.Duration
	// HostConcurrency bounds how many hosts are scanned in parallel.
	HostConcurrency int
	// PortConcurrency bounds how many ports are probed in parallel per host.
	PortConcurrency int
	// PingFirst checks liveness before port probing. When false every host
	// is treated as online and goes straight to port probing.
	PingFirst bool
	// SkipOffline records hosts that fail the liveness probe without
	// attempting any of their ports.
	SkipOffline bool
	// GrabBanners reads a short service banner from each open port.
	GrabBanners bool
	// RateLimit caps host scans per second. Zero means no limit.
	RateLimit int
	// DNSServer optionally names an explicit resolver (host or host:port)
	// for address-family selection. Empty uses the system resolver.
	DNSServer string
	// ResolveTimeout bounds each hostname lookup during address-family
	// selection. Zero uses the default.
	ResolveTimeout time.Duration
}

// DefaultOptions returns scan options with the standard defaults.
func DefaultOptions() Options {
	return Options{
		Ports:           ports.DefaultCommon(),
		PortTimeout:     DefaultPortTimeout,
		PingTimeout:     DefaultPingTimeout,
		HostConcurrency: DefaultHostConcurrency,
		PortConcurrency: DefaultPortConcurrency,
		PingFirst:       true,
		SkipOffline:     false,
		GrabBanners:     false,
		ResolveTimeout:  DefaultResolveTimeout,
	}
}

// Validate checks that the options describe a runnable scan.
func (o Options) Validate() error {
	if len(o.Ports) == 0 {
		return errors.NewScanError(errors.CodePortsInvalid, "port set is empty")
	}
	for _, p := range o.Ports {
		if p < ports.MinPort || p > ports.MaxPort {
			return errors.NewScanError(errors.CodePortsInvalid, "port out of range")
		}
	}
	if o.PortTimeout <= 0 {
		return errors.NewScanError(errors.CodeValidation, "port timeout must be positive")
	}
	if o.PingTimeout <= 0 {
		return errors.NewScanError(errors.CodeValidation, "ping timeout must be positive")
	}
	if o.HostConcurrency < 1 {
		return errors.NewScanError(errors.CodeValidation, "host concurrency must be at least 1")
	}
	if o.PortConcurrency < 1 {
		return errors.NewScanError(errors.CodeValidation, "port concurrency must be at least 1")
	}
	if o.RateLimit < 0 {
		return errors.NewScanError(errors.CodeValidation, "rate limit cannot be negative")
	}
	if o.ResolveTimeout < 0 {
		return errors.NewScanError(errors.CodeValidation, "resolve timeout cannot be negative")
	}
	return nil
}

// ScanResult is the outcome for one host. OpenPorts holds only ports
// classified open, sorted ascending by port number.
type ScanResult struct {
	Host      string             `json:"host"`
	Online    bool               `json:"online"`
	Latency   time.Duration      `json:"latency"`
	OpenPorts []probe.PortResult `json:"open_ports"`
}

// Progress is a point-in-time snapshot emitted after each host completes.
// Percent is non-decreasing across successive emissions and reaches 100
// when every host has been scanned.
type Progress struct {
	ScannedHosts int     `json:"scanned_hosts"`
	TotalHosts   int     `json:"total_hosts"`
	CurrentHost  string  `json:"current_host"`
	Percent      float64 `json:"percent"`
}

// HostStats aggregates liveness counts across a completed scan.
type HostStats struct {
	Up    int `json:"up"`
	Down  int `json:"down"`
	Total int `json:"total"`
}

// Summary is the final outcome of one scan invocation. When a scan is
// cancelled it carries whatever results completed before cancellation.
type Summary struct {
	ID         string        `json:"id"`
	Target     string        `json:"target"`
	StartTime  time.Time     `json:"start_time"`
	EndTime    time.Time     `json:"end_time"`
	Duration   time.Duration `json:"duration"`
	TotalHosts int           `json:"total_hosts"`
	Results    []ScanResult  `json:"results"`
	Stats      HostStats     `json:"stats"`
	State      State         `json:"state"`
}

// ProgressFunc receives progress snapshots. It is invoked from arbitrary
// worker goroutines, serialized by the engine.
type ProgressFunc func(Progress)

// HostDoneFunc receives each host's result as it completes. It is invoked
// from arbitrary worker goroutines, serialized by the engine.
type HostDoneFunc func(host string, result ScanResult)
