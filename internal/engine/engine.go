// Package engine implements the scan orchestrator. It resolves a target
// expression into hosts, fans the hosts out across a bounded worker pool,
// fans each host's port set out across a second bounded pool, and collects
// per-host results while emitting progress notifications.
package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/netrecon/netrecon/internal/errors"
	"github.com/netrecon/netrecon/internal/logging"
	"github.com/netrecon/netrecon/internal/metrics"
	"github.com/netrecon/netrecon/internal/probe"
	"github.com/netrecon/netrecon/internal/target"
	"github.com/netrecon/netrecon/internal/workers"
)

// livenessProber classifies a host as online or offline.
type livenessProber interface {
	Probe(ctx context.Context, host string, timeout time.Duration) (bool, time.Duration)
}

// portProber classifies one host:port as open or not open.
type portProber interface {
	Probe(ctx context.Context, host string, port int, timeout time.Duration) probe.PortResult
}

// Engine runs scans. One scan is active per engine at a time; all scan
// state is scoped to a single Scan call and discarded when it returns.
type Engine struct {
	opts   Options
	pinger livenessProber
	prober portProber
	log    *logging.Logger

	// OnProgress, when set, receives a snapshot after each host completes.
	OnProgress ProgressFunc
	// OnHostDone, when set, receives each host's result as it completes.
	OnHostDone HostDoneFunc

	mu     sync.Mutex
	active bool
	state  State
}

// New creates an engine with the given options. The options are validated
// once here so Scan never starts a misconfigured scan.
func New(opts Options, log *logging.Logger) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.Default()
	}
	log = log.WithComponent("engine")

	resolver := probe.NewResolver(opts.DNSServer, opts.ResolveTimeout)

	return &Engine{
		opts:   opts,
		pinger: probe.NewPinger(log),
		prober: probe.NewPortProber(resolver, opts.GrabBanners, log),
		log:    log,
		state:  StateIdle,
	}, nil
}

// State returns the engine's current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// collector is the single piece of cross-worker mutable state in a scan.
// Appends, counter increments, and notification emission happen under one
// lock so progress percent is non-decreasing and no result is lost or
// duplicated under concurrent host completions.
type collector struct {
	mu      sync.Mutex
	results []ScanResult
	scanned int
	total   int

	onProgress ProgressFunc
	onHostDone HostDoneFunc
}

func (c *collector) hostDone(host string, result ScanResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.results = append(c.results, result)
	c.scanned++

	if c.onHostDone != nil {
		c.onHostDone(host, result)
	}
	if c.onProgress != nil {
		c.onProgress(Progress{
			ScannedHosts: c.scanned,
			TotalHosts:   c.total,
			CurrentHost:  host,
			Percent:      float64(c.scanned) / float64(c.total) * 100,
		})
	}
}

func (c *collector) snapshot() []ScanResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ScanResult, len(c.results))
	copy(out, c.results)
	return out
}

// Scan resolves targetExpr and scans every resolved host. It returns when
// all hosts are processed or promptly after ctx is cancelled; a cancelled
// scan returns the partial summary alongside a cancellation error.
func (e *Engine) Scan(ctx context.Context, targetExpr string) (*Summary, error) {
	targetExpr = strings.TrimSpace(targetExpr)
	if targetExpr == "" {
		return nil, errors.ErrInvalidTarget(targetExpr)
	}

	e.mu.Lock()
	if e.active {
		e.mu.Unlock()
		return nil, errors.ErrScanActive()
	}
	e.active = true
	e.state = StateResolving
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.active = false
		e.mu.Unlock()
	}()

	scanID := uuid.New().String()
	log := e.log.WithScanID(scanID).WithTarget(targetExpr)

	prom := metrics.GetGlobalMetrics()
	prom.SetActiveScans(1)
	defer prom.SetActiveScans(0)

	start := time.Now()
	hosts := target.Resolve(targetExpr)

	summary := &Summary{
		ID:         scanID,
		Target:     targetExpr,
		StartTime:  start,
		TotalHosts: len(hosts),
	}

	if len(hosts) == 0 {
		log.Warn("Target resolved to zero hosts")
		e.setState(StateCompleted)
		summary.EndTime = time.Now()
		summary.Duration = summary.EndTime.Sub(start)
		summary.Results = []ScanResult{}
		summary.State = StateCompleted
		metrics.IncrementScanTotal("empty")
		return summary, nil
	}

	log.InfoScan("Starting scan", targetExpr,
		"hosts", len(hosts),
		"ports", len(e.opts.Ports),
		"host_concurrency", e.opts.HostConcurrency,
		"port_concurrency", e.opts.PortConcurrency)

	e.setState(StateScanning)

	scanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	coll := &collector{
		total:      len(hosts),
		onProgress: e.OnProgress,
		onHostDone: e.OnHostDone,
	}

	pool := workers.New(workers.Config{
		Size:            e.opts.HostConcurrency,
		QueueSize:       len(hosts),
		ShutdownTimeout: 30 * time.Second,
		RateLimit:       e.opts.RateLimit,
	})
	pool.Start()

	var wg sync.WaitGroup
	wg.Add(len(hosts))
	for i, host := range hosts {
		h := host
		job := workers.NewHostJob(fmt.Sprintf("%s-%d", scanID, i), h,
			func(context.Context, string) error {
				defer wg.Done()
				e.scanHost(scanCtx, h, coll)
				return nil
			})
		if err := pool.Submit(job); err != nil {
			// Pool refused the job; count the host as skipped.
			wg.Done()
		}
	}

	wg.Wait()
	if err := pool.Shutdown(); err != nil {
		log.ErrorScan("Worker pool shutdown failed", targetExpr, err)
	}

	cancelled := ctx.Err() != nil

	summary.EndTime = time.Now()
	summary.Duration = summary.EndTime.Sub(start)
	summary.Results = coll.snapshot()
	summary.Stats = tallyStats(summary.Results, len(hosts))

	metrics.RecordScanDuration(targetExpr, summary.Duration)
	prom.RecordScanDuration(summary.Duration)

	if cancelled {
		e.setState(StateCancelled)
		summary.State = StateCancelled
		metrics.IncrementScanTotal("cancelled")
		prom.IncrementScansTotal("cancelled")
		log.InfoScan("Scan cancelled", targetExpr,
			"scanned", len(summary.Results),
			"total", len(hosts),
			"duration", summary.Duration)
		return summary, errors.ErrScanCanceled(targetExpr)
	}

	e.setState(StateCompleted)
	summary.State = StateCompleted
	metrics.IncrementScanTotal("completed")
	prom.IncrementScansTotal("completed")
	log.InfoScan("Scan completed", targetExpr,
		"hosts_up", summary.Stats.Up,
		"hosts_down", summary.Stats.Down,
		"duration", summary.Duration)
	return summary, nil
}

// scanHost processes one host end to end. Probe failures never escape;
// they are absorbed as offline or not-open classifications.
func (e *Engine) scanHost(ctx context.Context, host string, coll *collector) {
	// Hosts not yet started when cancellation fires are skipped entirely.
	if ctx.Err() != nil {
		return
	}

	result := ScanResult{
		Host:      host,
		Online:    true,
		OpenPorts: []probe.PortResult{},
	}

	if e.opts.PingFirst {
		result.Online, result.Latency = e.pinger.Probe(ctx, host, e.opts.PingTimeout)
	}

	status := "up"
	if !result.Online {
		status = "down"
	}
	metrics.IncrementHostsScanned(status)
	metrics.GetGlobalMetrics().IncrementHostsScanned(status, 1)

	if !result.Online && e.opts.SkipOffline {
		coll.hostDone(host, result)
		return
	}

	result.OpenPorts = e.probePorts(ctx, host)
	coll.hostDone(host, result)
}

// probePorts fans the port set out across a bounded number of goroutines
// and returns only the ports classified open, sorted ascending.
func (e *Engine) probePorts(ctx context.Context, host string) []probe.PortResult {
	results := make([]probe.PortResult, len(e.opts.Ports))
	sem := make(chan struct{}, e.opts.PortConcurrency)

	var wg sync.WaitGroup
	for i, port := range e.opts.Ports {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(idx, p int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[idx] = e.prober.Probe(ctx, host, p, e.opts.PortTimeout)
		}(i, port)
	}
	wg.Wait()

	open := make([]probe.PortResult, 0)
	for _, r := range results {
		if r.Open {
			open = append(open, r)
		}
	}
	sort.Slice(open, func(i, j int) bool { return open[i].Port < open[j].Port })
	return open
}

func tallyStats(results []ScanResult, total int) HostStats {
	stats := HostStats{Total: total}
	for _, r := range results {
		if r.Online {
			stats.Up++
		} else {
			stats.Down++
		}
	}
	return stats
}
