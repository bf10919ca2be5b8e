package probe

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/netrecon/netrecon/internal/logging"
	"github.com/netrecon/netrecon/internal/metrics"
	"github.com/netrecon/netrecon/internal/ports"
)

// PortResult is the outcome of probing one port on one host. Service and
// Banner are populated only for open ports.
type PortResult struct {
	Port    int    `json:"port"`
	Open    bool   `json:"open"`
	Service string `json:"service,omitempty"`
	Banner  string `json:"banner,omitempty"`
}

// PortProber classifies a host:port as open or not open via a TCP connect
// with a hard deadline. Refused, filtered, and timed-out ports all collapse
// into a single not-open classification; the distinction only surfaces in
// debug logs and metrics labels.
type PortProber struct {
	resolver *Resolver
	grabber  *BannerGrabber
	banners  bool
	log      *logging.Logger
}

// NewPortProber creates a port prober. When grabBanners is set, open
// connections are handed to the banner grabber before being released.
func NewPortProber(resolver *Resolver, grabBanners bool, log *logging.Logger) *PortProber {
	if log == nil {
		log = logging.Default()
	}
	if resolver == nil {
		resolver = NewResolver("", 0)
	}
	return &PortProber{
		resolver: resolver,
		grabber:  NewBannerGrabber(),
		banners:  grabBanners,
		log:      log.WithComponent("prober"),
	}
}

// Probe attempts a TCP connect to host:port within timeout. The connect is
// linked to ctx so a scan-wide cancel aborts it immediately.
func (p *PortProber) Probe(ctx context.Context, host string, port int, timeout time.Duration) PortResult {
	result := PortResult{Port: port}

	network := p.resolver.Network(ctx, host)
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	start := time.Now()
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, network, addr)
	metrics.Histogram(metrics.MetricConnectDuration, time.Since(start).Seconds(), nil)
	metrics.GetGlobalMetrics().RecordConnectDuration(time.Since(start))

	if err != nil {
		outcome := classifyDialError(err)
		metrics.IncrementPortsProbed(outcome)
		metrics.GetGlobalMetrics().IncrementPortsProbed(outcome, 1)
		p.log.DebugProbe("connect failed", host, "port", port, "error", err)
		return result
	}
	defer conn.Close()

	result.Open = true
	result.Service = ports.ServiceName(port)
	metrics.IncrementPortsProbed("open")
	metrics.GetGlobalMetrics().IncrementPortsProbed("open", 1)

	if p.banners {
		result.Banner = p.grabber.Grab(conn, port)
	}
	return result
}

// classifyDialError labels a failed connect for metrics only; the result
// type deliberately keeps a single not-open boolean.
func classifyDialError(err error) string {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	return "closed"
}
