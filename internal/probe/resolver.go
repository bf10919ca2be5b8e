// Package probe implements the network probes that make up a scan: ICMP
// liveness checks, TCP connect probes, and banner grabbing. Every probe
// absorbs its own transport failures and reports a classification instead
// of an error.
package probe

import (
	"context"
	"net"
	"time"

	"github.com/miekg/dns"
)

// Network constants for address-family selection.
const (
	NetworkTCP4 = "tcp4"
	NetworkTCP6 = "tcp6"
)

const defaultResolveTimeout = 2 * time.Second

// Resolver selects the address family to dial a host with. Literal IPs use
// their own family; hostnames are resolved and the family of the first
// returned address wins. Resolution failures default to IPv4 so a best-effort
// connect is still attempted.
type Resolver struct {
	// server is an optional "host:port" DNS server. When set, lookups go
	// through it directly instead of the system resolver.
	server  string
	timeout time.Duration
}

// NewResolver creates a resolver. An empty server uses the system resolver.
func NewResolver(server string, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = defaultResolveTimeout
	}
	if server != "" {
		if _, _, err := net.SplitHostPort(server); err != nil {
			server = net.JoinHostPort(server, "53")
		}
	}
	return &Resolver{server: server, timeout: timeout}
}

// Network returns the dial network ("tcp4" or "tcp6") for a host.
func (r *Resolver) Network(ctx context.Context, host string) string {
	if ip := net.ParseIP(host); ip != nil {
		if ip.To4() != nil {
			return NetworkTCP4
		}
		return NetworkTCP6
	}

	if r.server != "" {
		return r.lookupDirect(ctx, host)
	}
	return r.lookupSystem(ctx, host)
}

// lookupSystem resolves through the system resolver and picks the family of
// the first returned address.
func (r *Resolver) lookupSystem(ctx context.Context, host string) string {
	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	addrs, err := net.DefaultResolver.LookupIPAddr(lookupCtx, host)
	if err != nil || len(addrs) == 0 {
		return NetworkTCP4
	}
	if addrs[0].IP.To4() != nil {
		return NetworkTCP4
	}
	return NetworkTCP6
}

// lookupDirect queries the configured DNS server for an A record, falling
// back to AAAA. Any failure defaults to IPv4.
func (r *Resolver) lookupDirect(ctx context.Context, host string) string {
	client := &dns.Client{Timeout: r.timeout}

	if r.hasRecord(ctx, client, host, dns.TypeA) {
		return NetworkTCP4
	}
	if r.hasRecord(ctx, client, host, dns.TypeAAAA) {
		return NetworkTCP6
	}
	return NetworkTCP4
}

func (r *Resolver) hasRecord(ctx context.Context, client *dns.Client, host string, qtype uint16) bool {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(host), qtype)

	reply, _, err := client.ExchangeContext(ctx, msg, r.server)
	if err != nil || reply == nil {
		return false
	}
	for _, rr := range reply.Answer {
		switch rr.(type) {
		case *dns.A, *dns.AAAA:
			return true
		}
	}
	return false
}
