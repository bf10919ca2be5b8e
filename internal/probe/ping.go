package probe

import (
	"context"
	"net"
	"os"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"

	"github.com/netrecon/netrecon/internal/logging"
	"github.com/netrecon/netrecon/internal/metrics"
)

const (
	icmpProtocolIPv4 = 1
	icmpProtocolIPv6 = 58

	pingPayload    = "netrecon-ping"
	pingReadBuffer = 1500
)

// Pinger issues ICMP echo probes to classify host liveness. Every failure
// mode (unreachable, DNS failure, permission denied, timeout) is classified
// as offline; nothing is propagated as a fatal error.
type Pinger struct {
	log *logging.Logger
}

// NewPinger creates a liveness prober.
func NewPinger(log *logging.Logger) *Pinger {
	if log == nil {
		log = logging.Default()
	}
	return &Pinger{log: log.WithComponent("pinger")}
}

// Probe sends one ICMP echo to host and waits up to timeout for the reply.
// It returns whether the host answered and the observed round-trip time.
func (p *Pinger) Probe(ctx context.Context, host string, timeout time.Duration) (bool, time.Duration) {
	start := time.Now()
	defer func() {
		metrics.Histogram(metrics.MetricPingDuration, time.Since(start).Seconds(), nil)
		metrics.GetGlobalMetrics().RecordPingDuration(time.Since(start))
	}()

	addr, err := net.ResolveIPAddr("ip", host)
	if err != nil {
		p.log.DebugProbe("ping resolution failed", host, "error", err)
		return false, 0
	}

	ipv6Target := addr.IP.To4() == nil
	conn, err := p.listen(ipv6Target)
	if err != nil {
		p.log.DebugProbe("ping socket unavailable", host, "error", err)
		return false, 0
	}
	defer conn.Close()

	// A scan-wide cancel aborts the blocking read immediately instead of
	// waiting out the timeout.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return false, 0
	}

	echo := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Body: &icmp.Echo{
			ID:   os.Getpid() & 0xffff,
			Seq:  1,
			Data: []byte(pingPayload),
		},
	}
	proto := icmpProtocolIPv4
	if ipv6Target {
		echo.Type = ipv6.ICMPTypeEchoRequest
		proto = icmpProtocolIPv6
	}

	payload, err := echo.Marshal(nil)
	if err != nil {
		return false, 0
	}

	dst := p.destination(conn, addr)
	if _, err := conn.WriteTo(payload, dst); err != nil {
		p.log.DebugProbe("ping send failed", host, "error", err)
		return false, 0
	}

	sent := time.Now()
	buf := make([]byte, pingReadBuffer)
	for {
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			p.log.DebugProbe("ping no reply", host, "error", err)
			return false, 0
		}
		msg, err := icmp.ParseMessage(proto, buf[:n])
		if err != nil {
			continue
		}
		switch msg.Type {
		case ipv4.ICMPTypeEchoReply, ipv6.ICMPTypeEchoReply:
			return true, time.Since(sent)
		default:
			// Some other ICMP traffic on the socket, keep waiting.
		}
	}
}

// listen opens an ICMP socket, preferring the unprivileged datagram flavor
// and falling back to a raw socket when the platform allows it.
func (p *Pinger) listen(ipv6Target bool) (*icmp.PacketConn, error) {
	if ipv6Target {
		conn, err := icmp.ListenPacket("udp6", "::")
		if err != nil {
			conn, err = icmp.ListenPacket("ip6:ipv6-icmp", "::")
		}
		return conn, err
	}
	conn, err := icmp.ListenPacket("udp4", "0.0.0.0")
	if err != nil {
		conn, err = icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	}
	return conn, err
}

// destination adapts the target address to the socket flavor: datagram ICMP
// sockets want a UDP address, raw sockets want the IP address itself.
func (p *Pinger) destination(conn *icmp.PacketConn, addr *net.IPAddr) net.Addr {
	if local, ok := conn.LocalAddr().(*net.UDPAddr); ok && local != nil {
		return &net.UDPAddr{IP: addr.IP, Zone: addr.Zone}
	}
	return addr
}
