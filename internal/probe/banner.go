package probe

import (
	"net"
	"strings"
	"time"

	"github.com/netrecon/netrecon/internal/metrics"
)

const (
	bannerIOTimeout  = 500 * time.Millisecond
	bannerGracePause = 100 * time.Millisecond
	bannerReadLimit  = 512
	bannerKeepBytes  = 200
	bannerMaxLength  = 150
)

// webPorts are the ports that get a minimal HTTP probe before reading, since
// HTTP servers do not speak first.
var webPorts = map[int]bool{
	80:   true,
	443:  true,
	8000: true,
	8080: true,
	8443: true,
}

// BannerGrabber reads a short service banner from an already-open
// connection. It is strictly best-effort: every failure yields an empty
// string and never affects the port classification.
type BannerGrabber struct{}

// NewBannerGrabber creates a banner grabber.
func NewBannerGrabber() *BannerGrabber {
	return &BannerGrabber{}
}

// Grab elicits and reads a banner from conn, bounded to roughly 600ms total.
// The returned string contains only printable ASCII, at most 150 characters.
func (g *BannerGrabber) Grab(conn net.Conn, port int) string {
	if err := conn.SetDeadline(time.Now().Add(bannerIOTimeout)); err != nil {
		return ""
	}

	if webPorts[port] {
		probe := "HEAD / HTTP/1.0\r\nHost: localhost\r\n\r\n"
		if _, err := conn.Write([]byte(probe)); err != nil {
			countBanner("write_failed")
			return ""
		}
	}

	// Give unsolicited banners and the probe response a moment to arrive.
	time.Sleep(bannerGracePause)

	buf := make([]byte, bannerReadLimit)
	n, err := conn.Read(buf)
	if err != nil || n == 0 {
		countBanner("empty")
		return ""
	}
	if n > bannerKeepBytes {
		n = bannerKeepBytes
	}

	banner := sanitizeBanner(buf[:n])
	if banner != "" {
		countBanner("grabbed")
	}
	return banner
}

func countBanner(outcome string) {
	metrics.Counter(metrics.MetricBannersGrabbed, metrics.Labels{metrics.LabelOutcome: outcome})
	metrics.GetGlobalMetrics().IncrementBannersGrabbed(outcome)
}

// sanitizeBanner keeps only printable ASCII and truncates to the maximum
// banner length.
func sanitizeBanner(raw []byte) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, c := range raw {
		if c >= 32 && c <= 126 {
			b.WriteByte(c)
		}
		if b.Len() >= bannerMaxLength {
			break
		}
	}
	return strings.TrimSpace(b.String())
}
