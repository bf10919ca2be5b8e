// Package ports handles port set parsing and well-known service naming.
// A port specification is a comma-separated list of single ports and dashed
// ranges; parsing produces a deduplicated, ascending set.
package ports

import (
	"sort"
	"strconv"
	"strings"

	"github.com/netrecon/netrecon/internal/errors"
)

const (
	// MinPort and MaxPort bound every parsed port number.
	MinPort = 1
	MaxPort = 65535
)

// DefaultCommon returns the default set of commonly probed TCP ports, used
// when the caller supplies no port specification.
func DefaultCommon() []int {
	return []int{
		21, 22, 23, 25, 53, 80, 110, 143, 443, 445,
		993, 995, 1433, 3306, 3389, 5432, 5900, 6379,
		8080, 8443, 27017,
	}
}

// Parse parses a port specification string into a sorted, deduplicated set.
// Supported forms:
//   - single: "22"
//   - list: "22,80,443"
//   - range: "1-1024" (bounds clamped into 1..65535)
//   - mixed: "22,80,8000-8100"
//
// Tokens that cannot be parsed are skipped. A specification that yields no
// valid ports at all is a validation error the caller must handle before
// launching a scan.
func Parse(spec string) ([]int, error) {
	seen := make(map[int]struct{})

	for _, token := range strings.Split(spec, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if strings.Contains(token, "-") {
			parseRange(token, seen)
			continue
		}
		if v, err := strconv.Atoi(token); err == nil && v >= MinPort && v <= MaxPort {
			seen[v] = struct{}{}
		}
	}

	if len(seen) == 0 {
		return nil, errors.ErrEmptyPortSet(spec)
	}

	out := make([]int, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Ints(out)
	return out, nil
}

// parseRange parses a "lo-hi" token, clamping both bounds into the valid
// port range. Unparseable bounds invalidate the token.
func parseRange(token string, seen map[int]struct{}) {
	bounds := strings.SplitN(token, "-", 2)
	lo, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
	if err != nil {
		return
	}
	hi, err := strconv.Atoi(strings.TrimSpace(bounds[1]))
	if err != nil {
		return
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	lo = clamp(lo)
	hi = clamp(hi)
	for p := lo; p <= hi; p++ {
		seen[p] = struct{}{}
	}
}

func clamp(p int) int {
	if p < MinPort {
		return MinPort
	}
	if p > MaxPort {
		return MaxPort
	}
	return p
}

// serviceNames maps well-known port numbers to service labels. Ports not in
// the table get an empty label, never an error.
var serviceNames = map[int]string{
	21:    "FTP",
	22:    "SSH",
	23:    "Telnet",
	25:    "SMTP",
	53:    "DNS",
	80:    "HTTP",
	110:   "POP3",
	143:   "IMAP",
	443:   "HTTPS",
	445:   "SMB",
	993:   "IMAPS",
	995:   "POP3S",
	1433:  "MSSQL",
	3306:  "MySQL",
	3389:  "RDP",
	5432:  "PostgreSQL",
	5900:  "VNC",
	6379:  "Redis",
	8080:  "HTTP-Proxy",
	8443:  "HTTPS-Alt",
	27017: "MongoDB",
}

// ServiceName resolves a well-known service label for a port number.
func ServiceName(port int) string {
	return serviceNames[port]
}
