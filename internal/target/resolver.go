// Package target parses target expressions into lists of hosts to probe.
// An expression is one of a CIDR block ("192.168.1.0/24"), a last-octet dash
// range ("10.0.0.1-50"), or a literal host/IP passed through unchanged.
package target

import (
	"encoding/binary"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
)

// maxEnumeratedHosts caps CIDR expansion so a /8 cannot exhaust memory or
// run an unbounded scan.
const maxEnumeratedHosts = 65536

var dashRangePattern = regexp.MustCompile(`^(\d{1,3}\.\d{1,3}\.\d{1,3})\.(\d{1,3})-(\d{1,3})$`)

// Resolve parses a target expression into an ordered list of host strings.
// It is pure and never fails: malformed CIDR or range expressions yield an
// empty list, and anything that matches neither shape is treated as a single
// literal host. Hostname resolution is deferred to the port prober.
func Resolve(expr string) []string {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil
	}

	if strings.Contains(expr, "/") {
		return expandCIDR(expr)
	}

	if m := dashRangePattern.FindStringSubmatch(expr); m != nil {
		return expandDashRange(m[1], m[2], m[3])
	}

	return []string{expr}
}

// expandCIDR enumerates the usable addresses of an IPv4 CIDR block.
// For prefixes shorter than /31 the network and broadcast addresses are
// excluded; /31 and /32 enumerate every address.
func expandCIDR(expr string) []string {
	parts := strings.SplitN(expr, "/", 2)
	ip := net.ParseIP(strings.TrimSpace(parts[0]))
	if ip == nil {
		return nil
	}
	ip4 := ip.To4()
	if ip4 == nil {
		return nil
	}
	prefix, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || prefix < 0 || prefix > 32 {
		return nil
	}

	hostBits := uint(32 - prefix)
	mask := uint32(0xffffffff)
	if hostBits == 32 {
		mask = 0
	} else {
		mask <<= hostBits
	}
	network := binary.BigEndian.Uint32(ip4) & mask

	var first, last uint64
	total := uint64(1) << hostBits
	if prefix < 31 {
		// Exclude network and broadcast addresses.
		first, last = 1, total-2
	} else {
		first, last = 0, total-1
	}

	hosts := make([]string, 0, min64(last-first+1, maxEnumeratedHosts))
	for i := first; i <= last; i++ {
		if uint64(len(hosts)) >= maxEnumeratedHosts {
			break
		}
		addr := network | uint32(i)
		hosts = append(hosts, fmt.Sprintf("%d.%d.%d.%d",
			byte(addr>>24), byte(addr>>16), byte(addr>>8), byte(addr)))
	}
	return hosts
}

// expandDashRange enumerates "prefix.start-end" with both bounds clamped
// into [0, 255].
func expandDashRange(prefix, startStr, endStr string) []string {
	start, err := strconv.Atoi(startStr)
	if err != nil {
		return nil
	}
	end, err := strconv.Atoi(endStr)
	if err != nil {
		return nil
	}
	start = clampOctet(start)
	end = clampOctet(end)
	if start > end {
		return nil
	}

	hosts := make([]string, 0, end-start+1)
	for i := start; i <= end; i++ {
		hosts = append(hosts, fmt.Sprintf("%s.%d", prefix, i))
	}
	return hosts
}

func clampOctet(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

func min64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
