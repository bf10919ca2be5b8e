package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/netrecon/netrecon/internal/engine"
)

const maxTableBanner = 40

// TableWriter renders a human-readable table of hosts and open ports.
type TableWriter struct{}

// Write implements Writer.
func (t *TableWriter) Write(w io.Writer, summary *engine.Summary) error {
	table := tablewriter.NewWriter(w)
	table.Header("Host", "Status", "Latency", "Port", "Service", "Banner")

	for _, result := range summary.Results {
		status := "down"
		latency := "-"
		if result.Online {
			status = "up"
			latency = result.Latency.Round(time.Millisecond).String()
		}

		if len(result.OpenPorts) == 0 {
			if err := table.Append([]string{result.Host, status, latency, "-", "-", "-"}); err != nil {
				return err
			}
			continue
		}

		for i, port := range result.OpenPorts {
			host, st, lat := result.Host, status, latency
			if i > 0 {
				// Repeat host columns only on the first row.
				host, st, lat = "", "", ""
			}

			banner := port.Banner
			if len(banner) > maxTableBanner {
				banner = banner[:maxTableBanner] + "..."
			}

			row := []string{host, st, lat, strconv.Itoa(port.Port), port.Service, banner}
			if err := table.Append(row); err != nil {
				return err
			}
		}
	}

	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n%s\n", summaryLine(summary))
	return err
}

func summaryLine(summary *engine.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Scanned %d/%d hosts in %s: %d up, %d down",
		len(summary.Results), summary.TotalHosts,
		summary.Duration.Round(time.Millisecond),
		summary.Stats.Up, summary.Stats.Down)
	if summary.State == engine.StateCancelled {
		b.WriteString(" (cancelled)")
	}
	return b.String()
}
