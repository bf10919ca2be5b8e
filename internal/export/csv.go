package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/netrecon/netrecon/internal/engine"
)

// CSVWriter renders one row per open port, plus one row per host without
// open ports so offline hosts still appear in the output.
type CSVWriter struct{}

// Write implements Writer.
func (c *CSVWriter) Write(w io.Writer, summary *engine.Summary) error {
	cw := csv.NewWriter(w)

	header := []string{"host", "online", "latency_ms", "port", "service", "banner"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, result := range summary.Results {
		online := strconv.FormatBool(result.Online)
		latency := strconv.FormatInt(result.Latency.Milliseconds(), 10)

		if len(result.OpenPorts) == 0 {
			if err := cw.Write([]string{result.Host, online, latency, "", "", ""}); err != nil {
				return err
			}
			continue
		}

		for _, port := range result.OpenPorts {
			row := []string{
				result.Host,
				online,
				latency,
				strconv.Itoa(port.Port),
				port.Service,
				port.Banner,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
