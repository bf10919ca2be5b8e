// Package export renders scan summaries for external consumption.
// It supports JSON, CSV, and human-readable table output.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/netrecon/netrecon/internal/engine"
)

// Format identifies an output format.
type Format string

const (
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatTable Format = "table"
)

// Writer renders a scan summary to an output stream.
type Writer interface {
	Write(w io.Writer, summary *engine.Summary) error
}

// New returns a writer for the named format.
func New(format string) (Writer, error) {
	switch Format(strings.ToLower(format)) {
	case FormatJSON:
		return &JSONWriter{}, nil
	case FormatCSV:
		return &CSVWriter{}, nil
	case FormatTable, "":
		return &TableWriter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format: %s", format)
	}
}
