package export

import (
	"encoding/json"
	"io"

	"github.com/netrecon/netrecon/internal/engine"
)

// JSONWriter renders the full summary as indented JSON.
type JSONWriter struct{}

// Write implements Writer.
func (j *JSONWriter) Write(w io.Writer, summary *engine.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
