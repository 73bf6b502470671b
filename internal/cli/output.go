package cli

import (
	"encoding/json"
	"io"
	"math"
	"text/tabwriter"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// round2 rounds hours for display.
func round2(h float64) float64 {
	return math.Round(h*100) / 100
}
