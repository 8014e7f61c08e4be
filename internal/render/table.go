// Package render turns an ordered list of state snapshots into a
// delimited table: a header row of stock names, then one row per round.
//
// Column order is the model's stock insertion order with infinite
// stocks excluded, matching the engine's stable display contract.
package render

import (
	"math"
	"strconv"
	"strings"

	"github.com/roach88/stockflow/internal/engine"
)

// Table renders snapshots as a tab-delimited table. The first column is
// the round index.
func Table(m *engine.Model, snapshots []engine.Snapshot) string {
	names := Columns(m)

	var b strings.Builder
	b.WriteString("round")
	for _, name := range names {
		b.WriteByte('\t')
		b.WriteString(name)
	}
	b.WriteByte('\n')

	for round, snap := range snapshots {
		b.WriteString(strconv.Itoa(round))
		for _, name := range names {
			b.WriteByte('\t')
			b.WriteString(FormatValue(snap[name]))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Columns returns the displayable stock names in insertion order.
func Columns(m *engine.Model) []string {
	var names []string
	for _, s := range m.Stocks() {
		if s.Show {
			names = append(names, s.Name)
		}
	}
	return names
}

// FormatValue renders a stock value: integral values print without a
// decimal point, infinities as inf/-inf, undefined values as nan.
func FormatValue(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case math.IsNaN(v):
		return "nan"
	default:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}
