package exporter

import (
	"math"
	"strconv"
)

// formatFloat formats a value for CSV output with the shortest exact
// representation. Non-finite values become empty cells.
func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatStat formats a statistic for the text report.
func formatStat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case f != 0 && (math.Abs(f) >= 1e6 || math.Abs(f) < 1e-4):
		return strconv.FormatFloat(f, 'e', 3, 64)
	default:
		return strconv.FormatFloat(f, 'f', 4, 64)
	}
}

// formatPValue keeps tiny p-values readable
func formatPValue(p float64) string {
	if !math.IsNaN(p) && p < 1e-4 {
		return "<0.0001"
	}
	return formatStat(p)
}
