package calibration

import (
	"math"
	"strconv"
	"strings"
)

// intervalLabels renders "(left, right]" labels, using the smallest precision
// of at least three significant fractional digits that keeps every edge distinct.
func intervalLabels(edges []float64, includeLowest bool) []string {
	precision := inferPrecision(edges)
	breaks := make([]float64, len(edges))
	for i, e := range edges {
		breaks[i] = roundFrac(e, precision)
	}
	if includeLowest {
		breaks[0] -= math.Pow(10, -float64(precision))
	}

	labels := make([]string, len(edges)-1)
	for i := range labels {
		labels[i] = "(" + formatEdge(breaks[i]) + ", " + formatEdge(breaks[i+1]) + "]"
	}
	return labels
}

func inferPrecision(edges []float64) int {
	for precision := labelPrecision; precision < 20; precision++ {
		seen := make(map[float64]struct{}, len(edges))
		for _, e := range edges {
			seen[roundFrac(e, precision)] = struct{}{}
		}
		if len(seen) == len(edges) {
			return precision
		}
	}
	return labelPrecision
}

func roundFrac(x float64, precision int) float64 {
	if x == 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	whole, frac := math.Modf(x)
	digits := precision
	if whole == 0 {
		digits = -int(math.Floor(math.Log10(math.Abs(frac)))) - 1 + precision
	}
	scale := math.Pow(10, float64(digits))
	return math.Round(x*scale) / scale
}

func formatEdge(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEIN") {
		s += ".0"
	}
	return s
}
