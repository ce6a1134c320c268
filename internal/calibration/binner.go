// Package calibration groups predicted probabilities into bins and compares the
// mean prediction of each bin with the hit rate actually observed in it.
package calibration

import (
	"fmt"
	"math"
	"sort"

	"github.com/yourusername/prop-calibrator/internal/models"
)

const (
	// DefaultBins is the bin count used by reports unless configured otherwise
	DefaultBins = 10
	// ECEBins is the fixed bin count of the expected calibration error
	ECEBins = 10

	labelPrecision = 3
	rangePadding   = 0.001
)

// Bin partitions the usable prediction/outcome pairs into at most nBins bins.
// Pairs with a missing prediction or outcome are dropped first; an empty input
// yields an empty, non-nil slice.
func Bin(outcomes, predictions []float64, nBins int, strategy Strategy) ([]models.CalibrationBin, error) {
	if len(outcomes) != len(predictions) {
		return nil, fmt.Errorf("calibration bins (%d outcomes, %d predictions): %w", len(outcomes), len(predictions), models.ErrLengthMismatch)
	}
	if nBins < 1 {
		return nil, fmt.Errorf("calibration bins (%d): %w", nBins, models.ErrInvalidBins)
	}
	if !strategy.Valid() {
		return nil, fmt.Errorf("calibration bins (%s): %w", strategy, models.ErrUnknownStrategy)
	}

	ys, ps := dropMissing(outcomes, predictions)
	if len(ps) == 0 {
		return []models.CalibrationBin{}, nil
	}

	var edges []float64
	includeLowest := false
	switch strategy {
	case StrategyQuantile:
		edges = quantileEdges(ps, nBins)
		includeLowest = true
	case StrategyUniform:
		edges = uniformEdges(ps, nBins)
	}

	if len(edges) < 2 {
		// Every prediction is identical: one bin holds everything.
		return []models.CalibrationBin{singleBin(ys, ps)}, nil
	}

	return aggregate(ys, ps, edges, includeLowest), nil
}

func dropMissing(outcomes, predictions []float64) ([]float64, []float64) {
	ys := make([]float64, 0, len(outcomes))
	ps := make([]float64, 0, len(predictions))
	for i, p := range predictions {
		if !models.IsDefined(p) || !models.IsDefined(outcomes[i]) {
			continue
		}
		ys = append(ys, outcomes[i])
		ps = append(ps, p)
	}
	return ys, ps
}

// quantileEdges returns the distinct linear-interpolated quantiles at 0, 1/n, ..., 1
func quantileEdges(values []float64, nBins int) []float64 {
	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)

	edges := make([]float64, 0, nBins+1)
	for i := 0; i <= nBins; i++ {
		q := Quantile(sorted, float64(i)/float64(nBins))
		if len(edges) > 0 && q == edges[len(edges)-1] {
			continue
		}
		edges = append(edges, q)
	}
	return edges
}

// uniformEdges returns nBins+1 equally spaced edges over the observed range
func uniformEdges(values []float64, nBins int) []float64 {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	degenerate := lo == hi
	if degenerate {
		if lo != 0 {
			lo -= rangePadding * math.Abs(lo)
			hi += rangePadding * math.Abs(hi)
		} else {
			lo -= rangePadding
			hi += rangePadding
		}
	}

	edges := make([]float64, nBins+1)
	width := hi - lo
	for i := range edges {
		edges[i] = lo + width*float64(i)/float64(nBins)
	}
	edges[nBins] = hi
	if !degenerate {
		edges[0] -= width * rangePadding
	}
	return edges
}

// Quantile returns the q-th quantile of an ascending slice, interpolating
// linearly between the closest ranks.
func Quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}
	h := q * float64(n-1)
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= n {
		return sorted[n-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

func aggregate(ys, ps, edges []float64, includeLowest bool) []models.CalibrationBin {
	nBins := len(edges) - 1
	counts := make([]int, nBins)
	sumP := make([]float64, nBins)
	sumY := make([]float64, nBins)

	for i, p := range ps {
		idx := binIndex(edges, p, includeLowest)
		if idx < 0 {
			continue
		}
		counts[idx]++
		sumP[idx] += p
		sumY[idx] += ys[i]
	}

	labels := intervalLabels(edges, includeLowest)
	bins := make([]models.CalibrationBin, nBins)
	for i := range bins {
		bin := models.CalibrationBin{
			Index:             i,
			Interval:          labels[i],
			Left:              edges[i],
			Right:             edges[i+1],
			Count:             counts[i],
			MeanPredicted:     models.Undefined(),
			ObservedFrequency: models.Undefined(),
		}
		if counts[i] > 0 {
			bin.MeanPredicted = sumP[i] / float64(counts[i])
			bin.ObservedFrequency = sumY[i] / float64(counts[i])
		}
		bins[i] = bin
	}
	return bins
}

// binIndex locates the right-closed bin (edges[i], edges[i+1]] holding v
func binIndex(edges []float64, v float64, includeLowest bool) int {
	idx := sort.SearchFloat64s(edges, v)
	if idx == 0 {
		if includeLowest && v == edges[0] {
			return 0
		}
		return -1
	}
	if idx >= len(edges) {
		return -1
	}
	return idx - 1
}

func singleBin(ys, ps []float64) models.CalibrationBin {
	sumP, sumY := 0.0, 0.0
	for i, p := range ps {
		sumP += p
		sumY += ys[i]
	}
	v := ps[0]
	n := float64(len(ps))
	return models.CalibrationBin{
		Index:             0,
		Interval:          "[" + formatEdge(v) + ", " + formatEdge(v) + "]",
		Left:              v,
		Right:             v,
		Count:             len(ps),
		MeanPredicted:     sumP / n,
		ObservedFrequency: sumY / n,
	}
}
