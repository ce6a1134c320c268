package calibration

import (
	"math"

	"github.com/yourusername/prop-calibrator/internal/models"
)

// ExpectedCalibrationError is the count-weighted mean absolute gap between the
// predicted and observed probability over ten equal-width bins. It is NaN when
// no usable prediction remains.
func ExpectedCalibrationError(outcomes, predictions []float64) (float64, error) {
	bins, err := Bin(outcomes, predictions, ECEBins, StrategyUniform)
	if err != nil {
		return math.NaN(), err
	}
	return WeightedGap(bins), nil
}

// WeightedGap averages the per-bin calibration gaps weighted by bin count.
// Empty bins carry no weight.
func WeightedGap(bins []models.CalibrationBin) float64 {
	total := 0
	for _, b := range bins {
		total += b.Count
	}
	if total == 0 {
		return math.NaN()
	}
	ece := 0.0
	for _, b := range bins {
		if b.Count == 0 {
			continue
		}
		ece += float64(b.Count) / float64(total) * b.Gap()
	}
	return ece
}
