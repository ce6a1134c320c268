package odds

import (
	"math"

	"github.com/yourusername/prop-calibrator/internal/models"
)

// ExpectedValue is the expected profit per unit staked on a binary bet
func ExpectedValue(p, decimal float64) float64 {
	return p*(decimal-1) - (1 - p)
}

// KellyFraction returns the bankroll share to stake for hit probability p and
// net payout b. Negative edges are floored at zero and b == 0 returns zero.
func KellyFraction(p, b float64) float64 {
	if b == 0 {
		return 0
	}
	f := (p*(b+1) - 1) / b
	if f < 0 || math.IsNaN(f) {
		return 0
	}
	return f
}

// EVSummary aggregates the expected value of a flat-payout betting sample
type EVSummary struct {
	N         int     `json:"n"`
	TotalEV   float64 `json:"total_ev"`
	ROIPerBet float64 `json:"roi_per_bet"`
}

// SummarizeEV sums the expected value of every observation with both a
// prediction and an outcome at the given decimal payout.
func SummarizeEV(observations []models.Observation, decimal float64) EVSummary {
	var summary EVSummary
	for _, obs := range observations {
		if !obs.HasPrediction() || !obs.HasOutcome() {
			continue
		}
		summary.N++
		summary.TotalEV += ExpectedValue(obs.PredictedProbability, decimal)
	}
	if summary.N > 0 {
		summary.ROIPerBet = summary.TotalEV / float64(summary.N)
	}
	return summary
}

// MeanExpectedValue returns a statistic computing the mean per-bet expected
// value of the predictions at a fixed decimal payout. It ignores outcomes.
func MeanExpectedValue(decimal float64) func(outcomes, predictions []float64) (float64, error) {
	return func(_, predictions []float64) (float64, error) {
		if len(predictions) == 0 {
			return models.Undefined(), nil
		}
		sum := 0.0
		for _, p := range predictions {
			sum += ExpectedValue(p, decimal)
		}
		return sum / float64(len(predictions)), nil
	}
}
