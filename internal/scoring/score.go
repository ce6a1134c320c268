// Package scoring computes the discrimination, calibration and correlation
// scores of predicted hit probabilities against realized 0/1 outcomes.
package scoring

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/yourusername/prop-calibrator/internal/calibration"
	"github.com/yourusername/prop-calibrator/internal/models"
)

// logLossEpsilon keeps log-loss finite for predictions of exactly 0 or 1
const logLossEpsilon = 1e-15

// Score computes the full metrics bundle. Pairs with a missing prediction are
// dropped first; when none remain the report has N == 0 and nothing else set.
func Score(outcomes, predictions []float64) (models.MetricsReport, error) {
	ys, ps, err := usable(outcomes, predictions)
	if err != nil {
		return models.MetricsReport{}, err
	}

	report := models.EmptyMetricsReport()
	report.N = len(ps)
	if report.N == 0 {
		return report, nil
	}

	report.Brier = brier(ys, ps)
	report.LogLoss = logLoss(ys, ps)
	report.PearsonR, report.PearsonP = pearson(ys, ps)
	report.RMSE = math.Sqrt(report.Brier)
	report.MAE = meanAbsoluteError(ys, ps)
	report.AUC = rocAUC(ys, ps)
	report.MeanPred = stat.Mean(ps, nil)
	report.MeanOutcome = stat.Mean(ys, nil)

	ece, err := calibration.ExpectedCalibrationError(ys, ps)
	if err != nil {
		return models.MetricsReport{}, err
	}
	report.ECE = ece

	return report, nil
}

// Brier returns the mean squared error between predictions and outcomes, NaN
// when no usable prediction remains.
func Brier(outcomes, predictions []float64) (float64, error) {
	ys, ps, err := usable(outcomes, predictions)
	if err != nil {
		return math.NaN(), err
	}
	if len(ps) == 0 {
		return math.NaN(), nil
	}
	return brier(ys, ps), nil
}

// AUC returns the area under the ROC curve, NaN when both classes are not present
func AUC(outcomes, predictions []float64) (float64, error) {
	ys, ps, err := usable(outcomes, predictions)
	if err != nil {
		return math.NaN(), err
	}
	return rocAUC(ys, ps), nil
}

func usable(outcomes, predictions []float64) ([]float64, []float64, error) {
	if len(outcomes) != len(predictions) {
		return nil, nil, fmt.Errorf("score (%d outcomes, %d predictions): %w", len(outcomes), len(predictions), models.ErrLengthMismatch)
	}
	ys := make([]float64, 0, len(outcomes))
	ps := make([]float64, 0, len(predictions))
	for i, p := range predictions {
		if !models.IsDefined(p) || !models.IsDefined(outcomes[i]) {
			continue
		}
		ys = append(ys, outcomes[i])
		ps = append(ps, p)
	}
	return ys, ps, nil
}

func brier(ys, ps []float64) float64 {
	sum := 0.0
	for i, p := range ps {
		d := p - ys[i]
		sum += d * d
	}
	return sum / float64(len(ps))
}

func logLoss(ys, ps []float64) float64 {
	sum := 0.0
	for i, p := range ps {
		p = math.Min(math.Max(p, logLossEpsilon), 1-logLossEpsilon)
		sum += ys[i]*math.Log(p) + (1-ys[i])*math.Log(1-p)
	}
	return -sum / float64(len(ps))
}

func meanAbsoluteError(ys, ps []float64) float64 {
	sum := 0.0
	for i, p := range ps {
		sum += math.Abs(p - ys[i])
	}
	return sum / float64(len(ps))
}
