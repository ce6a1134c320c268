package backtest

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/yourusername/prop-calibrator/internal/calibration"
	"github.com/yourusername/prop-calibrator/internal/models"
	"github.com/yourusername/prop-calibrator/internal/staking"
)

// DefaultMonteCarloIterations is used when MonteCarloConfig.Iterations is not positive
const DefaultMonteCarloIterations = 1000

// MonteCarloConfig configures the bankroll simulation under the predictions
type MonteCarloConfig struct {
	Iterations int
	Seed       int64
}

// MonteCarloResult summarizes the distribution of final bankrolls obtained
// when every outcome is redrawn from its predicted probability. It answers
// how the staking rule would fare if the predictions were perfectly calibrated.
type MonteCarloResult struct {
	Iterations          int                `json:"iterations"`
	Strategy            string             `json:"strategy"`
	MeanFinalBankroll   float64            `json:"mean_final_bankroll"`
	StdFinalBankroll    float64            `json:"std_final_bankroll"`
	ProbabilityOfProfit float64            `json:"probability_of_profit"`
	ProbabilityOfRuin   float64            `json:"probability_of_ruin"`
	Percentiles         map[string]float64 `json:"percentiles"`
	Distribution        []float64          `json:"-"`
}

// RunMonteCarlo replays the observations cfg.Iterations times, each time
// drawing the outcomes as Bernoulli(p) and settling them with the staking
// rule. Observations without a prediction are skipped.
func RunMonteCarlo(ctx context.Context, observations []models.Observation, strategy staking.Strategy, fixedStake, decimalOdds float64, cfg MonteCarloConfig) (MonteCarloResult, error) {
	if cfg.Iterations <= 0 {
		cfg.Iterations = DefaultMonteCarloIterations
	}

	predicted := make([]models.Observation, 0, len(observations))
	for _, obs := range observations {
		if obs.HasPrediction() {
			predicted = append(predicted, obs)
		}
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	distribution := make([]float64, cfg.Iterations)
	drawn := make([]models.Observation, len(predicted))

	for i := 0; i < cfg.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return MonteCarloResult{}, err
		}
		for j, obs := range predicted {
			drawn[j] = obs
			drawn[j].Outcome = 0
			if rng.Float64() < obs.PredictedProbability {
				drawn[j].Outcome = 1
			}
		}
		trajectory, err := staking.SimulateBankroll(drawn, strategy, fixedStake, decimalOdds)
		if err != nil {
			return MonteCarloResult{}, fmt.Errorf("monte carlo iteration %d: %w", i, err)
		}
		distribution[i] = trajectory.Final(staking.StartingBankroll)
	}

	mean, std := stat.MeanStdDev(distribution, nil)
	if cfg.Iterations == 1 {
		std = 0
	}

	return MonteCarloResult{
		Iterations:          cfg.Iterations,
		Strategy:            strategy.String(),
		MeanFinalBankroll:   mean,
		StdFinalBankroll:    std,
		ProbabilityOfProfit: probabilityAbove(distribution, staking.StartingBankroll),
		ProbabilityOfRuin:   probabilityAtOrBelow(distribution, 0),
		Percentiles:         percentiles(distribution, []float64{0.05, 0.5, 0.95}),
		Distribution:        distribution,
	}, nil
}

func percentiles(values []float64, levels []float64) map[string]float64 {
	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)

	results := make(map[string]float64, len(levels))
	for _, level := range levels {
		results[formatPercent(level)] = calibration.Quantile(sorted, level)
	}
	return results
}

func probabilityAbove(values []float64, threshold float64) float64 {
	if len(values) == 0 {
		return 0
	}
	count := 0
	for _, v := range values {
		if v > threshold {
			count++
		}
	}
	return float64(count) / float64(len(values))
}

func probabilityAtOrBelow(values []float64, threshold float64) float64 {
	if len(values) == 0 {
		return 0
	}
	count := 0
	for _, v := range values {
		if v <= threshold {
			count++
		}
	}
	return float64(count) / float64(len(values))
}

func formatPercent(level float64) string {
	return fmt.Sprintf("p%.0f", level*100)
}
