package backtest

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/prop-calibrator/internal/calibration"
	"github.com/yourusername/prop-calibrator/internal/models"
	"github.com/yourusername/prop-calibrator/internal/odds"
	"github.com/yourusername/prop-calibrator/internal/provider"
	"github.com/yourusername/prop-calibrator/internal/staking"
)

// Result is the full outcome of one backtest run
type Result struct {
	RunID        uuid.UUID                       `json:"run_id"`
	Market       string                          `json:"market"`
	RunDate      time.Time                       `json:"run_date"`
	Observations int                             `json:"observations"`
	Metrics      models.MetricsReport            `json:"metrics"`
	Calibration  []models.CalibrationBin         `json:"calibration"`
	EVSummary    odds.EVSummary                  `json:"ev_summary"`
	KellyMedian  float64                         `json:"kelly_median"`
	Bootstrap    *Intervals                      `json:"bootstrap,omitempty"`
	Providers    models.ProviderComparisonReport `json:"provider_metrics,omitempty"`
	Rankings     []provider.Ranking              `json:"provider_ranking,omitempty"`
	Staking      Staking                         `json:"staking"`
	MonteCarlo   *MonteCarloResult               `json:"monte_carlo,omitempty"`
	WalkForward  *WalkForwardResult              `json:"walk_forward,omitempty"`
	Duration     time.Duration                   `json:"-"`
}

// Intervals holds the bootstrap confidence intervals of a run
type Intervals struct {
	MeanEV models.BootstrapResult `json:"mean_ev"`
	Brier  models.BootstrapResult `json:"brier"`
}

// Staking compares the two staking rules over the same observations
type Staking struct {
	Fixed StakingSummary `json:"fixed"`
	Kelly StakingSummary `json:"kelly"`
}

// StakingSummary digests one bankroll trajectory
type StakingSummary struct {
	Strategy      string                   `json:"strategy"`
	Bets          int                      `json:"bets"`
	FinalBankroll float64                  `json:"final_bankroll"`
	MaxDrawdown   float64                  `json:"max_drawdown"`
	Ruined        bool                     `json:"ruined"`
	Trajectory    models.StakingTrajectory `json:"trajectory"`
}

// MarshalJSON renders an undefined Kelly median as null
func (r Result) MarshalJSON() ([]byte, error) {
	type alias Result
	calibrationBins := r.Calibration
	if calibrationBins == nil {
		calibrationBins = []models.CalibrationBin{}
	}
	return json.Marshal(struct {
		alias
		Calibration []models.CalibrationBin `json:"calibration"`
		KellyMedian *float64                `json:"kelly_median"`
	}{
		alias:       alias(r),
		Calibration: calibrationBins,
		KellyMedian: models.Nullable(r.KellyMedian),
	})
}

func summarizeTrajectory(strategy staking.Strategy, trajectory models.StakingTrajectory) StakingSummary {
	if trajectory == nil {
		trajectory = models.StakingTrajectory{}
	}
	return StakingSummary{
		Strategy:      strategy.String(),
		Bets:          len(trajectory),
		FinalBankroll: trajectory.Final(staking.StartingBankroll),
		MaxDrawdown:   trajectory.MaxDrawdown(staking.StartingBankroll),
		Ruined:        trajectory.Ruined(),
		Trajectory:    trajectory,
	}
}

// medianKelly is the median suggested Kelly fraction over the observations
// with a usable prediction, NaN when there are none
func medianKelly(predictions []float64, decimalOdds float64) float64 {
	fractions := make([]float64, 0, len(predictions))
	for _, p := range predictions {
		if models.IsDefined(p) {
			fractions = append(fractions, odds.KellyFraction(p, decimalOdds-1))
		}
	}
	sort.Float64s(fractions)
	return calibration.Quantile(fractions, 0.5)
}
