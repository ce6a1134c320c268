// Package staking replays a sequence of settled predictions against a
// bankroll under a staking rule.
package staking

import (
	"fmt"
	"math"

	"github.com/yourusername/prop-calibrator/internal/models"
	"github.com/yourusername/prop-calibrator/internal/odds"
)

// StartingBankroll is the bankroll every simulation starts from
const StartingBankroll = 1.0

// bankroll tracks the running balance of a simulation
type bankroll struct {
	balance float64
}

func (b *bankroll) stake(strategy Strategy, fixedStake, p, decimalOdds float64) float64 {
	var s float64
	switch strategy {
	case StrategyFixed:
		s = fixedStake
	case StrategyKelly:
		s = b.balance * odds.KellyFraction(p, decimalOdds-1)
	}
	return math.Min(s, b.balance)
}

func (b *bankroll) settle(stake, decimalOdds float64, won bool) {
	if won {
		b.balance += stake * (decimalOdds - 1)
		return
	}
	b.balance -= stake
}

func (b *bankroll) ruined() bool {
	return b.balance <= 0
}

// SimulateBankroll settles the observations in order at a flat decimal payout
// and returns the bankroll after each bet. Observations without a prediction
// or an outcome are skipped. The trajectory ends at the first bet that leaves
// the bankroll at or below zero.
func SimulateBankroll(observations []models.Observation, strategy Strategy, fixedStake, decimalOdds float64) (models.StakingTrajectory, error) {
	if strategy != StrategyFixed && strategy != StrategyKelly {
		return nil, fmt.Errorf("simulate bankroll with %s: %w", strategy, models.ErrUnknownStrategy)
	}
	if fixedStake < 0 || math.IsNaN(fixedStake) {
		return nil, fmt.Errorf("simulate bankroll with stake %v: %w", fixedStake, models.ErrInvalidStake)
	}
	if !(decimalOdds > 1) {
		return nil, fmt.Errorf("simulate bankroll at odds %v: %w", decimalOdds, models.ErrInvalidOdds)
	}

	b := &bankroll{balance: StartingBankroll}
	trajectory := make(models.StakingTrajectory, 0, len(observations))
	for _, obs := range observations {
		if !obs.HasPrediction() || !obs.HasOutcome() {
			continue
		}
		s := b.stake(strategy, fixedStake, obs.PredictedProbability, decimalOdds)
		b.settle(s, decimalOdds, obs.Won())
		trajectory = append(trajectory, b.balance)
		if b.ruined() {
			break
		}
	}
	return trajectory, nil
}
