package staking

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/prop-calibrator/internal/models"
)

func observations(pairs ...float64) []models.Observation {
	obs := make([]models.Observation, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		obs = append(obs, models.Observation{PredictedProbability: pairs[i], Outcome: pairs[i+1]})
	}
	return obs
}

func TestSimulateBankrollFixed(t *testing.T) {
	obs := observations(0.6, 1, 0.6, 0, 0.6, 1)

	trajectory, err := SimulateBankroll(obs, StrategyFixed, 0.1, 2.0)
	require.NoError(t, err)

	require.Len(t, trajectory, 3)
	assert.InDelta(t, 1.1, trajectory[0], 1e-12)
	assert.InDelta(t, 1.0, trajectory[1], 1e-12)
	assert.InDelta(t, 1.1, trajectory[2], 1e-12)
	assert.False(t, trajectory.Ruined())
}

func TestSimulateBankrollKelly(t *testing.T) {
	obs := observations(0.6, 1, 0.6, 0, 0.4, 1)

	trajectory, err := SimulateBankroll(obs, StrategyKelly, 0, 2.0)
	require.NoError(t, err)

	require.Len(t, trajectory, 3)
	// kelly at p=0.6, b=1 is 0.2 of bankroll
	assert.InDelta(t, 1.2, trajectory[0], 1e-12)
	assert.InDelta(t, 0.96, trajectory[1], 1e-12)
	// no edge at p=0.4, nothing staked
	assert.InDelta(t, 0.96, trajectory[2], 1e-12)
}

func TestSimulateBankrollStopsAtRuin(t *testing.T) {
	obs := observations(0.9, 0, 0.9, 0, 0.9, 1, 0.9, 1)

	trajectory, err := SimulateBankroll(obs, StrategyFixed, 0.6, 2.0)
	require.NoError(t, err)

	// stake is capped at the remaining 0.4 on the second loss
	require.Len(t, trajectory, 2)
	assert.InDelta(t, 0.4, trajectory[0], 1e-12)
	assert.Equal(t, 0.0, trajectory[1])
	assert.True(t, trajectory.Ruined())
}

func TestSimulateBankrollSkipsMissing(t *testing.T) {
	obs := observations(math.NaN(), 1, 0.6, math.NaN(), 0.6, 1)

	trajectory, err := SimulateBankroll(obs, StrategyFixed, 0.5, 2.0)
	require.NoError(t, err)
	assert.Equal(t, models.StakingTrajectory{1.5}, trajectory)
}

func TestSimulateBankrollBounds(t *testing.T) {
	obs := make([]models.Observation, 0, 200)
	for i := 0; i < 200; i++ {
		outcome := 0.0
		if i%3 == 0 {
			outcome = 1
		}
		obs = append(obs, models.Observation{PredictedProbability: 0.7, Outcome: outcome})
	}

	for _, strategy := range []Strategy{StrategyFixed, StrategyKelly} {
		trajectory, err := SimulateBankroll(obs, strategy, 0.25, 1.909)
		require.NoError(t, err)

		assert.LessOrEqual(t, len(trajectory), len(obs))
		if !trajectory.Ruined() {
			assert.Len(t, trajectory, len(obs), strategy.String())
		}
		for _, v := range trajectory {
			assert.GreaterOrEqual(t, v, 0.0, strategy.String())
		}
	}
}

func TestSimulateBankrollContract(t *testing.T) {
	obs := observations(0.6, 1)

	_, err := SimulateBankroll(obs, Strategy(7), 1, 2)
	assert.ErrorIs(t, err, models.ErrUnknownStrategy)

	_, err = SimulateBankroll(obs, StrategyFixed, -1, 2)
	assert.ErrorIs(t, err, models.ErrInvalidStake)

	_, err = SimulateBankroll(obs, StrategyFixed, 1, 1)
	assert.ErrorIs(t, err, models.ErrInvalidOdds)
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("Kelly")
	require.NoError(t, err)
	assert.Equal(t, StrategyKelly, s)

	s, err = ParseStrategy(" fixed ")
	require.NoError(t, err)
	assert.Equal(t, StrategyFixed, s)

	_, err = ParseStrategy("martingale")
	assert.ErrorIs(t, err, models.ErrUnknownStrategy)
}
