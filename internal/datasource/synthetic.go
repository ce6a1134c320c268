package datasource

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/yourusername/prop-calibrator/internal/models"
)

const (
	latentSlope     = 0.5
	predictionNoise = 0.08
	minSynthetic    = 0.001
	maxSynthetic    = 0.999
	syntheticOdds   = -110.0
)

var syntheticStart = time.Date(2023, time.September, 1, 0, 0, 0, 0, time.UTC)

// Synthetic generates n observations with a known calibration profile. A
// latent normal feature sets the true hit probability through a logistic
// link; the prediction is that probability plus gaussian noise and the
// outcome is a Bernoulli draw from it. Providers are assigned round-robin.
func Synthetic(n int, seed int64, market string, providers []string) []models.Observation {
	rng := rand.New(rand.NewSource(seed))
	observations := make([]models.Observation, n)
	for i := range observations {
		trueP := 1 / (1 + math.Exp(-latentSlope*rng.NormFloat64()))
		p := trueP + rng.NormFloat64()*predictionNoise
		p = math.Max(minSynthetic, math.Min(maxSynthetic, p))

		outcome := 0.0
		if rng.Float64() < trueP {
			outcome = 1
		}

		odds := syntheticOdds
		obs := models.Observation{
			Date:                 syntheticStart.AddDate(0, 0, i),
			Market:               market,
			PredictedProbability: p,
			Outcome:              outcome,
			Odds:                 &odds,
		}
		if len(providers) > 0 {
			obs.Provider = providers[i%len(providers)]
		}
		observations[i] = obs
	}
	return observations
}

// SyntheticSource serves a generated dataset
type SyntheticSource struct {
	rows      int
	seed      int64
	market    string
	providers []string
}

// NewSyntheticSource creates a generated source
func NewSyntheticSource(rows int, seed int64, market string, providers []string) *SyntheticSource {
	return &SyntheticSource{rows: rows, seed: seed, market: market, providers: providers}
}

// Load implements Source
func (s *SyntheticSource) Load(ctx context.Context) ([]models.Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Synthetic(s.rows, s.seed, s.market, s.providers), nil
}

// Name implements Source
func (s *SyntheticSource) Name() string {
	return "synthetic"
}
