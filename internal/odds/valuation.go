package odds

import (
	"math"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// projectionSpread is the standard deviation of the hit model as a share
	// of the projection
	projectionSpread = 0.15
	minHitProb       = 0.05
	maxHitProb       = 0.95
	// calibrationWeight scales a provider's Brier score into a shrink factor
	calibrationWeight = 0.1
)

// Valuation is the priced result of a single bet
type Valuation struct {
	HitProb        float64 `json:"p_hit"`
	HitProbPct     float64 `json:"p_hit_pct"`
	ImpliedProb    float64 `json:"implied_prob"`
	ImpliedProbPct float64 `json:"implied_prob_pct"`
	American       float64 `json:"odds"`
	DecimalOdds    float64 `json:"decimal_odds"`
	EV             float64 `json:"ev"`
	EVPct          float64 `json:"ev_pct"`
	Edge           float64 `json:"edge"`
	KellyFraction  float64 `json:"kelly_fraction"`
	KellyPct       float64 `json:"kelly_pct"`
}

// Value prices a bet with hit probability p at the given American odds.
// Fractions are rounded to 4 places and percentages to 2.
func Value(p, american float64) Valuation {
	d := ToDecimal(american)
	implied := ImpliedProbability(american)
	ev := ExpectedValue(p, d)
	kelly := KellyFraction(p, d-1)

	return Valuation{
		HitProb:        round(p, 4),
		HitProbPct:     round(p*100, 2),
		ImpliedProb:    round(implied, 4),
		ImpliedProbPct: round(implied*100, 2),
		American:       american,
		DecimalOdds:    round(d, 4),
		EV:             round(ev, 4),
		EVPct:          round(ev*100, 2),
		Edge:           round(p-implied, 4),
		KellyFraction:  round(kelly, 4),
		KellyPct:       round(kelly*100, 2),
	}
}

// EstimateHitProbability turns a line projection and a point estimate into a
// probability that the outcome clears the line. The estimate is modelled as
// normal around the projection with a spread proportional to it; the result
// is clipped to [0.05, 0.95]. A non-positive projection gives 0.5.
func EstimateHitProbability(projection, estimate float64) float64 {
	if !(projection > 0) {
		return 0.5
	}
	dist := distuv.Normal{Mu: estimate - projection, Sigma: projection * projectionSpread}
	return clip(dist.Survival(0))
}

// AdjustForCalibration shrinks a hit probability by the provider's Brier
// score. A NaN score leaves p unchanged.
func AdjustForCalibration(p, brier float64) float64 {
	if math.IsNaN(brier) {
		return p
	}
	return clip(p * (1 - brier*calibrationWeight))
}

func clip(p float64) float64 {
	return math.Max(minHitProb, math.Min(maxHitProb, p))
}

// round rounds half away from zero at the given number of places. Non-finite
// values pass through.
func round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}
