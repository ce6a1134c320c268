package odds

import "github.com/yourusername/prop-calibrator/internal/models"

// JointProbabilityIndependent multiplies the leg hit probabilities. Legs are
// assumed independent; correlated legs are not adjusted for.
func JointProbabilityIndependent(probabilities []float64) float64 {
	joint := 1.0
	for _, p := range probabilities {
		joint *= p
	}
	return joint
}

// CombinedDecimalOdds multiplies the decimal odds of every leg
func CombinedDecimalOdds(decimals []float64) float64 {
	combined := 1.0
	for _, d := range decimals {
		combined *= d
	}
	return combined
}

// Leg is one selection of a multi-leg entry
type Leg struct {
	Player   string  `json:"player,omitempty"`
	Market   string  `json:"market,omitempty"`
	HitProb  float64 `json:"p_hit"`
	American float64 `json:"odds"`
}

// ParlayValuation is the priced result of a multi-leg entry
type ParlayValuation struct {
	NumLegs             int     `json:"num_legs"`
	JointProbability    float64 `json:"joint_probability_independent"`
	JointProbabilityPct float64 `json:"joint_probability_pct"`
	CombinedDecimalOdds float64 `json:"combined_decimal_odds"`
	CombinedPayout      float64 `json:"combined_payout"`
	CombinedEV          float64 `json:"combined_ev"`
	CombinedEVPct       float64 `json:"combined_ev_pct"`
	CombinedKelly       float64 `json:"combined_kelly_fraction"`
	CombinedKellyPct    float64 `json:"combined_kelly_pct"`
}

// ValueParlay prices a multi-leg entry under the independence assumption
func ValueParlay(legs []Leg) (ParlayValuation, error) {
	if len(legs) == 0 {
		return ParlayValuation{}, models.ErrNoLegs
	}
	probabilities := make([]float64, len(legs))
	decimals := make([]float64, len(legs))
	for i, leg := range legs {
		probabilities[i] = leg.HitProb
		decimals[i] = ToDecimal(leg.American)
	}

	joint := JointProbabilityIndependent(probabilities)
	combined := CombinedDecimalOdds(decimals)
	payout := combined - 1
	ev := ExpectedValue(joint, combined)
	kelly := KellyFraction(joint, payout)

	return ParlayValuation{
		NumLegs:             len(legs),
		JointProbability:    round(joint, 4),
		JointProbabilityPct: round(joint*100, 2),
		CombinedDecimalOdds: round(combined, 2),
		CombinedPayout:      round(payout, 2),
		CombinedEV:          round(ev, 4),
		CombinedEVPct:       round(ev*100, 2),
		CombinedKelly:       round(kelly, 4),
		CombinedKellyPct:    round(kelly*100, 2),
	}, nil
}
