package models

import (
	"math"
	"time"
)

// Observation is a single graded prediction: a predicted hit probability and
// the realized 0/1 outcome, optionally tagged with the provider that priced it.
type Observation struct {
	Date                 time.Time `json:"date,omitempty"`
	Market               string    `json:"market,omitempty"`
	Provider             string    `json:"provider,omitempty"`
	PredictedProbability float64   `json:"p_hit"`
	Outcome              float64   `json:"outcome"`
	Odds                 *float64  `json:"odds,omitempty"`
	Stake                *float64  `json:"stake,omitempty"`
}

// HasPrediction reports whether the predicted probability is usable
func (o Observation) HasPrediction() bool {
	return IsDefined(o.PredictedProbability)
}

// HasOutcome reports whether the outcome is usable
func (o Observation) HasOutcome() bool {
	return IsDefined(o.Outcome)
}

// Won reports whether the observation settled as a hit
func (o Observation) Won() bool {
	return o.Outcome == 1
}

// HasProvider reports whether the observation carries a provider label
func (o Observation) HasProvider() bool {
	return o.Provider != ""
}

// Columns splits observations into parallel outcome and prediction slices.
func Columns(observations []Observation) (outcomes, predictions []float64) {
	outcomes = make([]float64, len(observations))
	predictions = make([]float64, len(observations))
	for i, obs := range observations {
		outcomes[i] = obs.Outcome
		predictions[i] = obs.PredictedProbability
	}
	return outcomes, predictions
}

// IsDefined reports whether v is a finite number
func IsDefined(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Undefined is the sentinel used for statistics that cannot be computed
func Undefined() float64 {
	return math.NaN()
}
