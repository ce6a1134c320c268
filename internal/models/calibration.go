package models

import (
	"encoding/json"
	"math"
)

// CalibrationBin compares the mean prediction with the observed hit rate for
// the predictions that fell into one probability interval. Means of an empty
// bin are undefined (NaN).
type CalibrationBin struct {
	Index             int     `json:"bin_index"`
	Interval          string  `json:"bin"`
	Left              float64 `json:"-"`
	Right             float64 `json:"-"`
	Count             int     `json:"count"`
	MeanPredicted     float64 `json:"mean_predicted"`
	ObservedFrequency float64 `json:"observed_frequency"`
}

// Gap returns the absolute calibration gap of the bin, NaN when empty
func (b CalibrationBin) Gap() float64 {
	return math.Abs(b.MeanPredicted - b.ObservedFrequency)
}

// MarshalJSON renders undefined means as null
func (b CalibrationBin) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Index             int      `json:"bin_index"`
		Interval          string   `json:"bin"`
		Count             int      `json:"count"`
		MeanPredicted     *float64 `json:"mean_predicted"`
		ObservedFrequency *float64 `json:"observed_frequency"`
	}{
		Index:             b.Index,
		Interval:          b.Interval,
		Count:             b.Count,
		MeanPredicted:     Nullable(b.MeanPredicted),
		ObservedFrequency: Nullable(b.ObservedFrequency),
	})
}

// ProviderSummary is the calibration digest for one data provider
type ProviderSummary struct {
	BrierScore   float64          `json:"brier_score"`
	NPredictions int              `json:"n_predictions"`
	Calibration  []CalibrationBin `json:"calibration"`
}

// MarshalJSON renders an undefined Brier score as null
func (s ProviderSummary) MarshalJSON() ([]byte, error) {
	calibration := s.Calibration
	if calibration == nil {
		calibration = []CalibrationBin{}
	}
	return json.Marshal(struct {
		BrierScore   *float64         `json:"brier_score"`
		NPredictions int              `json:"n_predictions"`
		Calibration  []CalibrationBin `json:"calibration"`
	}{
		BrierScore:   Nullable(s.BrierScore),
		NPredictions: s.NPredictions,
		Calibration:  calibration,
	})
}

// ProviderComparisonReport maps provider label to its calibration digest
type ProviderComparisonReport map[string]ProviderSummary

// TotalPredictions sums the prediction counts across providers
func (r ProviderComparisonReport) TotalPredictions() int {
	total := 0
	for _, summary := range r {
		total += summary.NPredictions
	}
	return total
}

// Nullable converts NaN and infinities to nil for JSON output
func Nullable(v float64) *float64 {
	if !IsDefined(v) {
		return nil
	}
	return &v
}
