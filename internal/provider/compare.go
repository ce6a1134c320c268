// Package provider compares the calibration of predictions coming from
// independent data providers.
package provider

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/yourusername/prop-calibrator/internal/calibration"
	"github.com/yourusername/prop-calibrator/internal/models"
	"github.com/yourusername/prop-calibrator/internal/scoring"
)

// Compare groups the observations by provider label and scores each group.
// Observations without a label are ignored; with no labels at all the report
// is empty.
func Compare(observations []models.Observation) (models.ProviderComparisonReport, error) {
	groups := make(map[string][]models.Observation)
	for _, obs := range observations {
		if !obs.HasProvider() {
			continue
		}
		groups[obs.Provider] = append(groups[obs.Provider], obs)
	}

	report := make(models.ProviderComparisonReport, len(groups))
	for name, group := range groups {
		summary, err := summarize(group)
		if err != nil {
			return nil, fmt.Errorf("provider %q: %w", name, err)
		}
		report[name] = summary
	}
	return report, nil
}

func summarize(group []models.Observation) (models.ProviderSummary, error) {
	outcomes, predictions := models.Columns(group)

	brier, err := scoring.Brier(outcomes, predictions)
	if err != nil {
		return models.ProviderSummary{}, err
	}
	bins, err := calibration.Bin(outcomes, predictions, calibration.DefaultBins, calibration.StrategyQuantile)
	if err != nil {
		return models.ProviderSummary{}, err
	}

	return models.ProviderSummary{
		BrierScore:   brier,
		NPredictions: len(group),
		Calibration:  bins,
	}, nil
}

// Ranking is one row of a provider leaderboard
type Ranking struct {
	Provider string
	models.ProviderSummary
}

// MarshalJSON flattens the provider name into the summary object
func (r Ranking) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Provider     string                  `json:"provider"`
		BrierScore   *float64                `json:"brier_score"`
		NPredictions int                     `json:"n_predictions"`
		Calibration  []models.CalibrationBin `json:"calibration"`
	}{
		Provider:     r.Provider,
		BrierScore:   models.Nullable(r.BrierScore),
		NPredictions: r.NPredictions,
		Calibration:  nonNilBins(r.Calibration),
	})
}

func nonNilBins(bins []models.CalibrationBin) []models.CalibrationBin {
	if bins == nil {
		return []models.CalibrationBin{}
	}
	return bins
}

// Rank orders providers by Brier score, best first. Providers with an
// undefined score go last; ties break on name.
func Rank(report models.ProviderComparisonReport) []Ranking {
	rankings := make([]Ranking, 0, len(report))
	for name, summary := range report {
		rankings = append(rankings, Ranking{Provider: name, ProviderSummary: summary})
	}
	sort.Slice(rankings, func(i, j int) bool {
		a, b := rankings[i], rankings[j]
		da, db := models.IsDefined(a.BrierScore), models.IsDefined(b.BrierScore)
		if da != db {
			return da
		}
		if da && a.BrierScore != b.BrierScore {
			return a.BrierScore < b.BrierScore
		}
		return a.Provider < b.Provider
	})
	return rankings
}
