package provider

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/prop-calibrator/internal/models"
)

func TestCompareSingleProvider(t *testing.T) {
	obs := []models.Observation{
		{Provider: "DraftKings", PredictedProbability: 0.7, Outcome: 1},
		{Provider: "DraftKings", PredictedProbability: 0.4, Outcome: 0},
		{Provider: "DraftKings", PredictedProbability: 0.55, Outcome: 1},
	}

	report, err := Compare(obs)
	require.NoError(t, err)

	require.Len(t, report, 1)
	summary := report["DraftKings"]
	assert.Equal(t, 3, summary.NPredictions)
	assert.InDelta(t, (0.09+0.16+0.2025)/3, summary.BrierScore, 1e-12)

	total := 0
	for _, bin := range summary.Calibration {
		total += bin.Count
	}
	assert.Equal(t, 3, total)
}

func TestCompareGroupsAndIgnoresUnlabelled(t *testing.T) {
	obs := []models.Observation{
		{Provider: "A", PredictedProbability: 0.8, Outcome: 1},
		{Provider: "B", PredictedProbability: 0.2, Outcome: 1},
		{Provider: "A", PredictedProbability: 0.3, Outcome: 0},
		{PredictedProbability: 0.5, Outcome: 1},
	}

	report, err := Compare(obs)
	require.NoError(t, err)

	assert.Len(t, report, 2)
	assert.Equal(t, 2, report["A"].NPredictions)
	assert.Equal(t, 1, report["B"].NPredictions)
	assert.Equal(t, 3, report.TotalPredictions())
}

func TestCompareNoProviders(t *testing.T) {
	report, err := Compare([]models.Observation{{PredictedProbability: 0.5, Outcome: 1}})
	require.NoError(t, err)
	assert.Empty(t, report)

	data, err := json.Marshal(report)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestCompareSerializesUndefinedAsNull(t *testing.T) {
	obs := []models.Observation{
		{Provider: "Ghost", PredictedProbability: math.NaN(), Outcome: 1},
		{Provider: "Ghost", PredictedProbability: math.NaN(), Outcome: 0},
	}

	report, err := Compare(obs)
	require.NoError(t, err)
	assert.Equal(t, 2, report["Ghost"].NPredictions)

	data, err := json.Marshal(report)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Ghost":{"brier_score":null,"n_predictions":2,"calibration":[]}}`, string(data))
}

func TestCompareSerializesIntervalsAsStrings(t *testing.T) {
	obs := make([]models.Observation, 0, 40)
	for i := 0; i < 40; i++ {
		outcome := 0.0
		if i%2 == 0 {
			outcome = 1
		}
		obs = append(obs, models.Observation{Provider: "FanDuel", PredictedProbability: float64(i) / 40, Outcome: outcome})
	}

	report, err := Compare(obs)
	require.NoError(t, err)

	data, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]struct {
		Calibration []map[string]interface{} `json:"calibration"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	bins := decoded["FanDuel"].Calibration
	require.Len(t, bins, 10)
	for _, bin := range bins {
		_, ok := bin["bin"].(string)
		assert.True(t, ok)
	}
}

func TestRank(t *testing.T) {
	report := models.ProviderComparisonReport{
		"C": {BrierScore: 0.2},
		"A": {BrierScore: math.NaN()},
		"B": {BrierScore: 0.1},
		"D": {BrierScore: 0.2},
	}

	rankings := Rank(report)
	names := make([]string, 0, len(rankings))
	for _, r := range rankings {
		names = append(names, r.Provider)
	}
	assert.Equal(t, []string{"B", "C", "D", "A"}, names)
}

func TestRankingMarshalIncludesProvider(t *testing.T) {
	data, err := json.Marshal(Ranking{Provider: "Ghost", ProviderSummary: models.ProviderSummary{BrierScore: math.NaN(), NPredictions: 2}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"provider":"Ghost","brier_score":null,"n_predictions":2,"calibration":[]}`, string(data))
}
