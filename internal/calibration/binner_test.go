package calibration

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/prop-calibrator/internal/models"
)

func totalCount(bins []models.CalibrationBin) int {
	total := 0
	for _, b := range bins {
		total += b.Count
	}
	return total
}

func TestBinQuantileEqualCounts(t *testing.T) {
	predictions := make([]float64, 100)
	outcomes := make([]float64, 100)
	for i := range predictions {
		predictions[i] = float64(i+1) / 101
		if i%2 == 0 {
			outcomes[i] = 1
		}
	}

	bins, err := Bin(outcomes, predictions, 10, StrategyQuantile)
	require.NoError(t, err)
	require.Len(t, bins, 10)
	for _, b := range bins {
		assert.Equal(t, 10, b.Count, "bin %s", b.Interval)
	}
	assert.Equal(t, 100, totalCount(bins))
}

func TestBinDropsMissingPredictions(t *testing.T) {
	predictions := []float64{0.2, math.NaN(), 0.4, 0.6, math.Inf(1), 0.8}
	outcomes := []float64{0, 1, 0, 1, 1, 1}

	for _, strategy := range []Strategy{StrategyQuantile, StrategyUniform} {
		bins, err := Bin(outcomes, predictions, 4, strategy)
		require.NoError(t, err)
		assert.Equal(t, 4, totalCount(bins), strategy.String())
	}
}

func TestBinEmptyInput(t *testing.T) {
	bins, err := Bin([]float64{1, 0}, []float64{math.NaN(), math.NaN()}, 10, StrategyQuantile)
	require.NoError(t, err)
	assert.NotNil(t, bins)
	assert.Empty(t, bins)

	bins, err = Bin(nil, nil, 10, StrategyUniform)
	require.NoError(t, err)
	assert.Empty(t, bins)
}

func TestBinQuantileCollapsesDuplicateEdges(t *testing.T) {
	predictions := []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.7, 0.9}
	outcomes := []float64{0, 1, 0, 1, 0, 1, 1, 1}

	bins, err := Bin(outcomes, predictions, 10, StrategyQuantile)
	require.NoError(t, err)
	assert.Less(t, len(bins), 10)
	assert.Equal(t, len(predictions), totalCount(bins))
	assert.Equal(t, 6, bins[0].Count)
	assert.InDelta(t, 0.5, bins[0].MeanPredicted, 1e-12)
	assert.InDelta(t, 0.5, bins[0].ObservedFrequency, 1e-12)
}

func TestBinIdenticalPredictions(t *testing.T) {
	predictions := []float64{0.3, 0.3, 0.3}
	outcomes := []float64{1, 0, 0}

	bins, err := Bin(outcomes, predictions, 10, StrategyQuantile)
	require.NoError(t, err)
	require.Len(t, bins, 1)
	assert.Equal(t, 3, bins[0].Count)
	assert.InDelta(t, 1.0/3.0, bins[0].ObservedFrequency, 1e-12)

	bins, err = Bin(outcomes, predictions, 10, StrategyUniform)
	require.NoError(t, err)
	assert.Len(t, bins, 10)
	assert.Equal(t, 3, totalCount(bins))
}

func TestBinUniformKeepsEmptyBins(t *testing.T) {
	predictions := []float64{0.1, 0.1, 0.9, 0.9}
	outcomes := []float64{0, 0, 1, 1}

	bins, err := Bin(outcomes, predictions, 10, StrategyUniform)
	require.NoError(t, err)
	require.Len(t, bins, 10)

	assert.Equal(t, 2, bins[0].Count)
	assert.Equal(t, 2, bins[9].Count)
	for _, b := range bins[1:9] {
		assert.Equal(t, 0, b.Count)
		assert.True(t, math.IsNaN(b.MeanPredicted))
		assert.True(t, math.IsNaN(b.ObservedFrequency))
	}
	assert.InDelta(t, 0.1, bins[0].MeanPredicted, 1e-12)
	assert.InDelta(t, 1.0, bins[9].ObservedFrequency, 1e-12)
}

func TestBinIntervalLabels(t *testing.T) {
	predictions := []float64{0.1, 0.2, 0.3, 0.4}
	outcomes := []float64{0, 0, 1, 1}

	bins, err := Bin(outcomes, predictions, 2, StrategyQuantile)
	require.NoError(t, err)
	require.Len(t, bins, 2)
	assert.Equal(t, "(0.099, 0.25]", bins[0].Interval)
	assert.Equal(t, "(0.25, 0.4]", bins[1].Interval)
	assert.Equal(t, 2, bins[0].Count)
	assert.Equal(t, 2, bins[1].Count)
}

func TestBinContractViolations(t *testing.T) {
	_, err := Bin([]float64{1}, []float64{0.5, 0.5}, 10, StrategyQuantile)
	assert.True(t, errors.Is(err, models.ErrLengthMismatch))

	_, err = Bin([]float64{1}, []float64{0.5}, 0, StrategyQuantile)
	assert.True(t, errors.Is(err, models.ErrInvalidBins))

	_, err = Bin([]float64{1}, []float64{0.5}, 10, Strategy(7))
	assert.True(t, errors.Is(err, models.ErrUnknownStrategy))
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("Uniform")
	require.NoError(t, err)
	assert.Equal(t, StrategyUniform, s)

	s, err = ParseStrategy("quantile")
	require.NoError(t, err)
	assert.Equal(t, StrategyQuantile, s)

	_, err = ParseStrategy("isotonic")
	assert.True(t, errors.Is(err, models.ErrUnknownStrategy))
}

func TestQuantileInterpolates(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}
	assert.Equal(t, 1.0, Quantile(sorted, 0))
	assert.Equal(t, 4.0, Quantile(sorted, 1))
	assert.InDelta(t, 2.5, Quantile(sorted, 0.5), 1e-12)
	assert.InDelta(t, 1.3, Quantile(sorted, 0.1), 1e-12)
	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
}

func TestExpectedCalibrationError(t *testing.T) {
	tests := []struct {
		name        string
		outcomes    []float64
		predictions []float64
		want        float64
	}{
		{
			name:        "perfect predictions",
			outcomes:    []float64{1, 1, 0, 0},
			predictions: []float64{1, 1, 0, 0},
			want:        0,
		},
		{
			name:        "confident but not certain",
			outcomes:    []float64{1, 1, 0, 0},
			predictions: []float64{0.9, 0.9, 0.1, 0.1},
			want:        0.1,
		},
		{
			name:        "always half",
			outcomes:    []float64{1, 0, 1, 0},
			predictions: []float64{0.5, 0.5, 0.5, 0.5},
			want:        0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ece, err := ExpectedCalibrationError(tt.outcomes, tt.predictions)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, ece, 1e-9)
			assert.GreaterOrEqual(t, ece, 0.0)
			assert.LessOrEqual(t, ece, 1.0)
		})
	}
}

func TestExpectedCalibrationErrorEmpty(t *testing.T) {
	ece, err := ExpectedCalibrationError([]float64{1}, []float64{math.NaN()})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(ece))
}
