package bootstrap

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/prop-calibrator/internal/models"
)

func meanPrediction(_, predictions []float64) (float64, error) {
	sum := 0.0
	for _, p := range predictions {
		sum += p
	}
	return sum / float64(len(predictions)), nil
}

func sample() ([]float64, []float64) {
	outcomes := make([]float64, 200)
	predictions := make([]float64, 200)
	for i := range predictions {
		predictions[i] = float64(i%20) / 20
		if i%3 == 0 {
			outcomes[i] = 1
		}
	}
	return outcomes, predictions
}

func TestConfidenceIntervalOrdering(t *testing.T) {
	outcomes, predictions := sample()

	result, err := ConfidenceInterval(context.Background(), meanPrediction, outcomes, predictions, Config{Resamples: 500, Seed: 7})
	require.NoError(t, err)

	assert.True(t, result.Defined())
	assert.Equal(t, 500, result.Resamples)
	assert.LessOrEqual(t, result.Lower, result.Median)
	assert.LessOrEqual(t, result.Median, result.Upper)
	assert.InDelta(t, 0.475, result.Median, 0.03)
}

func TestConfidenceIntervalDeterministic(t *testing.T) {
	outcomes, predictions := sample()
	ctx := context.Background()

	serial, err := ConfidenceInterval(ctx, meanPrediction, outcomes, predictions, Config{Resamples: 300, Seed: 42, Workers: 1})
	require.NoError(t, err)
	parallel, err := ConfidenceInterval(ctx, meanPrediction, outcomes, predictions, Config{Resamples: 300, Seed: 42, Workers: 4})
	require.NoError(t, err)
	again, err := ConfidenceInterval(ctx, meanPrediction, outcomes, predictions, Config{Resamples: 300, Seed: 42, Workers: 3})
	require.NoError(t, err)

	assert.Equal(t, serial, parallel)
	assert.Equal(t, serial, again)
}

func TestConfidenceIntervalSeedMatters(t *testing.T) {
	outcomes, predictions := sample()
	ctx := context.Background()

	a, err := ConfidenceInterval(ctx, meanPrediction, outcomes, predictions, Config{Resamples: 200, Seed: 1})
	require.NoError(t, err)
	b, err := ConfidenceInterval(ctx, meanPrediction, outcomes, predictions, Config{Resamples: 200, Seed: 2})
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestConfidenceIntervalAllDiscarded(t *testing.T) {
	outcomes, predictions := sample()
	failing := func(_, _ []float64) (float64, error) { return 0, errors.New("boom") }
	undefined := func(_, _ []float64) (float64, error) { return math.NaN(), nil }
	panicking := func(_, _ []float64) (float64, error) { panic("index out of range") }

	for name, fn := range map[string]Statistic{"error": failing, "nan": undefined, "panic": panicking} {
		t.Run(name, func(t *testing.T) {
			result, err := ConfidenceInterval(context.Background(), fn, outcomes, predictions, Config{Resamples: 50})
			require.NoError(t, err)
			assert.False(t, result.Defined())
			assert.True(t, math.IsNaN(result.Lower))
			assert.True(t, math.IsNaN(result.Upper))
			assert.Equal(t, 0, result.Resamples)
		})
	}
}

func TestConfidenceIntervalPartialDiscards(t *testing.T) {
	outcomes, predictions := sample()
	calls := 0
	flaky := func(ys, ps []float64) (float64, error) {
		calls++
		if calls%2 == 0 {
			return math.Inf(1), nil
		}
		return meanPrediction(ys, ps)
	}

	result, err := ConfidenceInterval(context.Background(), flaky, outcomes, predictions, Config{Resamples: 100, Workers: 1})
	require.NoError(t, err)
	assert.Equal(t, 50, result.Resamples)
	assert.True(t, result.Defined())
}

func TestConfidenceIntervalPanickingStatistic(t *testing.T) {
	outcomes, predictions := sample()
	var calls atomic.Int64
	sometimes := func(ys, ps []float64) (float64, error) {
		if calls.Add(1)%4 == 0 {
			var empty []float64
			return empty[len(ps)], nil
		}
		return meanPrediction(ys, ps)
	}

	result, err := ConfidenceInterval(context.Background(), sometimes, outcomes, predictions, Config{Resamples: 100, Workers: 4})
	require.NoError(t, err)
	assert.Equal(t, 75, result.Resamples)
	assert.True(t, result.Defined())
}

func TestConfidenceIntervalNoUsablePredictions(t *testing.T) {
	result, err := ConfidenceInterval(context.Background(), meanPrediction, []float64{1, 0}, []float64{math.NaN(), math.NaN()}, Config{})
	require.NoError(t, err)
	assert.False(t, result.Defined())

	result, err = ConfidenceInterval(context.Background(), meanPrediction, nil, nil, Config{})
	require.NoError(t, err)
	assert.False(t, result.Defined())
}

func TestConfidenceIntervalContractErrors(t *testing.T) {
	ctx := context.Background()

	_, err := ConfidenceInterval(ctx, nil, []float64{1}, []float64{0.5}, Config{})
	assert.ErrorIs(t, err, models.ErrNilStatistic)

	_, err = ConfidenceInterval(ctx, meanPrediction, []float64{1}, []float64{0.5, 0.4}, Config{})
	assert.ErrorIs(t, err, models.ErrLengthMismatch)

	for _, alpha := range []float64{-0.1, 1, 1.5} {
		_, err = ConfidenceInterval(ctx, meanPrediction, []float64{1}, []float64{0.5}, Config{Alpha: alpha})
		assert.ErrorIs(t, err, models.ErrInvalidAlpha)
	}
}

func TestConfidenceIntervalCancelled(t *testing.T) {
	outcomes, predictions := sample()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ConfidenceInterval(ctx, meanPrediction, outcomes, predictions, Config{Resamples: 100, Workers: 2})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPercentileInterpolates(t *testing.T) {
	values := []float64{1, 2, 3, 4}
	assert.InDelta(t, 2.5, percentile(values, 0.5), 1e-12)
	assert.InDelta(t, 1.075, percentile(values, 0.025), 1e-12)
	assert.InDelta(t, 4, percentile(values, 1), 1e-12)
}
