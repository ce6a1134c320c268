package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/prop-calibrator/internal/database"
	"github.com/yourusername/prop-calibrator/internal/models"
)

func TestNewRepositoriesRequiresDB(t *testing.T) {
	_, err := NewRepositories(nil)
	assert.Error(t, err)
}

func sampleRun(market string, runDate time.Time) *models.BacktestRun {
	brier := 0.21
	ece := 0.03
	return &models.BacktestRun{
		ID:              uuid.New(),
		Market:          market,
		RunDate:         runDate,
		Observations:    200,
		Brier:           &brier,
		ECE:             &ece,
		ROIPerBet:       0.012,
		KellyFinal:      1.4,
		FixedFinal:      1.1,
		ProviderMetrics: json.RawMessage(`{"A":{"brier_score":0.2,"n_predictions":100,"calibration":[]}}`),
		FullResults:     json.RawMessage(`{}`),
	}
}

func TestBacktestRunRepositoryRoundTrip(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := NewRepositories(db)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Second)
	older := sampleRun("passing_yards", now.Add(-time.Hour))
	newer := sampleRun("passing_yards", now)
	require.NoError(t, repos.BacktestRun.Save(ctx, older))
	require.NoError(t, repos.BacktestRun.Save(ctx, newer))

	got, err := repos.BacktestRun.GetByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, older.Observations, got.Observations)
	assert.Nil(t, got.AUC)
	require.NotNil(t, got.Brier)
	assert.InDelta(t, 0.21, *got.Brier, 1e-12)

	latest, err := repos.BacktestRun.GetLatestByMarket(ctx, "passing_yards")
	require.NoError(t, err)
	assert.Equal(t, newer.ID, latest.ID)

	runs, err := repos.BacktestRun.GetByDateRange(ctx, now.Add(-2*time.Hour), now)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	_, err = repos.BacktestRun.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestBacktestRunRepositorySaveAll(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := NewRepositories(db)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Second)
	passing := sampleRun("passing_yards", now)
	rushing := sampleRun("rushing_yards", now)
	require.NoError(t, repos.BacktestRun.SaveAll(ctx, []*models.BacktestRun{passing, rushing}))

	for _, run := range []*models.BacktestRun{passing, rushing} {
		got, err := repos.BacktestRun.GetByID(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, run.Market, got.Market)
	}

	// a failing row rolls back the whole batch
	good := sampleRun("receiving_yards", now)
	bad := sampleRun("receiving_yards", now)
	bad.ProviderMetrics = json.RawMessage(`not json`)
	assert.Error(t, repos.BacktestRun.SaveAll(ctx, []*models.BacktestRun{good, bad}))

	_, err = repos.BacktestRun.GetByID(ctx, good.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.NoError(t, repos.BacktestRun.SaveAll(ctx, nil))
}
