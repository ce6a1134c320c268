package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yourusername/prop-calibrator/internal/database"
	"github.com/yourusername/prop-calibrator/internal/models"
)

const (
	errScanBacktestRun = "failed to scan backtest run: %w"

	backtestRunColumns = `id, market, run_date, observations, brier, ece, auc,
		roi_per_bet, kelly_final_bankroll, fixed_final_bankroll,
		provider_metrics, full_results, created_at`
)

// PostgresBacktestRunRepository implements BacktestRunRepository for PostgreSQL
type PostgresBacktestRunRepository struct {
	db *database.DB
}

// NewPostgresBacktestRunRepository creates a new backtest run repository
func NewPostgresBacktestRunRepository(db *database.DB) BacktestRunRepository {
	return &PostgresBacktestRunRepository{db: db}
}

// execer is satisfied by both the pool wrapper and a transaction
type execer interface {
	Exec(ctx context.Context, query string, args ...interface{}) (pgconn.CommandTag, error)
}

const saveBacktestRunQuery = `
	INSERT INTO backtest_runs (` + backtestRunColumns + `)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	ON CONFLICT (id) DO UPDATE SET
		observations = EXCLUDED.observations,
		brier = EXCLUDED.brier,
		ece = EXCLUDED.ece,
		auc = EXCLUDED.auc,
		roi_per_bet = EXCLUDED.roi_per_bet,
		kelly_final_bankroll = EXCLUDED.kelly_final_bankroll,
		fixed_final_bankroll = EXCLUDED.fixed_final_bankroll,
		provider_metrics = EXCLUDED.provider_metrics,
		full_results = EXCLUDED.full_results
`

// Save inserts a backtest run, replacing any row with the same ID
func (r *PostgresBacktestRunRepository) Save(ctx context.Context, run *models.BacktestRun) error {
	return saveRun(ctx, r.db, run)
}

// SaveAll inserts the runs in a single transaction
func (r *PostgresBacktestRunRepository) SaveAll(ctx context.Context, runs []*models.BacktestRun) error {
	if len(runs) == 0 {
		return nil
	}
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, run := range runs {
			if err := saveRun(ctx, tx, run); err != nil {
				return err
			}
		}
		return nil
	})
}

func saveRun(ctx context.Context, db execer, run *models.BacktestRun) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(ctx, saveBacktestRunQuery,
		run.ID, run.Market, run.RunDate, run.Observations, run.Brier, run.ECE, run.AUC,
		run.ROIPerBet, run.KellyFinal, run.FixedFinal,
		run.ProviderMetrics, run.FullResults, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save backtest run %s: %w", run.ID, err)
	}
	return nil
}

// GetByID retrieves a backtest run by ID
func (r *PostgresBacktestRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestRun, error) {
	query := `SELECT ` + backtestRunColumns + ` FROM backtest_runs WHERE id = $1`

	run, err := scanBacktestRun(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("backtest run %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf(errScanBacktestRun, err)
	}
	return run, nil
}

// GetLatest retrieves the most recent backtest runs
func (r *PostgresBacktestRunRepository) GetLatest(ctx context.Context, limit int) ([]*models.BacktestRun, error) {
	query := `SELECT ` + backtestRunColumns + ` FROM backtest_runs ORDER BY run_date DESC LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest backtest runs: %w", err)
	}
	return collectBacktestRuns(rows)
}

// GetLatestByMarket retrieves the most recent run for a market
func (r *PostgresBacktestRunRepository) GetLatestByMarket(ctx context.Context, market string) (*models.BacktestRun, error) {
	query := `SELECT ` + backtestRunColumns + `
		FROM backtest_runs WHERE market = $1 ORDER BY run_date DESC LIMIT 1`

	run, err := scanBacktestRun(r.db.QueryRow(ctx, query, market))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("backtest run for market %q: %w", market, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf(errScanBacktestRun, err)
	}
	return run, nil
}

// GetByDateRange retrieves backtest runs within a date range
func (r *PostgresBacktestRunRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.BacktestRun, error) {
	query := `SELECT ` + backtestRunColumns + `
		FROM backtest_runs WHERE run_date >= $1 AND run_date <= $2 ORDER BY run_date DESC`

	rows, err := r.db.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query backtest runs by date range: %w", err)
	}
	return collectBacktestRuns(rows)
}

func scanBacktestRun(row pgx.Row) (*models.BacktestRun, error) {
	run := &models.BacktestRun{}
	err := row.Scan(
		&run.ID, &run.Market, &run.RunDate, &run.Observations, &run.Brier, &run.ECE, &run.AUC,
		&run.ROIPerBet, &run.KellyFinal, &run.FixedFinal,
		&run.ProviderMetrics, &run.FullResults, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return run, nil
}

func collectBacktestRuns(rows pgx.Rows) ([]*models.BacktestRun, error) {
	defer rows.Close()

	var runs []*models.BacktestRun
	for rows.Next() {
		run, err := scanBacktestRun(rows)
		if err != nil {
			return nil, fmt.Errorf(errScanBacktestRun, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
