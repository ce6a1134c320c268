package database

import (
	"context"
	"fmt"

	"github.com/yourusername/prop-calibrator/internal/config"
)

// schema holds the statements applied by Migrate. Every statement is
// idempotent so Migrate can run on each start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS backtest_runs (
		id                   UUID PRIMARY KEY,
		market               TEXT NOT NULL DEFAULT '',
		run_date             TIMESTAMPTZ NOT NULL,
		observations         INTEGER NOT NULL,
		brier                DOUBLE PRECISION,
		ece                  DOUBLE PRECISION,
		auc                  DOUBLE PRECISION,
		roi_per_bet          DOUBLE PRECISION NOT NULL DEFAULT 0,
		kelly_final_bankroll DOUBLE PRECISION NOT NULL DEFAULT 1,
		fixed_final_bankroll DOUBLE PRECISION NOT NULL DEFAULT 1,
		provider_metrics     JSONB,
		full_results         JSONB,
		created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_backtest_runs_market_run_date
		ON backtest_runs (market, run_date DESC)`,
}

// Initialize creates a database connection pool and applies the schema
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate applies the backtest schema
func Migrate(ctx context.Context, db *DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
