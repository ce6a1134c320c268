package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/prop-calibrator/internal/models"
)

// BacktestRunRepository defines backtest run persistence
type BacktestRunRepository interface {
	Save(ctx context.Context, run *models.BacktestRun) error
	// SaveAll stores every run or none of them
	SaveAll(ctx context.Context, runs []*models.BacktestRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestRun, error)
	GetLatest(ctx context.Context, limit int) ([]*models.BacktestRun, error)
	GetLatestByMarket(ctx context.Context, market string) (*models.BacktestRun, error)
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.BacktestRun, error)
}
