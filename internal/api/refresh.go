package api

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/prop-calibrator/internal/datasource"
	"github.com/yourusername/prop-calibrator/internal/logger"
	"github.com/yourusername/prop-calibrator/internal/metrics"
)

// Refresher reloads observations from a source and recomputes the stored
// calibration reports
type Refresher struct {
	source datasource.Source
	store  *CalibrationStore
	logger *logger.APILogger
}

// NewRefresher creates a refresher for store
func NewRefresher(source datasource.Source, store *CalibrationStore, log *logrus.Logger) *Refresher {
	if log == nil {
		log = logrus.New()
	}
	return &Refresher{
		source: source,
		store:  store,
		logger: logger.NewAPILogger(log),
	}
}

// Refresh loads the source once and replaces every stored market
func (r *Refresher) Refresh(ctx context.Context) error {
	start := time.Now()
	markets, err := r.refresh(ctx)
	r.logger.LogCalibrationRefresh(markets, time.Since(start), err)
	if err != nil {
		metrics.RecordCalibrationRefresh("failure")
		return err
	}
	metrics.RecordCalibrationRefresh("success")
	return nil
}

func (r *Refresher) refresh(ctx context.Context) (int, error) {
	if r.source == nil {
		return 0, fmt.Errorf("no data source configured")
	}

	observations, err := r.source.Load(ctx)
	if err != nil {
		metrics.RecordDataSourceLoad(r.source.Name(), "failure")
		return 0, fmt.Errorf("failed to load observations from %s: %w", r.source.Name(), err)
	}
	metrics.RecordDataSourceLoad(r.source.Name(), "success")

	markets, err := r.store.Load(observations)
	if err != nil {
		return 0, fmt.Errorf("failed to compute calibration: %w", err)
	}
	return markets, nil
}
