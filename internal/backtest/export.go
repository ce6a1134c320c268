package backtest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yourusername/prop-calibrator/internal/models"
	"github.com/yourusername/prop-calibrator/internal/repository"
)

// Summary is the combined export of a multi-market backtest
type Summary struct {
	StartDate string             `json:"start_date,omitempty"`
	EndDate   string             `json:"end_date,omitempty"`
	Results   map[string]*Result `json:"results"`
}

// ExportToJSON writes a result to a JSON file
func ExportToJSON(value any, outputPath string) error {
	if outputPath == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal export: %w", err)
	}
	return os.WriteFile(outputPath, data, 0o644)
}

// ExportResults writes one {tag}_{market}.json file per result and a
// {tag}_summary.json file combining them under cfg.OutputPath. It returns the
// written paths.
func ExportResults(cfg Config, results []*Result) ([]string, error) {
	if cfg.OutputPath == "" {
		return nil, fmt.Errorf("output path is required")
	}

	tag := dateTag(cfg, results)
	summary := Summary{Results: make(map[string]*Result, len(results))}
	if !cfg.StartDate.IsZero() {
		summary.StartDate = cfg.StartDate.Format(dateLayout)
	}
	if !cfg.EndDate.IsZero() {
		summary.EndDate = cfg.EndDate.Format(dateLayout)
	}

	paths := make([]string, 0, len(results)+1)
	for _, result := range results {
		label := marketLabel(result.Market)
		path := filepath.Join(cfg.OutputPath, fmt.Sprintf("%s_%s.json", tag, label))
		if err := ExportToJSON(result, path); err != nil {
			return paths, err
		}
		summary.Results[label] = result
		paths = append(paths, path)
	}

	path := filepath.Join(cfg.OutputPath, fmt.Sprintf("%s_summary.json", tag))
	if err := ExportToJSON(summary, path); err != nil {
		return paths, err
	}
	return append(paths, path), nil
}

// dateTag names export files after the configured window, falling back to the
// date of the first run
func dateTag(cfg Config, results []*Result) string {
	if !cfg.StartDate.IsZero() && !cfg.EndDate.IsZero() {
		return cfg.StartDate.Format(dateLayout) + "_" + cfg.EndDate.Format(dateLayout)
	}
	if len(results) > 0 {
		return results[0].RunDate.Format(dateLayout)
	}
	return time.Now().UTC().Format(dateLayout)
}

// ToBacktestRun converts a result into its persisted form
func (r *Result) ToBacktestRun() (*models.BacktestRun, error) {
	providerMetrics, err := json.Marshal(r.Providers)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal provider metrics: %w", err)
	}
	fullResults, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal backtest result: %w", err)
	}

	return &models.BacktestRun{
		ID:              r.RunID,
		Market:          r.Market,
		RunDate:         r.RunDate,
		Observations:    r.Observations,
		Brier:           models.Nullable(r.Metrics.Brier),
		ECE:             models.Nullable(r.Metrics.ECE),
		AUC:             models.Nullable(r.Metrics.AUC),
		ROIPerBet:       r.EVSummary.ROIPerBet,
		KellyFinal:      r.Staking.Kelly.FinalBankroll,
		FixedFinal:      r.Staking.Fixed.FinalBankroll,
		ProviderMetrics: providerMetrics,
		FullResults:     fullResults,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// ExportToDatabase persists a backtest result
func ExportToDatabase(ctx context.Context, result *Result, repo repository.BacktestRunRepository) error {
	if repo == nil {
		return fmt.Errorf("backtest run repository is required")
	}
	run, err := result.ToBacktestRun()
	if err != nil {
		return err
	}
	if err := repo.Save(ctx, run); err != nil {
		return fmt.Errorf("failed to persist backtest run: %w", err)
	}
	return nil
}

// ExportAllToDatabase persists the runs in one batch
func ExportAllToDatabase(ctx context.Context, results []*Result, repo repository.BacktestRunRepository) error {
	if repo == nil {
		return fmt.Errorf("backtest run repository is required")
	}
	runs := make([]*models.BacktestRun, 0, len(results))
	for _, result := range results {
		run, err := result.ToBacktestRun()
		if err != nil {
			return err
		}
		runs = append(runs, run)
	}
	if err := repo.SaveAll(ctx, runs); err != nil {
		return fmt.Errorf("failed to persist backtest runs: %w", err)
	}
	return nil
}
