package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/prop-calibrator/internal/backtest"
	"github.com/yourusername/prop-calibrator/internal/config"
	"github.com/yourusername/prop-calibrator/internal/database"
	"github.com/yourusername/prop-calibrator/internal/repository"
)

var (
	backtestMarket    string
	backtestStartDate string
	backtestEndDate   string
	backtestOutput    string
	backtestExport    bool
	backtestPersist   bool
	backtestCSV       bool
)

// backtestCmd implements 'propcal backtest'
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a calibration backtest over the configured observations",
	Long: `Score the observations, bin them for calibration, bootstrap confidence
intervals, compare providers and simulate fixed and Kelly staking. Each market
in the data gets its own report unless --market selects one.

Examples:
  propcal backtest --data data/props.csv
  propcal backtest --market passing_yards --start-date 2024-09-01 --end-date 2024-12-31
  propcal backtest --export --output data/cache/backtests`,
	RunE: runBacktest,
}

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVar(&backtestMarket, "market", "", "Only backtest this market")
	backtestCmd.Flags().StringVar(&backtestStartDate, "start-date", "", "Override start date (YYYY-MM-DD)")
	backtestCmd.Flags().StringVar(&backtestEndDate, "end-date", "", "Override end date (YYYY-MM-DD)")
	backtestCmd.Flags().StringVar(&backtestOutput, "output", "", "Directory for exported results")
	backtestCmd.Flags().BoolVar(&backtestExport, "export", false, "Write JSON results to the output directory")
	backtestCmd.Flags().BoolVar(&backtestPersist, "persist", false, "Store each run in PostgreSQL")
	backtestCmd.Flags().BoolVar(&backtestCSV, "csv", false, "Also write metrics and staking trajectory CSVs per market when exporting")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	btConfig, err := buildBacktestConfig(cfg)
	if err != nil {
		return err
	}

	var repo repository.BacktestRunRepository
	if backtestPersist || (cfg.Features.PersistenceEnabled && cfg.Database.Enabled) {
		db, err := database.Initialize(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()

		repos, err := repository.NewRepositories(db)
		if err != nil {
			return err
		}
		repo = repos.BacktestRun
	}

	observations, err := loadObservations(ctx, cfg, log)
	if err != nil {
		return err
	}

	engine, err := backtest.NewEngine(btConfig, repo, log)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	results, err := engine.RunMarkets(ctx, observations)
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, result := range results {
		backtest.WriteConsoleReport(out, result)
	}

	return exportResults(btConfig, results, log)
}

func buildBacktestConfig(cfg *config.Config) (backtest.Config, error) {
	btConfig, err := backtest.FromConfig(&cfg.Backtest, cfg.Features)
	if err != nil {
		return backtest.Config{}, fmt.Errorf("invalid backtest config: %w", err)
	}
	if backtestMarket != "" {
		btConfig.Market = backtestMarket
	}
	if backtestStartDate != "" {
		parsed, err := time.Parse("2006-01-02", backtestStartDate)
		if err != nil {
			return backtest.Config{}, fmt.Errorf("invalid start date: %w", err)
		}
		btConfig.StartDate = parsed
	}
	if backtestEndDate != "" {
		parsed, err := time.Parse("2006-01-02", backtestEndDate)
		if err != nil {
			return backtest.Config{}, fmt.Errorf("invalid end date: %w", err)
		}
		btConfig.EndDate = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	if backtestOutput != "" {
		btConfig.OutputPath = backtestOutput
	}
	if backtestExport {
		btConfig.ExportEnabled = true
	}
	return btConfig, btConfig.Validate()
}

func exportResults(cfg backtest.Config, results []*backtest.Result, log *logrus.Logger) error {
	if !cfg.ExportEnabled {
		return nil
	}

	paths, err := backtest.ExportResults(cfg, results)
	if err != nil {
		return fmt.Errorf("failed to export results: %w", err)
	}
	if backtestCSV {
		for _, result := range results {
			path := filepath.Join(cfg.OutputPath, result.RunID.String()+"_metrics.csv")
			if err := backtest.GenerateCSVExport(result, path); err != nil {
				return fmt.Errorf("failed to export csv: %w", err)
			}
			paths = append(paths, path)

			for _, summary := range []backtest.StakingSummary{result.Staking.Fixed, result.Staking.Kelly} {
				path := filepath.Join(cfg.OutputPath, result.RunID.String()+"_"+summary.Strategy+"_trajectory.csv")
				if err := backtest.ExportTrajectoryCSV(summary, path); err != nil {
					return fmt.Errorf("failed to export trajectory: %w", err)
				}
				paths = append(paths, path)
			}
		}
	}

	log.WithField("files", paths).Info("Exported backtest results")
	return nil
}
