// Package backtest runs the calibration, expected value and staking analysis
// over a dataset of graded predictions.
package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/prop-calibrator/internal/bootstrap"
	"github.com/yourusername/prop-calibrator/internal/calibration"
	"github.com/yourusername/prop-calibrator/internal/datasource"
	"github.com/yourusername/prop-calibrator/internal/logger"
	"github.com/yourusername/prop-calibrator/internal/metrics"
	"github.com/yourusername/prop-calibrator/internal/models"
	"github.com/yourusername/prop-calibrator/internal/odds"
	"github.com/yourusername/prop-calibrator/internal/provider"
	"github.com/yourusername/prop-calibrator/internal/repository"
	"github.com/yourusername/prop-calibrator/internal/scoring"
	"github.com/yourusername/prop-calibrator/internal/staking"
)

// allMarkets labels runs that are not restricted to one market
const allMarkets = "all"

// Engine orchestrates backtesting runs
type Engine struct {
	config Config
	repo   repository.BacktestRunRepository
	logger *logger.BacktestLogger
}

// NewEngine creates a new backtesting engine. repo may be nil, in which case
// runs are not persisted.
func NewEngine(cfg Config, repo repository.BacktestRunRepository, log *logrus.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid backtest config: %w", err)
	}
	if log == nil {
		log = logrus.New()
	}

	return &Engine{
		config: cfg,
		repo:   repo,
		logger: logger.NewBacktestLogger(log),
	}, nil
}

// Config returns the backtest configuration
func (e *Engine) Config() Config {
	return e.config
}

// Run backtests the observations of the configured market, or all of them
// when no market is configured. An unconfigured run over rows that all share
// one market label is recorded under that label.
func (e *Engine) Run(ctx context.Context, observations []models.Observation) (*Result, error) {
	result, err := e.run(ctx, e.config.Market, observations)
	if err != nil {
		return nil, err
	}
	if e.repo != nil {
		if err := ExportToDatabase(ctx, result, e.repo); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// RunMarkets runs one backtest per market label found in the observations,
// sorted by market. With a configured market, or without any labels, it
// performs a single run. The runs are persisted together once all succeed.
func (e *Engine) RunMarkets(ctx context.Context, observations []models.Observation) ([]*Result, error) {
	markets := datasource.Markets(observations)
	if e.config.Market != "" || len(markets) == 0 {
		result, err := e.Run(ctx, observations)
		if err != nil {
			return nil, err
		}
		return []*Result{result}, nil
	}

	results := make([]*Result, 0, len(markets))
	for _, market := range markets {
		result, err := e.run(ctx, market, observations)
		if err != nil {
			return nil, fmt.Errorf("market %s: %w", market, err)
		}
		results = append(results, result)
	}

	if e.repo != nil {
		if err := ExportAllToDatabase(ctx, results, e.repo); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (e *Engine) run(ctx context.Context, market string, observations []models.Observation) (*Result, error) {
	started := time.Now()
	runID := uuid.New()
	label := marketLabel(market)

	status := "failure"
	defer func() {
		metrics.RecordBacktestRun(label, status, time.Since(started).Seconds())
	}()

	filtered := datasource.Filter{
		Market: market,
		Start:  e.config.StartDate,
		End:    e.config.EndDate,
	}.Apply(observations)
	if market == "" {
		market = sharedMarket(filtered)
		label = marketLabel(market)
	}
	e.logger.LogRunStarted(runID.String(), label, len(filtered))

	outcomes, predictions := models.Columns(filtered)
	report, err := scoring.Score(outcomes, predictions)
	if err != nil {
		return nil, fmt.Errorf("failed to score predictions: %w", err)
	}
	bins, err := calibration.Bin(outcomes, predictions, e.config.Bins, e.config.BinStrategy)
	if err != nil {
		return nil, fmt.Errorf("failed to bin predictions: %w", err)
	}
	e.logger.LogMetrics(runID.String(), label, report)
	metrics.UpdateCalibrationScores(label, report.N, report.Brier, report.ECE)

	result := &Result{
		RunID:        runID,
		Market:       market,
		RunDate:      started.UTC(),
		Observations: len(filtered),
		Metrics:      report,
		Calibration:  bins,
		EVSummary:    odds.SummarizeEV(filtered, e.config.DecimalOdds),
		KellyMedian:  medianKelly(predictions, e.config.DecimalOdds),
	}

	if e.config.BootstrapEnabled {
		intervals, err := e.intervals(ctx, runID.String(), outcomes, predictions)
		if err != nil {
			return nil, err
		}
		result.Bootstrap = &intervals
	}

	if e.config.ProviderComparison {
		if err := e.compareProviders(runID.String(), filtered, result); err != nil {
			return nil, err
		}
	}

	if err := e.simulateStaking(runID.String(), filtered, result); err != nil {
		return nil, err
	}

	if e.config.MonteCarlo.Iterations > 0 {
		mc, err := RunMonteCarlo(ctx, filtered, e.config.StakeStrategy, e.config.FixedStake, e.config.DecimalOdds, e.config.MonteCarlo)
		if err != nil {
			return nil, fmt.Errorf("monte carlo simulation failed: %w", err)
		}
		result.MonteCarlo = &mc
	}

	if e.config.WalkForward.Windows > 0 {
		wf, err := RunWalkForward(filtered, e.config.DecimalOdds, e.config.WalkForward)
		if err != nil {
			return nil, err
		}
		result.WalkForward = &wf
	}

	result.Duration = time.Since(started)
	status = "success"
	e.logger.LogRunCompleted(runID.String(), label, result.Duration)
	return result, nil
}

func (e *Engine) intervals(ctx context.Context, runID string, outcomes, predictions []float64) (Intervals, error) {
	requested := e.config.Bootstrap.Resamples
	if requested <= 0 {
		requested = bootstrap.DefaultResamples
	}

	meanEV, err := bootstrap.ConfidenceInterval(ctx, odds.MeanExpectedValue(e.config.DecimalOdds), outcomes, predictions, e.config.Bootstrap)
	if err != nil {
		return Intervals{}, fmt.Errorf("failed to bootstrap mean EV: %w", err)
	}
	e.logger.LogBootstrap(runID, "mean_ev", meanEV, requested)
	metrics.RecordBootstrapDiscards("mean_ev", discarded(predictions, meanEV, requested))

	brier, err := bootstrap.ConfidenceInterval(ctx, scoring.Brier, outcomes, predictions, e.config.Bootstrap)
	if err != nil {
		return Intervals{}, fmt.Errorf("failed to bootstrap Brier score: %w", err)
	}
	e.logger.LogBootstrap(runID, "brier", brier, requested)
	metrics.RecordBootstrapDiscards("brier", discarded(predictions, brier, requested))

	return Intervals{MeanEV: meanEV, Brier: brier}, nil
}

// discarded counts the resamples dropped as undefined. Without a usable
// prediction no resampling happens at all.
func discarded(predictions []float64, result models.BootstrapResult, requested int) int {
	for _, p := range predictions {
		if models.IsDefined(p) {
			return requested - result.Resamples
		}
	}
	return 0
}

func (e *Engine) compareProviders(runID string, observations []models.Observation, result *Result) error {
	report, err := provider.Compare(observations)
	if err != nil {
		return fmt.Errorf("failed to compare providers: %w", err)
	}
	result.Providers = report
	result.Rankings = provider.Rank(report)
	for _, ranking := range result.Rankings {
		e.logger.LogProviderSummary(runID, ranking.Provider, ranking.ProviderSummary)
		metrics.UpdateProviderBrier(ranking.Provider, ranking.BrierScore)
	}
	return nil
}

func (e *Engine) simulateStaking(runID string, observations []models.Observation, result *Result) error {
	for _, strategy := range []staking.Strategy{staking.StrategyFixed, staking.StrategyKelly} {
		trajectory, err := staking.SimulateBankroll(observations, strategy, e.config.FixedStake, e.config.DecimalOdds)
		if err != nil {
			return fmt.Errorf("failed to simulate %s staking: %w", strategy, err)
		}
		e.logger.LogStaking(runID, strategy.String(), trajectory, staking.StartingBankroll)

		summary := summarizeTrajectory(strategy, trajectory)
		metrics.UpdateFinalBankroll(strategy.String(), summary.FinalBankroll)
		if strategy == staking.StrategyFixed {
			result.Staking.Fixed = summary
		} else {
			result.Staking.Kelly = summary
		}
	}
	return nil
}

// sharedMarket returns the market label carried by every observation, or ""
// when the rows are unlabelled or span several markets
func sharedMarket(observations []models.Observation) string {
	if len(observations) == 0 {
		return ""
	}
	market := observations[0].Market
	for _, obs := range observations[1:] {
		if obs.Market != market {
			return ""
		}
	}
	return market
}

func marketLabel(market string) string {
	if market == "" {
		return allMarkets
	}
	return market
}
