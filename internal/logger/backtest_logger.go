package logger

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/prop-calibrator/internal/models"
)

// BacktestLogger provides dedicated logging for backtest runs.
type BacktestLogger struct {
	*logrus.Entry
}

// NewBacktestLogger creates a new backtest logger.
func NewBacktestLogger(baseLogger *logrus.Logger) *BacktestLogger {
	return &BacktestLogger{
		Entry: baseLogger.WithField("component", "backtest"),
	}
}

// LogRunStarted logs the start of a run.
func (bl *BacktestLogger) LogRunStarted(runID, market string, observations int) {
	bl.WithFields(logrus.Fields{
		"run_id":       runID,
		"market":       market,
		"observations": observations,
	}).Info("Backtest started")
}

// LogMetrics logs the headline scores of a run.
func (bl *BacktestLogger) LogMetrics(runID, market string, report models.MetricsReport) {
	bl.WithFields(logrus.Fields{
		"run_id":    runID,
		"market":    market,
		"n":         report.N,
		"brier":     finite(report.Brier),
		"log_loss":  finite(report.LogLoss),
		"auc":       finite(report.AUC),
		"ece":       finite(report.ECE),
		"pearson_r": finite(report.PearsonR),
	}).Info("Calibration metrics computed")
}

// LogBootstrap logs a confidence interval.
func (bl *BacktestLogger) LogBootstrap(runID, statistic string, result models.BootstrapResult, requested int) {
	entry := bl.WithFields(logrus.Fields{
		"run_id":    runID,
		"statistic": statistic,
		"median":    finite(result.Median),
		"lower":     finite(result.Lower),
		"upper":     finite(result.Upper),
		"kept":      result.Resamples,
		"discarded": requested - result.Resamples,
	})
	if !result.Defined() {
		entry.Warn("Bootstrap interval undefined")
		return
	}
	entry.Info("Bootstrap interval computed")
}

// LogProviderSummary logs one provider's calibration digest.
func (bl *BacktestLogger) LogProviderSummary(runID, provider string, summary models.ProviderSummary) {
	bl.WithFields(logrus.Fields{
		"run_id":        runID,
		"provider":      provider,
		"brier_score":   finite(summary.BrierScore),
		"n_predictions": summary.NPredictions,
		"bins":          len(summary.Calibration),
	}).Debug("Provider calibration computed")
}

// LogStaking logs the outcome of a bankroll simulation.
func (bl *BacktestLogger) LogStaking(runID, strategy string, trajectory models.StakingTrajectory, start float64) {
	entry := bl.WithFields(logrus.Fields{
		"run_id":         runID,
		"strategy":       strategy,
		"bets":           len(trajectory),
		"final_bankroll": trajectory.Final(start),
		"max_drawdown":   trajectory.MaxDrawdown(start),
	})
	if trajectory.Ruined() {
		entry.Warn("Bankroll ruined during simulation")
		return
	}
	entry.Info("Bankroll simulation completed")
}

// LogRunCompleted logs the end of a run.
func (bl *BacktestLogger) LogRunCompleted(runID, market string, duration time.Duration) {
	bl.WithFields(logrus.Fields{
		"run_id":      runID,
		"market":      market,
		"duration_ms": duration.Milliseconds(),
	}).Info("Backtest completed")
}
