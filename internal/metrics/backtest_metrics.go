package metrics

import "github.com/prometheus/client_golang/prometheus"

// Backtest counter vectors
var (
	BacktestRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "backtest_runs_total",
		Help:      "Total number of backtest runs by market and status",
	}, []string{"market", "status"})
	BootstrapDiscardedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "bootstrap_discarded_total",
		Help:      "Total number of bootstrap resamples discarded as undefined",
	}, []string{"statistic"})
)

// Backtest histogram vectors
var (
	BacktestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "backtest_duration_seconds",
		Help:      "Duration of backtest runs in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
	}, []string{"market"})
)

// Backtest gauge vectors
var (
	BacktestBrierScore = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "backtest_brier_score",
		Help:      "Brier score of the latest backtest per market",
	}, []string{"market"})
	BacktestECE = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "backtest_expected_calibration_error",
		Help:      "Expected calibration error of the latest backtest per market",
	}, []string{"market"})
	BacktestObservations = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "backtest_observations",
		Help:      "Number of usable observations in the latest backtest per market",
	}, []string{"market"})
	ProviderBrierScore = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "provider_brier_score",
		Help:      "Brier score of the latest backtest per provider",
	}, []string{"provider"})
	StakingFinalBankroll = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "staking_final_bankroll",
		Help:      "Final bankroll of the latest staking simulation by strategy",
	}, []string{"strategy"})
)

// RecordBacktestRun records a backtest run event.
// status should be one of: "success", "failure"
func RecordBacktestRun(market, status string, durationSeconds float64) {
	BacktestRunsTotal.WithLabelValues(market, status).Inc()
	BacktestDuration.WithLabelValues(market).Observe(durationSeconds)
}

// UpdateCalibrationScores updates the per-market score gauges. Undefined
// scores leave the previous reading in place.
func UpdateCalibrationScores(market string, n int, brier, ece float64) {
	BacktestObservations.WithLabelValues(market).Set(float64(n))
	setFinite(BacktestBrierScore.WithLabelValues(market), brier)
	setFinite(BacktestECE.WithLabelValues(market), ece)
}

// RecordBootstrapDiscards adds the number of discarded resamples for a statistic.
func RecordBootstrapDiscards(statistic string, discarded int) {
	if discarded <= 0 {
		return
	}
	BootstrapDiscardedTotal.WithLabelValues(statistic).Add(float64(discarded))
}

// UpdateProviderBrier updates the Brier gauge for a provider.
func UpdateProviderBrier(provider string, brier float64) {
	setFinite(ProviderBrierScore.WithLabelValues(provider), brier)
}

// UpdateFinalBankroll updates the final bankroll gauge for a staking strategy.
func UpdateFinalBankroll(strategy string, bankroll float64) {
	setFinite(StakingFinalBankroll.WithLabelValues(strategy), bankroll)
}
