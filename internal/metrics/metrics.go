// Package metrics provides the centralized Prometheus registry for the calibrator.
package metrics

import (
	"math"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric exported by this package
const Namespace = "prop_calibrator"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// API counter vectors
var (
	APIRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "api_requests_total",
		Help:      "Total number of API requests by path and status code",
	}, []string{"path", "status"})
	APIRateLimitedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "api_rate_limited_total",
		Help:      "Total number of API requests rejected by the rate limiter",
	}, []string{"path"})
	CalibrationRefreshesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "calibration_refreshes_total",
		Help:      "Total number of calibration table refreshes by status",
	}, []string{"status"})
	DataSourceLoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "datasource_loads_total",
		Help:      "Total number of observation loads by source and status",
	}, []string{"source", "status"})
)

// Histogram metrics
var (
	APIRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "api_request_duration_seconds",
		Help:      "Duration of API requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"path"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register API metrics
		registry.MustRegister(APIRequestsTotal)
		registry.MustRegister(APIRateLimitedTotal)
		registry.MustRegister(APIRequestDuration)
		registry.MustRegister(CalibrationRefreshesTotal)
		registry.MustRegister(DataSourceLoadsTotal)

		// Register backtest metrics
		registry.MustRegister(BacktestRunsTotal)
		registry.MustRegister(BacktestDuration)
		registry.MustRegister(BacktestBrierScore)
		registry.MustRegister(BacktestECE)
		registry.MustRegister(BacktestObservations)
		registry.MustRegister(BootstrapDiscardedTotal)
		registry.MustRegister(ProviderBrierScore)
		registry.MustRegister(StakingFinalBankroll)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordAPIRequest records a served API request.
func RecordAPIRequest(path, status string, durationSeconds float64) {
	APIRequestsTotal.WithLabelValues(path, status).Inc()
	APIRequestDuration.WithLabelValues(path).Observe(durationSeconds)
}

// RecordRateLimited records a request rejected by the rate limiter.
func RecordRateLimited(path string) {
	APIRateLimitedTotal.WithLabelValues(path).Inc()
}

// RecordCalibrationRefresh records a calibration refresh attempt.
// status should be one of: "success", "failure"
func RecordCalibrationRefresh(status string) {
	CalibrationRefreshesTotal.WithLabelValues(status).Inc()
}

// RecordDataSourceLoad records an observation load from a data source.
func RecordDataSourceLoad(source, status string) {
	DataSourceLoadsTotal.WithLabelValues(source, status).Inc()
}

// setFinite only writes defined values so gauges keep their last real reading.
func setFinite(g prometheus.Gauge, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	g.Set(v)
}
