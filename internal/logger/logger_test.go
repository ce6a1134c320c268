package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/prop-calibrator/internal/models"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLogger(t *testing.T) {
	log := NewLogger("debug", "production")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	log = NewLogger("loud", "development")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
}

func TestBacktestLoggerRunStarted(t *testing.T) {
	log, buf := setupTestLogger()
	backtestLogger := NewBacktestLogger(log)

	backtestLogger.LogRunStarted("run_001", "passing_yards", 200)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "backtest", logEntry["component"])
	assert.Equal(t, "run_001", logEntry["run_id"])
	assert.Equal(t, float64(200), logEntry["observations"])
}

func TestBacktestLoggerMetricsWithUndefinedValues(t *testing.T) {
	log, buf := setupTestLogger()
	backtestLogger := NewBacktestLogger(log)

	report := models.EmptyMetricsReport()
	backtestLogger.LogMetrics("run_001", "passing_yards", report)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry, "NaN fields must not break the JSON formatter")
	assert.Nil(t, logEntry["brier"])
	assert.Equal(t, float64(0), logEntry["n"])
}

func TestBacktestLoggerBootstrap(t *testing.T) {
	log, buf := setupTestLogger()
	backtestLogger := NewBacktestLogger(log)

	backtestLogger.LogBootstrap("run_001", "mean_ev", models.BootstrapResult{Median: 0.02, Lower: -0.01, Upper: 0.05, Resamples: 480}, 500)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "info", logEntry["level"])
	assert.Equal(t, float64(20), logEntry["discarded"])

	buf.Reset()
	backtestLogger.LogBootstrap("run_001", "brier", models.UndefinedBootstrap(), 500)
	logEntry = parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
}

func TestBacktestLoggerStaking(t *testing.T) {
	log, buf := setupTestLogger()
	backtestLogger := NewBacktestLogger(log)

	backtestLogger.LogStaking("run_001", "fixed", models.StakingTrajectory{0.5, 0}, 1)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
	assert.Equal(t, float64(1), logEntry["max_drawdown"])
}

func TestBacktestLoggerProviderSummary(t *testing.T) {
	log, buf := setupTestLogger()
	backtestLogger := NewBacktestLogger(log)

	backtestLogger.LogProviderSummary("run_001", "FanDuel", models.ProviderSummary{BrierScore: math.NaN(), NPredictions: 3})

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "FanDuel", logEntry["provider"])
	assert.Nil(t, logEntry["brier_score"])
}

func TestBacktestLoggerRunCompleted(t *testing.T) {
	log, buf := setupTestLogger()
	NewBacktestLogger(log).LogRunCompleted("run_001", "passing_yards", 1500*time.Millisecond)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, float64(1500), logEntry["duration_ms"])
}

func TestAPILoggerRequest(t *testing.T) {
	log, buf := setupTestLogger()
	apiLogger := NewAPILogger(log)

	apiLogger.LogRequest("POST", "/api/predict", 500, 2*time.Millisecond, "127.0.0.1")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "api", logEntry["component"])
	assert.Equal(t, "error", logEntry["level"])
	assert.Equal(t, float64(2), logEntry["duration_ms"])
}

func TestAPILoggerValuation(t *testing.T) {
	log, buf := setupTestLogger()
	NewAPILogger(log).LogValuation("multi_leg", 2, 0.42, 0.53, 0.2)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "multi_leg", logEntry["kind"])
	assert.Equal(t, 0.42, logEntry["p_hit"])
}

func TestAPILoggerCalibrationRefresh(t *testing.T) {
	log, buf := setupTestLogger()
	NewAPILogger(log).LogCalibrationRefresh(2, time.Second, errors.New("source unavailable"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "error", logEntry["level"])
	assert.Equal(t, "source unavailable", logEntry["error"])
}
