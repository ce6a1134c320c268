package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// APILogger provides request logging for the HTTP API.
type APILogger struct {
	*logrus.Entry
}

// NewAPILogger creates a new API logger.
func NewAPILogger(baseLogger *logrus.Logger) *APILogger {
	return &APILogger{
		Entry: baseLogger.WithField("component", "api"),
	}
}

// LogRequest logs a served request.
func (al *APILogger) LogRequest(method, path string, status int, duration time.Duration, remoteAddr string) {
	entry := al.WithFields(logrus.Fields{
		"method":      method,
		"path":        path,
		"status":      status,
		"duration_ms": float64(duration.Microseconds()) / 1000,
		"remote_addr": remoteAddr,
	})
	if status >= 500 {
		entry.Error("Request failed")
		return
	}
	entry.Debug("Request served")
}

// LogRateLimited logs a rejected request.
func (al *APILogger) LogRateLimited(path, remoteAddr string) {
	al.WithFields(logrus.Fields{
		"path":        path,
		"remote_addr": remoteAddr,
	}).Warn("Request rate limited")
}

// LogValuation logs a priced bet or entry.
func (al *APILogger) LogValuation(kind string, legs int, probability, ev, kelly float64) {
	al.WithFields(logrus.Fields{
		"kind":           kind,
		"legs":           legs,
		"p_hit":          finite(probability),
		"ev":             finite(ev),
		"kelly_fraction": finite(kelly),
	}).Info("Valuation computed")
}

// LogCalibrationRefresh logs a recomputation of the cached calibration reports.
func (al *APILogger) LogCalibrationRefresh(markets int, duration time.Duration, err error) {
	entry := al.WithFields(logrus.Fields{
		"markets":     markets,
		"duration_ms": duration.Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Error("Calibration refresh failed")
		return
	}
	entry.Info("Calibration refresh completed")
}
