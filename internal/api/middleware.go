package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/yourusername/prop-calibrator/internal/metrics"
)

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// route wraps a handler with method checking, optional rate limiting,
// request logging and request metrics. path is used as the metric label so
// unknown URLs cannot grow label cardinality.
func (s *Server) route(path, method string, limited bool, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			duration := time.Since(start)
			metrics.RecordAPIRequest(path, strconv.Itoa(rec.status), duration.Seconds())
			s.logger.LogRequest(r.Method, path, rec.status, duration, r.RemoteAddr)
		}()

		if r.Method != method {
			rec.Header().Set("Allow", method)
			writeError(rec, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		if limited && !s.limiter.Allow() {
			metrics.RecordRateLimited(path)
			s.logger.LogRateLimited(path, r.RemoteAddr)
			rec.Header().Set("Retry-After", "1")
			writeError(rec, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next(rec, r)
	})
}
