// Package api serves bet valuation and cached provider calibration over HTTP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/prop-calibrator/internal/logger"
	"github.com/yourusername/prop-calibrator/internal/metrics"
)

// DatabasePinger defines the interface for checking database connectivity.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp,omitempty"`
	Version   string `json:"version,omitempty"`
}

// ReadyResponse represents the JSON response for readiness check endpoints.
type ReadyResponse struct {
	Status   string            `json:"status"`
	Service  string            `json:"service"`
	Checks   map[string]string `json:"checks,omitempty"`
	Duration string            `json:"duration,omitempty"`
}

// ErrorResponse is returned by every failing API call.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Config holds the configuration for the API server.
type Config struct {
	ServiceName  string
	Version      string
	Port         int
	RateLimit    float64
	Burst        int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MetricsPath  string
	Logger       *logrus.Logger
	DB           DatabasePinger
	Store        *CalibrationStore
}

// Server is the HTTP API server.
type Server struct {
	config   Config
	server   *http.Server
	logger   *logger.APILogger
	limiter  *rate.Limiter
	validate *validator.Validate
	store    *CalibrationStore
	db       DatabasePinger
	mu       sync.RWMutex
	ready    bool

	shutdownOnce sync.Once
	shutdownErr  error
}

// NewServer creates a new API server.
func NewServer(cfg Config) *Server {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "prop-calibrator"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 5 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Store == nil {
		cfg.Store = NewCalibrationStore(0)
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &Server{
		config:   cfg,
		logger:   logger.NewAPILogger(cfg.Logger),
		limiter:  rate.NewLimiter(limit, cfg.Burst),
		validate: newRequestValidator(),
		store:    cfg.Store,
		db:       cfg.DB,
	}
}

// SetReady marks the server as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// IsReady returns whether the server is ready.
func (s *Server) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Handler builds the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/health", s.route("/health", http.MethodGet, false, s.handleHealth))
	mux.Handle("/live", s.route("/live", http.MethodGet, false, s.handleLive))
	mux.Handle("/ready", s.route("/ready", http.MethodGet, false, s.handleReady))
	mux.Handle("/api/predict", s.route("/api/predict", http.MethodPost, true, s.handlePredict))
	mux.Handle("/api/multi-leg", s.route("/api/multi-leg", http.MethodPost, true, s.handleMultiLeg))
	mux.Handle("/api/calibration", s.route("/api/calibration", http.MethodGet, true, s.handleCalibration))
	if s.config.MetricsPath != "" {
		mux.Handle(s.config.MetricsPath, metrics.Handler())
	}
	return mux
}

// Start starts the server in the background and shuts it down when ctx is
// cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.logger.WithFields(logrus.Fields{
			"port":    s.config.Port,
			"service": s.config.ServiceName,
		}).Info("API server starting")

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Error("API server error")
		}
	}()

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	return nil
}

// Shutdown gracefully shuts down the server. Only the first call has an
// effect; later calls return its result.
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}

	s.shutdownOnce.Do(func() {
		s.logger.Info("API server shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.shutdownErr = s.server.Shutdown(ctx)
	})
	return s.shutdownErr
}

// handleHealth handles the /health endpoint - basic liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   s.config.ServiceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   s.config.Version,
	})
}

// handleLive handles the /live endpoint - kubernetes liveness probe.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Service: s.config.ServiceName,
	})
}

// handleReady handles the /ready endpoint - checks the calibration store and
// database connectivity.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	checks := make(map[string]string)
	allHealthy := true

	if !s.IsReady() {
		allHealthy = false
		checks["service"] = "not_ready"
	} else {
		checks["service"] = "ok"
	}
	checks["calibration_markets"] = fmt.Sprintf("%d", s.store.ItemCount())

	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := s.db.Ping(ctx); err != nil {
			allHealthy = false
			checks["database"] = fmt.Sprintf("error: %v", err)
		} else {
			checks["database"] = "ok"
		}
	}

	response := ReadyResponse{
		Service:  s.config.ServiceName,
		Checks:   checks,
		Duration: time.Since(start).String(),
	}

	if allHealthy {
		response.Status = "ok"
		writeJSON(w, http.StatusOK, response)
		return
	}
	response.Status = "not_ready"
	writeJSON(w, http.StatusServiceUnavailable, response)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Success: false, Error: message})
}
