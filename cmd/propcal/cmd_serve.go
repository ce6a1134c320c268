package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/prop-calibrator/internal/api"
	"github.com/yourusername/prop-calibrator/internal/config"
	"github.com/yourusername/prop-calibrator/internal/database"
	"github.com/yourusername/prop-calibrator/internal/datasource"
	"github.com/yourusername/prop-calibrator/internal/metrics"
	"github.com/yourusername/prop-calibrator/internal/scheduler"
)

var version = "dev"

var servePort int

// serveCmd implements 'propcal serve'
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve bet valuation and provider calibration over HTTP",
	Long: `Start the HTTP API. Provider calibration is computed from the configured
data source at startup and, when api.refresh_schedule is set, recomputed on that
cron schedule.

Endpoints:
  GET  /health, /live, /ready
  POST /api/predict
  POST /api/multi-leg
  GET  /api/calibration?market=passing_yards
  GET  /metrics`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 0, "Override the configured port")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	metrics.InitRegistry()

	var db *database.DB
	if cfg.Database.Enabled {
		db, err = database.NewDB(ctx, &cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
	}

	store := api.NewCalibrationStore(cacheTTL(cfg))
	source, err := datasource.NewFactory(cfg.Data, log).Create()
	if err != nil {
		return err
	}
	refresher := api.NewRefresher(source, store, log)
	if err := refresher.Refresh(ctx); err != nil {
		log.WithError(err).Warn("Initial calibration refresh failed; serving without calibration data")
	}

	sched, err := startScheduler(cfg, refresher, log)
	if err != nil {
		return err
	}
	if sched != nil {
		defer sched.Stop()
	}

	port := cfg.API.Port
	if servePort != 0 {
		port = servePort
	}
	serverCfg := api.Config{
		ServiceName:  cfg.App.Name,
		Version:      version,
		Port:         port,
		RateLimit:    cfg.API.RateLimit,
		Burst:        cfg.API.Burst,
		ReadTimeout:  time.Duration(cfg.API.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.API.WriteTimeoutSeconds) * time.Second,
		Logger:       log,
		Store:        store,
	}
	if cfg.Metrics.Enabled {
		serverCfg.MetricsPath = cfg.Metrics.Path
	}
	if db != nil {
		serverCfg.DB = db
	}

	server := api.NewServer(serverCfg)
	if err := server.Start(ctx); err != nil {
		return err
	}
	server.SetReady(true)

	<-ctx.Done()
	server.SetReady(false)
	log.Info("Shutdown signal received")
	return server.Shutdown()
}

// cacheTTL keeps calibration entries forever unless they are refreshed on a
// schedule
func cacheTTL(cfg *config.Config) time.Duration {
	if !scheduledRefresh(cfg) {
		return 0
	}
	return time.Duration(cfg.API.CacheTTLSeconds) * time.Second
}

func scheduledRefresh(cfg *config.Config) bool {
	return cfg.Features.CalibrationRefreshEnabled && cfg.API.RefreshSchedule != ""
}

func startScheduler(cfg *config.Config, refresher scheduler.Refresher, log *logrus.Logger) (*scheduler.Scheduler, error) {
	if !scheduledRefresh(cfg) {
		return nil, nil
	}

	sched := scheduler.NewScheduler(refresher, log)
	if _, err := sched.ScheduleCalibrationRefresh(cfg.API.RefreshSchedule, 0); err != nil {
		return nil, err
	}
	if err := sched.Start(); err != nil {
		return nil, err
	}
	return sched, nil
}
