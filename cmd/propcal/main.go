// Package main provides the prop calibrator command line tool.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/prop-calibrator/internal/config"
	"github.com/yourusername/prop-calibrator/internal/datasource"
	"github.com/yourusername/prop-calibrator/internal/logger"
	"github.com/yourusername/prop-calibrator/internal/metrics"
	"github.com/yourusername/prop-calibrator/internal/models"
)

var (
	configPath string
	logLevel   string
	dataPath   string
)

// rootCmd is the base command for the prop calibrator CLI
var rootCmd = &cobra.Command{
	Use:   "propcal",
	Short: "Backtest and calibrate probabilistic prop predictions",
	Long: `propcal measures how well predicted hit probabilities match realized
outcomes, attaches bootstrap confidence intervals, compares data providers and
turns probabilities into expected value and Kelly stakes.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "Read observations from this CSV file instead of the configured source")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration, overlays secrets and validates it
func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.LoadWithDefaults(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.App.LogLevel = logLevel
	}
	if dataPath != "" {
		cfg.Data.Source = string(datasource.CSVSourceType)
		cfg.Data.Path = dataPath
	}
	if err := config.LoadSecrets(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to load secrets: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *logrus.Logger {
	log := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	log.SetOutput(os.Stderr)
	return log
}

// loadObservations reads the configured data source
func loadObservations(ctx context.Context, cfg *config.Config, log *logrus.Logger) ([]models.Observation, error) {
	source, err := datasource.NewFactory(cfg.Data, log).Create()
	if err != nil {
		return nil, err
	}

	observations, err := source.Load(ctx)
	if err != nil {
		metrics.RecordDataSourceLoad(source.Name(), "failure")
		return nil, fmt.Errorf("failed to load observations from %s: %w", source.Name(), err)
	}
	metrics.RecordDataSourceLoad(source.Name(), "success")

	log.WithFields(logrus.Fields{
		"source":       source.Name(),
		"observations": len(observations),
	}).Info("Loaded observations")
	return observations, nil
}
