// Package config provides configuration management for the prop calibrator.
package config

import (
	"fmt"

	"github.com/yourusername/prop-calibrator/internal/calibration"
	"github.com/yourusername/prop-calibrator/internal/staking"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Data     DataConfig     `mapstructure:"data" validate:"required"`
	Backtest BacktestConfig `mapstructure:"backtest" validate:"required"`
	API      APIConfig      `mapstructure:"api" validate:"required"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Features FeaturesConfig `mapstructure:"features"`
	Secrets  SecretsConfig  `mapstructure:"secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration. Persistence
// of backtest runs is optional, so the connection fields are only required
// when Enabled is set.
type DatabaseConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	Host               string `mapstructure:"host" validate:"required_if=Enabled true"`
	Port               int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required_if=Enabled true"`
	User               string `mapstructure:"user" validate:"required_if=Enabled true"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"gte=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"gte=0"`
}

// DataConfig selects where observations are loaded from
type DataConfig struct {
	Source         string          `mapstructure:"source" validate:"required,oneof=csv http synthetic"`
	Path           string          `mapstructure:"path"`
	URL            string          `mapstructure:"url" validate:"omitempty,url"`
	RateLimit      float64         `mapstructure:"rate_limit" validate:"gte=0"`
	TimeoutSeconds int             `mapstructure:"timeout_seconds" validate:"gte=0"`
	MaxRetries     int             `mapstructure:"max_retries" validate:"gte=0"`
	Columns        ColumnsConfig   `mapstructure:"columns"`
	Synthetic      SyntheticConfig `mapstructure:"synthetic"`
}

// ColumnsConfig names the input columns
type ColumnsConfig struct {
	Prediction string `mapstructure:"prediction"`
	Outcome    string `mapstructure:"outcome"`
	Provider   string `mapstructure:"provider"`
	Odds       string `mapstructure:"odds"`
	Stake      string `mapstructure:"stake"`
	Market     string `mapstructure:"market"`
	Date       string `mapstructure:"date"`
}

// SyntheticConfig configures the generated demo dataset
type SyntheticConfig struct {
	Rows      int      `mapstructure:"rows" validate:"gte=0"`
	Seed      int64    `mapstructure:"seed"`
	Market    string   `mapstructure:"market"`
	Providers []string `mapstructure:"providers"`
}

// BacktestConfig represents backtesting configuration
type BacktestConfig struct {
	Market        string          `mapstructure:"market"`
	StartDate     string          `mapstructure:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate       string          `mapstructure:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Bins          int             `mapstructure:"bins" validate:"required,gt=0"`
	BinStrategy   string          `mapstructure:"bin_strategy" validate:"required,binstrategy"`
	Payout        float64         `mapstructure:"payout" validate:"required,gt=1"`
	StakeStrategy string          `mapstructure:"stake_strategy" validate:"required,stakestrategy"`
	FixedStake    float64         `mapstructure:"fixed_stake" validate:"gte=0"`
	Bootstrap     BootstrapConfig `mapstructure:"bootstrap" validate:"required"`
	MonteCarlo    int             `mapstructure:"monte_carlo_iterations" validate:"gte=0"`
	Windows       int             `mapstructure:"stability_windows" validate:"gte=0"`
	OutputPath    string          `mapstructure:"output_path"`
	ExportEnabled bool            `mapstructure:"export_enabled"`
}

// BootstrapConfig configures confidence interval estimation
type BootstrapConfig struct {
	Resamples int     `mapstructure:"resamples" validate:"required,gt=0"`
	Alpha     float64 `mapstructure:"alpha" validate:"required,gt=0,lt=1"`
	Workers   int     `mapstructure:"workers" validate:"gte=0"`
	Seed      int64   `mapstructure:"seed"`
}

// APIConfig represents the HTTP API configuration
type APIConfig struct {
	Port                int     `mapstructure:"port" validate:"required,min=1,max=65535"`
	RateLimit           float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
	Burst               int     `mapstructure:"burst" validate:"required,gt=0"`
	CacheTTLSeconds     int     `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	RefreshSchedule     string  `mapstructure:"refresh_schedule" validate:"omitempty,cronspec"`
	ReadTimeoutSeconds  int     `mapstructure:"read_timeout_seconds" validate:"gte=0"`
	WriteTimeoutSeconds int     `mapstructure:"write_timeout_seconds" validate:"gte=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

// FeaturesConfig represents feature flags
type FeaturesConfig struct {
	ProviderComparisonEnabled bool `mapstructure:"provider_comparison_enabled"`
	BootstrapEnabled          bool `mapstructure:"bootstrap_enabled"`
	PersistenceEnabled        bool `mapstructure:"persistence_enabled"`
	CalibrationRefreshEnabled bool `mapstructure:"calibration_refresh_enabled"`
}

// SecretsConfig points at an optional AWS Secrets Manager overlay
type SecretsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Region     string `mapstructure:"region" validate:"required_if=Enabled true"`
	SecretName string `mapstructure:"secret_name" validate:"required_if=Enabled true"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// BinningStrategy returns the parsed calibration binning strategy
func (b BacktestConfig) BinningStrategy() (calibration.Strategy, error) {
	return calibration.ParseStrategy(b.BinStrategy)
}

// StakingStrategy returns the parsed staking strategy
func (b BacktestConfig) StakingStrategy() (staking.Strategy, error) {
	return staking.ParseStrategy(b.StakeStrategy)
}
