package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	// DefaultPath is used when no configuration path is given
	DefaultPath = "config/config.yaml"
	envPrefix   = "PROP_CALIBRATOR"
)

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional fields.
// A missing file is not an error: defaults and environment variables apply.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultPath
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "prop-calibrator")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle_connections", 2)

	v.SetDefault("data.source", "synthetic")
	v.SetDefault("data.rate_limit", 5.0)
	v.SetDefault("data.timeout_seconds", 30)
	v.SetDefault("data.max_retries", 3)
	v.SetDefault("data.synthetic.rows", 200)
	v.SetDefault("data.synthetic.seed", 42)
	v.SetDefault("data.synthetic.market", "passing_yards")
	v.SetDefault("data.synthetic.providers", []string{"DraftKings", "FanDuel", "BetMGM", "PointsBet"})

	v.SetDefault("backtest.bins", 10)
	v.SetDefault("backtest.bin_strategy", "quantile")
	v.SetDefault("backtest.payout", 2.0)
	v.SetDefault("backtest.stake_strategy", "kelly")
	v.SetDefault("backtest.fixed_stake", 0.01)
	v.SetDefault("backtest.bootstrap.resamples", 500)
	v.SetDefault("backtest.bootstrap.alpha", 0.05)
	v.SetDefault("backtest.bootstrap.workers", 4)
	v.SetDefault("backtest.monte_carlo_iterations", 500)
	v.SetDefault("backtest.stability_windows", 4)
	v.SetDefault("backtest.output_path", "data/cache/backtests")

	v.SetDefault("api.port", 5000)
	v.SetDefault("api.rate_limit", 20.0)
	v.SetDefault("api.burst", 40)
	v.SetDefault("api.cache_ttl_seconds", 3600)
	v.SetDefault("api.read_timeout_seconds", 10)
	v.SetDefault("api.write_timeout_seconds", 30)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("features.provider_comparison_enabled", true)
	v.SetDefault("features.bootstrap_enabled", true)
}
