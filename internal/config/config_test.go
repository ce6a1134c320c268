package config

import (
	"os"
	"strings"
	"testing"

	"github.com/yourusername/prop-calibrator/internal/calibration"
	"github.com/yourusername/prop-calibrator/internal/staking"
)

const (
	validConfigPath              = "testdata/valid_config.yaml"
	expansionConfigPath          = "testdata/expansion_config.yaml"
	expansionConfigMissingPath   = "testdata/expansion_config_missing.yaml"
	nonexistentConfigPath        = "testdata/nonexistent_config.yaml"
	expectedNoErrorLoadingConfig = "expected no error loading config, got %v"
	expectedNoErrorMsg           = "expected no error, got %v"
	expectedNonNilConfig         = "expected non-nil config"
	appName                      = "prop-calibrator"
	developmentEnv               = "development"
	invalidEnv                   = "invalid"
	localhostHost                = "localhost"
	postgresPort                 = 5432
	postgresPrefix               = "postgres://"
	testAppName                  = "test-app"
	testDBPassword               = "TEST_DB_PASSWORD"
	testMissingVar               = "TEST_MISSING_VAR"
	expandedSecretValue          = "expanded_secret_value"
)

func loadValid(t *testing.T) *Config {
	t.Helper()
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}
	return cfg
}

// TestLoadConfigSuccess tests loading a valid configuration file
func TestLoadConfigSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg == nil {
		t.Fatal(expectedNonNilConfig)
	}

	if cfg.App.Name != appName {
		t.Errorf("expected app name '%s', got '%s'", appName, cfg.App.Name)
	}

	if cfg.App.Environment != developmentEnv {
		t.Errorf("expected environment '%s', got '%s'", developmentEnv, cfg.App.Environment)
	}

	if cfg.Database.Host != localhostHost {
		t.Errorf("expected database host '%s', got '%s'", localhostHost, cfg.Database.Host)
	}

	if cfg.Database.Port != postgresPort {
		t.Errorf("expected database port %d, got %d", postgresPort, cfg.Database.Port)
	}

	if cfg.Backtest.Bootstrap.Resamples != 500 {
		t.Errorf("expected 500 bootstrap resamples, got %d", cfg.Backtest.Bootstrap.Resamples)
	}

	if cfg.Data.Columns.Prediction != "p_hit" {
		t.Errorf("expected prediction column 'p_hit', got '%s'", cfg.Data.Columns.Prediction)
	}
}

// TestLoadConfigFileNotFound tests handling of missing configuration file
func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(nonexistentConfigPath)
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

// TestLoadConfigEnvironmentVariables tests environment variable override
func TestLoadConfigEnvironmentVariables(t *testing.T) {
	t.Setenv("PROP_CALIBRATOR_APP_NAME", testAppName)
	t.Setenv("PROP_CALIBRATOR_BACKTEST_BINS", "20")

	cfg := loadValid(t)

	if cfg.App.Name != testAppName {
		t.Errorf("expected app name '%s' from environment, got '%s'", testAppName, cfg.App.Name)
	}
	if cfg.Backtest.Bins != 20 {
		t.Errorf("expected 20 bins from environment, got %d", cfg.Backtest.Bins)
	}
}

// TestLoadWithDefaultsMissingFile tests that defaults apply without a file
func TestLoadWithDefaultsMissingFile(t *testing.T) {
	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.Data.Source != "synthetic" {
		t.Errorf("expected synthetic data source, got '%s'", cfg.Data.Source)
	}
	if len(cfg.Data.Synthetic.Providers) != 4 {
		t.Errorf("expected 4 default providers, got %d", len(cfg.Data.Synthetic.Providers))
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

// TestValidateSuccess tests validation of a valid configuration
func TestValidateSuccess(t *testing.T) {
	cfg := loadValid(t)

	if err := Validate(cfg); err != nil {
		t.Fatalf("expected no validation error, got %v", err)
	}
}

// TestValidateInvalidEnvironment tests validation of invalid environment
func TestValidateInvalidEnvironment(t *testing.T) {
	cfg := loadValid(t)

	cfg.App.Environment = invalidEnv
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error for invalid environment")
	}
	if !strings.Contains(err.Error(), "Environment") {
		t.Errorf("expected environment validation error, got: %v", err)
	}
}

// TestValidateStrategies tests the strategy name rules
func TestValidateStrategies(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown bin strategy", func(c *Config) { c.Backtest.BinStrategy = "kmeans" }, "BinStrategy"},
		{"unknown stake strategy", func(c *Config) { c.Backtest.StakeStrategy = "martingale" }, "StakeStrategy"},
		{"uniform bins", func(c *Config) { c.Backtest.BinStrategy = "uniform" }, ""},
		{"fixed staking", func(c *Config) { c.Backtest.StakeStrategy = "fixed" }, ""},
		{"fixed staking without stake", func(c *Config) {
			c.Backtest.StakeStrategy = "fixed"
			c.Backtest.FixedStake = 0
		}, "fixed_stake"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadValid(t)
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestValidateCrossField tests rules spanning several sections
func TestValidateCrossField(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"alpha out of range", func(c *Config) { c.Backtest.Bootstrap.Alpha = 1.5 }},
		{"payout without profit", func(c *Config) { c.Backtest.Payout = 1 }},
		{"csv without path", func(c *Config) { c.Data.Path = "" }},
		{"http without url", func(c *Config) { c.Data.Source = "http" }},
		{"unknown source", func(c *Config) { c.Data.Source = "ftp" }},
		{"dates reversed", func(c *Config) { c.Backtest.StartDate, c.Backtest.EndDate = c.Backtest.EndDate, c.Backtest.StartDate }},
		{"bad cron", func(c *Config) { c.API.RefreshSchedule = "every so often" }},
		{"refresh without schedule", func(c *Config) { c.API.RefreshSchedule = "" }},
		{"persistence without database", func(c *Config) { c.Database.Enabled = false }},
		{"workers above resamples", func(c *Config) { c.Backtest.Bootstrap.Workers = 1000 }},
		{"idle above max", func(c *Config) { c.Database.MaxIdleConnections = 50 }},
		{"production without ssl", func(c *Config) { c.App.Environment = "production" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := loadValid(t)
			tt.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

// TestParsedStrategies tests conversion of strategy names
func TestParsedStrategies(t *testing.T) {
	cfg := loadValid(t)

	bins, err := cfg.Backtest.BinningStrategy()
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}
	if bins != calibration.StrategyQuantile {
		t.Errorf("expected quantile strategy, got %s", bins)
	}

	stake, err := cfg.Backtest.StakingStrategy()
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}
	if stake != staking.StrategyKelly {
		t.Errorf("expected kelly strategy, got %s", stake)
	}
}

// TestGetDatabaseDSN tests DSN generation
func TestGetDatabaseDSN(t *testing.T) {
	cfg := loadValid(t)

	dsn := cfg.GetDatabaseDSN()
	if !strings.HasPrefix(dsn, postgresPrefix) {
		t.Errorf("expected DSN to start with '%s', got '%s'", postgresPrefix, dsn)
	}
	if !strings.Contains(dsn, "localhost:5432/prop_calibrator") {
		t.Errorf("unexpected DSN '%s'", dsn)
	}
}

// TestEnvironmentChecks tests environment check functions
func TestEnvironmentChecks(t *testing.T) {
	cfg := &Config{App: AppConfig{Environment: developmentEnv}}
	if !cfg.IsDevelopment() || cfg.IsProduction() || cfg.IsStaging() {
		t.Error("expected only IsDevelopment() to return true")
	}

	cfg.App.Environment = "production"
	if !cfg.IsProduction() || cfg.IsDevelopment() {
		t.Error("expected only IsProduction() to return true")
	}

	cfg.App.Environment = "staging"
	if !cfg.IsStaging() {
		t.Error("expected IsStaging() to return true")
	}
}

// TestLoadConfigEnvironmentVariableExpansion tests environment variable expansion in config file
func TestLoadConfigEnvironmentVariableExpansion(t *testing.T) {
	t.Setenv(testDBPassword, expandedSecretValue)

	cfg, err := Load(expansionConfigPath)
	if err != nil {
		t.Fatalf("expected no error loading config with expansion, got %v", err)
	}

	if cfg.Database.Password != expandedSecretValue {
		t.Errorf("expected password '%s' from environment expansion, got '%s'", expandedSecretValue, cfg.Database.Password)
	}
}

// TestLoadConfigMissingEnvironmentVariable tests handling of missing environment variables
func TestLoadConfigMissingEnvironmentVariable(t *testing.T) {
	os.Unsetenv(testMissingVar)

	cfg, err := Load(expansionConfigMissingPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	// os.ExpandEnv replaces unset variables with the empty string
	if cfg.Database.Password != "" {
		t.Errorf("expected empty password, got %q", cfg.Database.Password)
	}
}

// TestOverlaySecrets tests that only non-empty secrets are applied
func TestOverlaySecrets(t *testing.T) {
	cfg := loadValid(t)

	overlaySecretsOnConfig(cfg, &SecretsOverlay{DatabasePassword: "from-secrets"})
	if cfg.Database.Password != "from-secrets" {
		t.Errorf("expected overlaid password, got '%s'", cfg.Database.Password)
	}
	if cfg.Data.URL != "" {
		t.Errorf("expected data url untouched, got '%s'", cfg.Data.URL)
	}
}
