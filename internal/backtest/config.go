package backtest

import (
	"fmt"
	"time"

	"github.com/yourusername/prop-calibrator/internal/bootstrap"
	"github.com/yourusername/prop-calibrator/internal/calibration"
	"github.com/yourusername/prop-calibrator/internal/config"
	"github.com/yourusername/prop-calibrator/internal/staking"
)

const dateLayout = "2006-01-02"

// Config holds the resolved settings of a backtest run
type Config struct {
	Market             string
	StartDate          time.Time
	EndDate            time.Time
	Bins               int
	BinStrategy        calibration.Strategy
	DecimalOdds        float64
	StakeStrategy      staking.Strategy
	FixedStake         float64
	Bootstrap          bootstrap.Config
	BootstrapEnabled   bool
	ProviderComparison bool
	MonteCarlo         MonteCarloConfig
	WalkForward        WalkForwardConfig
	OutputPath         string
	ExportEnabled      bool
}

// DefaultConfig returns the settings used when no configuration file is given
func DefaultConfig() Config {
	return Config{
		Bins:               calibration.DefaultBins,
		BinStrategy:        calibration.StrategyQuantile,
		DecimalOdds:        2.0,
		StakeStrategy:      staking.StrategyKelly,
		FixedStake:         0.01,
		Bootstrap:          bootstrap.Config{Resamples: 500, Alpha: bootstrap.DefaultAlpha, Workers: 1},
		BootstrapEnabled:   true,
		ProviderComparison: true,
		MonteCarlo:         MonteCarloConfig{Iterations: 500},
		WalkForward:        WalkForwardConfig{Windows: 4},
	}
}

// FromConfig converts app config to backtest config
func FromConfig(cfg *config.BacktestConfig, features config.FeaturesConfig) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("backtest config is required")
	}

	binStrategy, err := cfg.BinningStrategy()
	if err != nil {
		return Config{}, err
	}
	stakeStrategy, err := cfg.StakingStrategy()
	if err != nil {
		return Config{}, err
	}

	bt := Config{
		Market:        cfg.Market,
		Bins:          cfg.Bins,
		BinStrategy:   binStrategy,
		DecimalOdds:   cfg.Payout,
		StakeStrategy: stakeStrategy,
		FixedStake:    cfg.FixedStake,
		Bootstrap: bootstrap.Config{
			Resamples: cfg.Bootstrap.Resamples,
			Alpha:     cfg.Bootstrap.Alpha,
			Workers:   cfg.Bootstrap.Workers,
			Seed:      cfg.Bootstrap.Seed,
		},
		BootstrapEnabled:   features.BootstrapEnabled,
		ProviderComparison: features.ProviderComparisonEnabled,
		MonteCarlo: MonteCarloConfig{
			Iterations: cfg.MonteCarlo,
			Seed:       cfg.Bootstrap.Seed,
		},
		WalkForward:   WalkForwardConfig{Windows: cfg.Windows},
		OutputPath:    cfg.OutputPath,
		ExportEnabled: cfg.ExportEnabled,
	}

	if cfg.StartDate != "" {
		if bt.StartDate, err = time.Parse(dateLayout, cfg.StartDate); err != nil {
			return Config{}, fmt.Errorf("invalid start date: %w", err)
		}
	}
	if cfg.EndDate != "" {
		end, err := time.Parse(dateLayout, cfg.EndDate)
		if err != nil {
			return Config{}, fmt.Errorf("invalid end date: %w", err)
		}
		// inclusive of the whole end day
		bt.EndDate = end.Add(24*time.Hour - time.Nanosecond)
	}

	return bt, bt.Validate()
}

// Validate validates backtest config parameters
func (c Config) Validate() error {
	if !c.StartDate.IsZero() && !c.EndDate.IsZero() && c.StartDate.After(c.EndDate) {
		return fmt.Errorf("start date must be before end date")
	}
	if c.Bins < 1 {
		return fmt.Errorf("bins must be positive")
	}
	if !c.BinStrategy.Valid() {
		return fmt.Errorf("unknown binning strategy %s", c.BinStrategy)
	}
	if !(c.DecimalOdds > 1) {
		return fmt.Errorf("decimal odds must be greater than 1")
	}
	if c.FixedStake < 0 {
		return fmt.Errorf("fixed stake cannot be negative")
	}
	if c.Bootstrap.Alpha < 0 || c.Bootstrap.Alpha >= 1 {
		return fmt.Errorf("bootstrap alpha must be in (0, 1)")
	}
	if c.MonteCarlo.Iterations < 0 {
		return fmt.Errorf("monte carlo iterations cannot be negative")
	}
	if c.WalkForward.Windows < 0 {
		return fmt.Errorf("walk-forward windows cannot be negative")
	}
	return nil
}
