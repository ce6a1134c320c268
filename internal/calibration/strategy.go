package calibration

import (
	"fmt"
	"strings"

	"github.com/yourusername/prop-calibrator/internal/models"
)

// Strategy selects how bin edges are placed
type Strategy int

const (
	// StrategyQuantile places edges so that bins hold roughly equal counts
	StrategyQuantile Strategy = iota
	// StrategyUniform places edges at equal widths across the observed range
	StrategyUniform
)

// String returns the configuration name of the strategy
func (s Strategy) String() string {
	switch s {
	case StrategyQuantile:
		return "quantile"
	case StrategyUniform:
		return "uniform"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// Valid reports whether s is one of the known strategies
func (s Strategy) Valid() bool {
	return s == StrategyQuantile || s == StrategyUniform
}

// ParseStrategy resolves a configuration name to a Strategy
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "quantile":
		return StrategyQuantile, nil
	case "uniform":
		return StrategyUniform, nil
	default:
		return 0, fmt.Errorf("binning strategy %q: %w", name, models.ErrUnknownStrategy)
	}
}
