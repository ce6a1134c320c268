package staking

import (
	"fmt"
	"strings"

	"github.com/yourusername/prop-calibrator/internal/models"
)

// Strategy selects how much of the bankroll is put on each bet
type Strategy int

const (
	// StrategyFixed stakes the same amount on every bet
	StrategyFixed Strategy = iota
	// StrategyKelly stakes the Kelly fraction of the current bankroll
	StrategyKelly
)

func (s Strategy) String() string {
	switch s {
	case StrategyFixed:
		return "fixed"
	case StrategyKelly:
		return "kelly"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy resolves a configuration name to a Strategy
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "fixed":
		return StrategyFixed, nil
	case "kelly":
		return StrategyKelly, nil
	default:
		return 0, fmt.Errorf("staking strategy %q: %w", name, models.ErrUnknownStrategy)
	}
}
