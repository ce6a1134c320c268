package main

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yourusername/prop-calibrator/internal/odds"
)

var (
	priceProbability float64
	priceProjection  float64
	priceEstimate    float64
	priceOdds        float64
	priceBrier       float64
)

// priceCmd implements 'propcal price'
var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Value a single bet",
	Long: `Price one bet at American odds. The hit probability is either given
with --p or estimated from a line projection and a point estimate, optionally
shrunk by the provider's Brier score.

Examples:
  propcal price --p 0.58 --odds -110
  propcal price --projection 275.5 --estimate 301 --odds +105 --brier 0.21`,
	RunE: runPrice,
}

func init() {
	rootCmd.AddCommand(priceCmd)

	priceCmd.Flags().Float64Var(&priceProbability, "p", 0, "Hit probability in [0, 1]")
	priceCmd.Flags().Float64Var(&priceProjection, "projection", 0, "Line projection")
	priceCmd.Flags().Float64Var(&priceEstimate, "estimate", 0, "Point estimate of the stat")
	priceCmd.Flags().Float64Var(&priceOdds, "odds", -110, "American odds")
	priceCmd.Flags().Float64Var(&priceBrier, "brier", math.NaN(), "Provider Brier score used to shrink the estimate")
}

func runPrice(cmd *cobra.Command, args []string) error {
	if err := validateAmerican(priceOdds); err != nil {
		return err
	}

	p := priceProbability
	if !cmd.Flags().Changed("p") {
		p = odds.AdjustForCalibration(odds.EstimateHitProbability(priceProjection, priceEstimate), priceBrier)
	}
	if p < 0 || p > 1 || math.IsNaN(p) {
		return fmt.Errorf("hit probability must be in [0, 1], got %v", p)
	}

	return writeJSON(cmd, odds.Value(p, priceOdds))
}

// parseLeg reads a "p:odds" leg such as 0.6:-110 or 0.45:+130
func parseLeg(arg string) (odds.Leg, error) {
	parts := strings.Split(arg, ":")
	if len(parts) != 2 {
		return odds.Leg{}, fmt.Errorf("leg %q must look like p:odds", arg)
	}
	p, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil || p < 0 || p > 1 {
		return odds.Leg{}, fmt.Errorf("leg %q: probability must be in [0, 1]", arg)
	}
	american, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return odds.Leg{}, fmt.Errorf("leg %q: invalid odds: %w", arg, err)
	}
	if err := validateAmerican(american); err != nil {
		return odds.Leg{}, fmt.Errorf("leg %q: %w", arg, err)
	}
	return odds.Leg{HitProb: p, American: american}, nil
}

func validateAmerican(american float64) error {
	if american > -100 && american < 100 {
		return fmt.Errorf("american odds must be <= -100 or >= 100, got %v", american)
	}
	return nil
}

func writeJSON(cmd *cobra.Command, value any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
