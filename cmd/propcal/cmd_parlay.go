package main

import (
	"github.com/spf13/cobra"

	"github.com/yourusername/prop-calibrator/internal/odds"
)

// parlayCmd implements 'propcal parlay'
var parlayCmd = &cobra.Command{
	Use:   "parlay p:odds [p:odds...]",
	Short: "Value a multi-leg entry",
	Long: `Price a multi-leg entry from its legs, each given as hit probability and
American odds. Legs are treated as independent.

Examples:
  propcal parlay 0.6:-110 0.55:+120`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParlay,
}

func init() {
	rootCmd.AddCommand(parlayCmd)
}

func runParlay(cmd *cobra.Command, args []string) error {
	legs := make([]odds.Leg, len(args))
	for i, arg := range args {
		leg, err := parseLeg(arg)
		if err != nil {
			return err
		}
		legs[i] = leg
	}

	valuation, err := odds.ValueParlay(legs)
	if err != nil {
		return err
	}
	return writeJSON(cmd, valuation)
}
