package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/yourusername/prop-calibrator/internal/backtest"
	"github.com/yourusername/prop-calibrator/internal/datasource"
	"github.com/yourusername/prop-calibrator/internal/models"
	"github.com/yourusername/prop-calibrator/internal/provider"
)

var (
	providersMarket string
	providersFormat string
	providersOutput string
)

// providersCmd implements 'propcal providers'
var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Compare the calibration of each data provider",
	Long: `Group the observations by provider label and report each provider's
Brier score, prediction count and calibration bins, ranked best first.

Examples:
  propcal providers --data data/props.csv
  propcal providers --market receiving_yards --format json --output providers.json`,
	RunE: runProviders,
}

func init() {
	rootCmd.AddCommand(providersCmd)

	providersCmd.Flags().StringVar(&providersMarket, "market", "", "Only compare this market")
	providersCmd.Flags().StringVar(&providersFormat, "format", "table", "Output format: table, json")
	providersCmd.Flags().StringVar(&providersOutput, "output", "", "Write the JSON report to this file")
}

type providerReport struct {
	Market   string                          `json:"market,omitempty"`
	Metrics  models.ProviderComparisonReport `json:"provider_metrics"`
	Rankings []provider.Ranking              `json:"provider_ranking"`
}

func runProviders(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	observations, err := loadObservations(ctx, cfg, log)
	if err != nil {
		return err
	}
	observations = datasource.Filter{Market: providersMarket}.Apply(observations)

	comparison, err := provider.Compare(observations)
	if err != nil {
		return fmt.Errorf("provider comparison failed: %w", err)
	}
	report := providerReport{
		Market:   providersMarket,
		Metrics:  comparison,
		Rankings: provider.Rank(comparison),
	}

	if providersOutput != "" {
		if err := backtest.ExportToJSON(report, providersOutput); err != nil {
			return err
		}
		log.WithField("path", providersOutput).Info("Wrote provider report")
	}

	switch strings.ToLower(providersFormat) {
	case "json":
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	case "table":
		writeProviderTable(cmd.OutOrStdout(), report.Rankings)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", providersFormat)
	}
}

func writeProviderTable(w io.Writer, rankings []provider.Ranking) {
	if len(rankings) == 0 {
		fmt.Fprintln(w, "No provider labels found")
		return
	}
	table := tablewriter.NewWriter(w)
	table.Header("#", "Provider", "Brier", "N", "Bins")
	for i, r := range rankings {
		brier := "n/a"
		if models.IsDefined(r.BrierScore) {
			brier = fmt.Sprintf("%.4f", r.BrierScore)
		}
		table.Append(
			fmt.Sprintf("%d", i+1),
			r.Provider,
			brier,
			fmt.Sprintf("%d", r.NPredictions),
			fmt.Sprintf("%d", len(r.Calibration)),
		)
	}
	table.Render()
}
