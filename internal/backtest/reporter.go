package backtest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/yourusername/prop-calibrator/internal/models"
)

// WriteConsoleReport renders a result as terminal tables
func WriteConsoleReport(w io.Writer, result *Result) {
	fmt.Fprintf(w, "\nBacktest Report: %s\n", marketLabel(result.Market))
	fmt.Fprintf(w, "================\n")
	fmt.Fprintf(w, "Run:          %s\n", result.RunID)
	fmt.Fprintf(w, "Observations: %d (%d scored)\n\n", result.Observations, result.Metrics.N)

	scores := tablewriter.NewWriter(w)
	scores.Header("Metric", "Value")
	for _, row := range metricRows(result) {
		scores.Append(row[0], row[1])
	}
	scores.Render()

	if len(result.Calibration) > 0 {
		fmt.Fprintf(w, "\nCalibration\n")
		bins := tablewriter.NewWriter(w)
		bins.Header("Bin", "Count", "Mean pred", "Observed", "Gap")
		for _, b := range result.Calibration {
			bins.Append(
				b.Interval,
				fmt.Sprintf("%d", b.Count),
				formatScore(b.MeanPredicted),
				formatScore(b.ObservedFrequency),
				formatScore(b.Gap()),
			)
		}
		bins.Render()
	}

	if len(result.Rankings) > 0 {
		fmt.Fprintf(w, "\nProviders\n")
		providers := tablewriter.NewWriter(w)
		providers.Header("#", "Provider", "Brier", "N")
		for i, r := range result.Rankings {
			providers.Append(
				fmt.Sprintf("%d", i+1),
				r.Provider,
				formatScore(r.BrierScore),
				fmt.Sprintf("%d", r.NPredictions),
			)
		}
		providers.Render()
	}

	fmt.Fprintf(w, "\nStaking\n")
	stakes := tablewriter.NewWriter(w)
	stakes.Header("Strategy", "Bets", "Final", "Max DD", "Ruined")
	for _, s := range []StakingSummary{result.Staking.Fixed, result.Staking.Kelly} {
		stakes.Append(
			s.Strategy,
			fmt.Sprintf("%d", s.Bets),
			fmt.Sprintf("%.4f", s.FinalBankroll),
			fmt.Sprintf("%.2f%%", s.MaxDrawdown*100),
			fmt.Sprintf("%t", s.Ruined),
		)
	}
	stakes.Render()

	if mc := result.MonteCarlo; mc != nil {
		fmt.Fprintf(w, "\nMonte Carlo (%s, %d iterations): P(profit) %.2f%%  P(ruin) %.2f%%  median final %.4f\n",
			mc.Strategy, mc.Iterations, mc.ProbabilityOfProfit*100, mc.ProbabilityOfRuin*100, mc.Percentiles["p50"])
	}
	if wf := result.WalkForward; wf != nil {
		fmt.Fprintf(w, "Walk-forward (%d windows): Brier spread %.4f  ECE spread %.4f  consistency %.2f%%\n",
			len(wf.Windows), wf.BrierSpread, wf.ECESpread, wf.ConsistencyScore*100)
	}
}

// GenerateConsoleReport formats a result for terminal output
func GenerateConsoleReport(result *Result) string {
	var builder strings.Builder
	WriteConsoleReport(&builder, result)
	return builder.String()
}

// GenerateCSVExport exports the headline metrics for spreadsheets
func GenerateCSVExport(result *Result, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	var builder strings.Builder
	builder.WriteString("metric,value\n")
	for _, row := range metricRows(result) {
		builder.WriteString(row[0] + "," + row[1] + "\n")
	}
	return os.WriteFile(outputPath, []byte(builder.String()), 0o644)
}

// ExportTrajectoryCSV writes a staking trajectory as step,bankroll rows
func ExportTrajectoryCSV(summary StakingSummary, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outputPath, []byte(summary.Trajectory.ToCSV()), 0o644)
}

func metricRows(result *Result) [][2]string {
	m := result.Metrics
	rows := [][2]string{
		{"brier", formatScore(m.Brier)},
		{"log_loss", formatScore(m.LogLoss)},
		{"auc", formatScore(m.AUC)},
		{"ece", formatScore(m.ECE)},
		{"rmse", formatScore(m.RMSE)},
		{"mae", formatScore(m.MAE)},
		{"pearson_r", formatScore(m.PearsonR)},
		{"pearson_p", formatScore(m.PearsonP)},
		{"mean_pred", formatScore(m.MeanPred)},
		{"mean_outcome", formatScore(m.MeanOutcome)},
		{"total_ev", formatScore(result.EVSummary.TotalEV)},
		{"roi_per_bet", formatScore(result.EVSummary.ROIPerBet)},
		{"kelly_median", formatScore(result.KellyMedian)},
	}
	if b := result.Bootstrap; b != nil {
		rows = append(rows,
			[2]string{"mean_ev_ci", formatInterval(b.MeanEV)},
			[2]string{"brier_ci", formatInterval(b.Brier)},
		)
	}
	return rows
}

func formatScore(v float64) string {
	if !models.IsDefined(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", v)
}

func formatInterval(b models.BootstrapResult) string {
	if !b.Defined() {
		return "n/a"
	}
	return fmt.Sprintf("%.4f [%.4f %.4f]", b.Median, b.Lower, b.Upper)
}
