package backtest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestExportResults(t *testing.T) {
	result := sampleResult(t)

	cfg := DefaultConfig()
	cfg.OutputPath = t.TempDir()
	cfg.StartDate = time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	cfg.EndDate = time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC)

	paths, err := ExportResults(cfg, []*Result{result})
	if err != nil {
		t.Fatalf("ExportResults failed: %v", err)
	}

	want := []string{
		filepath.Join(cfg.OutputPath, "2024-09-01_2024-12-31_passing_yards.json"),
		filepath.Join(cfg.OutputPath, "2024-09-01_2024-12-31_summary.json"),
	}
	if len(paths) != len(want) {
		t.Fatalf("expected %d files, got %v", len(want), paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("expected %s, got %s", want[i], paths[i])
		}
	}

	data, err := os.ReadFile(paths[1])
	if err != nil {
		t.Fatalf("failed to read summary: %v", err)
	}
	var summary struct {
		StartDate string                     `json:"start_date"`
		Results   map[string]json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(data, &summary); err != nil {
		t.Fatalf("summary is not valid JSON: %v", err)
	}
	if summary.StartDate != "2024-09-01" {
		t.Errorf("unexpected start date %q", summary.StartDate)
	}
	if _, ok := summary.Results["passing_yards"]; !ok {
		t.Errorf("expected passing_yards in summary")
	}
}

func TestExportResultsRequiresPath(t *testing.T) {
	if _, err := ExportResults(DefaultConfig(), nil); err == nil {
		t.Fatalf("expected error without output path")
	}
}

func TestToBacktestRun(t *testing.T) {
	result := sampleResult(t)

	run, err := result.ToBacktestRun()
	if err != nil {
		t.Fatalf("ToBacktestRun failed: %v", err)
	}
	if run.ID != result.RunID || run.Market != "passing_yards" {
		t.Errorf("identity not carried over")
	}
	if run.Brier == nil || *run.Brier != result.Metrics.Brier {
		t.Errorf("expected Brier to be persisted")
	}
	if run.KellyFinal != result.Staking.Kelly.FinalBankroll {
		t.Errorf("expected Kelly final bankroll to be persisted")
	}
	var providers map[string]json.RawMessage
	if err := json.Unmarshal(run.ProviderMetrics, &providers); err != nil || len(providers) != 2 {
		t.Errorf("expected two providers in persisted metrics, got %v (%v)", providers, err)
	}
}
