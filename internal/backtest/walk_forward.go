package backtest

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/yourusername/prop-calibrator/internal/models"
	"github.com/yourusername/prop-calibrator/internal/odds"
	"github.com/yourusername/prop-calibrator/internal/scoring"
)

// uninformedBrier is the Brier score of always predicting 0.5
const uninformedBrier = 0.25

// WalkForwardConfig configures the chronological stability check
type WalkForwardConfig struct {
	Windows int
}

// WalkForwardWindow holds the scores of one chronological slice
type WalkForwardWindow struct {
	WindowID  int       `json:"window_id"`
	Start     time.Time `json:"start,omitempty"`
	End       time.Time `json:"end,omitempty"`
	N         int       `json:"n"`
	Brier     float64   `json:"brier"`
	ECE       float64   `json:"ece"`
	ROIPerBet float64   `json:"roi_per_bet"`
}

// WalkForwardResult reports how stable calibration is across time
type WalkForwardResult struct {
	Windows          []WalkForwardWindow `json:"windows"`
	BrierSpread      float64             `json:"brier_spread"`
	ECESpread        float64             `json:"ece_spread"`
	ConsistencyScore float64             `json:"consistency_score"`
}

// RunWalkForward orders the settled observations by date and scores cfg.Windows
// contiguous slices of near-equal size. Observations are kept in input order
// when any of them is undated.
func RunWalkForward(observations []models.Observation, decimalOdds float64, cfg WalkForwardConfig) (WalkForwardResult, error) {
	if cfg.Windows <= 0 {
		return WalkForwardResult{}, fmt.Errorf("walk-forward windows must be positive")
	}

	settled := make([]models.Observation, 0, len(observations))
	dated := true
	for _, obs := range observations {
		if !obs.HasPrediction() || !obs.HasOutcome() {
			continue
		}
		if obs.Date.IsZero() {
			dated = false
		}
		settled = append(settled, obs)
	}
	if dated {
		sort.SliceStable(settled, func(i, j int) bool {
			return settled[i].Date.Before(settled[j].Date)
		})
	}

	windows := []WalkForwardWindow{}
	for i, chunk := range split(settled, cfg.Windows) {
		outcomes, predictions := models.Columns(chunk)
		report, err := scoring.Score(outcomes, predictions)
		if err != nil {
			return WalkForwardResult{}, fmt.Errorf("walk-forward window %d: %w", i+1, err)
		}
		window := WalkForwardWindow{
			WindowID:  i + 1,
			N:         report.N,
			Brier:     report.Brier,
			ECE:       report.ECE,
			ROIPerBet: odds.SummarizeEV(chunk, decimalOdds).ROIPerBet,
		}
		if dated {
			window.Start = chunk[0].Date
			window.End = chunk[len(chunk)-1].Date
		}
		windows = append(windows, window)
	}

	return WalkForwardResult{
		Windows:          windows,
		BrierSpread:      spread(windows, func(w WalkForwardWindow) float64 { return w.Brier }),
		ECESpread:        spread(windows, func(w WalkForwardWindow) float64 { return w.ECE }),
		ConsistencyScore: CalculateConsistency(windows),
	}, nil
}

// CalculateConsistency calculates the share of windows that beat an
// uninformed 0.5 forecast on Brier score
func CalculateConsistency(windows []WalkForwardWindow) float64 {
	if len(windows) == 0 {
		return 0
	}
	beating := 0
	for _, w := range windows {
		if w.Brier < uninformedBrier {
			beating++
		}
	}
	return float64(beating) / float64(len(windows))
}

// split cuts observations into at most k contiguous non-empty chunks whose
// sizes differ by at most one
func split(observations []models.Observation, k int) [][]models.Observation {
	n := len(observations)
	if k > n {
		k = n
	}
	chunks := make([][]models.Observation, 0, k)
	start := 0
	for i := 0; i < k; i++ {
		size := n / k
		if i < n%k {
			size++
		}
		chunks = append(chunks, observations[start:start+size])
		start += size
	}
	return chunks
}

func spread(windows []WalkForwardWindow, score func(WalkForwardWindow) float64) float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, w := range windows {
		v := score(w)
		if !models.IsDefined(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi < lo {
		return 0
	}
	return hi - lo
}
