package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BacktestRun represents a persisted backtest run
type BacktestRun struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	Market          string          `db:"market" json:"market"`
	RunDate         time.Time       `db:"run_date" json:"run_date"`
	Observations    int             `db:"observations" json:"observations"`
	Brier           *float64        `db:"brier" json:"brier"`
	ECE             *float64        `db:"ece" json:"ece"`
	AUC             *float64        `db:"auc" json:"auc"`
	ROIPerBet       float64         `db:"roi_per_bet" json:"roi_per_bet"`
	KellyFinal      float64         `db:"kelly_final_bankroll" json:"kelly_final_bankroll"`
	FixedFinal      float64         `db:"fixed_final_bankroll" json:"fixed_final_bankroll"`
	ProviderMetrics json.RawMessage `db:"provider_metrics" json:"provider_metrics"`
	FullResults     json.RawMessage `db:"full_results" json:"full_results"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}
