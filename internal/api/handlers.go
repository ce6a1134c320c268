package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/yourusername/prop-calibrator/internal/models"
	"github.com/yourusername/prop-calibrator/internal/odds"
)

const (
	maxBodyBytes      = 1 << 20
	defaultSportsbook = "draftkings"
	defaultOdds       = -110.0
	defaultHitProb    = 0.5
	maxConfidence     = 0.95
	confidenceNote    = "Confidence based on calibration data and sample size"
	independenceNote  = "Joint probability assumes independent legs; correlation_matrix is echoed but not applied"
)

// PredictRequest prices a single prop bet
type PredictRequest struct {
	Sportsbook   string            `json:"sportsbook"`
	Market       string            `json:"market"`
	Player       string            `json:"player"`
	Projection   float64           `json:"projection" validate:"gte=0"`
	Estimate     float64           `json:"actual_or_estimate" validate:"gte=0"`
	Odds         *float64          `json:"odds" validate:"omitempty,american"`
	Correlations []json.RawMessage `json:"correlations"`
}

// Prediction describes the estimated hit probability
type Prediction struct {
	Player           string   `json:"player"`
	Market           string   `json:"market"`
	Sportsbook       string   `json:"sportsbook"`
	Projection       float64  `json:"projection"`
	EstimatedValue   float64  `json:"estimated_value"`
	HitProb          float64  `json:"p_hit"`
	HitProbPct       float64  `json:"p_hit_pct"`
	ImpliedProb      float64  `json:"implied_prob"`
	ImpliedProbPct   float64  `json:"implied_prob_pct"`
	CalibrationBrier *float64 `json:"calibration_brier"`
}

// PredictValuation is the priced bet with a suggested stake
type PredictValuation struct {
	odds.Valuation
	RecommendedBetSizePct float64 `json:"recommended_bet_size_pct"`
}

// Confidence is a coarse confidence in the prediction
type Confidence struct {
	ModelConfidence float64 `json:"model_confidence"`
	ConfidencePct   float64 `json:"confidence_pct"`
	Note            string  `json:"note"`
}

// PredictResponse is returned by POST /api/predict
type PredictResponse struct {
	Success      bool              `json:"success"`
	Prediction   Prediction        `json:"prediction"`
	Valuation    PredictValuation  `json:"valuation"`
	Confidence   Confidence        `json:"confidence"`
	Correlations []json.RawMessage `json:"correlations"`
}

// LegRequest is one leg of a multi-leg entry. Missing probabilities default
// to 0.5 and missing odds to -110.
type LegRequest struct {
	Player  string   `json:"player"`
	Market  string   `json:"market"`
	HitProb *float64 `json:"p_hit" validate:"omitempty,gte=0,lte=1"`
	Odds    *float64 `json:"odds" validate:"omitempty,american"`
}

// MultiLegRequest prices a multi-leg entry
type MultiLegRequest struct {
	Legs              []LegRequest `json:"legs" validate:"dive"`
	CorrelationMatrix [][]float64  `json:"correlation_matrix,omitempty"`
}

// MultiLegResponse is returned by POST /api/multi-leg
type MultiLegResponse struct {
	Success           bool                 `json:"success"`
	MultiLeg          odds.ParlayValuation `json:"multi_leg"`
	Legs              []odds.Leg           `json:"legs"`
	CorrelationMatrix [][]float64          `json:"correlation_matrix,omitempty"`
	Note              string               `json:"note"`
}

// CalibrationResponse is returned by GET /api/calibration
type CalibrationResponse struct {
	Success bool              `json:"success"`
	Market  string            `json:"market"`
	Data    *CalibrationEntry `json:"data"`
}

func newRequestValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("american", validateAmerican)
	return v
}

// validateAmerican accepts American odds, which are at most -100 or at least +100
func validateAmerican(fl validator.FieldLevel) bool {
	v := fl.Field().Float()
	return v <= -100 || v >= 100
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if !s.decode(w, r, &req) {
		return
	}

	sportsbook := strings.ToLower(strings.TrimSpace(req.Sportsbook))
	if sportsbook == "" {
		sportsbook = defaultSportsbook
	}
	american := defaultOdds
	if req.Odds != nil {
		american = *req.Odds
	}

	p := odds.EstimateHitProbability(req.Projection, req.Estimate)
	brier := s.store.Brier(req.Market, sportsbook)
	p = odds.AdjustForCalibration(p, brier)

	valuation := odds.Value(p, american)
	confidence := p
	if p <= 0.5 {
		confidence = 1 - p
	}
	confidence = math.Min(maxConfidence, confidence)

	correlations := req.Correlations
	if correlations == nil {
		correlations = []json.RawMessage{}
	}

	s.logger.LogValuation("single", 1, valuation.HitProb, valuation.EV, valuation.KellyFraction)
	writeJSON(w, http.StatusOK, PredictResponse{
		Success: true,
		Prediction: Prediction{
			Player:           req.Player,
			Market:           req.Market,
			Sportsbook:       sportsbook,
			Projection:       req.Projection,
			EstimatedValue:   round(req.Estimate, 2),
			HitProb:          valuation.HitProb,
			HitProbPct:       valuation.HitProbPct,
			ImpliedProb:      valuation.ImpliedProb,
			ImpliedProbPct:   valuation.ImpliedProbPct,
			CalibrationBrier: models.Nullable(brier),
		},
		Valuation: PredictValuation{
			Valuation:             valuation,
			RecommendedBetSizePct: valuation.KellyPct,
		},
		Confidence: Confidence{
			ModelConfidence: round(confidence, 2),
			ConfidencePct:   round(confidence*100, 2),
			Note:            confidenceNote,
		},
		Correlations: correlations,
	})
}

func (s *Server) handleMultiLeg(w http.ResponseWriter, r *http.Request) {
	var req MultiLegRequest
	if !s.decode(w, r, &req) {
		return
	}

	legs := make([]odds.Leg, len(req.Legs))
	for i, in := range req.Legs {
		leg := odds.Leg{Player: in.Player, Market: in.Market, HitProb: defaultHitProb, American: defaultOdds}
		if in.HitProb != nil {
			leg.HitProb = *in.HitProb
		}
		if in.Odds != nil {
			leg.American = *in.Odds
		}
		legs[i] = leg
	}

	valuation, err := odds.ValueParlay(legs)
	if errors.Is(err, models.ErrNoLegs) {
		writeError(w, http.StatusBadRequest, "no legs provided")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.logger.LogValuation("multi_leg", len(legs), valuation.JointProbability, valuation.CombinedEV, valuation.CombinedKelly)
	writeJSON(w, http.StatusOK, MultiLegResponse{
		Success:           true,
		MultiLeg:          valuation,
		Legs:              legs,
		CorrelationMatrix: req.CorrelationMatrix,
		Note:              independenceNote,
	})
}

func (s *Server) handleCalibration(w http.ResponseWriter, r *http.Request) {
	market := normalizeMarket(r.URL.Query().Get("market"))

	entry, ok := s.store.Get(market)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no calibration data for market: %s", market))
		return
	}
	writeJSON(w, http.StatusOK, CalibrationResponse{Success: true, Market: market, Data: entry})
}

// decode reads and validates a JSON body, writing a 400 on failure
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, formatValidationError(err))
		return false
	}
	return true
}

func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}
	fields := make([]string, len(validationErrors))
	for i, e := range validationErrors {
		fields[i] = fmt.Sprintf("%s failed %s", e.Namespace(), e.Tag())
	}
	return "invalid request: " + strings.Join(fields, "; ")
}

func round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}
