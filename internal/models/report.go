package models

import "encoding/json"

// MetricsReport bundles discrimination, calibration and correlation scores for
// a set of predictions. When N is zero every other field is undefined.
type MetricsReport struct {
	N           int     `json:"n"`
	Brier       float64 `json:"brier"`
	LogLoss     float64 `json:"logloss"`
	PearsonR    float64 `json:"pearson_r"`
	PearsonP    float64 `json:"pearson_p"`
	RMSE        float64 `json:"rmse"`
	MAE         float64 `json:"mae"`
	AUC         float64 `json:"auc"`
	MeanPred    float64 `json:"mean_pred"`
	MeanOutcome float64 `json:"mean_outcome"`
	ECE         float64 `json:"ece"`
}

// EmptyMetricsReport returns the report for an input with no usable predictions
func EmptyMetricsReport() MetricsReport {
	nan := Undefined()
	return MetricsReport{
		Brier:       nan,
		LogLoss:     nan,
		PearsonR:    nan,
		PearsonP:    nan,
		RMSE:        nan,
		MAE:         nan,
		AUC:         nan,
		MeanPred:    nan,
		MeanOutcome: nan,
		ECE:         nan,
	}
}

// MarshalJSON renders undefined scores as null
func (m MetricsReport) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		N           int      `json:"n"`
		Brier       *float64 `json:"brier"`
		LogLoss     *float64 `json:"logloss"`
		PearsonR    *float64 `json:"pearson_r"`
		PearsonP    *float64 `json:"pearson_p"`
		RMSE        *float64 `json:"rmse"`
		MAE         *float64 `json:"mae"`
		AUC         *float64 `json:"auc"`
		MeanPred    *float64 `json:"mean_pred"`
		MeanOutcome *float64 `json:"mean_outcome"`
		ECE         *float64 `json:"ece"`
	}{
		N:           m.N,
		Brier:       Nullable(m.Brier),
		LogLoss:     Nullable(m.LogLoss),
		PearsonR:    Nullable(m.PearsonR),
		PearsonP:    Nullable(m.PearsonP),
		RMSE:        Nullable(m.RMSE),
		MAE:         Nullable(m.MAE),
		AUC:         Nullable(m.AUC),
		MeanPred:    Nullable(m.MeanPred),
		MeanOutcome: Nullable(m.MeanOutcome),
		ECE:         Nullable(m.ECE),
	})
}

// BootstrapResult is a percentile confidence interval around a statistic
type BootstrapResult struct {
	Median    float64 `json:"median"`
	Lower     float64 `json:"lower"`
	Upper     float64 `json:"upper"`
	Resamples int     `json:"resamples"`
}

// UndefinedBootstrap is returned when no resample produced a usable value
func UndefinedBootstrap() BootstrapResult {
	nan := Undefined()
	return BootstrapResult{Median: nan, Lower: nan, Upper: nan}
}

// Defined reports whether the interval carries values
func (b BootstrapResult) Defined() bool {
	return IsDefined(b.Median)
}

// MarshalJSON renders undefined bounds as null
func (b BootstrapResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Median    *float64 `json:"median"`
		Lower     *float64 `json:"lower"`
		Upper     *float64 `json:"upper"`
		Resamples int      `json:"resamples"`
	}{
		Median:    Nullable(b.Median),
		Lower:     Nullable(b.Lower),
		Upper:     Nullable(b.Upper),
		Resamples: b.Resamples,
	})
}
