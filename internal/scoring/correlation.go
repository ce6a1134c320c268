package scoring

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Pearson returns the correlation coefficient between predictions and outcomes
// with its two-sided p-value. Both are NaN for fewer than two pairs or when
// either side has zero variance.
func Pearson(outcomes, predictions []float64) (r, p float64, err error) {
	ys, ps, err := usable(outcomes, predictions)
	if err != nil {
		return math.NaN(), math.NaN(), err
	}
	r, p = pearson(ys, ps)
	return r, p, nil
}

func pearson(ys, ps []float64) (float64, float64) {
	n := len(ps)
	if n < 2 {
		return math.NaN(), math.NaN()
	}
	r := stat.Correlation(ps, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return math.NaN(), math.NaN()
	}
	r = math.Max(-1, math.Min(1, r))

	if n == 2 {
		return r, 1
	}
	if math.Abs(r) == 1 {
		return r, 0
	}

	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.Survival(math.Abs(t))
	return r, math.Min(1, p)
}
