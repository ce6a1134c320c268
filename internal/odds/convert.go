// Package odds converts between American odds, decimal odds and implied
// probabilities, and derives expected value and Kelly stakes from them.
package odds

import "math"

// ImpliedProbability returns the break-even probability priced into American odds.
// Zero is treated as the positive side.
func ImpliedProbability(american float64) float64 {
	if american < 0 {
		a := math.Abs(american)
		return a / (a + 100)
	}
	return 100 / (american + 100)
}

// ToDecimal converts American odds to decimal odds (stake included)
func ToDecimal(american float64) float64 {
	if american < 0 {
		return 1 + 100/math.Abs(american)
	}
	return american/100 + 1
}

// DecimalToAmerican converts decimal odds back to American odds. Decimal odds
// of 1 or less have no American equivalent and yield NaN.
func DecimalToAmerican(decimal float64) float64 {
	if !(decimal > 1) {
		return math.NaN()
	}
	if decimal >= 2 {
		return (decimal - 1) * 100
	}
	return -100 / (decimal - 1)
}

// ProbabilityToAmerican returns the fair American odds for a probability in (0, 1)
func ProbabilityToAmerican(p float64) float64 {
	if !(p > 0 && p < 1) {
		return math.NaN()
	}
	if p >= 0.5 {
		return -(p * 100) / (1 - p)
	}
	return (1 - p) * 100 / p
}
