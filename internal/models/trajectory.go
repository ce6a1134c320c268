package models

import (
	"bytes"
	"strconv"
)

// StakingTrajectory holds the bankroll after each settled observation, in
// input order. A trajectory that ends at or below zero stopped at ruin.
type StakingTrajectory []float64

// Final returns the last bankroll value, or the starting value for an empty trajectory
func (t StakingTrajectory) Final(start float64) float64 {
	if len(t) == 0 {
		return start
	}
	return t[len(t)-1]
}

// Ruined reports whether the bankroll was exhausted
func (t StakingTrajectory) Ruined() bool {
	return len(t) > 0 && t[len(t)-1] <= 0
}

// MaxDrawdown calculates the largest peak-to-trough decline as a fraction of the peak
func (t StakingTrajectory) MaxDrawdown(start float64) float64 {
	maxDD := 0.0
	peak := start
	for _, v := range t {
		if v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		drawdown := (peak - v) / peak
		if drawdown > maxDD {
			maxDD = drawdown
		}
	}
	return maxDD
}

// ToCSV exports the trajectory as step,bankroll rows
func (t StakingTrajectory) ToCSV() string {
	var buf bytes.Buffer
	buf.WriteString("step,bankroll\n")
	for i, v := range t {
		buf.WriteString(strconv.Itoa(i + 1))
		buf.WriteString(",")
		buf.WriteString(strconv.FormatFloat(v, 'f', 6, 64))
		buf.WriteString("\n")
	}
	return buf.String()
}
