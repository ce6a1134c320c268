package models

import "errors"

// Caller contract violations. Statistical degeneracy is never reported through
// these; it surfaces as undefined values in the returned summaries.
var (
	ErrLengthMismatch  = errors.New("outcomes and predictions must have equal length")
	ErrInvalidBins     = errors.New("number of bins must be positive")
	ErrUnknownStrategy = errors.New("unknown strategy")
	ErrInvalidAlpha    = errors.New("alpha must be in (0, 1)")
	ErrNilStatistic    = errors.New("statistic function is required")
	ErrNoLegs          = errors.New("at least one leg is required")
	ErrInvalidStake    = errors.New("stake must be non-negative")
	ErrInvalidOdds     = errors.New("decimal odds must be greater than 1")
	ErrNotFound        = errors.New("record not found")
)
