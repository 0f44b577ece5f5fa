package model

import "strconv"

// Score is a heuristic confidence in tenths of a point.
//
// Every signal contributes a whole number of tenths, so three +0.3
// contributions compare equal to the 0.9 threshold.
type Score int

const (
	// MaxScore is the cap applied to every computed score (3.0).
	MaxScore Score = 30

	// InclusionThreshold is the score at or above which a resolvable domain
	// is included in the feed (0.9).
	InclusionThreshold Score = 9
)

// Capped clamps the score into [0, MaxScore].
func (s Score) Capped() Score {
	switch {
	case s < 0:
		return 0
	case s > MaxScore:
		return MaxScore
	default:
		return s
	}
}

// Float64 returns the score in points.
func (s Score) Float64() float64 {
	return float64(s) / 10
}

// MeetsThreshold reports whether the score is high enough for inclusion.
func (s Score) MeetsThreshold() bool {
	return s >= InclusionThreshold
}

// String formats the score with one decimal, e.g. "1.0".
func (s Score) String() string {
	return strconv.FormatFloat(s.Float64(), 'f', 1, 64)
}

// MarshalJSON encodes the score as a number of points.
func (s Score) MarshalJSON() ([]byte, error) {
	return []byte(s.String()), nil
}
