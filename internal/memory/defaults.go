package memory

import (
	"math"
)

// Field defaults applied when a memory is created.
const (
	DefaultCategory   = "general"
	DefaultSource     = "manual"
	DefaultVisibility = VisibilityInternal
)

// Pagination limits shared by list, search and timeline.
const (
	DefaultLimit = 20
	MaxLimit     = 100
	MinLimit     = 1
	MaxOffset    = math.MaxInt32
)

// TimeLayout is the stored timestamp format. Lexicographic order matches
// chronological order, which timeline range filters rely on.
const TimeLayout = "2006-01-02 15:04:05"

// NormalizeLimit clamps a requested page size into [MinLimit, MaxLimit].
// nil or NaN yields DefaultLimit; fractional values are floored.
func NormalizeLimit(requested *float64) int {
	if requested == nil || math.IsNaN(*requested) {
		return DefaultLimit
	}
	limit := *requested
	if limit < MinLimit {
		return MinLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return int(math.Floor(limit))
}

// NormalizeOffset returns a non-negative offset. nil, NaN and negative values
// yield 0; fractional values are floored and huge values clamp to MaxOffset.
func NormalizeOffset(requested *float64) int {
	if requested == nil || math.IsNaN(*requested) || *requested < 0 {
		return 0
	}
	if *requested > MaxOffset {
		return MaxOffset
	}
	return int(math.Floor(*requested))
}
