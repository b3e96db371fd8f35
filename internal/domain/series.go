package domain

import "time"

// SeriesPoint is a single timestamped scalar in a price or wind series.
// Timestamps are always UTC.
type SeriesPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Series is a chronologically sorted sequence of points.
type Series []SeriesPoint

// From returns the points at or after cutoff.
func (s Series) From(cutoff time.Time) Series {
	for i, p := range s {
		if !p.Timestamp.Before(cutoff) {
			return s[i:]
		}
	}
	return nil
}

// CurrentPoint returns the last point at or before now, or nil when every
// point is still in the future.
func (s Series) CurrentPoint(now time.Time) *SeriesPoint {
	var current *SeriesPoint
	for i := range s {
		if s[i].Timestamp.After(now) {
			break
		}
		current = &s[i]
	}
	return current
}

// Last returns the final point of the series, or nil for an empty series.
func (s Series) Last() *SeriesPoint {
	if len(s) == 0 {
		return nil
	}
	return &s[len(s)-1]
}
