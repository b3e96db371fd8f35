// Package analysis derives decision-support values from a merged price
// series: cheapest contiguous windows, daily averages and near-term means.
package analysis

import (
	"time"

	"spotwatch/internal/domain"
)

// Constraints bound a cheapest-window search. Zero-valued fields leave the
// corresponding bound open.
type Constraints struct {
	// EarliestStart rejects windows whose first point precedes it.
	EarliestStart time.Time
	// MinEnd rejects windows ending at or before it. Used so a window
	// already in progress still qualifies while fully elapsed ones do not.
	MinEnd time.Time
	// MaxEnd rejects windows ending past it (the lookahead cap).
	MaxEnd time.Time
	// Filter, when set, must accept every candidate window's points.
	Filter func(points []domain.SeriesPoint) bool
}

// FindCheapestWindow scans every contiguous run of exactly hours points and
// returns the one with the lowest mean value, or nil when none qualifies.
// Candidate windows must be strictly hourly spaced; a window spanning a data
// gap is skipped, never averaged over mismatched deltas. The scan is
// chronological and ties keep the first window found, so results are
// deterministic.
func FindCheapestWindow(s domain.Series, hours int, c Constraints) *domain.PriceWindow {
	if hours <= 0 || len(s) < hours {
		return nil
	}
	var best *domain.PriceWindow
	for i := 0; i+hours <= len(s); i++ {
		points := s[i : i+hours]
		if !isHourlySequence(points) {
			continue
		}
		if c.Filter != nil && !c.Filter(points) {
			continue
		}
		start := points[0].Timestamp
		if !c.EarliestStart.IsZero() && start.Before(c.EarliestStart) {
			continue
		}
		end := points[hours-1].Timestamp.Add(time.Hour)
		if !c.MinEnd.IsZero() && !end.After(c.MinEnd) {
			continue
		}
		if !c.MaxEnd.IsZero() && end.After(c.MaxEnd) {
			continue
		}
		sum := 0.0
		for _, p := range points {
			sum += p.Value
		}
		average := sum / float64(hours)
		if best == nil || average < best.Average {
			best = &domain.PriceWindow{
				DurationHours: hours,
				Start:         start,
				End:           end,
				Average:       average,
				Points:        append([]domain.SeriesPoint(nil), points...),
			}
		}
	}
	return best
}

func isHourlySequence(points []domain.SeriesPoint) bool {
	for i := 1; i < len(points); i++ {
		if points[i].Timestamp.Sub(points[i-1].Timestamp) != time.Hour {
			return false
		}
	}
	return true
}
