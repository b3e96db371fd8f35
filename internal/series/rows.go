// Package series converts raw published artifacts into sorted point
// sequences and merges realized data with forecasts.
package series

import (
	"math"
	"sort"
	"strconv"
	"time"

	"spotwatch/internal/domain"
)

// Artifacts are third-party-published and may contain partial rows, so
// anything that does not coerce cleanly is skipped rather than reported.

// Epoch milliseconds past this bound are treated as garbage rather than
// timestamps (roughly year 33000).
const maxEpochMillis = 1e15

// FromRows converts raw JSON artifact rows of the form [epoch_ms, value, ...]
// into a series sorted ascending by timestamp. Rows that are not arrays of at
// least two numeric cells are skipped. Equal timestamps keep their relative
// order; duplicates are resolved later by the merger, not here.
func FromRows(rows []any) domain.Series {
	points := make(domain.Series, 0, len(rows))
	for _, row := range rows {
		cells, ok := row.([]any)
		if !ok || len(cells) < 2 {
			continue
		}
		ts, ok := epochMillis(cells[0])
		if !ok {
			continue
		}
		value, ok := toFloat(cells[1])
		if !ok {
			continue
		}
		points = append(points, domain.SeriesPoint{Timestamp: ts, Value: value})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
	return points
}

func epochMillis(cell any) (time.Time, bool) {
	ms, ok := toFloat(cell)
	if !ok || math.Abs(ms) > maxEpochMillis {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(ms)).UTC(), true
}

func toFloat(cell any) (float64, bool) {
	switch v := cell.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
