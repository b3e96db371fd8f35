package series

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"spotwatch/internal/domain"
)

// ParseRealizedCSV parses the realized-price CSV body: a header row followed
// by timestamp,price rows. Timestamps may be Z-suffixed, offset-qualified, or
// naive (space- or T-separated); naive timestamps are treated as UTC since
// that is what the upstream emits. Rows before earliest are dropped to defend
// against the endpoint returning more history than requested. Malformed rows
// are skipped silently.
func ParseRealizedCSV(text string, earliest time.Time) domain.Series {
	if text == "" {
		return nil
	}
	var points domain.Series
	headerSkipped := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !headerSkipped {
			headerSkipped = true
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) < 2 {
			continue
		}
		rawTimestamp := strings.TrimSpace(fields[0])
		rawPrice := strings.TrimSpace(fields[1])
		if rawTimestamp == "" || rawPrice == "" {
			continue
		}
		ts, ok := parseTimestamp(rawTimestamp)
		if !ok {
			continue
		}
		value, err := strconv.ParseFloat(rawPrice, 64)
		if err != nil {
			continue
		}
		ts = ts.UTC()
		if !earliest.IsZero() && ts.Before(earliest) {
			continue
		}
		points = append(points, domain.SeriesPoint{Timestamp: ts, Value: value})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})
	return points
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

func parseTimestamp(raw string) (time.Time, bool) {
	normalized := strings.Replace(raw, " ", "T", 1)
	if ts, err := time.Parse(time.RFC3339, normalized); err == nil {
		return ts, true
	}
	for _, layout := range naiveLayouts {
		if ts, err := time.ParseInLocation(layout, normalized, time.UTC); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
