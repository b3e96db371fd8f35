package analysis

import (
	"time"

	"spotwatch/internal/domain"
)

// AverageNextHours returns the mean of the next hours points strictly after
// now, together with the first such timestamp. It reports false when fewer
// than hours future points exist.
func AverageNextHours(s domain.Series, now time.Time, hours int) (float64, time.Time, bool) {
	if hours <= 0 {
		return 0, time.Time{}, false
	}
	var future domain.Series
	for _, p := range s {
		if p.Timestamp.After(now) {
			future = append(future, p)
			if len(future) == hours {
				break
			}
		}
	}
	if len(future) < hours {
		return 0, time.Time{}, false
	}
	sum := 0.0
	for _, p := range future {
		sum += p.Value
	}
	return sum / float64(hours), future[0].Timestamp, true
}
