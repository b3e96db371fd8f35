package series

import (
	"time"

	"spotwatch/internal/domain"
)

// MergeRealizedForecast combines a realized series with a forecast series.
// Realized values are authoritative for every hour they cover; forecast
// points are appended only past the last realized timestamp. No
// interpolation, no overlap blending.
func MergeRealizedForecast(realized, forecast domain.Series) domain.Series {
	if len(realized) == 0 {
		return append(domain.Series(nil), forecast...)
	}
	merged := append(domain.Series(nil), realized...)
	lastRealized := merged[len(merged)-1].Timestamp
	for _, p := range forecast {
		if p.Timestamp.After(lastRealized) {
			merged = append(merged, p)
		}
	}
	return merged
}

// ForecastStart returns the timestamp of the first forecast point past the
// end of the realized series, or nil when the forecast adds nothing.
func ForecastStart(realized, forecast domain.Series) *time.Time {
	if len(forecast) == 0 {
		return nil
	}
	if len(realized) == 0 {
		ts := forecast[0].Timestamp
		return &ts
	}
	lastRealized := realized[len(realized)-1].Timestamp
	for _, p := range forecast {
		if p.Timestamp.After(lastRealized) {
			ts := p.Timestamp
			return &ts
		}
	}
	return nil
}
