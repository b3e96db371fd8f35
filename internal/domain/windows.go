package domain

import "time"

// PriceWindow is a contiguous run of hourly points minimizing the mean value
// over its duration. Points holds exactly DurationHours entries spaced one
// hour apart, and End is one hour past the last point's timestamp.
type PriceWindow struct {
	DurationHours int           `json:"duration_hours"`
	Start         time.Time     `json:"start"`
	End           time.Time     `json:"end"`
	Average       float64       `json:"average"`
	Points        []SeriesPoint `json:"points"`
}

// DailyAverage is the mean price over one complete local calendar day.
// Points holds exactly 24 entries whose local hour equals their index;
// days with 23 or 25 local hours (DST transitions) never produce one.
type DailyAverage struct {
	Date    string        `json:"date"` // local calendar day, YYYY-MM-DD
	Start   time.Time     `json:"start"`
	End     time.Time     `json:"end"`
	Average float64       `json:"average"`
	Points  []SeriesPoint `json:"points"`
}
