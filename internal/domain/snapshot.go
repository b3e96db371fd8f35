package domain

import "time"

// NarrationSection is one language's narration artifact with its derived
// summary and source URL.
type NarrationSection struct {
	Content   string `json:"content"`
	Summary   string `json:"summary"`
	SourceURL string `json:"source_url"`
}

// WindSection is the optional wind-power part of a snapshot.
type WindSection struct {
	Series  Series       `json:"series"`
	Current *SeriesPoint `json:"current"`
}

// CustomWindowSection carries the user-tunable masked window result together
// with the parameters that produced it.
type CustomWindowSection struct {
	Window         *PriceWindow `json:"window"`
	Hours          int          `json:"hours"`
	StartHour      int          `json:"start_hour"`
	EndHour        int          `json:"end_hour"`
	LookaheadHours int          `json:"lookahead_hours"`
	LookaheadLimit time.Time    `json:"lookahead_limit"`
}

// CheapestWindowsMeta describes the shared constraints applied to the
// fixed-duration cheapest windows.
type CheapestWindowsMeta struct {
	StartHour      int       `json:"start_hour"`
	EndHour        int       `json:"end_hour"`
	LookaheadHours int       `json:"lookahead_hours"`
	LookaheadLimit time.Time `json:"lookahead_limit"`
}

// Meta carries refresh metadata.
type Meta struct {
	BaseURL         string        `json:"base_url"`
	RefreshInterval time.Duration `json:"refresh_interval"`
	ExtraFeeCents   float64       `json:"extra_fee_cents"`
}

// Snapshot is one immutable result of a full refresh cycle. It is built
// wholly inside one refresh and installed atomically; consumers only ever
// see complete snapshots. Optional sections are nil when their artifact was
// absent or failed to fetch.
type Snapshot struct {
	Series          Series               `json:"series"`
	Current         *SeriesPoint         `json:"current"`
	ForecastStart   *time.Time           `json:"forecast_start"`
	CheapestWindows map[int]*PriceWindow `json:"cheapest_windows"`
	CheapestMeta    CheapestWindowsMeta  `json:"cheapest_windows_meta"`
	CustomWindow    CustomWindowSection  `json:"custom_window"`
	DailyAverages   []DailyAverage       `json:"daily_averages"`
	NarrationFI     *NarrationSection    `json:"narration_fi"`
	NarrationEN     *NarrationSection    `json:"narration_en"`
	Wind            *WindSection         `json:"windpower"`
	Now             time.Time            `json:"now"`
	Meta            Meta                 `json:"meta"`
}
