// Package coordinator drives the refresh cycle: it fetches the published
// artifacts, merges realized and forecast prices, derives cheapest windows
// and daily averages, and owns the user-tunable parameters between cycles.
package coordinator

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"spotwatch/internal/analysis"
	"spotwatch/internal/artifact"
	"spotwatch/internal/domain"
	"spotwatch/internal/narration"
	"spotwatch/internal/series"
)

const (
	// HelsinkiTimezone is the local timezone for all day and hour-of-day
	// bucketing. Finnish prices are published against it.
	HelsinkiTimezone = "Europe/Helsinki"

	// DefaultRefreshInterval between scheduled refresh cycles.
	DefaultRefreshInterval = 30 * time.Minute

	// fallbackHorizon bounds the realized-price fetch when the forecast is
	// empty and provides no horizon of its own.
	fallbackHorizon = 48 * time.Hour
)

// CheapestWindowHours are the fixed cheapest-window durations computed every
// cycle.
var CheapestWindowHours = []int{3, 6, 12}

// NextHours are the near-term averaging horizons the presentation layer
// reads.
var NextHours = []int{1, 3, 6, 12}

// Coordinator orchestrates refresh cycles and owns the tunable parameters.
// A refresh builds a complete Snapshot and installs it atomically; the last
// good snapshot stays visible when a cycle fails.
type Coordinator struct {
	client          *artifact.Client
	logger          *log.Logger
	clock           func() time.Time
	refreshInterval time.Duration

	mu             sync.Mutex
	loc            *time.Location
	params         params
	snapshot       *domain.Snapshot
	listeners      map[int]func()
	nextListenerID int
}

// Option configures Coordinator.
type Option func(*Coordinator)

// WithLogger sets the coordinator logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

// WithClock injects the time source. Tests use it to freeze time.
func WithClock(clock func() time.Time) Option {
	return func(c *Coordinator) { c.clock = clock }
}

// WithRefreshInterval sets the interval reported in snapshot metadata.
func WithRefreshInterval(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.refreshInterval = d
		}
	}
}

// New creates a Coordinator around the given artifact client.
func New(client *artifact.Client, opts ...Option) *Coordinator {
	c := &Coordinator{
		client:          client,
		logger:          log.New(os.Stdout, "[coordinator] ", log.LstdFlags),
		clock:           func() time.Time { return time.Now().UTC() },
		refreshInterval: DefaultRefreshInterval,
		params:          defaultParams(),
		listeners:       make(map[int]func()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the artifact base URL in use.
func (c *Coordinator) BaseURL() string { return c.client.BaseURL() }

// RefreshInterval returns the configured refresh interval.
func (c *Coordinator) RefreshInterval() time.Duration { return c.refreshInterval }

// Snapshot returns the last successfully installed snapshot, or nil before
// the first successful refresh.
func (c *Coordinator) Snapshot() *domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

// AddListener registers fn to run after every successful refresh or
// parameter change. The returned function unsubscribes it.
func (c *Coordinator) AddListener(fn func()) func() {
	c.mu.Lock()
	id := c.nextListenerID
	c.nextListenerID++
	c.listeners[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Coordinator) notifyListeners() {
	c.mu.Lock()
	fns := make([]func(), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Refresh executes one full cycle and returns the new snapshot. The forecast
// artifact is mandatory: its absence fails the cycle and leaves the previous
// snapshot installed. Every other artifact degrades to an absent section.
func (c *Coordinator) Refresh(ctx context.Context) (*domain.Snapshot, error) {
	now := c.clock().UTC()
	loc, err := c.helsinkiLocation()
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	p := c.params
	c.mu.Unlock()

	localNow := now.In(loc)
	midnight := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), 0, 0, 0, 0, loc)
	cutoff := midnight.UTC()

	rows, err := c.client.FetchJSONRows(ctx, artifact.SuffixPrediction)
	if err != nil {
		return nil, fmt.Errorf("prediction artifact: %w", err)
	}
	forecast := series.FromRows(rows)
	forecastFromToday := forecast.From(cutoff)

	// The realized fetch range depends on the forecast horizon, so the
	// mandatory fetch happens first and the rest fan out together.
	horizon := now.Add(fallbackHorizon)
	if last := forecast.Last(); last != nil {
		horizon = last.Timestamp
	}
	realizedEnd := now
	if horizon.After(realizedEnd) {
		realizedEnd = horizon
	}

	var (
		realizedCSV, narrFI, narrEN string
		haveCSV, haveFI, haveEN     bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		realizedCSV, haveCSV = c.client.SafeFetchRealizedCSV(gctx, cutoff, realizedEnd)
		return nil
	})
	g.Go(func() error {
		narrFI, haveFI = c.client.SafeFetchText(gctx, artifact.SuffixNarrationFI)
		return nil
	})
	g.Go(func() error {
		narrEN, haveEN = c.client.SafeFetchText(gctx, artifact.SuffixNarrationEN)
		return nil
	})
	// Safe fetches degrade to absence instead of failing the group.
	_ = g.Wait()

	var realized domain.Series
	if haveCSV {
		realized = series.ParseRealizedCSV(realizedCSV, cutoff)
	}

	merged := series.MergeRealizedForecast(realized, forecastFromToday)
	cheapest, cheapestMeta := buildCheapestWindows(merged, now, loc, p)

	snap := &domain.Snapshot{
		Series:          merged,
		Current:         merged.CurrentPoint(now),
		ForecastStart:   series.ForecastStart(realized, forecastFromToday),
		CheapestWindows: cheapest,
		CheapestMeta:    cheapestMeta,
		CustomWindow:    buildCustomWindow(merged, now, loc, p),
		DailyAverages:   analysis.DailyAverages(merged, loc),
		Now:             now,
		Meta: domain.Meta{
			BaseURL:         c.client.BaseURL(),
			RefreshInterval: c.refreshInterval,
			ExtraFeeCents:   p.extraFeeCents,
		},
	}
	if haveFI {
		snap.NarrationFI = narration.BuildSection(narrFI, c.client.ArtifactURL(artifact.SuffixNarrationFI))
	}
	if haveEN {
		snap.NarrationEN = narration.BuildSection(narrEN, c.client.ArtifactURL(artifact.SuffixNarrationEN))
	}

	if windRows := c.client.SafeFetchJSONRows(ctx, artifact.SuffixWindpower); len(windRows) > 0 {
		windSeries := series.FromRows(windRows).From(cutoff)
		snap.Wind = &domain.WindSection{
			Series:  windSeries,
			Current: windSeries.CurrentPoint(now),
		}
	}

	c.mu.Lock()
	c.snapshot = snap
	c.mu.Unlock()
	c.notifyListeners()
	return snap, nil
}

func (c *Coordinator) helsinkiLocation() (*time.Location, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loc != nil {
		return c.loc, nil
	}
	loc, err := time.LoadLocation(HelsinkiTimezone)
	if err != nil {
		// All local-time bucketing depends on this; fail the cycle.
		return nil, fmt.Errorf("helsinki timezone data unavailable: %w", err)
	}
	c.loc = loc
	return loc, nil
}

// buildCheapestWindows computes the fixed-duration cheapest windows under
// the shared lookahead and hour-mask tunables.
func buildCheapestWindows(s domain.Series, now time.Time, loc *time.Location, p params) (map[int]*domain.PriceWindow, domain.CheapestWindowsMeta) {
	anchor := now.Truncate(time.Hour)
	limit := anchor.Add(time.Duration(p.cheapestWindowLookaheadHours) * time.Hour)
	mask := analysis.NewHourMask(p.cheapestWindowStartHour, p.cheapestWindowEndHour)
	var filter func([]domain.SeriesPoint) bool
	if mask.Count() < 24 {
		filter = func(points []domain.SeriesPoint) bool { return mask.Allows(points, loc) }
	}

	windows := make(map[int]*domain.PriceWindow, len(CheapestWindowHours))
	for _, hours := range CheapestWindowHours {
		windows[hours] = findWindowTwoPhase(s, hours, now, analysis.Constraints{
			EarliestStart: anchor.Add(-time.Duration(hours-1) * time.Hour),
			MaxEnd:        limit,
			Filter:        filter,
		})
	}
	meta := domain.CheapestWindowsMeta{
		StartHour:      p.cheapestWindowStartHour,
		EndHour:        p.cheapestWindowEndHour,
		LookaheadHours: p.cheapestWindowLookaheadHours,
		LookaheadLimit: limit,
	}
	return windows, meta
}

// buildCustomWindow computes the user-tunable masked window. The section
// always carries the parameters that produced it, window or no window.
func buildCustomWindow(s domain.Series, now time.Time, loc *time.Location, p params) domain.CustomWindowSection {
	anchor := now.Truncate(time.Hour)
	limit := anchor.Add(time.Duration(p.customWindowLookaheadHours) * time.Hour)
	section := domain.CustomWindowSection{
		Hours:          p.customWindowHours,
		StartHour:      p.customWindowStartHour,
		EndHour:        p.customWindowEndHour,
		LookaheadHours: p.customWindowLookaheadHours,
		LookaheadLimit: limit,
	}
	mask := analysis.NewHourMask(p.customWindowStartHour, p.customWindowEndHour)
	if p.customWindowHours <= 0 || p.customWindowHours > mask.Count() {
		// The mask admits fewer hours than the window needs; nothing can fit.
		return section
	}
	section.Window = findWindowTwoPhase(s, p.customWindowHours, now, analysis.Constraints{
		EarliestStart: anchor.Add(-time.Duration(p.customWindowHours-1) * time.Hour),
		MaxEnd:        limit,
		Filter: func(points []domain.SeriesPoint) bool {
			return mask.Allows(points, loc)
		},
	})
	return section
}

// findWindowTwoPhase prefers windows still ending after now, then falls back
// to the unconstrained search so an already-elapsed window relative to its
// own earliest start can still surface.
func findWindowTwoPhase(s domain.Series, hours int, now time.Time, c analysis.Constraints) *domain.PriceWindow {
	c.MinEnd = now
	if w := analysis.FindCheapestWindow(s, hours, c); w != nil {
		return w
	}
	c.MinEnd = time.Time{}
	return analysis.FindCheapestWindow(s, hours, c)
}
