package coordinator

// Params is the exported view of the tunable parameters, used by the API
// layer and the parameter store.
type Params struct {
	ExtraFeeCents                float64 `json:"extra_fee_cents"`
	CustomWindowHours            int     `json:"custom_window_hours"`
	CustomWindowStartHour        int     `json:"custom_window_start_hour"`
	CustomWindowEndHour          int     `json:"custom_window_end_hour"`
	CustomWindowLookaheadHours   int     `json:"custom_window_lookahead_hours"`
	CheapestWindowStartHour      int     `json:"cheapest_window_start_hour"`
	CheapestWindowEndHour        int     `json:"cheapest_window_end_hour"`
	CheapestWindowLookaheadHours int     `json:"cheapest_window_lookahead_hours"`
}

// Params returns a copy of the current tunable parameters.
func (c *Coordinator) Params() Params {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Params{
		ExtraFeeCents:                c.params.extraFeeCents,
		CustomWindowHours:            c.params.customWindowHours,
		CustomWindowStartHour:        c.params.customWindowStartHour,
		CustomWindowEndHour:          c.params.customWindowEndHour,
		CustomWindowLookaheadHours:   c.params.customWindowLookaheadHours,
		CheapestWindowStartHour:      c.params.cheapestWindowStartHour,
		CheapestWindowEndHour:        c.params.cheapestWindowEndHour,
		CheapestWindowLookaheadHours: c.params.cheapestWindowLookaheadHours,
	}
}

// ApplyParams runs every setter with the given values, normalizing each.
// Used to restore persisted parameters at startup.
func (c *Coordinator) ApplyParams(p Params) {
	c.SetExtraFeeCents(p.ExtraFeeCents)
	c.SetCustomWindowHours(p.CustomWindowHours)
	c.SetCustomWindowStartHour(p.CustomWindowStartHour)
	c.SetCustomWindowEndHour(p.CustomWindowEndHour)
	c.SetCustomWindowLookaheadHours(p.CustomWindowLookaheadHours)
	c.SetCheapestWindowStartHour(p.CheapestWindowStartHour)
	c.SetCheapestWindowEndHour(p.CheapestWindowEndHour)
	c.SetCheapestWindowLookaheadHours(p.CheapestWindowLookaheadHours)
}

// ExtraFeeCents returns the current extra fee in cents per kWh.
func (c *Coordinator) ExtraFeeCents() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params.extraFeeCents
}

// SetExtraFeeCents clamps and quantizes the fee. A fee change only notifies
// listeners: consumers add the fee at read time, so no window needs
// recomputing.
func (c *Coordinator) SetExtraFeeCents(value float64) {
	normalized := normalizeExtraFee(value)
	c.mu.Lock()
	if normalized == c.params.extraFeeCents {
		c.mu.Unlock()
		return
	}
	c.params.extraFeeCents = normalized
	c.mu.Unlock()
	c.notifyListeners()
}

// CustomWindowHours returns the custom window duration.
func (c *Coordinator) CustomWindowHours() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params.customWindowHours
}

// SetCustomWindowHours clamps the duration and, on change, recomputes the
// custom window from the cached series without a network round-trip.
func (c *Coordinator) SetCustomWindowHours(value int) {
	normalized := clampInt(value, MinCustomWindowHours, MaxCustomWindowHours)
	c.setCustomWindowParam(&c.params.customWindowHours, normalized)
}

// CustomWindowStartHour returns the first allowed local hour.
func (c *Coordinator) CustomWindowStartHour() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params.customWindowStartHour
}

// SetCustomWindowStartHour clamps the hour and recomputes on change.
func (c *Coordinator) SetCustomWindowStartHour(value int) {
	normalized := clampInt(value, MinWindowHour, MaxWindowHour)
	c.setCustomWindowParam(&c.params.customWindowStartHour, normalized)
}

// CustomWindowEndHour returns the last allowed local hour.
func (c *Coordinator) CustomWindowEndHour() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params.customWindowEndHour
}

// SetCustomWindowEndHour clamps the hour and recomputes on change.
func (c *Coordinator) SetCustomWindowEndHour(value int) {
	normalized := clampInt(value, MinWindowHour, MaxWindowHour)
	c.setCustomWindowParam(&c.params.customWindowEndHour, normalized)
}

// CustomWindowLookaheadHours returns the custom window lookahead horizon.
func (c *Coordinator) CustomWindowLookaheadHours() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params.customWindowLookaheadHours
}

// SetCustomWindowLookaheadHours clamps the horizon and recomputes on change.
func (c *Coordinator) SetCustomWindowLookaheadHours(value int) {
	normalized := clampInt(value, MinCustomWindowLookaheadHours, MaxCustomWindowLookaheadHours)
	c.setCustomWindowParam(&c.params.customWindowLookaheadHours, normalized)
}

// CheapestWindowStartHour returns the first allowed local hour for the fixed
// windows.
func (c *Coordinator) CheapestWindowStartHour() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params.cheapestWindowStartHour
}

// SetCheapestWindowStartHour clamps the hour and recomputes the fixed
// windows on change.
func (c *Coordinator) SetCheapestWindowStartHour(value int) {
	normalized := clampInt(value, MinWindowHour, MaxWindowHour)
	c.setCheapestWindowParam(&c.params.cheapestWindowStartHour, normalized)
}

// CheapestWindowEndHour returns the last allowed local hour for the fixed
// windows.
func (c *Coordinator) CheapestWindowEndHour() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params.cheapestWindowEndHour
}

// SetCheapestWindowEndHour clamps the hour and recomputes the fixed windows
// on change.
func (c *Coordinator) SetCheapestWindowEndHour(value int) {
	normalized := clampInt(value, MinWindowHour, MaxWindowHour)
	c.setCheapestWindowParam(&c.params.cheapestWindowEndHour, normalized)
}

// CheapestWindowLookaheadHours returns the fixed-window lookahead horizon.
func (c *Coordinator) CheapestWindowLookaheadHours() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params.cheapestWindowLookaheadHours
}

// SetCheapestWindowLookaheadHours clamps the horizon and recomputes the
// fixed windows on change.
func (c *Coordinator) SetCheapestWindowLookaheadHours(value int) {
	normalized := clampInt(value, MinCheapestWindowLookaheadHours, MaxCheapestWindowLookaheadHours)
	c.setCheapestWindowParam(&c.params.cheapestWindowLookaheadHours, normalized)
}

func (c *Coordinator) setCustomWindowParam(field *int, value int) {
	c.mu.Lock()
	if *field == value {
		c.mu.Unlock()
		return
	}
	*field = value
	c.mu.Unlock()
	c.rebuildCustomWindowFromCache()
}

func (c *Coordinator) setCheapestWindowParam(field *int, value int) {
	c.mu.Lock()
	if *field == value {
		c.mu.Unlock()
		return
	}
	*field = value
	c.mu.Unlock()
	c.rebuildCheapestWindowsFromCache()
}

// rebuildCustomWindowFromCache recomputes the custom window from the last
// good snapshot's series. The snapshot is replaced with an updated copy, not
// mutated in place.
func (c *Coordinator) rebuildCustomWindowFromCache() {
	c.mu.Lock()
	snap := c.snapshot
	p := c.params
	c.mu.Unlock()
	if snap == nil {
		c.notifyListeners()
		return
	}
	loc, err := c.helsinkiLocation()
	if err != nil {
		c.logger.Printf("warning: keeping stale custom window: %v", err)
		c.notifyListeners()
		return
	}
	next := *snap
	next.CustomWindow = buildCustomWindow(snap.Series, snap.Now, loc, p)
	c.mu.Lock()
	c.snapshot = &next
	c.mu.Unlock()
	c.notifyListeners()
}

// rebuildCheapestWindowsFromCache recomputes the fixed-duration windows from
// the last good snapshot's series.
func (c *Coordinator) rebuildCheapestWindowsFromCache() {
	c.mu.Lock()
	snap := c.snapshot
	p := c.params
	c.mu.Unlock()
	if snap == nil {
		c.notifyListeners()
		return
	}
	loc, err := c.helsinkiLocation()
	if err != nil {
		c.logger.Printf("warning: keeping stale cheapest windows: %v", err)
		c.notifyListeners()
		return
	}
	next := *snap
	next.CheapestWindows, next.CheapestMeta = buildCheapestWindows(snap.Series, snap.Now, loc, p)
	c.mu.Lock()
	c.snapshot = &next
	c.mu.Unlock()
	c.notifyListeners()
}
