package coordinator

import "math"

// Parameter bounds and defaults. Extra fee is quantized to its step; every
// other tunable is an integer clamped to its range.
const (
	DefaultExtraFeeCents = 0.0
	MinExtraFeeCents     = -200.0
	MaxExtraFeeCents     = 200.0
	ExtraFeeStepCents    = 0.1

	MinWindowHour = 0
	MaxWindowHour = 23

	DefaultCustomWindowHours = 4
	MinCustomWindowHours     = 1
	MaxCustomWindowHours     = 24

	DefaultCustomWindowStartHour = 0
	DefaultCustomWindowEndHour   = 23

	DefaultCustomWindowLookaheadHours = 24
	MinCustomWindowLookaheadHours     = 1
	MaxCustomWindowLookaheadHours     = 48

	DefaultCheapestWindowStartHour = 0
	DefaultCheapestWindowEndHour   = 23

	DefaultCheapestWindowLookaheadHours = 168
	MinCheapestWindowLookaheadHours     = 1
	MaxCheapestWindowLookaheadHours     = 168
)

// params holds the user-tunable state owned by the Coordinator. Copied by
// value into each refresh so a cycle sees one consistent set.
type params struct {
	extraFeeCents float64

	customWindowHours          int
	customWindowStartHour      int
	customWindowEndHour        int
	customWindowLookaheadHours int

	cheapestWindowStartHour      int
	cheapestWindowEndHour        int
	cheapestWindowLookaheadHours int
}

func defaultParams() params {
	return params{
		extraFeeCents:                DefaultExtraFeeCents,
		customWindowHours:            DefaultCustomWindowHours,
		customWindowStartHour:        DefaultCustomWindowStartHour,
		customWindowEndHour:          DefaultCustomWindowEndHour,
		customWindowLookaheadHours:   DefaultCustomWindowLookaheadHours,
		cheapestWindowStartHour:      DefaultCheapestWindowStartHour,
		cheapestWindowEndHour:        DefaultCheapestWindowEndHour,
		cheapestWindowLookaheadHours: DefaultCheapestWindowLookaheadHours,
	}
}

// normalizeExtraFee clamps to the fee range and quantizes to the fee step.
func normalizeExtraFee(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return DefaultExtraFeeCents
	}
	bounded := math.Max(MinExtraFeeCents, math.Min(MaxExtraFeeCents, value))
	steps := math.Round(bounded / ExtraFeeStepCents)
	// One decimal, matching the fee step.
	return math.Round(steps*ExtraFeeStepCents*10) / 10
}

func clampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
