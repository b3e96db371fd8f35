package analysis

import (
	"time"

	"spotwatch/internal/domain"
)

// HourMask is a set of allowed local hours of day.
type HourMask [24]bool

// NewHourMask builds the inclusive mask from startHour to endHour. When
// startHour > endHour the mask wraps past midnight (startHour..23 plus
// 0..endHour). Hours outside 0..23 are clamped.
func NewHourMask(startHour, endHour int) HourMask {
	startHour = clampHour(startHour)
	endHour = clampHour(endHour)
	var m HourMask
	if startHour <= endHour {
		for h := startHour; h <= endHour; h++ {
			m[h] = true
		}
		return m
	}
	for h := startHour; h < 24; h++ {
		m[h] = true
	}
	for h := 0; h <= endHour; h++ {
		m[h] = true
	}
	return m
}

// Count returns the number of allowed hours.
func (m HourMask) Count() int {
	n := 0
	for _, allowed := range m {
		if allowed {
			n++
		}
	}
	return n
}

// Contains reports whether the given local hour is allowed.
func (m HourMask) Contains(hour int) bool {
	return hour >= 0 && hour < 24 && m[hour]
}

// Allows reports whether every point's local hour in loc lies in the mask.
func (m HourMask) Allows(points []domain.SeriesPoint, loc *time.Location) bool {
	for _, p := range points {
		if !m[p.Timestamp.In(loc).Hour()] {
			return false
		}
	}
	return true
}

func clampHour(hour int) int {
	if hour < 0 {
		return 0
	}
	if hour > 23 {
		return 23
	}
	return hour
}
