package analysis

import (
	"testing"
	"time"

	"spotwatch/internal/domain"
)

func TestNewHourMaskInclusiveRange(t *testing.T) {
	m := NewHourMask(8, 11)

	if m.Count() != 4 {
		t.Fatalf("expected 4 allowed hours, got %d", m.Count())
	}
	for h := 8; h <= 11; h++ {
		if !m.Contains(h) {
			t.Errorf("expected hour %d allowed", h)
		}
	}
	if m.Contains(7) || m.Contains(12) {
		t.Error("hours outside the range are allowed")
	}
}

func TestNewHourMaskWrapsMidnight(t *testing.T) {
	m := NewHourMask(22, 2)

	if m.Count() != 5 {
		t.Fatalf("expected 5 allowed hours, got %d", m.Count())
	}
	for _, h := range []int{22, 23, 0, 1, 2} {
		if !m.Contains(h) {
			t.Errorf("expected hour %d allowed", h)
		}
	}
	if m.Contains(3) || m.Contains(21) {
		t.Error("hours outside the wrapped range are allowed")
	}
}

func TestNewHourMaskFullDay(t *testing.T) {
	if m := NewHourMask(0, 23); m.Count() != 24 {
		t.Fatalf("expected full mask, got %d hours", m.Count())
	}
}

func TestNewHourMaskClampsOutOfRangeHours(t *testing.T) {
	m := NewHourMask(-5, 30)
	if m.Count() != 24 {
		t.Fatalf("expected clamped full mask, got %d hours", m.Count())
	}
}

func TestHourMaskAllowsLocalHours(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Helsinki")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// 10:00 UTC in January is 12:00 in Helsinki (UTC+2, no DST).
	points := []domain.SeriesPoint{
		{Timestamp: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), Value: 1},
		{Timestamp: time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC), Value: 1},
	}

	if !NewHourMask(12, 14).Allows(points, loc) {
		t.Error("expected local hours 12 and 13 to pass a 12..14 mask")
	}
	if NewHourMask(12, 12).Allows(points, loc) {
		t.Error("expected local hour 13 to fail a 12..12 mask")
	}
}
