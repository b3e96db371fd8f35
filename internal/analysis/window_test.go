package analysis

import (
	"testing"
	"time"

	"spotwatch/internal/domain"
)

// hourlySeries builds an hourly series starting at start with the given values.
func hourlySeries(start time.Time, values ...float64) domain.Series {
	s := make(domain.Series, len(values))
	for i, v := range values {
		s[i] = domain.SeriesPoint{Timestamp: start.Add(time.Duration(i) * time.Hour), Value: v}
	}
	return s
}

func TestFindCheapestWindowPicksLowestAverage(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := hourlySeries(start, 10, 8, 2, 3, 9, 12)

	w := FindCheapestWindow(s, 2, Constraints{})

	if w == nil {
		t.Fatal("expected a window")
	}
	if !w.Start.Equal(start.Add(2 * time.Hour)) {
		t.Errorf("expected start at hour 2, got %v", w.Start)
	}
	if !w.End.Equal(start.Add(4 * time.Hour)) {
		t.Errorf("expected end at hour 4, got %v", w.End)
	}
	if w.Average != 2.5 {
		t.Errorf("expected average 2.5, got %v", w.Average)
	}
	if w.DurationHours != 2 {
		t.Errorf("expected duration 2, got %d", w.DurationHours)
	}
	if len(w.Points) != 2 {
		t.Errorf("expected 2 points, got %d", len(w.Points))
	}
}

func TestFindCheapestWindowTieKeepsEarliest(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := hourlySeries(start, 5, 5, 9, 5, 5)

	w := FindCheapestWindow(s, 2, Constraints{})

	if w == nil {
		t.Fatal("expected a window")
	}
	if !w.Start.Equal(start) {
		t.Errorf("expected tie to keep the earliest window at %v, got %v", start, w.Start)
	}
}

func TestFindCheapestWindowSkipsGappedWindows(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := domain.Series{
		{Timestamp: start, Value: 1},
		{Timestamp: start.Add(90 * time.Minute), Value: 1},
	}

	if w := FindCheapestWindow(s, 2, Constraints{}); w != nil {
		t.Fatalf("expected nil window across a 90-minute gap, got %+v", w)
	}
}

func TestFindCheapestWindowSpansGapByRestarting(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := domain.Series{
		{Timestamp: start, Value: 1},
		{Timestamp: start.Add(1 * time.Hour), Value: 1},
		// Three-hour gap, then a more expensive but contiguous run.
		{Timestamp: start.Add(5 * time.Hour), Value: 7},
		{Timestamp: start.Add(6 * time.Hour), Value: 7},
	}

	w := FindCheapestWindow(s, 2, Constraints{})

	if w == nil {
		t.Fatal("expected a window")
	}
	if !w.Start.Equal(start) {
		t.Errorf("expected the cheap pre-gap window, got start %v", w.Start)
	}
}

func TestFindCheapestWindowEarliestStart(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := hourlySeries(start, 1, 1, 9, 8, 7)

	w := FindCheapestWindow(s, 2, Constraints{EarliestStart: start.Add(2 * time.Hour)})

	if w == nil {
		t.Fatal("expected a window")
	}
	if w.Start.Before(start.Add(2 * time.Hour)) {
		t.Errorf("window starts before earliest bound: %v", w.Start)
	}
	if w.Average != 7.5 {
		t.Errorf("expected average 7.5, got %v", w.Average)
	}
}

func TestFindCheapestWindowMinEnd(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := hourlySeries(start, 1, 1, 9, 8, 7)

	// The cheapest window ends at start+2h; MinEnd at start+2h excludes it
	// because a qualifying window must end strictly after the bound.
	w := FindCheapestWindow(s, 2, Constraints{MinEnd: start.Add(2 * time.Hour)})

	if w == nil {
		t.Fatal("expected a window")
	}
	if !w.End.After(start.Add(2 * time.Hour)) {
		t.Errorf("expected end after MinEnd, got %v", w.End)
	}
}

func TestFindCheapestWindowMaxEnd(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := hourlySeries(start, 9, 8, 1, 1)

	// The cheapest run is hours 2..3 but its window would end past the cap;
	// a window ending exactly at MaxEnd still qualifies.
	w := FindCheapestWindow(s, 2, Constraints{MaxEnd: start.Add(3 * time.Hour)})

	if w == nil {
		t.Fatal("expected a window")
	}
	if w.End.After(start.Add(3 * time.Hour)) {
		t.Errorf("window ends past MaxEnd: %v", w.End)
	}
	if w.Average != 4.5 {
		t.Errorf("expected average 4.5, got %v", w.Average)
	}
}

func TestFindCheapestWindowFilter(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := hourlySeries(start, 1, 1, 9, 8)

	rejectFirst := func(points []domain.SeriesPoint) bool {
		return !points[0].Timestamp.Equal(start)
	}
	w := FindCheapestWindow(s, 2, Constraints{Filter: rejectFirst})

	if w == nil {
		t.Fatal("expected a window")
	}
	if w.Start.Equal(start) {
		t.Error("filter-rejected window was returned")
	}
}

func TestFindCheapestWindowInsufficientData(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := hourlySeries(start, 1, 2)

	if w := FindCheapestWindow(s, 3, Constraints{}); w != nil {
		t.Fatalf("expected nil for 3h window over 2 points, got %+v", w)
	}
	if w := FindCheapestWindow(nil, 1, Constraints{}); w != nil {
		t.Fatalf("expected nil for empty series, got %+v", w)
	}
	if w := FindCheapestWindow(s, 0, Constraints{}); w != nil {
		t.Fatalf("expected nil for zero hours, got %+v", w)
	}
}

func TestFindCheapestWindowCopiesPoints(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := hourlySeries(start, 1, 2, 3)

	w := FindCheapestWindow(s, 2, Constraints{})
	if w == nil {
		t.Fatal("expected a window")
	}
	s[0].Value = 99

	if w.Points[0].Value != 1 {
		t.Errorf("window points alias the input series: %v", w.Points[0].Value)
	}
}
