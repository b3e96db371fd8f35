package series

import (
	"testing"
	"time"
)

func TestParseRealizedCSV(t *testing.T) {
	csv := "timestamp,price\n" +
		"2024-01-01T10:00:00Z,10.5\n" +
		"2024-01-01T11:00:00.000Z,11.2\n" +
		"2024-01-01T13:00:00+02:00,20.1\n" +
		"2024-01-01 12:00:00,12.0\n"

	s := ParseRealizedCSV(csv, time.Time{})

	if len(s) != 4 {
		t.Fatalf("expected 4 points, got %d", len(s))
	}
	// Offset-qualified 13:00+02:00 normalizes to 11:00 UTC and sorts between
	// the Z-suffixed rows.
	want := time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC)
	if !s[1].Timestamp.Equal(want) && !s[2].Timestamp.Equal(want) {
		t.Errorf("expected an 11:00 UTC point from the +02:00 row, got %v and %v", s[1].Timestamp, s[2].Timestamp)
	}
	last := s[len(s)-1]
	if !last.Timestamp.Equal(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("expected naive row treated as 12:00 UTC, got %v", last.Timestamp)
	}
	if last.Value != 12.0 {
		t.Errorf("expected last value 12.0, got %v", last.Value)
	}
}

func TestParseRealizedCSVSkipsMalformedRows(t *testing.T) {
	csv := "timestamp,price\n" +
		"\n" +
		"only-one-field\n" +
		"not-a-timestamp,5.0\n" +
		"2024-01-01T10:00:00Z,not-a-price\n" +
		"2024-01-01T10:00:00Z,10.5\n"

	s := ParseRealizedCSV(csv, time.Time{})

	if len(s) != 1 {
		t.Fatalf("expected 1 point, got %d", len(s))
	}
	if s[0].Value != 10.5 {
		t.Errorf("expected value 10.5, got %v", s[0].Value)
	}
}

func TestParseRealizedCSVDropsRowsBeforeEarliest(t *testing.T) {
	csv := "timestamp,price\n" +
		"2024-01-01T08:00:00Z,8.0\n" +
		"2024-01-01T10:00:00Z,10.5\n"
	earliest := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	s := ParseRealizedCSV(csv, earliest)

	if len(s) != 1 {
		t.Fatalf("expected 1 point, got %d", len(s))
	}
	if s[0].Value != 10.5 {
		t.Errorf("expected value 10.5, got %v", s[0].Value)
	}
}

func TestParseRealizedCSVEmptyBody(t *testing.T) {
	if s := ParseRealizedCSV("", time.Time{}); s != nil {
		t.Fatalf("expected nil series for empty body, got %d points", len(s))
	}
	if s := ParseRealizedCSV("timestamp,price\n", time.Time{}); len(s) != 0 {
		t.Fatalf("expected empty series for header-only body, got %d points", len(s))
	}
}
