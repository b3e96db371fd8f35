package artifact

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(
		WithBaseURL(server.URL),
		WithRealizedURL(server.URL+"/prices.csv"),
		WithLogger(log.New(io.Discard, "", 0)),
	)
	return client, server
}

func TestFetchJSONRows(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/prediction.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[[1704067200000, 4.5], [1704070800000, 5.1]]`))
	}))

	rows, err := client.FetchJSONRows(context.Background(), SuffixPrediction)
	if err != nil {
		t.Fatalf("FetchJSONRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
}

func TestFetchJSONRowsNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := client.FetchJSONRows(context.Background(), SuffixWindpower)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchJSONRowsMalformed(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not": "an array"`))
	}))

	_, err := client.FetchJSONRows(context.Background(), SuffixPrediction)

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fetchErr.Kind != KindMalformed {
		t.Errorf("expected kind %s, got %s", KindMalformed, fetchErr.Kind)
	}
}

func TestFetchJSONRowsServerError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.FetchJSONRows(context.Background(), SuffixPrediction)

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fetchErr.Kind != KindStatus {
		t.Errorf("expected kind %s, got %s", KindStatus, fetchErr.Kind)
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("server error must not look like absence")
	}
}

func TestFetchText(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/narration.md" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte("Hinnat nousevat.\n"))
	}))

	text, err := client.FetchText(context.Background(), SuffixNarrationFI)
	if err != nil {
		t.Fatalf("FetchText: %v", err)
	}
	if text != "Hinnat nousevat.\n" {
		t.Errorf("unexpected body %q", text)
	}
}

func TestFetchRealizedCSVQueryParams(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("fix") != "true" || q.Get("vat") != "true" {
			t.Errorf("expected fix=true vat=true, got %v", q)
		}
		if q.Get("start") != "2024-01-01T00:00:00Z" {
			t.Errorf("unexpected start %q", q.Get("start"))
		}
		if q.Get("end") != "2024-01-03T00:00:00Z" {
			t.Errorf("unexpected end %q", q.Get("end"))
		}
		w.Write([]byte("timestamp,price\n2024-01-01T10:00:00Z,10.5\n"))
	}))

	text, err := client.FetchRealizedCSV(context.Background(), start, end)
	if err != nil {
		t.Fatalf("FetchRealizedCSV: %v", err)
	}
	if text == "" {
		t.Error("expected CSV body")
	}
}

func TestFetchRealizedCSVNotFoundIsError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := client.FetchRealizedCSV(context.Background(), time.Now().Add(-48*time.Hour), time.Now())

	// The realized endpoint is not an optional artifact; 404 is a failure.
	if errors.Is(err, ErrNotFound) {
		t.Fatal("realized 404 must not be ErrNotFound")
	}
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fetchErr.Kind != KindStatus {
		t.Errorf("expected kind %s, got %s", KindStatus, fetchErr.Kind)
	}
}

func TestFetchTimeout(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	WithTimeout(50 * time.Millisecond)(client)

	_, err := client.FetchJSONRows(context.Background(), SuffixPrediction)

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fetchErr.Kind != KindTimeout {
		t.Errorf("expected kind %s, got %s", KindTimeout, fetchErr.Kind)
	}
}

func TestSafeFetchersDegradeToAbsence(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	if rows := client.SafeFetchJSONRows(context.Background(), SuffixWindpower); rows != nil {
		t.Errorf("expected nil rows, got %v", rows)
	}
	if _, ok := client.SafeFetchText(context.Background(), SuffixNarrationEN); ok {
		t.Error("expected text absence")
	}
	if _, ok := client.SafeFetchRealizedCSV(context.Background(), time.Now().Add(-time.Hour), time.Now()); ok {
		t.Error("expected realized absence")
	}
}

func TestArtifactURL(t *testing.T) {
	client := NewClient(WithBaseURL("https://example.test/deploy/"))

	if got := client.ArtifactURL(SuffixPrediction); got != "https://example.test/deploy/prediction.json" {
		t.Errorf("unexpected artifact URL %q", got)
	}
}
