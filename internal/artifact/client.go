// Package artifact fetches the published forecast artifacts and the realized
// price CSV over HTTP, classifying failures so the caller can tell an absent
// optional artifact from a broken one.
package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"spotwatch/internal/observability"
)

// Default configuration values.
const (
	DefaultBaseURL     = "https://raw.githubusercontent.com/vividfog/nordpool-predict-fi/main/deploy"
	DefaultRealizedURL = "https://sahkotin.fi/prices.csv"
	DefaultTimeout     = 20 * time.Second
)

// Well-known artifact suffixes under the base URL.
const (
	SuffixPrediction  = "prediction.json"
	SuffixWindpower   = "windpower.json"
	SuffixNarrationFI = "narration.md"
	SuffixNarrationEN = "narration_en.md"
)

// Client fetches artifacts from a configurable base URL plus the fixed
// realized-price endpoint. Each request carries its own timeout independent
// of the others.
type Client struct {
	baseURL     string
	realizedURL string
	httpClient  *http.Client
	timeout     time.Duration
	logger      *log.Logger
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithBaseURL sets the artifact base URL.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithRealizedURL sets the realized-price endpoint.
func WithRealizedURL(u string) ClientOption {
	return func(c *Client) {
		if u != "" {
			c.realizedURL = u
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger sets the logger used by the safe-fetch wrappers.
func WithLogger(logger *log.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates an artifact client with defaults applied.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		realizedURL: DefaultRealizedURL,
		httpClient:  &http.Client{},
		timeout:     DefaultTimeout,
		logger:      log.New(os.Stdout, "[artifact] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured artifact base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// ArtifactURL composes the full URL for an artifact suffix.
func (c *Client) ArtifactURL(suffix string) string {
	return c.baseURL + "/" + suffix
}

// FetchJSONRows fetches a JSON-array artifact. A 404 yields ErrNotFound so
// the caller can decide whether the artifact was optional; any other failure
// is a FetchError.
func (c *Client) FetchJSONRows(ctx context.Context, suffix string) ([]any, error) {
	u := c.ArtifactURL(suffix)
	body, err := c.get(ctx, u, true)
	if err != nil {
		return nil, err
	}
	var rows []any
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, &FetchError{URL: u, Kind: KindMalformed, Err: err}
	}
	return rows, nil
}

// FetchText fetches a free-text artifact. 404 yields ErrNotFound.
func (c *Client) FetchText(ctx context.Context, suffix string) (string, error) {
	u := c.ArtifactURL(suffix)
	body, err := c.get(ctx, u, true)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FetchRealizedCSV issues a GET against the realized-price endpoint with the
// fix/vat normalization flags and the requested time range, returning raw
// CSV text. Unlike the artifact fetches, a 404 here is a reported failure,
// not an absence.
func (c *Client) FetchRealizedCSV(ctx context.Context, start, end time.Time) (string, error) {
	q := url.Values{}
	q.Set("fix", "true")
	q.Set("vat", "true")
	q.Set("start", start.UTC().Truncate(time.Second).Format(time.RFC3339))
	q.Set("end", end.UTC().Truncate(time.Second).Format(time.RFC3339))
	u := c.realizedURL + "?" + q.Encode()
	body, err := c.get(ctx, u, false)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// SafeFetchJSONRows degrades every failure to absence. A 404 is expected for
// optional artifacts and logged quietly; anything else is a warning.
func (c *Client) SafeFetchJSONRows(ctx context.Context, suffix string) []any {
	rows, err := c.FetchJSONRows(ctx, suffix)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.logger.Printf("artifact %s not present at %s", suffix, c.ArtifactURL(suffix))
		} else {
			c.logger.Printf("warning: could not refresh artifact %s: %v", suffix, err)
			observability.RecordArtifactError(suffix, errorKind(err))
		}
		return nil
	}
	return rows
}

// SafeFetchText degrades every failure to absence, like SafeFetchJSONRows.
func (c *Client) SafeFetchText(ctx context.Context, suffix string) (string, bool) {
	text, err := c.FetchText(ctx, suffix)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.logger.Printf("artifact %s not present at %s", suffix, c.ArtifactURL(suffix))
		} else {
			c.logger.Printf("warning: could not refresh artifact %s: %v", suffix, err)
			observability.RecordArtifactError(suffix, errorKind(err))
		}
		return "", false
	}
	return text, true
}

// SafeFetchRealizedCSV degrades every realized-price failure to absence.
func (c *Client) SafeFetchRealizedCSV(ctx context.Context, start, end time.Time) (string, bool) {
	text, err := c.FetchRealizedCSV(ctx, start, end)
	if err != nil {
		c.logger.Printf("warning: could not refresh realized prices: %v", err)
		observability.RecordArtifactError("realized_csv", errorKind(err))
		return "", false
	}
	return text, true
}

// errorKind extracts the failure classification for metrics.
func errorKind(err error) string {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return string(fetchErr.Kind)
	}
	return "unknown"
}

func (c *Client) get(ctx context.Context, u string, notFoundIsAbsent bool) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &FetchError{URL: u, Kind: KindNetwork, Err: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &FetchError{URL: u, Kind: KindTimeout, Err: err}
		}
		return nil, &FetchError{URL: u, Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		if notFoundIsAbsent {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, u)
		}
		return nil, &FetchError{URL: u, Kind: KindStatus, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: u, Kind: KindStatus, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &FetchError{URL: u, Kind: KindTimeout, Err: err}
		}
		return nil, &FetchError{URL: u, Kind: KindNetwork, Err: err}
	}
	return body, nil
}
