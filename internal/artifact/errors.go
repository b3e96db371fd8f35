package artifact

import (
	"errors"
	"fmt"
)

// ErrNotFound signals an artifact the origin does not publish (HTTP 404).
// For optional artifacts the caller treats it as absence; for the mandatory
// forecast it fails the whole refresh cycle.
var ErrNotFound = errors.New("artifact not found")

// Kind classifies a failed artifact request.
type Kind string

const (
	KindTimeout   Kind = "timeout"
	KindNetwork   Kind = "network error"
	KindMalformed Kind = "malformed response"
	KindStatus    Kind = "unexpected status"
)

// FetchError describes a failed artifact request with enough context to log
// and classify it.
type FetchError struct {
	URL  string
	Kind Kind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s fetching %s: %v", e.Kind, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
