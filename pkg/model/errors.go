package model

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential is returned when the backend needs an API key and
	// none is configured. Operators must fix the environment; it is never retried.
	ErrMissingCredential = errors.New("missing OPENAI_API_KEY: the model backend credential is not configured")

	// ErrNoJSONObject is returned by ExtractJSON when the generated text
	// contains no {...} pair.
	ErrNoJSONObject = errors.New("could not extract a JSON object from the model response")

	// ErrMalformedEnvelope marks a backend response body that is not JSON.
	ErrMalformedEnvelope = errors.New("malformed response envelope")
)

// TransportError describes a failed call to the backend: either the request
// never completed (StatusCode is 0) or the backend answered with a
// non-success status or an unreadable envelope.
type TransportError struct {
	Backend    string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s request failed: %v", e.Backend, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s error %d: %v: %s", e.Backend, e.StatusCode, e.Err, e.Body)
	}
	return fmt.Sprintf("%s error %d: %s", e.Backend, e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
