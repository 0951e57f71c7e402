package baas

import (
	"errors"
	"fmt"
)

// Sentinel kinds for remote backend errors.
var (
	ErrNoBaseURL   = errors.New("baas: base url is required")
	ErrRateLimited = errors.New("baas: rate limited")
)

// StatusError is returned for non-success responses that are not retried.
type StatusError struct {
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("baas: %s returned %d: %s", e.URL, e.Status, e.Body)
}
