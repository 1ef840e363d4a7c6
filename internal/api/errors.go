package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrRateLimitExceeded means every retry attempt hit a transient status.
var ErrRateLimitExceeded = errors.New("rate-limit retries exceeded")

// StatusError is a non-2xx response.
type StatusError struct {
	Code int
	URL  string
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error: %d", e.Code)
}

// Transient reports whether the status is worth retrying.
func (e *StatusError) Transient() bool {
	return IsTransientStatus(e.Code)
}

var transientStatuses = map[int]struct{}{
	http.StatusTooManyRequests:    {},
	http.StatusBadGateway:         {},
	http.StatusServiceUnavailable: {},
}

// IsTransientStatus reports whether code is 429, 502 or 503.
func IsTransientStatus(code int) bool {
	_, ok := transientStatuses[code]
	return ok
}

// IsTransient is the retry predicate for the Riot fetcher.
func IsTransient(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Transient()
	}
	return false
}
