package pvgis

import (
	"errors"
	"fmt"
)

var (
	// ErrNoLocation is returned when no position has been selected
	ErrNoLocation = errors.New("no location selected")

	// ErrAPI marks a non-success HTTP status from the estimation service
	ErrAPI = errors.New("API error")

	// ErrFetch marks a transport or decoding failure
	ErrFetch = errors.New("fetch error")
)

// APIError carries the status of a rejected request
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("PVGIS returned status %d: %s", e.StatusCode, e.Body)
}

// Unwrap lets errors.Is match ErrAPI
func (e *APIError) Unwrap() error {
	return ErrAPI
}
