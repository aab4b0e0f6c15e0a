package ads

import (
	"errors"
	"fmt"
)

var (
	// ErrCriterionNotFound is returned when a location or language name has
	// no matching criterion.
	ErrCriterionNotFound = errors.New("criterion not found")

	// ErrMissingCustomerID is returned when no Ads customer ID is configured.
	ErrMissingCustomerID = errors.New("google ads customer ID is required")

	// ErrMissingDeveloperToken is returned when no developer token is configured.
	ErrMissingDeveloperToken = errors.New("google ads developer token is required")
)

// APIError is a failed Google Ads API call: a transport-level non-2xx
// status, a body that is not JSON, or a body carrying an error field.
type APIError struct {
	Service    string
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("google ads %s failed (status %d): %s", e.Service, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("google ads %s failed (status %d)", e.Service, e.StatusCode)
}
