package models

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned for input rejected before any network call
	ErrValidation = errors.New("invalid location")
	// ErrNotFound is returned when a name lookup resolves to no location
	ErrNotFound = errors.New("city not found")
	// ErrFetch is the class of every other request or transport failure
	ErrFetch = errors.New("fetch failed")
	// ErrGeolocation is returned when the device location is unavailable or denied
	ErrGeolocation = errors.New("geolocation unavailable")
	// ErrGeolocationUnsupported is the ErrGeolocation case where no locator exists at all
	ErrGeolocationUnsupported = fmt.Errorf("geolocation not supported: %w", ErrGeolocation)
)

// FetchError describes a failed request against the weather provider.
// StatusCode is zero for transport and decoding failures.
type FetchError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: API error (status %d)", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Endpoint, e.Err)
}

// Unwrap exposes both the underlying cause and the ErrFetch class
func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFetch}
	}
	return []error{ErrFetch, e.Err}
}
