package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCacheMiss indicates no cached entry was found.
var ErrCacheMiss = errors.New("cache miss")

// FieldError describes a single structural validation failure at a dotted
// field path within the validated data.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ProviderNotRegisteredError indicates the requested or default backend has
// no registered implementation. Fatal to the call, never retried.
type ProviderNotRegisteredError struct {
	Type ProviderType
}

func (e *ProviderNotRegisteredError) Error() string {
	return fmt.Sprintf("provider %s is not registered", e.Type)
}

// ProviderError indicates a backend transport, auth or quota failure. The
// provider tag and attempted operation are carried for diagnosis.
type ProviderError struct {
	Provider ProviderType
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// MalformedOutputError indicates the backend returned non-JSON text when
// JSON output was demanded. The chain decides on fallback policy.
type MalformedOutputError struct {
	Provider ProviderType
	Raw      string
	Err      error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("provider %s returned malformed JSON output: %v", e.Provider, e.Err)
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Err
}

// InvalidDateRangeError indicates caller input violates the start/end date
// precondition. Detected before any paid model call.
type InvalidDateRangeError struct {
	StartDate string
	EndDate   string
}

func (e *InvalidDateRangeError) Error() string {
	return "End date must be after start date"
}

// InvalidItineraryResponseError indicates the generated itinerary failed
// structural validation. The validator's error list is carried to the
// caller; the chain fabricates no result.
type InvalidItineraryResponseError struct {
	Errors []FieldError
}

func (e *InvalidItineraryResponseError) Error() string {
	if len(e.Errors) == 0 {
		return "generated itinerary failed validation"
	}
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Path, fe.Message))
	}
	return fmt.Sprintf("generated itinerary failed validation: %s", strings.Join(parts, "; "))
}
