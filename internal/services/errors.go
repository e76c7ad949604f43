package services

import (
    "errors"
    "fmt"
)

// ErrUnauthorized is surfaced verbatim; no internal detail leaks past the gate.
var ErrUnauthorized = errors.New("Unauthorized")

// NotFoundError reports a direct by-id fetch that matched no row. Listings
// never produce it; an empty result list is not an error.
type NotFoundError struct {
    Kind string
}

func (e *NotFoundError) Error() string { return "Entity not found: " + e.Kind }

// ValidationError reports malformed mutation input, including references to
// entities that do not exist. No write happens before validation completes.
type ValidationError struct {
    Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, args ...any) error {
    return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
