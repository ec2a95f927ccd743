// Package services provides the application service layer over persistence
// and the event bus.
package services

import (
	"errors"
)

// Business logic errors. These indicate client errors (4xx responses).
var (
	// ErrEmptyClientID is returned when a formation is created without a client.
	ErrEmptyClientID = errors.New("client ID cannot be empty")

	// ErrEmptyPlanID is returned when a formation is created without a plan.
	ErrEmptyPlanID = errors.New("plan ID cannot be empty")
)

// IsValidationError checks if an error is a validation error that should
// return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptyClientID) ||
		errors.Is(err, ErrEmptyPlanID)
}
