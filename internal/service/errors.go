package service

import (
	"errors"
	"fmt"
)

// Failure kinds surfaced at the service boundary. Handlers map these to
// HTTP statuses; callers distinguish them with errors.Is.
var (
	// ErrInvalidInput marks a validation failure; the submission is rejected
	// before any state changes.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUserNotFound marks a lookup for an unknown user.
	ErrUserNotFound = errors.New("user not found")

	// ErrStorageUnavailable marks a log-store failure; the dependent action
	// is blocked, never silently substituted.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrPredictionUnavailable marks a predictor failure; prediction
	// endpoints degrade to the deterministic baseline instead.
	ErrPredictionUnavailable = errors.New("prediction unavailable")
)

func errUnknownBadge(name string) error {
	return fmt.Errorf("unknown badge %q", name)
}

func invalidInput(err error) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, err)
}

func storageFailure(op string, err error) error {
	return fmt.Errorf("%w: %s: %s", ErrStorageUnavailable, op, err)
}
