package apperrors

import (
	"errors"
	"fmt"
)

// Error kinds for the order core. Every rejected mutation maps to exactly one
// of these so callers can pick the right recovery action (fix input, escalate
// role, wait for sync, discard entry).
var (
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrForbidden          = errors.New("forbidden")
	ErrValidation         = errors.New("validation error")
	ErrConflict           = errors.New("idempotency conflict")
	ErrNotFound           = errors.New("not found")
	ErrNetwork            = errors.New("network error")
	ErrStorageUnavailable = errors.New("client storage unavailable")
)

// Codes used in machine-readable error bodies.
const (
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeForbidden         = "FORBIDDEN"
	CodeValidation        = "VALIDATION_ERROR"
	CodeConflict          = "IDEMPOTENCY_CONFLICT"
	CodeNotFound          = "NOT_FOUND"
)

// InvalidTransition reports a (from, to) pair that is not in the transition
// table, or a from state that no longer matches the persisted order.
func InvalidTransition(from, to string) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// Forbidden reports an actor whose access level is below the required minimum.
func Forbidden(required, actual int) error {
	return fmt.Errorf("%w: requires level %d, actor has level %d", ErrForbidden, required, actual)
}

// Validation reports a missing or insufficient required field.
func Validation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// Conflict reports idempotency key reuse with a different request body.
func Conflict(key string) error {
	return fmt.Errorf("%w: key %q reused with a different body", ErrConflict, key)
}

// NotFound reports an absent order, item, or actor.
func NotFound(resource string, id interface{}) error {
	return fmt.Errorf("%w: %s %v", ErrNotFound, resource, id)
}

// Code maps an error to its machine-readable code, or "" for unclassified
// errors (which handlers report as internal failures).
func Code(err error) string {
	switch {
	case errors.Is(err, ErrInvalidTransition):
		return CodeInvalidTransition
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrConflict):
		return CodeConflict
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	}
	return ""
}
