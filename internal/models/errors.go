package models

import "errors"

// Error taxonomy shared by all layers. Services wrap these with context via
// fmt.Errorf("%w: ...") and handlers map them to HTTP statuses with errors.Is.
// Mutators always return errors; nothing logs-and-swallows.
var (
	// ErrNotFound covers missing rows and soft-deleted rows on default reads.
	ErrNotFound = errors.New("not found")

	// ErrValidation covers bad input shape or range, including unknown field
	// names passed to a field update. Never retried.
	ErrValidation = errors.New("validation failed")

	// ErrConflict covers duplicate unique keys and optimistic-concurrency
	// version mismatches.
	ErrConflict = errors.New("conflict")

	// ErrForbidden is returned when a non-admin performs an admin action.
	ErrForbidden = errors.New("forbidden")

	// ErrUnavailable is returned when a cart or order references a menu item
	// that is unavailable or soft-deleted.
	ErrUnavailable = errors.New("menu item not available")

	// ErrInvalidTransition is returned for order status changes absent from
	// the transition table. Never retried.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidCredentials covers wrong email/password pairs.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountLocked is returned once the per-account failed-attempt
	// counter reaches its ceiling, until an explicit reset.
	ErrAccountLocked = errors.New("account locked")

	// ErrTooManyAttempts is the per-email rolling-window throttle (429).
	ErrTooManyAttempts = errors.New("too many attempts")

	// ErrStorage is surfaced after transient storage failures exhaust their
	// retry budget.
	ErrStorage = errors.New("storage failure")
)
