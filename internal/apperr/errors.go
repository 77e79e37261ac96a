// Package apperr defines the error taxonomy shared by the planning and
// authentication services. Handlers discriminate with errors.As and map each
// kind to an HTTP status.
package apperr

import "fmt"

// ValidationError reports malformed or conflicting input (duplicate planning
// key, blank rejection reason, unknown enum value).
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError reports an identifier that did not resolve.
type NotFoundError struct{ Msg string }

func (e *NotFoundError) Error() string { return e.Msg }

// InvalidStateError reports an operation that is illegal in the entity's
// current lifecycle state.
type InvalidStateError struct{ Msg string }

func (e *InvalidStateError) Error() string { return e.Msg }

// AuthenticationError carries one fixed, generic message regardless of cause
// so callers cannot distinguish an unknown account from a wrong password.
type AuthenticationError struct{ Msg string }

func (e *AuthenticationError) Error() string { return e.Msg }

func Validation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &NotFoundError{Msg: fmt.Sprintf(format, args...)}
}

func InvalidState(format string, args ...any) error {
	return &InvalidStateError{Msg: fmt.Sprintf(format, args...)}
}

// Authentication returns the canonical credential-failure error.
func Authentication() error {
	return &AuthenticationError{Msg: "invalid credentials"}
}
