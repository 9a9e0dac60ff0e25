package usecase

import "fmt"

// ErrorCode classifies flow failures along the boundaries that matter to the
// invoking user: what to fix (config, credentials, permissions, inputs) vs.
// what the provider did (transport). Nothing here is retried.
type ErrorCode string

const (
	ErrorConfig        ErrorCode = "CONFIG_ERROR"
	ErrorAuth          ErrorCode = "AUTH_ERROR"
	ErrorAuthorization ErrorCode = "AUTHORIZATION_ERROR"
	ErrorValidation    ErrorCode = "VALIDATION_ERROR"
	ErrorTransport     ErrorCode = "TRANSPORT_ERROR"
)

type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}
