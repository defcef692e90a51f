package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Transport errors: a network failure or non-2xx response from the
	// tracer API. Never retried automatically.
	ErrTransport = errors.New("transport error")

	// Partial data errors: a 2xx response whose body could not be decoded.
	// Callers fall back to last-known-good state instead of failing.
	ErrPartialData = errors.New("partial data")
)

// Survey errors
var (
	ErrSurveyNotFound      = errors.New("survey not found")
	ErrSurveyAlreadyExists = errors.New("survey already submitted for this alumni")
	ErrUnknownField        = errors.New("unknown survey field")
	ErrSubmitInFlight      = errors.New("a submission is already in flight")
	ErrInvalidTransition   = errors.New("invalid lifecycle transition")
)

// Profile errors
var (
	ErrAlumniNotFound     = errors.New("alumni not found")
	ErrUsernameExists     = errors.New("username already exists")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// NewTransportError wraps a raw server response body so it can be surfaced
// to the user verbatim, field-level detail included.
func NewTransportError(status int, body string) *CustomError {
	return &CustomError{
		Err:     ErrTransport,
		Message: body,
		Details: map[string]interface{}{"status": status},
	}
}

// NewValidationError creates a pre-submit validation error for one field
func NewValidationError(field, message string) *CustomError {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
		Details: map[string]interface{}{"field": field},
	}
}

// Is returns whether target matches err or any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}
	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
