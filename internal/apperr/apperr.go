// Package apperr defines the application error taxonomy shared by every
// write path: validation, authentication, precondition, protocol violation,
// not found, idempotent conflict, and internal.
package apperr

import "fmt"

// Error codes returned in the JSON error body alongside the HTTP status.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeValidation         = "VALIDATION_ERROR"
	CodeInternal           = "INTERNAL_ERROR"
	CodeBadRequest         = "BAD_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodePrecondition       = "PRECONDITION_FAILED"
	CodeInvalidStepSequence = "INVALID_STEP_SEQUENCE"
	CodeConflict           = "CONFLICT"
)

// AppError represents an application error with an HTTP status code,
// a stable machine-readable code, and an optionally wrapped cause.
type AppError struct {
	Code       string
	Message    string
	Status     int
	Err        error
	Details    map[string]any
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func NewNotFoundError(resource string, id any) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  404,
	}
}

func NewValidationError(field, reason string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  400,
		Details: map[string]any{"field": field, "reason": reason},
	}
}

func NewBadRequestError(message string) *AppError {
	return &AppError{Code: CodeBadRequest, Message: message, Status: 400}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message, Status: 401}
}

func NewPreconditionError(message string) *AppError {
	return &AppError{Code: CodePrecondition, Message: message, Status: 403}
}

// NewInvalidStepSequenceError reports a §4.7 protocol violation. details
// carries expected_step/expected_attempt/protocol for the client to resync.
func NewInvalidStepSequenceError(message string, details map[string]any) *AppError {
	return &AppError{Code: CodeInvalidStepSequence, Message: message, Status: 409, Details: details}
}

func NewConflictError(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message, Status: 409}
}

func NewInternalError(err error) *AppError {
	return &AppError{Code: CodeInternal, Message: "internal server error", Status: 500, Err: err}
}

// As extracts an *AppError from err, wrapping it as internal if it isn't one.
func As(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return NewInternalError(err)
}
