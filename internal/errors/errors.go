package errors

import "fmt"

// Error codes. The five *_ERROR training codes mirror the failure classes of
// the session lifecycle; the rest are generic.
const (
	ErrCodeFilterLoad   = "FILTER_LOAD_ERROR"
	ErrCodeTaskFetch    = "TASK_FETCH_ERROR"
	ErrCodeSubmission   = "SUBMISSION_ERROR"
	ErrCodeFinish       = "FINISH_ERROR"
	ErrCodeSummaryFetch = "SUMMARY_FETCH_ERROR"

	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeRemote     = "REMOTE_ERROR"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeInternal   = "INTERNAL_ERROR"
)

// AppError represents an application error with an HTTP status and error code.
type AppError struct {
	Code    string // Error code (e.g., "TASK_FETCH_ERROR")
	Message string // Human-readable, safe to display
	Status  int    // HTTP status code
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewRemoteError reports a failed call to the task service. message is the
// service-supplied error string; callers fall back to a generic one when the
// payload carried none.
func NewRemoteError(status int, message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeRemote,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// NewTrainingError re-tags an error with one of the training lifecycle codes,
// preserving the displayable message of a wrapped AppError.
func NewTrainingError(code string, fallback string, err error) *AppError {
	message := fallback
	status := 502
	if app, ok := err.(*AppError); ok {
		if app.Message != "" {
			message = app.Message
		}
		if app.Status > 0 {
			status = app.Status
		}
	}
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// NewValidationError creates a new VALIDATION_ERROR.
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  400,
	}
}

// NewNotFoundError creates a new NOT_FOUND error.
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  404,
	}
}

// NewInternalError creates a new INTERNAL_ERROR.
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  500,
		Err:     err,
	}
}

// DisplayMessage extracts the displayable message from any error, preferring
// the AppError message when present.
func DisplayMessage(err error, fallback string) string {
	if app, ok := err.(*AppError); ok && app.Message != "" {
		return app.Message
	}
	return fallback
}
