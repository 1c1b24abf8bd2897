package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode         `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Err     error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the application code to an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrBadRequest, ErrEmptyExtraction:
		return http.StatusBadRequest
	case ErrConflict:
		return http.StatusConflict
	case ErrValidation:
		return http.StatusUnprocessableEntity
	case ErrAcquisition, ErrSubmission, ErrUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrConflict
	ErrInternal

	// Pipeline specific codes
	ErrAcquisition
	ErrEmptyExtraction
	ErrValidation
	ErrSubmission
	ErrUpstream
)

// Error constructors
func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewConflict(message string) *AppError {
	return &AppError{
		Code:    ErrConflict,
		Message: message,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// NewAcquisition wraps a recognition engine failure. Fatal to the current
// scan attempt; the caller must re-capture the image.
func NewAcquisition(err error) *AppError {
	return &AppError{
		Code:    ErrAcquisition,
		Message: "text recognition failed",
		Err:     err,
	}
}

// NewEmptyExtraction signals that no medicine lines were detected. Non-fatal;
// the user gets a rescan affordance.
func NewEmptyExtraction() *AppError {
	return &AppError{
		Code:    ErrEmptyExtraction,
		Message: "no medicines detected in the scanned prescription",
	}
}

// NewValidation carries the field-keyed error map produced by form
// validation. A non-empty map blocks submission.
func NewValidation(fields map[string]string) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: "validation failed",
		Fields:  fields,
	}
}

// NewSubmission surfaces an order service failure verbatim. The session stays
// editable; retry is user initiated.
func NewSubmission(message string, err error) *AppError {
	return &AppError{
		Code:    ErrSubmission,
		Message: message,
		Err:     err,
	}
}

// NewUpstream wraps a failure of an external dependency other than the
// recognition engine or the order service.
func NewUpstream(service string, err error) *AppError {
	return &AppError{
		Code:    ErrUpstream,
		Message: fmt.Sprintf("%s is unavailable", service),
		Err:     err,
	}
}

func IsCode(err error, code ErrorCode) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}
