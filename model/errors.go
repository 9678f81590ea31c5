package model

import (
	"fmt"
	"sort"
)

// Standard error codes.
const (
	ErrBadRequest      = "BAD_REQUEST"
	ErrNotFound        = "NOT_FOUND"
	ErrConflict        = "CONFLICT"
	ErrValidationError = "VALIDATION_ERROR"
	ErrImportError     = "IMPORT_ERROR"
	ErrInternalError   = "INTERNAL_ERROR"
)

// ErrorEnvelope is the standard error response envelope. It implements
// the error interface so store and runtime failures can flow up to the
// transport layer unchanged.
type ErrorEnvelope struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *ErrorEnvelope) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// FieldError describes a field-level validation error.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewBadRequestError returns a BAD_REQUEST error.
func NewBadRequestError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrBadRequest, Message: msg}
}

// NewNotFoundError returns a NOT_FOUND error.
func NewNotFoundError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrNotFound, Message: msg}
}

// NewConflictError returns a CONFLICT error.
func NewConflictError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrConflict, Message: msg}
}

// NewImportError returns an IMPORT_ERROR describing a schema import
// that was rejected with no partial write.
func NewImportError(msg string) *ErrorEnvelope {
	return &ErrorEnvelope{Code: ErrImportError, Message: msg}
}

// NewValidationError returns a VALIDATION_ERROR with field-level
// details built from a validator result map.
func NewValidationError(errs map[string]string) *ErrorEnvelope {
	details := make([]FieldError, 0, len(errs))
	for field, msg := range errs {
		details = append(details, FieldError{Field: field, Message: msg})
	}
	sort.Slice(details, func(i, j int) bool { return details[i].Field < details[j].Field })
	return &ErrorEnvelope{
		Code:    ErrValidationError,
		Message: "One or more fields are invalid",
		Details: details,
	}
}

// NewInternalError returns an INTERNAL_ERROR.
func NewInternalError() *ErrorEnvelope {
	return &ErrorEnvelope{
		Code:    ErrInternalError,
		Message: "An unexpected error occurred",
	}
}
