// Package services provides the application layer between the HTTP surface
// and the workflow core.
package services

import (
	"errors"
	"fmt"
)

// Business logic errors. These indicate client errors (4xx responses).
var (
	// Validation errors (400 Bad Request).
	ErrInvalidRequest     = errors.New("invalid request")
	ErrTitleRequired      = errors.New("form title is required")
	ErrDepartmentRequired = errors.New("department is required")
	ErrSubmitterRequired  = errors.New("submitter is required")
	ErrSubmissionNil      = errors.New("submission cannot be nil")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should
// return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrTitleRequired) ||
		errors.Is(err, ErrDepartmentRequired) ||
		errors.Is(err, ErrSubmitterRequired) ||
		errors.Is(err, ErrSubmissionNil)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
