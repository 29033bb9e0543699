// Package persistence provides standardized error types for storage
// operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrSubmissionNotFound indicates no submission exists for the identifier.
	ErrSubmissionNotFound = errors.New("submission not found")

	// ErrUserNotFound indicates no user exists for the identifier.
	ErrUserNotFound = errors.New("user not found")

	// ErrNotificationNotFound indicates no notification matched the
	// recipient/id pair.
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrVersionConflict indicates a concurrent save won: the stored version
	// no longer matches the version the caller loaded.
	ErrVersionConflict = errors.New("submission version conflict")
)

// StoreError wraps storage errors with operation context.
type StoreError struct {
	Op  string // Operation being performed (e.g., "GetByID", "Save")
	Ref string // Record identifier if applicable
	Err error  // Underlying error
}

func (e *StoreError) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("%s operation failed for %s: %v", e.Op, e.Ref, e.Err)
	}

	return fmt.Sprintf("%s operation failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for store errors.
func (e *StoreError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewStoreError creates a new store error with context.
func NewStoreError(op, ref string, err error) *StoreError {
	return &StoreError{Op: op, Ref: ref, Err: err}
}

// IsSubmissionNotFound checks if an error indicates a missing submission.
func IsSubmissionNotFound(err error) bool {
	return errors.Is(err, ErrSubmissionNotFound)
}

// IsUserNotFound checks if an error indicates a missing user.
func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

// IsNotificationNotFound checks if an error indicates a missing notification.
func IsNotificationNotFound(err error) bool {
	return errors.Is(err, ErrNotificationNotFound)
}

// IsVersionConflict checks if an error indicates a lost optimistic-versioning
// race.
func IsVersionConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}
