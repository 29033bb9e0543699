// Package workflow implements the form-approval workflow engine: validated
// stage transitions, per-stage actor resolution, audit and notification side
// channels, and delayed auto-progression.
package workflow

import (
	"errors"
	"fmt"

	"github.com/formforge/formforge/pkg/persistence"
)

// Transition error taxonomy. Callers map these to API responses.
var (
	// ErrSubmissionNotFound is returned when the submission id does not
	// resolve. No state is mutated.
	ErrSubmissionNotFound = persistence.ErrSubmissionNotFound

	// ErrInvalidState indicates the action is not legal for the submission's
	// current stage, or the stored status has no matching stage definition.
	ErrInvalidState = errors.New("action not legal for current stage")

	// ErrPermissionDenied indicates the actor's role is not authorized for
	// the current stage.
	ErrPermissionDenied = errors.New("actor not authorized for stage")

	// ErrUnknownAction indicates an action outside the recognized set.
	ErrUnknownAction = errors.New("unknown workflow action")

	// ErrPersistence wraps submission store failures; the transition must be
	// treated as not applied.
	ErrPersistence = errors.New("submission store failure")
)

// TransitionError wraps a failed transition with its context.
type TransitionError struct {
	Op           string // Operation being performed (e.g., "Process", "AutoProgress")
	SubmissionID string
	Action       Action
	Message      string // Additional context message
	Err          error  // Underlying taxonomy error
}

func (e *TransitionError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s on submission %s: %s (%v)", e.Op, e.Action, e.SubmissionID, e.Message, e.Err)
	}

	return fmt.Sprintf("%s %s on submission %s: %v", e.Op, e.Action, e.SubmissionID, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for transition errors.
func (e *TransitionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewTransitionError creates a transition error with context.
func NewTransitionError(op, submissionID string, action Action, message string, err error) *TransitionError {
	return &TransitionError{
		Op:           op,
		SubmissionID: submissionID,
		Action:       action,
		Message:      message,
		Err:          err,
	}
}

// IsSubmissionNotFound checks for a missing submission.
func IsSubmissionNotFound(err error) bool {
	return errors.Is(err, ErrSubmissionNotFound)
}

// IsInvalidState checks for an illegal action/stage combination.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

// IsPermissionDenied checks for a role authorization failure.
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// IsUnknownAction checks for an unrecognized action.
func IsUnknownAction(err error) bool {
	return errors.Is(err, ErrUnknownAction)
}

// IsPersistenceFailure checks for a submission store failure.
func IsPersistenceFailure(err error) bool {
	return errors.Is(err, ErrPersistence)
}
