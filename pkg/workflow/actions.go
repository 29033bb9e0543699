package workflow

import (
	"github.com/formforge/formforge/pkg/stages"
)

// Action is the closed set of operations that move a submission out of its
// current stage. Dispatch is an exhaustive switch; strings from the outside
// world enter only through ParseAction.
type Action string

const (
	ActionSubmitForm        Action = "submit_form"
	ActionStartVerification Action = "start_verification"
	ActionVerifyForm        Action = "verify_form"
	ActionStartApproval     Action = "start_approval"
	ActionApproveForm       Action = "approve_form"
	ActionRejectForm        Action = "reject_form"
	ActionCompleteWorkflow  Action = "complete_workflow"
)

// ParseAction converts an external action string into the closed enum.
func ParseAction(raw string) (Action, error) {
	action := Action(raw)

	switch action {
	case ActionSubmitForm,
		ActionStartVerification,
		ActionVerifyForm,
		ActionStartApproval,
		ActionApproveForm,
		ActionRejectForm,
		ActionCompleteWorkflow:
		return action, nil
	}

	return "", NewTransitionError("ParseAction", "", Action(raw), "", ErrUnknownAction)
}

func (a Action) String() string {
	return string(a)
}

// autoActionFor returns the action the auto-progress chain performs when
// leaving the given stage.
func autoActionFor(stage string) (Action, bool) {
	switch stage {
	case stages.Submitted:
		return ActionStartVerification, true
	case stages.Verified:
		return ActionStartApproval, true
	case stages.Approved:
		return ActionCompleteWorkflow, true
	}

	return "", false
}
