package notification

import (
	"fmt"

	"github.com/formforge/formforge/pkg/stages"
)

// StageTemplate is the title/message pair used when a submission enters a
// stage and an assignee must be alerted.
type StageTemplate struct {
	Title   string
	Message string
}

var stageTemplates = map[string]StageTemplate{
	stages.UnderVerification: {
		Title:   "Form awaiting verification",
		Message: "Form %q has been assigned to you for verification.",
	},
	stages.Approved: {
		Title:   "Form awaiting approval",
		Message: "Form %q has been assigned to you for approval sign-off.",
	},
	stages.Completed: {
		Title:   "Form workflow completed",
		Message: "Form %q has completed its approval workflow and is archived.",
	},
	stages.Rejected: {
		Title:   "Form rejected",
		Message: "Form %q was rejected during review.",
	},
}

// ForStage returns the template for the stage, falling back to a generic
// stage-advance alert for stages without a dedicated template.
func ForStage(stage, formTitle string) (string, string) {
	template, ok := stageTemplates[stage]
	if !ok {
		return "Form stage updated", fmt.Sprintf("Form %q moved to stage %s.", formTitle, stage)
	}

	return template.Title, fmt.Sprintf(template.Message, formTitle)
}
