// Package models defines the core domain models for form approval workflows.
package models

import "time"

// StepStatus represents the outcome of a single approval step.
type StepStatus string

const (
	StepStatusPending  StepStatus = "pending"
	StepStatusApproved StepStatus = "approved"
	StepStatusRejected StepStatus = "rejected"
)

// WorkflowStep is one entry in a submission's approval history. Entries are
// append-only; a pending entry may later be marked approved or rejected, but
// is never removed.
type WorkflowStep struct {
	Step        string     `json:"step"`
	Status      StepStatus `json:"status"`
	ActorID     string     `json:"actor_id,omitempty"`
	Comments    string     `json:"comments,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

// FormSubmission is a structured form moving through the approval lifecycle.
// Status is always a stage name from the stage table. Version backs the
// optimistic concurrency check on save.
type FormSubmission struct {
	ID               string         `json:"id"`
	TemplateID       string         `json:"template_id"            validate:"required"`
	Title            string         `json:"title"                  validate:"required,min=3"`
	Department       string         `json:"department"             validate:"required"`
	Status           string         `json:"status"`
	SubmittedBy      string         `json:"submitted_by"           validate:"required"`
	Data             map[string]any `json:"data,omitempty"`
	ApprovalWorkflow []WorkflowStep `json:"approval_workflow"`
	Version          int64          `json:"version"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	SubmittedAt      *time.Time     `json:"submitted_at,omitempty"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
}

// LatestPendingStep returns the most recent pending entry for the given step
// kind, or the most recent pending entry of any kind when step is empty.
func (s *FormSubmission) LatestPendingStep(step string) *WorkflowStep {
	for i := len(s.ApprovalWorkflow) - 1; i >= 0; i-- {
		entry := &s.ApprovalWorkflow[i]
		if entry.Status != StepStatusPending {
			continue
		}

		if step == "" || entry.Step == step {
			return entry
		}
	}

	return nil
}

// AppendStep adds a new entry to the approval history.
func (s *FormSubmission) AppendStep(entry WorkflowStep) {
	s.ApprovalWorkflow = append(s.ApprovalWorkflow, entry)
}

// Clone returns a deep copy so stores can hand out submissions without
// sharing the approval history slice.
func (s *FormSubmission) Clone() *FormSubmission {
	clone := *s

	clone.ApprovalWorkflow = make([]WorkflowStep, len(s.ApprovalWorkflow))
	copy(clone.ApprovalWorkflow, s.ApprovalWorkflow)

	if s.Data != nil {
		clone.Data = make(map[string]any, len(s.Data))
		for k, v := range s.Data {
			clone.Data[k] = v
		}
	}

	return &clone
}
