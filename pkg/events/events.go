// Package events defines the lifecycle events published when submissions
// move between approval stages.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// Kafka topic carrying all form lifecycle events.
const Topic = "formforge.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	FormSubmittedEvent      EventType = "form.submitted"
	FormStageAdvancedEvent  EventType = "form.stage_advanced"
	FormVerifiedEvent       EventType = "form.verified"
	FormApprovedEvent       EventType = "form.approved"
	FormRejectedEvent       EventType = "form.rejected"
	FormCompletedEvent      EventType = "form.completed"
	FormAutoProgressedEvent EventType = "form.auto_progressed"
)

type BaseEvent struct {
	ID           string         `json:"id"`
	Type         EventType      `json:"type"`
	Timestamp    time.Time      `json:"timestamp"`
	SubmissionID string         `json:"submission_id"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// NewBaseEvent stamps a fresh event envelope.
func NewBaseEvent(eventType EventType, submissionID string) BaseEvent {
	return BaseEvent{
		ID:           uuid.New().String(),
		Type:         eventType,
		Timestamp:    time.Now().UTC(),
		SubmissionID: submissionID,
	}
}

type FormSubmitted struct {
	BaseEvent

	Department  string `json:"department"`
	SubmittedBy string `json:"submitted_by"`
}

func (e FormSubmitted) GetType() EventType {
	return FormSubmittedEvent
}

type FormStageAdvanced struct {
	BaseEvent

	FromStage string `json:"from_stage"`
	ToStage   string `json:"to_stage"`
	ActorID   string `json:"actor_id"`
	Action    string `json:"action"`
}

func (e FormStageAdvanced) GetType() EventType {
	return FormStageAdvancedEvent
}

type FormVerified struct {
	BaseEvent

	VerifierID string `json:"verifier_id"`
	Comments   string `json:"comments,omitempty"`
}

func (e FormVerified) GetType() EventType {
	return FormVerifiedEvent
}

type FormApproved struct {
	BaseEvent

	ApproverID string `json:"approver_id"`
	Comments   string `json:"comments,omitempty"`
}

func (e FormApproved) GetType() EventType {
	return FormApprovedEvent
}

type FormRejected struct {
	BaseEvent

	RejectedBy string `json:"rejected_by"`
	FromStage  string `json:"from_stage"`
	Comments   string `json:"comments,omitempty"`
}

func (e FormRejected) GetType() EventType {
	return FormRejectedEvent
}

type FormCompleted struct {
	BaseEvent

	CompletedAt time.Time `json:"completed_at"`
}

func (e FormCompleted) GetType() EventType {
	return FormCompletedEvent
}

type FormAutoProgressed struct {
	BaseEvent

	FromStage  string `json:"from_stage"`
	ToStage    string `json:"to_stage"`
	AssigneeID string `json:"assignee_id,omitempty"`
}

func (e FormAutoProgressed) GetType() EventType {
	return FormAutoProgressedEvent
}
