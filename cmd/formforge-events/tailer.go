package main

import (
	"context"
	"log/slog"

	"github.com/formforge/formforge/pkg/eventbus"
	"github.com/formforge/formforge/pkg/events"
)

// Tailer logs every lifecycle event that crosses the bus.
type Tailer struct {
	bus    eventbus.EventBus
	logger *slog.Logger
}

func NewTailer(bus eventbus.EventBus, logger *slog.Logger) *Tailer {
	return &Tailer{bus: bus, logger: logger}
}

// Start registers handlers for every event type and begins consuming.
func (t *Tailer) Start(ctx context.Context) error {
	handlers := map[events.EventType]eventbus.EventHandler{
		events.FormSubmittedEvent:      t.onSubmitted,
		events.FormStageAdvancedEvent:  t.onStageAdvanced,
		events.FormVerifiedEvent:       t.onVerified,
		events.FormApprovedEvent:       t.onApproved,
		events.FormRejectedEvent:       t.onRejected,
		events.FormCompletedEvent:      t.onCompleted,
		events.FormAutoProgressedEvent: t.onAutoProgressed,
	}

	for eventType, handler := range handlers {
		err := t.bus.Handle(eventType, handler)
		if err != nil {
			return err
		}
	}

	return t.bus.Subscribe(ctx)
}

func (t *Tailer) onSubmitted(ctx context.Context, event any) error {
	submitted, ok := event.(*events.FormSubmitted)
	if !ok {
		return nil
	}

	t.logger.InfoContext(ctx, "Form submitted",
		"submission_id", submitted.SubmissionID,
		"department", submitted.Department,
		"submitted_by", submitted.SubmittedBy,
	)

	return nil
}

func (t *Tailer) onStageAdvanced(ctx context.Context, event any) error {
	advanced, ok := event.(*events.FormStageAdvanced)
	if !ok {
		return nil
	}

	t.logger.InfoContext(ctx, "Form advanced",
		"submission_id", advanced.SubmissionID,
		"from_stage", advanced.FromStage,
		"to_stage", advanced.ToStage,
		"actor_id", advanced.ActorID,
	)

	return nil
}

func (t *Tailer) onVerified(ctx context.Context, event any) error {
	verified, ok := event.(*events.FormVerified)
	if !ok {
		return nil
	}

	t.logger.InfoContext(ctx, "Form verified",
		"submission_id", verified.SubmissionID,
		"verifier_id", verified.VerifierID,
	)

	return nil
}

func (t *Tailer) onApproved(ctx context.Context, event any) error {
	approved, ok := event.(*events.FormApproved)
	if !ok {
		return nil
	}

	t.logger.InfoContext(ctx, "Form approved",
		"submission_id", approved.SubmissionID,
		"approver_id", approved.ApproverID,
	)

	return nil
}

func (t *Tailer) onRejected(ctx context.Context, event any) error {
	rejected, ok := event.(*events.FormRejected)
	if !ok {
		return nil
	}

	t.logger.WarnContext(ctx, "Form rejected",
		"submission_id", rejected.SubmissionID,
		"rejected_by", rejected.RejectedBy,
		"from_stage", rejected.FromStage,
	)

	return nil
}

func (t *Tailer) onCompleted(ctx context.Context, event any) error {
	completed, ok := event.(*events.FormCompleted)
	if !ok {
		return nil
	}

	t.logger.InfoContext(ctx, "Form completed",
		"submission_id", completed.SubmissionID,
		"completed_at", completed.CompletedAt,
	)

	return nil
}

func (t *Tailer) onAutoProgressed(ctx context.Context, event any) error {
	progressed, ok := event.(*events.FormAutoProgressed)
	if !ok {
		return nil
	}

	t.logger.InfoContext(ctx, "Form auto-progressed",
		"submission_id", progressed.SubmissionID,
		"from_stage", progressed.FromStage,
		"to_stage", progressed.ToStage,
		"assignee_id", progressed.AssigneeID,
	)

	return nil
}
