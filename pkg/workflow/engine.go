package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/formforge/formforge/pkg/audit"
	"github.com/formforge/formforge/pkg/eventbus"
	"github.com/formforge/formforge/pkg/events"
	"github.com/formforge/formforge/pkg/models"
	"github.com/formforge/formforge/pkg/notification"
	"github.com/formforge/formforge/pkg/otelhelper"
	"github.com/formforge/formforge/pkg/persistence"
	"github.com/formforge/formforge/pkg/scheduler"
	"github.com/formforge/formforge/pkg/stages"
)

// Options carries per-call extras for a transition.
type Options struct {
	Comments string
}

// Result is the outcome handed back to the submission controller.
type Result struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    *models.FormSubmission `json:"data"`
}

// Config wires the engine's collaborators. EventBus is optional; everything
// else is required.
type Config struct {
	Stages      *stages.Table
	Submissions persistence.SubmissionRepository
	Resolver    *ActorResolver
	Recorder    *audit.Recorder
	Dispatcher  *notification.Dispatcher
	Scheduler   scheduler.Scheduler
	EventBus    eventbus.EventPublisher
	Logger      *slog.Logger
}

// Engine validates and executes workflow actions against submissions.
// Calls for the same submission id are serialized with a per-id lock; the
// submission store's optimistic versioning backs that up across processes.
type Engine struct {
	table       *stages.Table
	submissions persistence.SubmissionRepository
	resolver    *ActorResolver
	recorder    *audit.Recorder
	dispatcher  *notification.Dispatcher
	sched       scheduler.Scheduler
	bus         eventbus.EventPublisher
	logger      *slog.Logger
	tracer      trace.Tracer
	locks       *keyedMutex
	progressor  *AutoProgressor
}

// NewEngine creates the workflow engine and its auto-progressor.
func NewEngine(cfg Config) *Engine {
	engine := &Engine{
		table:       cfg.Stages,
		submissions: cfg.Submissions,
		resolver:    cfg.Resolver,
		recorder:    cfg.Recorder,
		dispatcher:  cfg.Dispatcher,
		sched:       cfg.Scheduler,
		bus:         cfg.EventBus,
		logger:      cfg.Logger.With("module", "workflow_engine"),
		tracer:      otel.Tracer("github.com/formforge/formforge/pkg/workflow"),
		locks:       newKeyedMutex(),
	}

	engine.progressor = &AutoProgressor{
		engine: engine,
		logger: cfg.Logger.With("module", "auto_progressor"),
	}

	return engine
}

// AutoProgressor exposes the deferred-continuation half of the engine.
func (e *Engine) AutoProgressor() *AutoProgressor {
	return e.progressor
}

// Process validates and executes one action against the submission. Exactly
// one audit entry is recorded per call, success or failure.
func (e *Engine) Process(ctx context.Context, submissionID string, action Action, actor models.Actor, opts Options) (*Result, error) {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.process",
		attribute.String(otelhelper.SubmissionIDKey, submissionID),
		attribute.String(otelhelper.ActionKey, action.String()),
		attribute.String(otelhelper.ActorIDKey, actor.ID),
		attribute.String(otelhelper.ActorRoleKey, string(actor.Role)),
	)
	defer span.End()

	unlock := e.locks.lock(submissionID)
	defer unlock()

	result, err := e.process(ctx, submissionID, action, actor, opts)
	if err != nil {
		otelhelper.SetError(span, err)
	}

	return result, err
}

func (e *Engine) process(ctx context.Context, submissionID string, action Action, actor models.Actor, opts Options) (*Result, error) {
	submission, err := e.submissions.GetByID(ctx, submissionID)
	if err != nil {
		var terr *TransitionError
		if persistence.IsSubmissionNotFound(err) {
			terr = NewTransitionError("Process", submissionID, action, "", ErrSubmissionNotFound)
		} else {
			terr = NewTransitionError("Process", submissionID, action, err.Error(), ErrPersistence)
		}

		e.auditFailure(ctx, submissionID, action, actor, terr)

		return nil, terr
	}

	def, ok := e.table.Lookup(submission.Status)
	if !ok {
		terr := NewTransitionError("Process", submissionID, action,
			fmt.Sprintf("status %q has no stage definition", submission.Status), ErrInvalidState)
		e.auditFailure(ctx, submissionID, action, actor, terr)

		return nil, terr
	}

	if !def.Allows(actor.Role) && actor.ID != models.SystemActorID {
		terr := NewTransitionError("Process", submissionID, action,
			fmt.Sprintf("role %q may not act in stage %q", actor.Role, def.Name), ErrPermissionDenied)
		e.auditFailure(ctx, submissionID, action, actor, terr)

		return nil, terr
	}

	tr, err := e.apply(submission, action, actor, opts)
	if err != nil {
		e.auditFailure(ctx, submissionID, action, actor, err)

		return nil, err
	}

	err = e.submissions.Save(ctx, submission)
	if err != nil {
		terr := NewTransitionError("Process", submissionID, action, err.Error(), ErrPersistence)
		e.auditFailure(ctx, submissionID, action, actor, terr)

		return nil, terr
	}

	e.afterTransition(ctx, submission, tr, actor, false)

	return &Result{
		Success: true,
		Message: fmt.Sprintf("form moved to stage %s", tr.toStage),
		Data:    submission,
	}, nil
}

// transition describes one applied stage change.
type transition struct {
	action    Action
	fromStage string
	toStage   string
	comments  string
	assignee  *models.User // resolved on the auto-progress path only
}

// apply mutates the submission for the action. It validates stage legality
// but not permissions; callers own the role check.
func (e *Engine) apply(submission *models.FormSubmission, action Action, actor models.Actor, opts Options) (*transition, error) {
	from := submission.Status
	now := time.Now().UTC()

	invalid := func() error {
		return NewTransitionError("Process", submission.ID, action,
			fmt.Sprintf("not legal from stage %q", from), ErrInvalidState)
	}

	switch action {
	case ActionSubmitForm:
		if from != stages.Draft {
			return nil, invalid()
		}

		submission.Status = stages.Submitted
		if submission.SubmittedAt == nil {
			submission.SubmittedAt = &now
		}

		submission.AppendStep(models.WorkflowStep{
			Step:        stages.Submitted,
			Status:      models.StepStatusApproved,
			ActorID:     actor.ID,
			Comments:    opts.Comments,
			ProcessedAt: &now,
		})

	case ActionStartVerification:
		if from != stages.Submitted {
			return nil, invalid()
		}

		submission.Status = stages.UnderVerification
		submission.AppendStep(models.WorkflowStep{
			Step:    stages.UnderVerification,
			Status:  models.StepStatusPending,
			ActorID: actor.ID,
		})

	case ActionVerifyForm:
		if from != stages.UnderVerification {
			return nil, invalid()
		}

		resolvePendingStep(submission, stages.UnderVerification, models.StepStatusApproved, actor.ID, opts.Comments, now)
		submission.Status = stages.Verified
		submission.AppendStep(models.WorkflowStep{
			Step:        stages.Verified,
			Status:      models.StepStatusApproved,
			ActorID:     actor.ID,
			ProcessedAt: &now,
		})

	case ActionStartApproval:
		if from != stages.Verified {
			return nil, invalid()
		}

		submission.Status = stages.Approved
		submission.AppendStep(models.WorkflowStep{
			Step:    stages.Approved,
			Status:  models.StepStatusPending,
			ActorID: actor.ID,
		})

	case ActionApproveForm, ActionCompleteWorkflow:
		if from != stages.Approved {
			return nil, invalid()
		}

		resolvePendingStep(submission, stages.Approved, models.StepStatusApproved, actor.ID, opts.Comments, now)
		submission.Status = stages.Completed
		submission.AppendStep(models.WorkflowStep{
			Step:        stages.Completed,
			Status:      models.StepStatusApproved,
			ActorID:     actor.ID,
			ProcessedAt: &now,
		})

		if submission.CompletedAt == nil {
			submission.CompletedAt = &now
		}

	case ActionRejectForm:
		if !stages.Rejectable(from) {
			return nil, invalid()
		}

		step := submission.LatestPendingStep("")
		if step != nil {
			step.Status = models.StepStatusRejected
			step.ActorID = actor.ID
			step.Comments = opts.Comments
			step.ProcessedAt = &now
		} else {
			submission.AppendStep(models.WorkflowStep{
				Step:        from,
				Status:      models.StepStatusRejected,
				ActorID:     actor.ID,
				Comments:    opts.Comments,
				ProcessedAt: &now,
			})
		}

		submission.Status = stages.Rejected

	default:
		return nil, NewTransitionError("Process", submission.ID, action, "", ErrUnknownAction)
	}

	return &transition{
		action:    action,
		fromStage: from,
		toStage:   submission.Status,
		comments:  opts.Comments,
	}, nil
}

// resolvePendingStep closes the latest pending entry of the step kind.
func resolvePendingStep(submission *models.FormSubmission, step string, status models.StepStatus, actorID, comments string, now time.Time) {
	entry := submission.LatestPendingStep(step)
	if entry == nil {
		return
	}

	entry.Status = status
	entry.ActorID = actorID

	if comments != "" {
		entry.Comments = comments
	}

	entry.ProcessedAt = &now
}

// afterTransition runs the side channels of a persisted transition: audit,
// lifecycle event, notifications, and auto-progress scheduling. None of
// these may fail the transition.
func (e *Engine) afterTransition(ctx context.Context, submission *models.FormSubmission, tr *transition, actor models.Actor, auto bool) {
	e.recorder.Record(ctx, &models.AuditLogEntry{
		ActorID:     actor.ID,
		ActorName:   actor.Name,
		Action:      tr.action.String(),
		Description: fmt.Sprintf("form %s: %s -> %s", submission.ID, tr.fromStage, tr.toStage),
		ResourceRef: submission.ID,
		Status:      models.AuditStatusSuccess,
		Metadata: map[string]any{
			"from_stage":    tr.fromStage,
			"to_stage":      tr.toStage,
			"auto_progress": auto,
		},
	})

	e.publishEvent(ctx, submission, tr, actor, auto)
	e.notify(ctx, submission, tr, actor, auto)

	next, ok := e.table.Lookup(tr.toStage)
	if ok && next.AutoProgress && !next.Terminal() {
		e.scheduleAutoProgress(submission.ID, next)
	}
}

// scheduleAutoProgress arms the deferred continuation. The callback carries
// the stage it assumed; AutoProgressor.Run re-validates it before mutating.
func (e *Engine) scheduleAutoProgress(submissionID string, def stages.Definition) {
	expected := def.Name

	e.sched.After(def.AutoProgressDelay, func() {
		e.progressor.Run(context.Background(), submissionID, expected)
	})

	e.logger.Debug("Scheduled auto-progress",
		"submission_id", submissionID,
		"stage", expected,
		"delay", def.AutoProgressDelay,
	)
}

func (e *Engine) publishEvent(ctx context.Context, submission *models.FormSubmission, tr *transition, actor models.Actor, auto bool) {
	if e.bus == nil {
		return
	}

	event := buildEvent(submission, tr, actor, auto)

	err := e.bus.Publish(ctx, submission.ID, event)
	if err != nil {
		e.logger.ErrorContext(ctx, "Failed to publish lifecycle event",
			"submission_id", submission.ID,
			"event_type", event.GetType(),
			"error", err,
		)
	}
}

func buildEvent(submission *models.FormSubmission, tr *transition, actor models.Actor, auto bool) eventbus.Event {
	if auto && tr.toStage != stages.Completed {
		assigneeID := ""
		if tr.assignee != nil {
			assigneeID = tr.assignee.ID
		}

		return events.FormAutoProgressed{
			BaseEvent:  events.NewBaseEvent(events.FormAutoProgressedEvent, submission.ID),
			FromStage:  tr.fromStage,
			ToStage:    tr.toStage,
			AssigneeID: assigneeID,
		}
	}

	switch tr.action {
	case ActionSubmitForm:
		return events.FormSubmitted{
			BaseEvent:   events.NewBaseEvent(events.FormSubmittedEvent, submission.ID),
			Department:  submission.Department,
			SubmittedBy: submission.SubmittedBy,
		}
	case ActionVerifyForm:
		return events.FormVerified{
			BaseEvent:  events.NewBaseEvent(events.FormVerifiedEvent, submission.ID),
			VerifierID: actor.ID,
			Comments:   tr.comments,
		}
	case ActionApproveForm:
		return events.FormApproved{
			BaseEvent:  events.NewBaseEvent(events.FormApprovedEvent, submission.ID),
			ApproverID: actor.ID,
			Comments:   tr.comments,
		}
	case ActionRejectForm:
		return events.FormRejected{
			BaseEvent:  events.NewBaseEvent(events.FormRejectedEvent, submission.ID),
			RejectedBy: actor.ID,
			FromStage:  tr.fromStage,
			Comments:   tr.comments,
		}
	case ActionCompleteWorkflow:
		completedAt := time.Now().UTC()
		if submission.CompletedAt != nil {
			completedAt = *submission.CompletedAt
		}

		return events.FormCompleted{
			BaseEvent:   events.NewBaseEvent(events.FormCompletedEvent, submission.ID),
			CompletedAt: completedAt,
		}
	default:
		return events.FormStageAdvanced{
			BaseEvent: events.NewBaseEvent(events.FormStageAdvancedEvent, submission.ID),
			FromStage: tr.fromStage,
			ToStage:   tr.toStage,
			ActorID:   actor.ID,
			Action:    tr.action.String(),
		}
	}
}

// notify alerts the resolved assignee on auto-progressed hand-overs, and the
// submitter when the workflow reaches a terminal outcome.
func (e *Engine) notify(ctx context.Context, submission *models.FormSubmission, tr *transition, actor models.Actor, auto bool) {
	payload := map[string]any{
		"submission_id": submission.ID,
		"stage":         tr.toStage,
	}

	if auto && tr.assignee != nil {
		title, message := notification.ForStage(tr.toStage, submission.Title)

		_, err := e.dispatcher.Send(ctx, tr.assignee.ID, models.NotificationTypeWorkflow, title, message, payload)
		if err != nil {
			e.logger.ErrorContext(ctx, "Failed to notify assignee",
				"submission_id", submission.ID,
				"recipient_id", tr.assignee.ID,
				"error", err,
			)
		}
	}

	if tr.toStage != stages.Completed && tr.toStage != stages.Rejected {
		return
	}

	title, message := notification.ForStage(tr.toStage, submission.Title)

	_, err := e.dispatcher.Send(ctx, submission.SubmittedBy, models.NotificationTypeWorkflow, title, message, payload)
	if err != nil {
		e.logger.ErrorContext(ctx, "Failed to notify submitter",
			"submission_id", submission.ID,
			"recipient_id", submission.SubmittedBy,
			"error", err,
		)
	}
}

func (e *Engine) auditFailure(ctx context.Context, submissionID string, action Action, actor models.Actor, err error) {
	e.recorder.Record(ctx, &models.AuditLogEntry{
		ActorID:     actor.ID,
		ActorName:   actor.Name,
		Action:      action.String(),
		Description: err.Error(),
		ResourceRef: submissionID,
		Status:      models.AuditStatusFailure,
		Metadata: map[string]any{
			"error": err.Error(),
		},
	})
}
