package workflow

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/formforge/formforge/pkg/models"
	"github.com/formforge/formforge/pkg/otelhelper"
	"github.com/formforge/formforge/pkg/persistence"
)

// AutoProgressor advances a submission through auto-progress stages without
// a human actor. Every run re-validates the stage the schedule assumed, so a
// continuation that fires after an intervening manual action (a reject, an
// early manual advance) is a safe no-op.
type AutoProgressor struct {
	engine *Engine
	logger *slog.Logger
}

// Run executes one deferred continuation. It has no return value consumed by
// callers; it purely advances state as a side effect.
func (p *AutoProgressor) Run(ctx context.Context, submissionID, expectedStage string) {
	engine := p.engine

	ctx, span := otelhelper.StartSpan(ctx, engine.tracer, "workflow.auto_progress",
		attribute.String(otelhelper.SubmissionIDKey, submissionID),
		attribute.String(otelhelper.FromStageKey, expectedStage),
		attribute.Bool(otelhelper.AutoProgressKey, true),
	)
	defer span.End()

	unlock := engine.locks.lock(submissionID)
	defer unlock()

	submission, err := engine.submissions.GetByID(ctx, submissionID)
	if err != nil {
		p.logger.WarnContext(ctx, "Auto-progress could not load submission",
			"submission_id", submissionID,
			"error", err,
		)

		return
	}

	def, ok := engine.table.Lookup(submission.Status)
	if !ok {
		p.logger.ErrorContext(ctx, "Submission status has no stage definition",
			"submission_id", submissionID,
			"status", submission.Status,
		)

		return
	}

	// Staleness guard: the submission moved since this continuation was
	// scheduled, or the stage no longer auto-progresses.
	if def.Name != expectedStage || !def.AutoProgress || def.Terminal() {
		p.logger.DebugContext(ctx, "Skipping stale auto-progress",
			"submission_id", submissionID,
			"expected_stage", expectedStage,
			"current_stage", def.Name,
		)

		return
	}

	next, ok := engine.table.Next(def.Name)
	if !ok {
		return
	}

	action, ok := autoActionFor(def.Name)
	if !ok {
		p.logger.ErrorContext(ctx, "Auto-progress stage has no action",
			"submission_id", submissionID,
			"stage", def.Name,
		)

		return
	}

	var assignee *models.User

	if len(next.RequiredRoles) > 0 {
		assignee, err = engine.resolver.Resolve(ctx, next.RequiredRoles, submission.Department)
		if err != nil {
			p.logger.ErrorContext(ctx, "Auto-progress actor resolution failed",
				"submission_id", submissionID,
				"error", err,
			)

			return
		}

		// No eligible actor yet: leave the submission where it is. This is
		// a skipped hand-over, not an error.
		if assignee == nil && !next.Terminal() {
			p.logger.InfoContext(ctx, "Skipping auto-progress, no eligible actor",
				"submission_id", submissionID,
				"stage", next.Name,
				"department", submission.Department,
			)

			return
		}
	}

	stepActor := models.SystemActor()
	if assignee != nil {
		stepActor = models.ActorOf(assignee)
	}

	tr, err := engine.apply(submission, action, stepActor, Options{})
	if err != nil {
		p.logger.ErrorContext(ctx, "Auto-progress transition rejected",
			"submission_id", submissionID,
			"action", action,
			"error", err,
		)

		return
	}

	tr.assignee = assignee

	err = engine.submissions.Save(ctx, submission)
	if err != nil {
		if persistence.IsVersionConflict(err) {
			p.logger.DebugContext(ctx, "Auto-progress lost a concurrent save, skipping",
				"submission_id", submissionID,
			)

			return
		}

		p.logger.ErrorContext(ctx, "Auto-progress failed to save submission",
			"submission_id", submissionID,
			"error", err,
		)

		return
	}

	engine.afterTransition(ctx, submission, tr, models.SystemActor(), true)

	p.logger.InfoContext(ctx, "Auto-progressed submission",
		"submission_id", submissionID,
		"from_stage", tr.fromStage,
		"to_stage", tr.toStage,
	)
}
