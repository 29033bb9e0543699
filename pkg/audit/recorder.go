// Package audit provides the best-effort transition log. Recording never
// fails from the caller's point of view: a broken audit sink must not be able
// to corrupt workflow correctness.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/formforge/formforge/pkg/models"
	"github.com/formforge/formforge/pkg/persistence"
)

// Recorder appends immutable audit entries through the audit repository.
type Recorder struct {
	repo   persistence.AuditRepository
	logger *slog.Logger
}

// NewRecorder creates a recorder over the given repository.
func NewRecorder(repo persistence.AuditRepository, logger *slog.Logger) *Recorder {
	return &Recorder{
		repo:   repo,
		logger: logger.With("module", "audit_recorder"),
	}
}

// Record stamps and appends the entry. Persistence failures are logged
// locally and swallowed.
func (r *Recorder) Record(ctx context.Context, entry *models.AuditLogEntry) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	err := r.repo.Append(ctx, entry)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to append audit entry",
			"action", entry.Action,
			"resource_ref", entry.ResourceRef,
			"error", err,
		)
	}
}
