package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/formforge/formforge/pkg/models"
	"github.com/formforge/formforge/pkg/persistence"
	"github.com/formforge/formforge/pkg/stages"
)

// Submission is the application service for form submissions: draft
// creation and reads. Transitions go through the workflow engine, not here.
type Submission struct {
	persistence persistence.Persistence
	validate    *validator.Validate
}

// NewSubmission creates a new submission service.
func NewSubmission(p persistence.Persistence) *Submission {
	return &Submission{
		persistence: p,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// CreateDraftRequest carries the fields a new draft needs.
type CreateDraftRequest struct {
	TemplateID  string         `validate:"required"`
	Title       string         `validate:"required,min=3"`
	Department  string         `validate:"required"`
	SubmittedBy string         `validate:"required"`
	Data        map[string]any `validate:"-"`
}

// CreateDraft validates and stores a new submission in the Draft stage.
func (s *Submission) CreateDraft(ctx context.Context, req CreateDraftRequest) (*models.FormSubmission, error) {
	err := s.validate.Struct(req)
	if err != nil {
		return nil, NewValidationError("CreateDraft", "INVALID_SUBMISSION", err.Error(), ErrInvalidRequest)
	}

	now := time.Now().UTC()

	submission := &models.FormSubmission{
		ID:          uuid.New().String(),
		TemplateID:  req.TemplateID,
		Title:       req.Title,
		Department:  req.Department,
		Status:      stages.Draft,
		SubmittedBy: req.SubmittedBy,
		Data:        req.Data,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.persistence.SubmissionRepository().Save(ctx, submission)
	if err != nil {
		return nil, fmt.Errorf("failed to create draft: %w", err)
	}

	return submission, nil
}

// FetchByID loads one submission.
func (s *Submission) FetchByID(ctx context.Context, id string) (*models.FormSubmission, error) {
	submission, err := s.persistence.SubmissionRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch submission %s: %w", id, err)
	}

	return submission, nil
}

// ListSubmissionsRequest contains options for listing submissions.
type ListSubmissionsRequest struct {
	Department string
	Status     string
	Limit      int
	Offset     int
}

// List returns submissions matching the filters, newest first.
func (s *Submission) List(ctx context.Context, req ListSubmissionsRequest) ([]*models.FormSubmission, error) {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	if req.Limit > 100 {
		req.Limit = 100
	}

	if req.Offset < 0 {
		req.Offset = 0
	}

	submissions, err := s.persistence.SubmissionRepository().List(ctx, persistence.ListSubmissionsOptions{
		Department: req.Department,
		Status:     req.Status,
		Limit:      req.Limit,
		Offset:     req.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	return submissions, nil
}

// AuditTrail returns the audit entries recorded for a submission, oldest
// first.
func (s *Submission) AuditTrail(ctx context.Context, id string, limit int) ([]*models.AuditLogEntry, error) {
	entries, err := s.persistence.AuditRepository().List(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load audit trail for %s: %w", id, err)
	}

	return entries, nil
}

// HealthCheck checks the health of the persistence layer.
func (s *Submission) HealthCheck(ctx context.Context) (string, bool) {
	if s.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := s.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}
