package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/formforge/formforge/pkg/models"
	"github.com/formforge/formforge/pkg/persistence"
)

// SubmissionRepository handles submission-related database operations.
type SubmissionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSubmissionRepository creates a new submission repository.
func NewSubmissionRepository(db *sql.DB, logger *slog.Logger) *SubmissionRepository {
	return &SubmissionRepository{db: db, logger: logger}
}

const submissionColumns = `
	id
  , template_id
  , title
  , department
  , status
  , submitted_by
  , data
  , approval_workflow
  , version
  , created_at
  , updated_at
  , submitted_at
  , completed_at
`

func (r *SubmissionRepository) GetByID(ctx context.Context, id string) (*models.FormSubmission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`

	submission, err := r.scanSubmission(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("GetByID", id, persistence.ErrSubmissionNotFound)
		}

		return nil, fmt.Errorf("failed to query submission %s: %w", id, err)
	}

	return submission, nil
}

// Save upserts the submission with an optimistic version check: the row is
// only written when the stored version still matches the loaded one.
func (r *SubmissionRepository) Save(ctx context.Context, submission *models.FormSubmission) error {
	if submission.ID == "" {
		submission.ID = uuid.New().String()
	}

	dataJSON, err := json.Marshal(submission.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal submission data: %w", err)
	}

	workflowJSON, err := json.Marshal(submission.ApprovalWorkflow)
	if err != nil {
		return fmt.Errorf("failed to marshal approval workflow: %w", err)
	}

	now := time.Now().UTC()
	if submission.CreatedAt.IsZero() {
		submission.CreatedAt = now
	}

	submission.UpdatedAt = now

	query := `
		INSERT INTO submissions (` + submissionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9 + 1, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			template_id = EXCLUDED.template_id,
			title = EXCLUDED.title,
			department = EXCLUDED.department,
			status = EXCLUDED.status,
			submitted_by = EXCLUDED.submitted_by,
			data = EXCLUDED.data,
			approval_workflow = EXCLUDED.approval_workflow,
			version = EXCLUDED.version,
			updated_at = EXCLUDED.updated_at,
			submitted_at = EXCLUDED.submitted_at,
			completed_at = EXCLUDED.completed_at
		WHERE submissions.version = $9
	`

	result, err := r.db.ExecContext(ctx, query,
		submission.ID,
		submission.TemplateID,
		submission.Title,
		submission.Department,
		submission.Status,
		submission.SubmittedBy,
		dataJSON,
		workflowJSON,
		submission.Version,
		submission.CreatedAt,
		submission.UpdatedAt,
		submission.SubmittedAt,
		submission.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save submission %s: %w", submission.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check save result for submission %s: %w", submission.ID, err)
	}

	if affected == 0 {
		return persistence.NewStoreError("Save", submission.ID, persistence.ErrVersionConflict)
	}

	submission.Version++

	return nil
}

func (r *SubmissionRepository) List(ctx context.Context, opts persistence.ListSubmissionsOptions) ([]*models.FormSubmission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE 1=1`

	args := make([]any, 0, 4)

	if opts.Department != "" {
		args = append(args, opts.Department)
		query += fmt.Sprintf(" AND department = $%d", len(args))
	}

	if opts.Status != "" {
		args = append(args, opts.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}

	query += " ORDER BY created_at DESC"

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	submissions := make([]*models.FormSubmission, 0)

	for rows.Next() {
		submission, err := r.scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}

		submissions = append(submissions, submission)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating submissions: %w", err)
	}

	return submissions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SubmissionRepository) scanSubmission(row rowScanner) (*models.FormSubmission, error) {
	var (
		submission   models.FormSubmission
		dataJSON     []byte
		workflowJSON []byte
		submittedAt  sql.NullTime
		completedAt  sql.NullTime
	)

	err := row.Scan(
		&submission.ID,
		&submission.TemplateID,
		&submission.Title,
		&submission.Department,
		&submission.Status,
		&submission.SubmittedBy,
		&dataJSON,
		&workflowJSON,
		&submission.Version,
		&submission.CreatedAt,
		&submission.UpdatedAt,
		&submittedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(dataJSON) > 0 {
		err = json.Unmarshal(dataJSON, &submission.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal submission data: %w", err)
		}
	}

	err = json.Unmarshal(workflowJSON, &submission.ApprovalWorkflow)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal approval workflow: %w", err)
	}

	if submittedAt.Valid {
		submission.SubmittedAt = &submittedAt.Time
	}

	if completedAt.Valid {
		submission.CompletedAt = &completedAt.Time
	}

	return &submission, nil
}
