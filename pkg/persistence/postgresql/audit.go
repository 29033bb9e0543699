package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/formforge/formforge/pkg/models"
)

// AuditRepository handles the append-only audit log table.
type AuditRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewAuditRepository creates a new audit repository.
func NewAuditRepository(db *sql.DB, logger *slog.Logger) *AuditRepository {
	return &AuditRepository{db: db, logger: logger}
}

func (r *AuditRepository) Append(ctx context.Context, entry *models.AuditLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	metadataJSON, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal audit metadata: %w", err)
	}

	query := `
		INSERT INTO audit_log (id, actor_id, actor_name, action, description, resource_ref, status, metadata, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.db.ExecContext(ctx, query,
		entry.ID,
		entry.ActorID,
		entry.ActorName,
		entry.Action,
		entry.Description,
		entry.ResourceRef,
		entry.Status,
		metadataJSON,
		entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	return nil
}

func (r *AuditRepository) List(ctx context.Context, resourceRef string, limit int) ([]*models.AuditLogEntry, error) {
	query := `
		SELECT id, actor_id, actor_name, action, description, resource_ref, status, metadata, timestamp
		FROM audit_log
		WHERE resource_ref = $1
		ORDER BY timestamp ASC
	`

	args := []any{resourceRef}

	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	entries := make([]*models.AuditLogEntry, 0)

	for rows.Next() {
		var (
			entry        models.AuditLogEntry
			metadataJSON []byte
		)

		err := rows.Scan(
			&entry.ID,
			&entry.ActorID,
			&entry.ActorName,
			&entry.Action,
			&entry.Description,
			&entry.ResourceRef,
			&entry.Status,
			&metadataJSON,
			&entry.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}

		if len(metadataJSON) > 0 {
			err = json.Unmarshal(metadataJSON, &entry.Metadata)
			if err != nil {
				return nil, fmt.Errorf("failed to unmarshal audit metadata: %w", err)
			}
		}

		entries = append(entries, &entry)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating audit entries: %w", err)
	}

	return entries, nil
}
