package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/formforge/formforge/pkg/models"
	"github.com/formforge/formforge/pkg/persistence"
)

// NotificationRepository handles the per-recipient mailbox table.
type NotificationRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(db *sql.DB, logger *slog.Logger) *NotificationRepository {
	return &NotificationRepository{db: db, logger: logger}
}

func (r *NotificationRepository) Add(ctx context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}

	payloadJSON, err := json.Marshal(notification.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification payload: %w", err)
	}

	query := `
		INSERT INTO notifications (id, recipient_id, type, title, message, payload, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.db.ExecContext(ctx, query,
		notification.ID,
		notification.RecipientID,
		notification.Type,
		notification.Title,
		notification.Message,
		payloadJSON,
		notification.Read,
		notification.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add notification: %w", err)
	}

	return nil
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID string, opts persistence.ListNotificationsOptions) ([]*models.Notification, error) {
	query := `
		SELECT id, recipient_id, type, title, message, payload, read, created_at
		FROM notifications
		WHERE recipient_id = $1
	`

	args := []any{recipientID}

	if opts.UnreadOnly {
		query += " AND read = false"
	}

	query += " ORDER BY created_at DESC"

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	notifications := make([]*models.Notification, 0)

	for rows.Next() {
		var (
			notification models.Notification
			payloadJSON  []byte
		)

		err := rows.Scan(
			&notification.ID,
			&notification.RecipientID,
			&notification.Type,
			&notification.Title,
			&notification.Message,
			&payloadJSON,
			&notification.Read,
			&notification.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}

		if len(payloadJSON) > 0 {
			err = json.Unmarshal(payloadJSON, &notification.Payload)
			if err != nil {
				return nil, fmt.Errorf("failed to unmarshal notification payload: %w", err)
			}
		}

		notifications = append(notifications, &notification)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}

	return notifications, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, recipientID, notificationID string) (bool, error) {
	query := `UPDATE notifications SET read = true WHERE recipient_id = $1 AND id = $2`

	result, err := r.db.ExecContext(ctx, query, recipientID, notificationID)
	if err != nil {
		return false, fmt.Errorf("failed to mark notification read: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check mark read result: %w", err)
	}

	return affected > 0, nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	query := `UPDATE notifications SET read = true WHERE recipient_id = $1 AND read = false`

	result, err := r.db.ExecContext(ctx, query, recipientID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications read: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check mark all read result: %w", err)
	}

	return int(affected), nil
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	var count int

	query := `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND read = false`

	err := r.db.QueryRowContext(ctx, query, recipientID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}

func (r *NotificationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	query := `DELETE FROM notifications WHERE created_at < $1`

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge notifications: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check purge result: %w", err)
	}

	return int(affected), nil
}
