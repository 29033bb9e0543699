// Package notification provides the per-user mailbox of workflow alerts:
// push, read, broadcast, and timed retention.
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/formforge/formforge/pkg/models"
	"github.com/formforge/formforge/pkg/persistence"
)

// DefaultRetention is how long a notification stays in its mailbox.
const DefaultRetention = 30 * 24 * time.Hour

// retentionSchedule is the cron spec for the purge sweep.
const retentionSchedule = "@hourly"

// Dispatcher owns mailbox access and the retention sweep.
type Dispatcher struct {
	repo      persistence.NotificationRepository
	logger    *slog.Logger
	retention time.Duration
	cron      *cron.Cron
}

// NewDispatcher creates a dispatcher with the default 30-day retention.
func NewDispatcher(repo persistence.NotificationRepository, logger *slog.Logger) *Dispatcher {
	return NewDispatcherWithRetention(repo, logger, DefaultRetention)
}

// NewDispatcherWithRetention creates a dispatcher with a custom retention
// window.
func NewDispatcherWithRetention(repo persistence.NotificationRepository, logger *slog.Logger, retention time.Duration) *Dispatcher {
	return &Dispatcher{
		repo:      repo,
		logger:    logger.With("module", "notification_dispatcher"),
		retention: retention,
	}
}

// Send pushes one notification into the recipient's mailbox.
func (d *Dispatcher) Send(ctx context.Context, recipientID string, notificationType models.NotificationType, title, message string, payload map[string]any) (*models.Notification, error) {
	notification := &models.Notification{
		ID:          uuid.New().String(),
		RecipientID: recipientID,
		Type:        notificationType,
		Title:       title,
		Message:     message,
		Payload:     payload,
		CreatedAt:   time.Now().UTC(),
	}

	err := d.repo.Add(ctx, notification)
	if err != nil {
		return nil, fmt.Errorf("failed to send notification to %s: %w", recipientID, err)
	}

	return notification, nil
}

// List returns the recipient's notifications, most recent first.
func (d *Dispatcher) List(ctx context.Context, recipientID string, opts persistence.ListNotificationsOptions) ([]*models.Notification, error) {
	return d.repo.ListByRecipient(ctx, recipientID, opts)
}

// MarkRead marks one notification read; false when it does not exist.
func (d *Dispatcher) MarkRead(ctx context.Context, recipientID, notificationID string) (bool, error) {
	return d.repo.MarkRead(ctx, recipientID, notificationID)
}

// MarkAllRead marks the whole mailbox read and returns how many changed.
func (d *Dispatcher) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	return d.repo.MarkAllRead(ctx, recipientID)
}

// UnreadCount returns the number of unread notifications.
func (d *Dispatcher) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	return d.repo.UnreadCount(ctx, recipientID)
}

// Broadcast sends the same system notice to every recipient. Partial failure
// skips the failing mailbox and keeps going.
func (d *Dispatcher) Broadcast(ctx context.Context, recipientIDs []string, title, message string, payload map[string]any) ([]*models.Notification, error) {
	notifications := make([]*models.Notification, 0, len(recipientIDs))

	for _, recipientID := range recipientIDs {
		notification, err := d.Send(ctx, recipientID, models.NotificationTypeSystem, title, message, payload)
		if err != nil {
			d.logger.ErrorContext(ctx, "Failed to broadcast to recipient",
				"recipient_id", recipientID,
				"error", err,
			)

			continue
		}

		notifications = append(notifications, notification)
	}

	return notifications, nil
}

// StartRetentionSweep begins the hourly purge of notifications older than
// the retention window. Call StopRetentionSweep on shutdown.
func (d *Dispatcher) StartRetentionSweep() error {
	if d.cron != nil {
		return nil
	}

	d.cron = cron.New()

	_, err := d.cron.AddFunc(retentionSchedule, d.sweep)
	if err != nil {
		d.cron = nil

		return fmt.Errorf("failed to schedule retention sweep: %w", err)
	}

	d.cron.Start()
	d.logger.Info("Notification retention sweep started", "schedule", retentionSchedule, "retention", d.retention)

	return nil
}

// StopRetentionSweep stops the purge job.
func (d *Dispatcher) StopRetentionSweep() {
	if d.cron == nil {
		return
	}

	d.cron.Stop()
	d.cron = nil
}

func (d *Dispatcher) sweep() {
	ctx := context.Background()
	cutoff := time.Now().UTC().Add(-d.retention)

	removed, err := d.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		d.logger.ErrorContext(ctx, "Notification retention sweep failed", "error", err)

		return
	}

	if removed > 0 {
		d.logger.InfoContext(ctx, "Purged expired notifications", "count", removed)
	}
}
