// Package persistence provides the data storage abstraction consumed by the
// workflow core: submissions, the user directory, the audit sink, and the
// per-recipient notification mailbox.
package persistence

import (
	"context"
	"time"

	"github.com/formforge/formforge/pkg/models"
)

// ListSubmissionsOptions filters and pages submission listings.
type ListSubmissionsOptions struct {
	Department string
	Status     string
	Limit      int
	Offset     int
}

// ListNotificationsOptions controls mailbox reads.
type ListNotificationsOptions struct {
	Limit      int
	UnreadOnly bool
}

// SubmissionRepository stores form submissions. Save enforces optimistic
// versioning: it fails with ErrVersionConflict when the stored version does
// not match the version the caller loaded.
type SubmissionRepository interface {
	GetByID(ctx context.Context, id string) (*models.FormSubmission, error)
	Save(ctx context.Context, submission *models.FormSubmission) error
	List(ctx context.Context, opts ListSubmissionsOptions) ([]*models.FormSubmission, error)
}

// UserRepository is the directory of accounts. FindActive returns active
// users matching any of the roles in the department, sorted by account
// creation time ascending.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
	FindActive(ctx context.Context, roles []models.Role, department string) ([]*models.User, error)
}

// AuditRepository is the append-only transition log. Entries are immutable;
// there is no update or delete.
type AuditRepository interface {
	Append(ctx context.Context, entry *models.AuditLogEntry) error
	List(ctx context.Context, resourceRef string, limit int) ([]*models.AuditLogEntry, error)
}

// NotificationRepository is the per-recipient mailbox.
type NotificationRepository interface {
	Add(ctx context.Context, notification *models.Notification) error
	ListByRecipient(ctx context.Context, recipientID string, opts ListNotificationsOptions) ([]*models.Notification, error)
	MarkRead(ctx context.Context, recipientID, notificationID string) (bool, error)
	MarkAllRead(ctx context.Context, recipientID string) (int, error)
	UnreadCount(ctx context.Context, recipientID string) (int, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// Persistence bundles the repositories behind one backend.
type Persistence interface {
	SubmissionRepository() SubmissionRepository
	UserRepository() UserRepository
	AuditRepository() AuditRepository
	NotificationRepository() NotificationRepository
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
