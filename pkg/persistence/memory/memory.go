// Package memory provides an in-memory persistence implementation used by
// tests and single-process deployments.
package memory

import (
	"context"

	"github.com/formforge/formforge/pkg/persistence"
)

// Persistence implements persistence.Persistence with mutex-guarded maps.
// Repositories hand out deep copies so callers never share internal state.
type Persistence struct {
	submissionRepo   *SubmissionRepository
	userRepo         *UserRepository
	auditRepo        *AuditRepository
	notificationRepo *NotificationRepository
}

// NewPersistence creates an empty in-memory backend.
func NewPersistence() *Persistence {
	return &Persistence{
		submissionRepo:   NewSubmissionRepository(),
		userRepo:         NewUserRepository(),
		auditRepo:        NewAuditRepository(),
		notificationRepo: NewNotificationRepository(),
	}
}

func (p *Persistence) SubmissionRepository() persistence.SubmissionRepository {
	return p.submissionRepo
}

func (p *Persistence) UserRepository() persistence.UserRepository {
	return p.userRepo
}

func (p *Persistence) AuditRepository() persistence.AuditRepository {
	return p.auditRepo
}

func (p *Persistence) NotificationRepository() persistence.NotificationRepository {
	return p.notificationRepo
}

// HealthCheck always succeeds for the in-memory backend.
func (p *Persistence) HealthCheck(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory backend.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}
