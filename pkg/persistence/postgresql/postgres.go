// Package postgresql provides the PostgreSQL persistence implementation for
// submissions, users, audit entries, and notifications.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	// Registers the postgres driver with database/sql.
	_ "github.com/lib/pq"

	"github.com/formforge/formforge/pkg/persistence"
	"github.com/formforge/formforge/pkg/persistence/sqlbase"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db               *sql.DB
	logger           *slog.Logger
	submissionRepo   *SubmissionRepository
	userRepo         *UserRepository
	auditRepo        *AuditRepository
	notificationRepo *NotificationRepository
}

// NewPersistence connects, runs migrations, and returns the backend.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:               database,
		logger:           logger,
		submissionRepo:   NewSubmissionRepository(database, logger),
		userRepo:         NewUserRepository(database, logger),
		auditRepo:        NewAuditRepository(database, logger),
		notificationRepo: NewNotificationRepository(database, logger),
	}, nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
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
