package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/formforge/formforge/pkg/models"
	"github.com/formforge/formforge/pkg/persistence"
)

// MockSubmissionRepository is a mock implementation of
// persistence.SubmissionRepository.
type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) GetByID(ctx context.Context, id string) (*models.FormSubmission, error) {
	args := m.Called(ctx, id)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.FormSubmission), args.Error(1)
}

func (m *MockSubmissionRepository) Save(ctx context.Context, submission *models.FormSubmission) error {
	args := m.Called(ctx, submission)

	return args.Error(0)
}

func (m *MockSubmissionRepository) List(ctx context.Context, opts persistence.ListSubmissionsOptions) ([]*models.FormSubmission, error) {
	args := m.Called(ctx, opts)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.FormSubmission), args.Error(1)
}

// MockUserRepository is a mock implementation of persistence.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)

	return args.Error(0)
}

func (m *MockUserRepository) FindActive(ctx context.Context, roles []models.Role, department string) ([]*models.User, error) {
	args := m.Called(ctx, roles, department)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.User), args.Error(1)
}

// MockAuditRepository is a mock implementation of persistence.AuditRepository.
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Append(ctx context.Context, entry *models.AuditLogEntry) error {
	args := m.Called(ctx, entry)

	return args.Error(0)
}

func (m *MockAuditRepository) List(ctx context.Context, resourceRef string, limit int) ([]*models.AuditLogEntry, error) {
	args := m.Called(ctx, resourceRef, limit)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.AuditLogEntry), args.Error(1)
}

// MockNotificationRepository is a mock implementation of
// persistence.NotificationRepository.
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Add(ctx context.Context, notification *models.Notification) error {
	args := m.Called(ctx, notification)

	return args.Error(0)
}

func (m *MockNotificationRepository) ListByRecipient(ctx context.Context, recipientID string, opts persistence.ListNotificationsOptions) ([]*models.Notification, error) {
	args := m.Called(ctx, recipientID, opts)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Notification), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, recipientID, notificationID string) (bool, error) {
	args := m.Called(ctx, recipientID, notificationID)

	return args.Bool(0), args.Error(1)
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	args := m.Called(ctx, recipientID)

	return args.Int(0), args.Error(1)
}

func (m *MockNotificationRepository) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	args := m.Called(ctx, recipientID)

	return args.Int(0), args.Error(1)
}

func (m *MockNotificationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	args := m.Called(ctx, cutoff)

	return args.Int(0), args.Error(1)
}

// MockPersistence is a mock implementation of persistence.Persistence.
type MockPersistence struct {
	mock.Mock
}

func (m *MockPersistence) SubmissionRepository() persistence.SubmissionRepository {
	args := m.Called()

	return args.Get(0).(persistence.SubmissionRepository)
}

func (m *MockPersistence) UserRepository() persistence.UserRepository {
	args := m.Called()

	return args.Get(0).(persistence.UserRepository)
}

func (m *MockPersistence) AuditRepository() persistence.AuditRepository {
	args := m.Called()

	return args.Get(0).(persistence.AuditRepository)
}

func (m *MockPersistence) NotificationRepository() persistence.NotificationRepository {
	args := m.Called()

	return args.Get(0).(persistence.NotificationRepository)
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
