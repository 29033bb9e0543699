package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/formforge/formforge/pkg/models"
	"github.com/formforge/formforge/pkg/persistence"
)

// Directory is the application service over the user directory.
type Directory struct {
	users    persistence.UserRepository
	validate *validator.Validate
}

// NewDirectory creates a new directory service.
func NewDirectory(users persistence.UserRepository) *Directory {
	return &Directory{
		users:    users,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// ActorFor resolves the acting identity for a request.
func (d *Directory) ActorFor(ctx context.Context, userID string) (models.Actor, error) {
	user, err := d.users.GetByID(ctx, userID)
	if err != nil {
		return models.Actor{}, fmt.Errorf("failed to resolve actor %s: %w", userID, err)
	}

	return models.ActorOf(user), nil
}

// CreateUser validates and stores a new account.
func (d *Directory) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	err := d.validate.Struct(user)
	if err != nil {
		return nil, NewValidationError("CreateUser", "INVALID_USER", err.Error(), ErrInvalidRequest)
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	err = d.users.Save(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	return user, nil
}
