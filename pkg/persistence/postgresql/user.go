package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/formforge/formforge/pkg/models"
	"github.com/formforge/formforge/pkg/persistence"
)

// UserRepository handles user directory database operations.
type UserRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *sql.DB, logger *slog.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, name, email, role, department, active, created_at
		FROM users
		WHERE id = $1
	`

	var user models.User

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.Department,
		&user.Active,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("GetByID", id, persistence.ErrUserNotFound)
		}

		return nil, fmt.Errorf("failed to query user %s: %w", id, err)
	}

	return &user, nil
}

func (r *UserRepository) Save(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO users (id, name, email, role, department, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			role = EXCLUDED.role,
			department = EXCLUDED.department,
			active = EXCLUDED.active
	`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.Role,
		user.Department,
		user.Active,
		user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save user %s: %w", user.ID, err)
	}

	return nil
}

// FindActive returns active users in the department holding any of the given
// roles, earliest-created first.
func (r *UserRepository) FindActive(ctx context.Context, roles []models.Role, department string) ([]*models.User, error) {
	roleNames := make([]string, len(roles))
	for i, role := range roles {
		roleNames[i] = string(role)
	}

	query := `
		SELECT id, name, email, role, department, active, created_at
		FROM users
		WHERE active = true
		  AND department = $1
		  AND role = ANY($2)
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, department, pq.Array(roleNames))
	if err != nil {
		return nil, fmt.Errorf("failed to query active users: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	users := make([]*models.User, 0)

	for rows.Next() {
		var user models.User

		err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.Role,
			&user.Department,
			&user.Active,
			&user.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}

		users = append(users, &user)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}
