package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/formforge/formforge/pkg/models"
	"github.com/formforge/formforge/pkg/persistence"
)

// UserRepository stores the account directory in a map keyed by id.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*models.User)}
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, persistence.NewStoreError("GetByID", id, persistence.ErrUserNotFound)
	}

	clone := *user

	return &clone, nil
}

func (r *UserRepository) Save(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *user
	r.users[user.ID] = &clone

	return nil
}

// FindActive returns active users in the department holding any of the given
// roles, sorted by account creation time ascending.
func (r *UserRepository) FindActive(_ context.Context, roles []models.Role, department string) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*models.User, 0)

	for _, user := range r.users {
		if !user.Active || user.Department != department {
			continue
		}

		if !slices.Contains(roles, user.Role) {
			continue
		}

		clone := *user
		matched = append(matched, &clone)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	return matched, nil
}
