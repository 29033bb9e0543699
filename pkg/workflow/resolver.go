package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/formforge/formforge/pkg/models"
	"github.com/formforge/formforge/pkg/persistence"
)

// ActorResolver finds one eligible active user to take responsibility for a
// stage. Selection is earliest account first; a fairer round-robin policy
// can replace pickAssignee without touching callers.
type ActorResolver struct {
	users  persistence.UserRepository
	logger *slog.Logger
}

// NewActorResolver creates a resolver over the user directory.
func NewActorResolver(users persistence.UserRepository, logger *slog.Logger) *ActorResolver {
	return &ActorResolver{
		users:  users,
		logger: logger.With("module", "actor_resolver"),
	}
}

// Resolve returns one active user in the department holding any of the
// roles, or nil when no one matches. Absence is not an error: callers treat
// nil as "cannot auto-progress yet".
func (r *ActorResolver) Resolve(ctx context.Context, roles []models.Role, department string) (*models.User, error) {
	if len(roles) == 0 {
		return nil, nil
	}

	candidates, err := r.users.FindActive(ctx, roles, department)
	if err != nil {
		return nil, fmt.Errorf("failed to query eligible users: %w", err)
	}

	if len(candidates) == 0 {
		r.logger.DebugContext(ctx, "No eligible actor found",
			"roles", roles,
			"department", department,
		)

		return nil, nil
	}

	return pickAssignee(candidates), nil
}

// pickAssignee selects from the already-sorted candidate list. The directory
// returns earliest-created first, so index zero keeps assignment stable.
func pickAssignee(candidates []*models.User) *models.User {
	return candidates[0]
}
