package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/formforge/formforge/pkg/models"
	"github.com/formforge/formforge/pkg/persistence"
)

// SubmissionRepository stores submissions in a map keyed by id.
type SubmissionRepository struct {
	mu          sync.RWMutex
	submissions map[string]*models.FormSubmission
}

func NewSubmissionRepository() *SubmissionRepository {
	return &SubmissionRepository{submissions: make(map[string]*models.FormSubmission)}
}

func (r *SubmissionRepository) GetByID(_ context.Context, id string) (*models.FormSubmission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	submission, ok := r.submissions[id]
	if !ok {
		return nil, persistence.NewStoreError("GetByID", id, persistence.ErrSubmissionNotFound)
	}

	return submission.Clone(), nil
}

// Save applies the optimistic version check: the incoming version must match
// the stored one. The stored copy gets version+1; the caller's struct is
// updated to match so it can keep mutating and saving.
func (r *SubmissionRepository) Save(_ context.Context, submission *models.FormSubmission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.submissions[submission.ID]
	if exists && current.Version != submission.Version {
		return persistence.NewStoreError("Save", submission.ID, persistence.ErrVersionConflict)
	}

	submission.Version++
	submission.UpdatedAt = time.Now().UTC()
	r.submissions[submission.ID] = submission.Clone()

	return nil
}

func (r *SubmissionRepository) List(_ context.Context, opts persistence.ListSubmissionsOptions) ([]*models.FormSubmission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*models.FormSubmission, 0)

	for _, submission := range r.submissions {
		if opts.Department != "" && submission.Department != opts.Department {
			continue
		}

		if opts.Status != "" && submission.Status != opts.Status {
			continue
		}

		matched = append(matched, submission.Clone())
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(matched) {
			return []*models.FormSubmission{}, nil
		}

		matched = matched[opts.Offset:]
	}

	if opts.Limit > 0 && len(matched) > opts.Limit {
		matched = matched[:opts.Limit]
	}

	return matched, nil
}
