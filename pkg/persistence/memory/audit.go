package memory

import (
	"context"
	"sync"

	"github.com/formforge/formforge/pkg/models"
)

// AuditRepository keeps the append-only transition log in order of arrival.
type AuditRepository struct {
	mu      sync.RWMutex
	entries []*models.AuditLogEntry
}

func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

func (r *AuditRepository) Append(_ context.Context, entry *models.AuditLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *entry
	r.entries = append(r.entries, &clone)

	return nil
}

// List returns entries for the resource, most recent last, capped at limit
// when limit is positive.
func (r *AuditRepository) List(_ context.Context, resourceRef string, limit int) ([]*models.AuditLogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*models.AuditLogEntry, 0)

	for _, entry := range r.entries {
		if resourceRef != "" && entry.ResourceRef != resourceRef {
			continue
		}

		clone := *entry
		matched = append(matched, &clone)
	}

	if limit > 0 && len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}

	return matched, nil
}
