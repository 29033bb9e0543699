package memory

import (
	"context"
	"sync"
	"time"

	"github.com/formforge/formforge/pkg/models"
	"github.com/formforge/formforge/pkg/persistence"
)

// NotificationRepository keeps one mailbox slice per recipient, newest first.
type NotificationRepository struct {
	mu        sync.RWMutex
	mailboxes map[string][]*models.Notification
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{mailboxes: make(map[string][]*models.Notification)}
}

func (r *NotificationRepository) Add(_ context.Context, notification *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *notification
	mailbox := r.mailboxes[notification.RecipientID]
	r.mailboxes[notification.RecipientID] = append([]*models.Notification{&clone}, mailbox...)

	return nil
}

func (r *NotificationRepository) ListByRecipient(_ context.Context, recipientID string, opts persistence.ListNotificationsOptions) ([]*models.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*models.Notification, 0)

	for _, notification := range r.mailboxes[recipientID] {
		if opts.UnreadOnly && notification.Read {
			continue
		}

		clone := *notification
		matched = append(matched, &clone)

		if opts.Limit > 0 && len(matched) == opts.Limit {
			break
		}
	}

	return matched, nil
}

func (r *NotificationRepository) MarkRead(_ context.Context, recipientID, notificationID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, notification := range r.mailboxes[recipientID] {
		if notification.ID == notificationID {
			notification.Read = true

			return true, nil
		}
	}

	return false, nil
}

func (r *NotificationRepository) MarkAllRead(_ context.Context, recipientID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0

	for _, notification := range r.mailboxes[recipientID] {
		if !notification.Read {
			notification.Read = true
			count++
		}
	}

	return count, nil
}

func (r *NotificationRepository) UnreadCount(_ context.Context, recipientID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0

	for _, notification := range r.mailboxes[recipientID] {
		if !notification.Read {
			count++
		}
	}

	return count, nil
}

// DeleteOlderThan purges notifications created before the cutoff across all
// mailboxes and returns how many were removed.
func (r *NotificationRepository) DeleteOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0

	for recipientID, mailbox := range r.mailboxes {
		kept := mailbox[:0]

		for _, notification := range mailbox {
			if notification.CreatedAt.Before(cutoff) {
				removed++

				continue
			}

			kept = append(kept, notification)
		}

		if len(kept) == 0 {
			delete(r.mailboxes, recipientID)

			continue
		}

		r.mailboxes[recipientID] = kept
	}

	return removed, nil
}
