// Package redisstore provides a Redis-backed notification mailbox so
// multiple API processes share one set of per-user alerts.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/formforge/formforge/pkg/models"
	"github.com/formforge/formforge/pkg/persistence"
)

const (
	recipientsKey = "formforge:notifications:recipients"
	mailboxPrefix = "formforge:notifications:mailbox:"
	itemPrefix    = "formforge:notifications:item:"
)

// NotificationRepository implements persistence.NotificationRepository on
// Redis. Each mailbox is a sorted set of notification ids scored by creation
// time; notification bodies live in plain keys.
type NotificationRepository struct {
	client redis.UniversalClient
	logger *slog.Logger
}

// NewNotificationRepository wraps an existing Redis client.
func NewNotificationRepository(client redis.UniversalClient, logger *slog.Logger) *NotificationRepository {
	return &NotificationRepository{
		client: client,
		logger: logger.With("module", "redis_notification_store"),
	}
}

// NewClient builds a Redis client from a redis:// URL.
func NewClient(url string) (redis.UniversalClient, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	return redis.NewClient(opts), nil
}

func mailboxKey(recipientID string) string {
	return mailboxPrefix + recipientID
}

func itemKey(recipientID, notificationID string) string {
	return itemPrefix + recipientID + ":" + notificationID
}

func (r *NotificationRepository) Add(ctx context.Context, notification *models.Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, itemKey(notification.RecipientID, notification.ID), payload, 0)
	pipe.ZAdd(ctx, mailboxKey(notification.RecipientID), redis.Z{
		Score:  float64(notification.CreatedAt.UnixMilli()),
		Member: notification.ID,
	})
	pipe.SAdd(ctx, recipientsKey, notification.RecipientID)

	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	return nil
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID string, opts persistence.ListNotificationsOptions) ([]*models.Notification, error) {
	ids, err := r.client.ZRevRange(ctx, mailboxKey(recipientID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read mailbox: %w", err)
	}

	notifications := make([]*models.Notification, 0, len(ids))

	for _, id := range ids {
		notification, err := r.getItem(ctx, recipientID, id)
		if err != nil {
			return nil, err
		}

		if notification == nil {
			continue
		}

		if opts.UnreadOnly && notification.Read {
			continue
		}

		notifications = append(notifications, notification)

		if opts.Limit > 0 && len(notifications) == opts.Limit {
			break
		}
	}

	return notifications, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, recipientID, notificationID string) (bool, error) {
	notification, err := r.getItem(ctx, recipientID, notificationID)
	if err != nil {
		return false, err
	}

	if notification == nil {
		return false, nil
	}

	if notification.Read {
		return true, nil
	}

	notification.Read = true

	err = r.putItem(ctx, notification)
	if err != nil {
		return false, err
	}

	return true, nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	ids, err := r.client.ZRange(ctx, mailboxKey(recipientID), 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read mailbox: %w", err)
	}

	count := 0

	for _, id := range ids {
		notification, err := r.getItem(ctx, recipientID, id)
		if err != nil {
			return count, err
		}

		if notification == nil || notification.Read {
			continue
		}

		notification.Read = true

		err = r.putItem(ctx, notification)
		if err != nil {
			return count, err
		}

		count++
	}

	return count, nil
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	ids, err := r.client.ZRange(ctx, mailboxKey(recipientID), 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read mailbox: %w", err)
	}

	count := 0

	for _, id := range ids {
		notification, err := r.getItem(ctx, recipientID, id)
		if err != nil {
			return 0, err
		}

		if notification != nil && !notification.Read {
			count++
		}
	}

	return count, nil
}

func (r *NotificationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	recipients, err := r.client.SMembers(ctx, recipientsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to list recipients: %w", err)
	}

	maxScore := strconv.FormatInt(cutoff.UnixMilli()-1, 10)
	removed := 0

	for _, recipientID := range recipients {
		mailbox := mailboxKey(recipientID)

		ids, err := r.client.ZRangeByScore(ctx, mailbox, &redis.ZRangeBy{
			Min: "-inf",
			Max: maxScore,
		}).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to read expired notifications: %w", err)
		}

		for _, id := range ids {
			pipe := r.client.TxPipeline()
			pipe.Del(ctx, itemKey(recipientID, id))
			pipe.ZRem(ctx, mailbox, id)

			_, err = pipe.Exec(ctx)
			if err != nil {
				return removed, fmt.Errorf("failed to purge notification: %w", err)
			}

			removed++
		}

		remaining, err := r.client.ZCard(ctx, mailbox).Result()
		if err == nil && remaining == 0 {
			r.client.SRem(ctx, recipientsKey, recipientID)
		}
	}

	return removed, nil
}

func (r *NotificationRepository) getItem(ctx context.Context, recipientID, notificationID string) (*models.Notification, error) {
	payload, err := r.client.Get(ctx, itemKey(recipientID, notificationID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to read notification: %w", err)
	}

	var notification models.Notification

	err = json.Unmarshal([]byte(payload), &notification)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal notification: %w", err)
	}

	return &notification, nil
}

func (r *NotificationRepository) putItem(ctx context.Context, notification *models.Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	err = r.client.Set(ctx, itemKey(notification.RecipientID, notification.ID), payload, 0).Err()
	if err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	return nil
}
