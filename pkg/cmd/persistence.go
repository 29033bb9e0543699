// Package cmd provides common initialization functions for command-line
// applications.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/formforge/formforge/pkg/persistence"
	"github.com/formforge/formforge/pkg/persistence/memory"
	"github.com/formforge/formforge/pkg/persistence/postgresql"
	"github.com/formforge/formforge/pkg/persistence/redisstore"
)

// NewPersistence selects a persistence backend from the database URL scheme.
// "postgres://" and "postgresql://" select PostgreSQL; "memory://" (or an
// empty URL) selects the in-memory store.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) persistence.Persistence {
	switch parseProvider(databaseURL) {
	case "postgresql":
		p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			panic(fmt.Errorf("failed to create PostgreSQL persistence: %w", err))
		}

		return p
	case "memory":
		return memory.NewPersistence()
	default:
		panic("Unsupported database URL: " + databaseURL)
	}
}

// NewNotificationRepository optionally swaps the notification store for
// Redis. An empty redisURL keeps the backend bundled with the persistence
// layer.
func NewNotificationRepository(
	logger *slog.Logger,
	p persistence.Persistence,
	redisURL string,
) persistence.NotificationRepository {
	if redisURL == "" {
		return p.NotificationRepository()
	}

	client, err := redisstore.NewClient(redisURL)
	if err != nil {
		panic(fmt.Errorf("failed to connect to Redis: %w", err))
	}

	return redisstore.NewNotificationRepository(client, logger)
}

func parseProvider(databaseURL string) string {
	if databaseURL == "" {
		return "memory"
	}

	scheme, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return ""
	}

	switch scheme {
	case "postgres", "postgresql":
		return "postgresql"
	case "memory":
		return "memory"
	default:
		return scheme
	}
}
