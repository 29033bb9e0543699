// Package main provides the FormForge event stream tailer: it subscribes to
// the lifecycle topic and logs every event, giving operators a live view of
// submissions moving through the workflow.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	"github.com/formforge/formforge/pkg/cmd"
	"github.com/formforge/formforge/pkg/log"
)

func main() {
	command := &cli.Command{
		Name:                  "formforge-events",
		Usage:                 "Tail the form lifecycle event stream",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "consumer-id",
				Aliases: []string{"id"},
				Usage:   "Custom consumer ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("CONSUMER_ID"),
			},
			&cli.StringFlag{
				Name:     "event-bus",
				Usage:    "Event bus provider (kafka, gochannel)",
				Required: true,
				Sources:  cli.EnvVars("EVENT_BUS"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			consumerID := command.String("consumer-id")
			if consumerID == "" {
				consumerID = fmt.Sprintf("events-%s", uuid.New().String()[:8])
			}

			logger := log.WithModule("events").With("consumer_id", consumerID)
			logger.InfoContext(ctx, "Initializing FormForge event tailer")

			eventBus := cmd.NewEventBus(command.String("event-bus"), logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			tailer := NewTailer(eventBus, logger)

			err := tailer.Start(ctx)
			if err != nil {
				return fmt.Errorf("failed to start event tailer: %w", err)
			}

			<-ctx.Done()
			logger.Info("Shutting down event tailer")

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
