package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/formforge/formforge/pkg/cmd"
	"github.com/formforge/formforge/pkg/config"
	"github.com/formforge/formforge/pkg/log"
	"github.com/formforge/formforge/pkg/otelhelper"
	"github.com/formforge/formforge/pkg/stages"
)

const defaultPort = 9094

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "formforge-api",
		Usage:                 "Create and route form submissions through the approval workflow",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence (postgres:// or memory://)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Optional Redis URL for the notification store",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (kafka, gochannel)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS"),
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a formforge.yaml configuration file",
				Sources: cli.EnvVars("FORMFORGE_CONFIG"),
			},
			&cli.DurationFlag{
				Name:    "verification-delay",
				Usage:   "Delay before submitted forms move to verification",
				Value:   stages.DefaultConfig().VerificationDelay,
				Sources: cli.EnvVars("VERIFICATION_DELAY"),
			},
			&cli.DurationFlag{
				Name:    "approval-delay",
				Usage:   "Delay before verified forms move to approval",
				Value:   stages.DefaultConfig().ApprovalDelay,
				Sources: cli.EnvVars("APPROVAL_DELAY"),
			},
			&cli.DurationFlag{
				Name:    "completion-delay",
				Usage:   "Delay before approved forms complete",
				Value:   stages.DefaultConfig().CompletionDelay,
				Sources: cli.EnvVars("COMPLETION_DELAY"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export traces via OTLP",
				Sources: cli.EnvVars("TRACING_ENABLED"),
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

			logger.InfoContext(ctx, "Initializing FormForge API")

			if command.Bool("tracing") {
				_, err := otelhelper.NewTracer(ctx, "formforge-api")
				if err != nil {
					logger.ErrorContext(ctx, "Failed to initialize tracing", "error", err)
				}
			}

			persistence := cmd.NewPersistence(ctx, logger, command.String("database-url"))

			defer func() {
				err := persistence.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			notifications := cmd.NewNotificationRepository(logger, persistence, command.String("redis-url"))

			eventBus := cmd.NewEventBus(command.String("event-bus"), logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			cfg := config.Defaults()

			if path := command.String("config"); path != "" {
				loaded, err := config.Load(path)
				if err != nil {
					return err
				}

				cfg = loaded
			}

			// Explicit delay flags win over the config file.
			if command.IsSet("verification-delay") {
				cfg.Workflow.VerificationDelay = config.Duration(command.Duration("verification-delay"))
			}

			if command.IsSet("approval-delay") {
				cfg.Workflow.ApprovalDelay = config.Duration(command.Duration("approval-delay"))
			}

			if command.IsSet("completion-delay") {
				cfg.Workflow.CompletionDelay = config.Duration(command.Duration("completion-delay"))
			}

			api := NewAPI(
				logger,
				persistence,
				notifications,
				eventBus,
				cfg,
			)

			err := api.Start(command.Int("port"))
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return nil
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
