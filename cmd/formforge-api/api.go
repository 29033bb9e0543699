// Package main provides the FormForge API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/formforge/formforge/pkg/audit"
	"github.com/formforge/formforge/pkg/config"
	"github.com/formforge/formforge/pkg/eventbus"
	"github.com/formforge/formforge/pkg/notification"
	"github.com/formforge/formforge/pkg/persistence"
	"github.com/formforge/formforge/pkg/scheduler"
	"github.com/formforge/formforge/pkg/services"
	"github.com/formforge/formforge/pkg/stages"
	"github.com/formforge/formforge/pkg/web"
	"github.com/formforge/formforge/pkg/workflow"
)

type API struct {
	logger        *slog.Logger
	persistence   persistence.Persistence
	notifications persistence.NotificationRepository
	eventBus      eventbus.EventBus
	config        config.File
	validate      *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	notifications persistence.NotificationRepository,
	eventBus eventbus.EventBus,
	cfg config.File,
) *API {
	return &API{
		logger:        logger,
		persistence:   persistence,
		notifications: notifications,
		eventBus:      eventBus,
		config:        cfg,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	dispatcher := notification.NewDispatcherWithRetention(a.notifications, a.logger, a.config.Notifications.Retention.Std())

	err := dispatcher.StartRetentionSweep()
	if err != nil {
		a.logger.Error("Failed to start notification retention sweep", "error", err)
	}

	engine := workflow.NewEngine(workflow.Config{
		Stages:      stages.NewTable(a.config.StageConfig()),
		Submissions: a.persistence.SubmissionRepository(),
		Resolver:    workflow.NewActorResolver(a.persistence.UserRepository(), a.logger),
		Recorder:    audit.NewRecorder(a.persistence.AuditRepository(), a.logger),
		Dispatcher:  dispatcher,
		Scheduler:   scheduler.NewTimerScheduler(),
		EventBus:    a.eventBus,
		Logger:      a.logger,
	})

	submissionService := services.NewSubmission(a.persistence)
	directory := services.NewDirectory(a.persistence.UserRepository())

	handlers := web.NewAPIHandlers(submissionService, directory, engine, dispatcher, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("FormForge API")
	})

	s := app.Group("/submissions")
	s.Get("/", handlers.ListSubmissions)
	s.Post("/", handlers.CreateSubmission)
	s.Get("/:id", handlers.GetSubmission)
	s.Post("/:id/actions", handlers.ProcessAction)
	s.Get("/:id/audit", handlers.GetAuditTrail)

	app.Post("/users", handlers.CreateUser)

	n := app.Group("/notifications")
	n.Get("/", handlers.ListNotifications)
	n.Get("/unread-count", handlers.UnreadNotificationCount)
	n.Post("/read-all", handlers.MarkAllNotificationsRead)
	n.Post("/:id/read", handlers.MarkNotificationRead)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
