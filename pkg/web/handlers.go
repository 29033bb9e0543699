// Package web provides HTTP handlers and REST API endpoints for submission
// and workflow management.
package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/formforge/formforge/pkg/models"
	"github.com/formforge/formforge/pkg/notification"
	"github.com/formforge/formforge/pkg/persistence"
	"github.com/formforge/formforge/pkg/services"
	"github.com/formforge/formforge/pkg/workflow"
)

// ActorHeader carries the acting user's id on every mutating request.
const ActorHeader = "X-User-ID"

type APIHandlers struct {
	submissionService *services.Submission
	directory         *services.Directory
	engine            *workflow.Engine
	dispatcher        *notification.Dispatcher
	validator         *validator.Validate
}

func NewAPIHandlers(
	submissionService *services.Submission,
	directory *services.Directory,
	engine *workflow.Engine,
	dispatcher *notification.Dispatcher,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		submissionService: submissionService,
		directory:         directory,
		engine:            engine,
		dispatcher:        dispatcher,
		validator:         validator,
	}
}

// errMissingActorHeader marks a request that carried no acting identity.
var errMissingActorHeader = errors.New("missing actor header")

// actor resolves the acting identity from the request header against the
// directory. A non-nil error means the request must not proceed; callers
// translate it with actorError.
func (h *APIHandlers) actor(c fiber.Ctx) (models.Actor, error) {
	userID := c.Get(ActorHeader)
	if userID == "" {
		return models.Actor{}, errMissingActorHeader
	}

	actor, err := h.directory.ActorFor(c.Context(), userID)
	if err != nil {
		return models.Actor{}, err
	}

	return actor, nil
}

// actorError writes the problem response for a failed actor resolution.
func actorError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, errMissingActorHeader):
		return badRequest(c, ActorHeader+" header is required")
	case persistence.IsUserNotFound(err):
		return notFound(c, "acting user not found")
	default:
		return internalError(c, err)
	}
}

func (h *APIHandlers) CreateSubmission(c fiber.Ctx) error {
	actor, err := h.actor(c)
	if err != nil {
		return actorError(c, err)
	}

	var req CreateSubmissionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.submissionService.CreateDraft(c.Context(), services.CreateDraftRequest{
		TemplateID:  req.TemplateID,
		Title:       req.Title,
		Department:  req.Department,
		SubmittedBy: actor.ID,
		Data:        req.Data,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) GetSubmission(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Submission ID is required")
	}

	submission, err := h.submissionService.FetchByID(c.Context(), id)
	if err != nil {
		if persistence.IsSubmissionNotFound(err) {
			return notFound(c, "Submission not found")
		}

		return internalError(c, err)
	}

	return c.JSON(submission)
}

func (h *APIHandlers) ListSubmissions(c fiber.Ctx) error {
	req, err := h.parseListSubmissionsRequest(c)
	if err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	submissions, err := h.submissionService.List(c.Context(), *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"submissions": submissions,
		"count":       len(submissions),
		"pagination": fiber.Map{
			"limit":  req.Limit,
			"offset": req.Offset,
		},
	})
}

// parseListSubmissionsRequest parses and validates query parameters for
// listing submissions.
func (h *APIHandlers) parseListSubmissionsRequest(c fiber.Ctx) (*services.ListSubmissionsRequest, error) {
	req := &services.ListSubmissionsRequest{
		Department: c.Query("department"),
		Status:     c.Query("status"),
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, err
		}

		req.Limit = limit
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return nil, err
		}

		req.Offset = offset
	}

	return req, nil
}

func (h *APIHandlers) ProcessAction(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Submission ID is required")
	}

	actor, err := h.actor(c)
	if err != nil {
		return actorError(c, err)
	}

	var req ProcessActionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	action, err := workflow.ParseAction(req.Action)
	if err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.engine.Process(c.Context(), id, action, actor, workflow.Options{
		Comments: req.Comments,
	})
	if err != nil {
		return handleWorkflowError(c, err)
	}

	return c.JSON(result)
}

func (h *APIHandlers) GetAuditTrail(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Submission ID is required")
	}

	limit := 0

	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			return badRequest(c, "Invalid limit parameter")
		}

		limit = parsed
	}

	entries, err := h.submissionService.AuditTrail(c.Context(), id, limit)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"entries": entries,
		"count":   len(entries),
	})
}

func (h *APIHandlers) CreateUser(c fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	user, err := h.directory.CreateUser(c.Context(), &models.User{
		Name:       req.Name,
		Email:      req.Email,
		Role:       req.Role,
		Department: req.Department,
		Active:     true,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *APIHandlers) ListNotifications(c fiber.Ctx) error {
	actor, err := h.actor(c)
	if err != nil {
		return actorError(c, err)
	}

	opts := persistence.ListNotificationsOptions{}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return badRequest(c, "Invalid limit parameter")
		}

		opts.Limit = limit
	}

	if unreadStr := c.Query("unread_only"); unreadStr != "" {
		unreadOnly, err := strconv.ParseBool(unreadStr)
		if err != nil {
			return badRequest(c, "Invalid unread_only parameter")
		}

		opts.UnreadOnly = unreadOnly
	}

	notifications, err := h.dispatcher.List(c.Context(), actor.ID, opts)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"notifications": notifications,
		"count":         len(notifications),
	})
}

func (h *APIHandlers) MarkNotificationRead(c fiber.Ctx) error {
	actor, err := h.actor(c)
	if err != nil {
		return actorError(c, err)
	}

	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Notification ID is required")
	}

	marked, err := h.dispatcher.MarkRead(c.Context(), actor.ID, id)
	if err != nil {
		if persistence.IsNotificationNotFound(err) {
			return notFound(c, "Notification not found")
		}

		return internalError(c, err)
	}

	if !marked {
		return notFound(c, "Notification not found")
	}

	return c.JSON(fiber.Map{"marked": true})
}

func (h *APIHandlers) MarkAllNotificationsRead(c fiber.Ctx) error {
	actor, err := h.actor(c)
	if err != nil {
		return actorError(c, err)
	}

	marked, err := h.dispatcher.MarkAllRead(c.Context(), actor.ID)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"marked": marked})
}

func (h *APIHandlers) UnreadNotificationCount(c fiber.Ctx) error {
	actor, err := h.actor(c)
	if err != nil {
		return actorError(c, err)
	}

	count, err := h.dispatcher.UnreadCount(c.Context(), actor.ID)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"unread": count})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.submissionService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "FormForge API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "FormForge API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}
