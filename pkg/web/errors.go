package web

import (
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/formforge/formforge/pkg/persistence"
	"github.com/formforge/formforge/pkg/services"
	"github.com/formforge/formforge/pkg/workflow"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleWorkflowError maps the engine's error taxonomy onto HTTP statuses.
func handleWorkflowError(c fiber.Ctx, err error) error {
	switch {
	case workflow.IsSubmissionNotFound(err):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType("submission_not_found").
			WithDetail("submission not found")

		return c.Status(fiber.StatusNotFound).JSON(problem)

	case workflow.IsPermissionDenied(err):
		problem := problems.NewStatusProblem(403).
			WithInstance(c.Path()).
			WithType("permission_denied").
			WithDetail(err.Error())

		return c.Status(fiber.StatusForbidden).JSON(problem)

	case workflow.IsInvalidState(err):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("invalid_transition").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)

	case workflow.IsUnknownAction(err):
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("unknown_action").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	default:
		// Log unexpected errors but don't expose details
		problem := problems.NewStatusProblem(500).
			WithInstance(c.Path()).
			WithType("internal_error").
			WithError(err)

		return c.Status(fiber.StatusInternalServerError).JSON(problem)
	}
}

// handleServiceError provides typed error handling for service layer errors.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case services.IsValidationError(err):
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("validation_error").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case persistence.IsSubmissionNotFound(err):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType("submission_not_found").
			WithDetail("submission not found")

		return c.Status(fiber.StatusNotFound).JSON(problem)

	case persistence.IsUserNotFound(err):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType("user_not_found").
			WithDetail("user not found")

		return c.Status(fiber.StatusNotFound).JSON(problem)

	case persistence.IsVersionConflict(err):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("conflict").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)

	default:
		problem := problems.NewStatusProblem(500).
			WithInstance(c.Path()).
			WithType("internal_error").
			WithError(err)

		return c.Status(fiber.StatusInternalServerError).JSON(problem)
	}
}
