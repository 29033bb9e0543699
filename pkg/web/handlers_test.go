package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formforge/formforge/pkg/audit"
	"github.com/formforge/formforge/pkg/models"
	"github.com/formforge/formforge/pkg/notification"
	"github.com/formforge/formforge/pkg/persistence"
	"github.com/formforge/formforge/pkg/persistence/memory"
	"github.com/formforge/formforge/pkg/scheduler"
	"github.com/formforge/formforge/pkg/services"
	"github.com/formforge/formforge/pkg/stages"
	"github.com/formforge/formforge/pkg/web"
	"github.com/formforge/formforge/pkg/workflow"
)

type webFixture struct {
	app   *fiber.App
	store *memory.Persistence
}

func setupTestApp(t *testing.T) *webFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewPersistence()
	dispatcher := notification.NewDispatcher(store.NotificationRepository(), logger)

	sched := scheduler.NewTimerScheduler()
	t.Cleanup(sched.Stop)

	engine := workflow.NewEngine(workflow.Config{
		Stages:      stages.NewTable(stages.Config{VerificationDelay: time.Hour, ApprovalDelay: time.Hour, CompletionDelay: time.Hour}),
		Submissions: store.SubmissionRepository(),
		Resolver:    workflow.NewActorResolver(store.UserRepository(), logger),
		Recorder:    audit.NewRecorder(store.AuditRepository(), logger),
		Dispatcher:  dispatcher,
		Scheduler:   sched,
		Logger:      logger,
	})

	handlers := web.NewAPIHandlers(
		services.NewSubmission(store),
		services.NewDirectory(store.UserRepository()),
		engine,
		dispatcher,
		validator.New(validator.WithRequiredStructEnabled()),
	)

	app := fiber.New()

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

	return &webFixture{app: app, store: store}
}

func (f *webFixture) seedUser(t *testing.T, id string, role models.Role) {
	t.Helper()

	err := f.store.UserRepository().Save(t.Context(), &models.User{
		ID:         id,
		Name:       id,
		Email:      id + "@plant.example",
		Role:       role,
		Department: "assembly",
		Active:     true,
		CreatedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)
}

func jsonRequest(t *testing.T, method, target, actorID string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	if actorID != "" {
		req.Header.Set(web.ActorHeader, actorID)
	}

	return req
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	return out
}

func TestCreateSubmission(t *testing.T) {
	t.Parallel()

	f := setupTestApp(t)
	f.seedUser(t, "op-1", models.RoleOperator)

	req := jsonRequest(t, http.MethodPost, "/submissions", "op-1", web.CreateSubmissionRequest{
		TemplateID: "checklist-a4",
		Title:      "Line 2 shift handover",
		Department: "assembly",
		Data:       map[string]any{"shift": "night"},
	})

	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	created := decodeBody[models.FormSubmission](t, resp)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, stages.Draft, created.Status)
	assert.Equal(t, "op-1", created.SubmittedBy)
}

func TestCreateSubmission_MissingActorHeader(t *testing.T) {
	t.Parallel()

	f := setupTestApp(t)

	req := jsonRequest(t, http.MethodPost, "/submissions", "", web.CreateSubmissionRequest{
		TemplateID: "checklist-a4",
		Title:      "Handover",
		Department: "assembly",
	})

	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateSubmission_UnknownActor(t *testing.T) {
	t.Parallel()

	f := setupTestApp(t)

	req := jsonRequest(t, http.MethodPost, "/submissions", "ghost", web.CreateSubmissionRequest{
		TemplateID: "checklist-a4",
		Title:      "Handover",
		Department: "assembly",
	})

	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// The rejection must halt the handler: nothing is created.
	stored, err := f.store.SubmissionRepository().List(t.Context(), persistence.ListSubmissionsOptions{})
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestCreateSubmission_ValidationError(t *testing.T) {
	t.Parallel()

	f := setupTestApp(t)
	f.seedUser(t, "op-1", models.RoleOperator)

	req := jsonRequest(t, http.MethodPost, "/submissions", "op-1", web.CreateSubmissionRequest{
		TemplateID: "checklist-a4",
		Title:      "ab", // below minimum length
		Department: "assembly",
	})

	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetSubmission_NotFound(t *testing.T) {
	t.Parallel()

	f := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/submissions/missing-id", nil)

	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func createDraft(t *testing.T, f *webFixture) string {
	t.Helper()

	req := jsonRequest(t, http.MethodPost, "/submissions", "op-1", web.CreateSubmissionRequest{
		TemplateID: "checklist-a4",
		Title:      "Line 2 shift handover",
		Department: "assembly",
	})

	resp, err := f.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created := decodeBody[models.FormSubmission](t, resp)

	return created.ID
}

func TestProcessAction_Submit(t *testing.T) {
	t.Parallel()

	f := setupTestApp(t)
	f.seedUser(t, "op-1", models.RoleOperator)
	id := createDraft(t, f)

	req := jsonRequest(t, http.MethodPost, "/submissions/"+id+"/actions", "op-1", web.ProcessActionRequest{
		Action:   "submit_form",
		Comments: "ready for review",
	})

	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	result := decodeBody[workflow.Result](t, resp)
	assert.True(t, result.Success)
	require.NotNil(t, result.Data)
	assert.Equal(t, stages.Submitted, result.Data.Status)
}

func TestProcessAction_MissingActorHeader(t *testing.T) {
	t.Parallel()

	f := setupTestApp(t)
	f.seedUser(t, "op-1", models.RoleOperator)
	id := createDraft(t, f)

	req := jsonRequest(t, http.MethodPost, "/submissions/"+id+"/actions", "", web.ProcessActionRequest{
		Action: "submit_form",
	})

	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// An unauthenticated request never reaches the engine: the submission
	// stays in Draft and no audit entry is written for the attempt.
	stored, err := f.store.SubmissionRepository().GetByID(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, stages.Draft, stored.Status)

	entries, err := f.store.AuditRepository().List(t.Context(), id, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNotifications_MissingActorHeader(t *testing.T) {
	t.Parallel()

	f := setupTestApp(t)

	req := jsonRequest(t, http.MethodGet, "/notifications/", "", nil)

	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProcessAction_UnknownAction(t *testing.T) {
	t.Parallel()

	f := setupTestApp(t)
	f.seedUser(t, "op-1", models.RoleOperator)
	id := createDraft(t, f)

	req := jsonRequest(t, http.MethodPost, "/submissions/"+id+"/actions", "op-1", web.ProcessActionRequest{
		Action: "escalate_form",
	})

	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProcessAction_PermissionDenied(t *testing.T) {
	t.Parallel()

	f := setupTestApp(t)
	f.seedUser(t, "op-1", models.RoleOperator)
	f.seedUser(t, "aud-1", models.RoleAuditor)
	id := createDraft(t, f)

	req := jsonRequest(t, http.MethodPost, "/submissions/"+id+"/actions", "aud-1", web.ProcessActionRequest{
		Action: "submit_form",
	})

	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestProcessAction_InvalidState(t *testing.T) {
	t.Parallel()

	f := setupTestApp(t)
	f.seedUser(t, "op-1", models.RoleOperator)
	f.seedUser(t, "adm-1", models.RoleAdmin)
	id := createDraft(t, f)

	req := jsonRequest(t, http.MethodPost, "/submissions/"+id+"/actions", "op-1", web.ProcessActionRequest{
		Action: "submit_form",
	})

	resp, err := f.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Submitting again conflicts with the current stage.
	req = jsonRequest(t, http.MethodPost, "/submissions/"+id+"/actions", "adm-1", web.ProcessActionRequest{
		Action: "submit_form",
	})

	resp, err = f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestProcessAction_SubmissionNotFound(t *testing.T) {
	t.Parallel()

	f := setupTestApp(t)
	f.seedUser(t, "op-1", models.RoleOperator)

	req := jsonRequest(t, http.MethodPost, "/submissions/missing-id/actions", "op-1", web.ProcessActionRequest{
		Action: "submit_form",
	})

	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListSubmissions(t *testing.T) {
	t.Parallel()

	f := setupTestApp(t)
	f.seedUser(t, "op-1", models.RoleOperator)
	createDraft(t, f)
	createDraft(t, f)

	req := httptest.NewRequest(http.MethodGet, "/submissions/?department=assembly", nil)

	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[map[string]any](t, resp)
	assert.InDelta(t, 2, body["count"], 0)
}

func TestGetAuditTrail(t *testing.T) {
	t.Parallel()

	f := setupTestApp(t)
	f.seedUser(t, "op-1", models.RoleOperator)
	id := createDraft(t, f)

	req := jsonRequest(t, http.MethodPost, "/submissions/"+id+"/actions", "op-1", web.ProcessActionRequest{
		Action: "submit_form",
	})

	resp, err := f.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/submissions/"+id+"/audit", nil)

	resp, err = f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[map[string]any](t, resp)
	assert.InDelta(t, 1, body["count"], 0)
}

func TestCreateUser(t *testing.T) {
	t.Parallel()

	f := setupTestApp(t)

	req := jsonRequest(t, http.MethodPost, "/users", "", web.CreateUserRequest{
		Name:       "Sou Lin",
		Email:      "sou@plant.example",
		Role:       models.RoleSupervisor,
		Department: "assembly",
	})

	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	created := decodeBody[models.User](t, resp)
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.Active)
}

func TestCreateUser_InvalidRole(t *testing.T) {
	t.Parallel()

	f := setupTestApp(t)

	req := jsonRequest(t, http.MethodPost, "/users", "", web.CreateUserRequest{
		Name:       "Sou Lin",
		Email:      "sou@plant.example",
		Role:       models.Role("janitor"),
		Department: "assembly",
	})

	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNotificationEndpoints(t *testing.T) {
	t.Parallel()

	f := setupTestApp(t)
	f.seedUser(t, "sup-1", models.RoleSupervisor)

	notifications := f.store.NotificationRepository()
	require.NoError(t, notifications.Add(t.Context(), &models.Notification{
		ID:          "n1",
		RecipientID: "sup-1",
		Type:        models.NotificationTypeWorkflow,
		Title:       "Form awaiting verification",
		CreatedAt:   time.Now().UTC(),
	}))

	req := jsonRequest(t, http.MethodGet, "/notifications/", "sup-1", nil)
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[map[string]any](t, resp)
	assert.InDelta(t, 1, body["count"], 0)

	req = jsonRequest(t, http.MethodGet, "/notifications/unread-count", "sup-1", nil)
	resp, err = f.app.Test(req)
	require.NoError(t, err)

	body = decodeBody[map[string]any](t, resp)
	assert.InDelta(t, 1, body["unread"], 0)

	req = jsonRequest(t, http.MethodPost, "/notifications/n1/read", "sup-1", nil)
	resp, err = f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req = jsonRequest(t, http.MethodPost, "/notifications/missing/read", "sup-1", nil)
	resp, err = f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	req = jsonRequest(t, http.MethodPost, "/notifications/read-all", "sup-1", nil)
	resp, err = f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req = jsonRequest(t, http.MethodGet, "/notifications/unread-count", "sup-1", nil)
	resp, err = f.app.Test(req)
	require.NoError(t, err)

	body = decodeBody[map[string]any](t, resp)
	assert.InDelta(t, 0, body["unread"], 0)
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	f := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
