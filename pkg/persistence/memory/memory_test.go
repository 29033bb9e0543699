package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formforge/formforge/pkg/models"
	"github.com/formforge/formforge/pkg/persistence"
)

func TestSubmissionRepository_SaveAndGet(t *testing.T) {
	t.Parallel()

	repo := NewSubmissionRepository()

	submission := &models.FormSubmission{
		ID:          "sub-1",
		Title:       "Shift handover",
		Department:  "assembly",
		Status:      "Draft",
		SubmittedBy: "op-1",
		Data:        map[string]any{"shift": "night"},
		CreatedAt:   time.Now().UTC(),
	}

	require.NoError(t, repo.Save(t.Context(), submission))
	assert.Equal(t, int64(1), submission.Version)

	loaded, err := repo.GetByID(t.Context(), "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "Shift handover", loaded.Title)
	assert.Equal(t, int64(1), loaded.Version)

	// The stored copy is isolated from caller mutations.
	loaded.Title = "changed"

	again, err := repo.GetByID(t.Context(), "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "Shift handover", again.Title)
}

func TestSubmissionRepository_GetMissing(t *testing.T) {
	t.Parallel()

	repo := NewSubmissionRepository()

	_, err := repo.GetByID(t.Context(), "nope")
	require.Error(t, err)
	assert.True(t, persistence.IsSubmissionNotFound(err))
}

func TestSubmissionRepository_VersionConflict(t *testing.T) {
	t.Parallel()

	repo := NewSubmissionRepository()

	submission := &models.FormSubmission{ID: "sub-1", Status: "Draft"}
	require.NoError(t, repo.Save(t.Context(), submission))

	first, err := repo.GetByID(t.Context(), "sub-1")
	require.NoError(t, err)

	second, err := repo.GetByID(t.Context(), "sub-1")
	require.NoError(t, err)

	first.Status = "Submitted"
	require.NoError(t, repo.Save(t.Context(), first))

	// The second loader still holds the old version.
	second.Status = "Rejected"
	err = repo.Save(t.Context(), second)
	require.Error(t, err)
	assert.True(t, persistence.IsVersionConflict(err))

	current, err := repo.GetByID(t.Context(), "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "Submitted", current.Status)
}

func TestSubmissionRepository_ListFiltersAndPages(t *testing.T) {
	t.Parallel()

	repo := NewSubmissionRepository()
	base := time.Now().UTC()

	seed := []*models.FormSubmission{
		{ID: "a", Department: "assembly", Status: "Draft", CreatedAt: base},
		{ID: "b", Department: "assembly", Status: "Submitted", CreatedAt: base.Add(time.Minute)},
		{ID: "c", Department: "packaging", Status: "Draft", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, s := range seed {
		require.NoError(t, repo.Save(t.Context(), s))
	}

	all, err := repo.List(t.Context(), persistence.ListSubmissionsOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Newest first.
	assert.Equal(t, "c", all[0].ID)

	assembly, err := repo.List(t.Context(), persistence.ListSubmissionsOptions{Department: "assembly"})
	require.NoError(t, err)
	assert.Len(t, assembly, 2)

	drafts, err := repo.List(t.Context(), persistence.ListSubmissionsOptions{Status: "Draft"})
	require.NoError(t, err)
	assert.Len(t, drafts, 2)

	paged, err := repo.List(t.Context(), persistence.ListSubmissionsOptions{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "b", paged[0].ID)

	beyond, err := repo.List(t.Context(), persistence.ListSubmissionsOptions{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func TestUserRepository_FindActiveSorted(t *testing.T) {
	t.Parallel()

	repo := NewUserRepository()
	base := time.Now().UTC()

	users := []*models.User{
		{ID: "late", Role: models.RoleSupervisor, Department: "assembly", Active: true, CreatedAt: base.Add(time.Hour)},
		{ID: "early", Role: models.RoleSupervisor, Department: "assembly", Active: true, CreatedAt: base},
		{ID: "inactive", Role: models.RoleSupervisor, Department: "assembly", Active: false, CreatedAt: base},
		{ID: "other-dept", Role: models.RoleSupervisor, Department: "packaging", Active: true, CreatedAt: base},
		{ID: "other-role", Role: models.RoleOperator, Department: "assembly", Active: true, CreatedAt: base},
	}
	for _, u := range users {
		require.NoError(t, repo.Save(t.Context(), u))
	}

	matched, err := repo.FindActive(t.Context(), []models.Role{models.RoleSupervisor}, "assembly")
	require.NoError(t, err)
	require.Len(t, matched, 2)
	assert.Equal(t, "early", matched[0].ID)
	assert.Equal(t, "late", matched[1].ID)
}

func TestAuditRepository_AppendOnly(t *testing.T) {
	t.Parallel()

	repo := NewAuditRepository()

	for i, ref := range []string{"sub-1", "sub-1", "sub-2"} {
		err := repo.Append(t.Context(), &models.AuditLogEntry{
			ID:          string(rune('a' + i)),
			ResourceRef: ref,
			Action:      "submit_form",
			Status:      models.AuditStatusSuccess,
		})
		require.NoError(t, err)
	}

	entries, err := repo.List(t.Context(), "sub-1", 0)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	limited, err := repo.List(t.Context(), "sub-1", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)

	all, err := repo.List(t.Context(), "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestNotificationRepository_Mailbox(t *testing.T) {
	t.Parallel()

	repo := NewNotificationRepository()
	base := time.Now().UTC()

	for i, id := range []string{"n1", "n2", "n3"} {
		err := repo.Add(t.Context(), &models.Notification{
			ID:          id,
			RecipientID: "sup-1",
			Type:        models.NotificationTypeWorkflow,
			Title:       "Pending verification",
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	listed, err := repo.ListByRecipient(t.Context(), "sup-1", persistence.ListNotificationsOptions{})
	require.NoError(t, err)
	require.Len(t, listed, 3)
	// Newest first.
	assert.Equal(t, "n3", listed[0].ID)

	unread, err := repo.UnreadCount(t.Context(), "sup-1")
	require.NoError(t, err)
	assert.Equal(t, 3, unread)

	marked, err := repo.MarkRead(t.Context(), "sup-1", "n2")
	require.NoError(t, err)
	assert.True(t, marked)

	marked, err = repo.MarkRead(t.Context(), "sup-1", "missing")
	require.NoError(t, err)
	assert.False(t, marked)

	unreadOnly, err := repo.ListByRecipient(t.Context(), "sup-1", persistence.ListNotificationsOptions{UnreadOnly: true})
	require.NoError(t, err)
	assert.Len(t, unreadOnly, 2)

	count, err := repo.MarkAllRead(t.Context(), "sup-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	unread, err = repo.UnreadCount(t.Context(), "sup-1")
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestNotificationRepository_DeleteOlderThan(t *testing.T) {
	t.Parallel()

	repo := NewNotificationRepository()
	now := time.Now().UTC()

	old := &models.Notification{ID: "old", RecipientID: "sup-1", CreatedAt: now.Add(-48 * time.Hour)}
	fresh := &models.Notification{ID: "fresh", RecipientID: "sup-1", CreatedAt: now}
	other := &models.Notification{ID: "other-old", RecipientID: "adm-1", CreatedAt: now.Add(-72 * time.Hour)}

	for _, n := range []*models.Notification{old, fresh, other} {
		require.NoError(t, repo.Add(t.Context(), n))
	}

	removed, err := repo.DeleteOlderThan(t.Context(), now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	remaining, err := repo.ListByRecipient(t.Context(), "sup-1", persistence.ListNotificationsOptions{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "fresh", remaining[0].ID)

	empty, err := repo.ListByRecipient(t.Context(), "adm-1", persistence.ListNotificationsOptions{})
	require.NoError(t, err)
	assert.Empty(t, empty)
}
