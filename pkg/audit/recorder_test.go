package audit

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/formforge/formforge/pkg/mocks"
	"github.com/formforge/formforge/pkg/models"
	"github.com/formforge/formforge/pkg/persistence/memory"
)

func TestRecorder_StampsEntry(t *testing.T) {
	t.Parallel()

	repo := memory.NewAuditRepository()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := NewRecorder(repo, logger)

	recorder.Record(t.Context(), &models.AuditLogEntry{
		ActorID:     "sup-1",
		Action:      "verify_form",
		ResourceRef: "sub-1",
		Status:      models.AuditStatusSuccess,
	})

	entries, err := repo.List(t.Context(), "sub-1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotEmpty(t, entries[0].ID)
	assert.False(t, entries[0].Timestamp.IsZero())
}

func TestRecorder_KeepsCallerStamps(t *testing.T) {
	t.Parallel()

	repo := memory.NewAuditRepository()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := NewRecorder(repo, logger)

	stamp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	recorder.Record(t.Context(), &models.AuditLogEntry{
		ID:          "fixed-id",
		Timestamp:   stamp,
		ResourceRef: "sub-1",
		Action:      "submit_form",
		Status:      models.AuditStatusSuccess,
	})

	entries, err := repo.List(t.Context(), "sub-1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "fixed-id", entries[0].ID)
	assert.Equal(t, stamp, entries[0].Timestamp)
}

func TestRecorder_SwallowsSinkFailure(t *testing.T) {
	t.Parallel()

	repo := &mocks.MockAuditRepository{}
	repo.On("Append", mock.Anything, mock.Anything).Return(errors.New("sink down"))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := NewRecorder(repo, logger)

	// Must not panic or surface the error.
	recorder.Record(t.Context(), &models.AuditLogEntry{
		Action:      "submit_form",
		ResourceRef: "sub-1",
		Status:      models.AuditStatusFailure,
	})

	repo.AssertExpectations(t)
}
