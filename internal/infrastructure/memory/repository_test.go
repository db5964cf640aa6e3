package memory

import (
	"context"
	"testing"

	"aid-portal/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicationRepository_CreateAndGet(t *testing.T) {
	repo := NewApplicationRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, domain.Application{ID: "TRK-1", Status: domain.StatusNewSubmission, Version: 1}))
	assert.ErrorIs(t, repo.Create(ctx, domain.Application{ID: "TRK-1"}), domain.ErrConflict)
	assert.ErrorIs(t, repo.Create(ctx, domain.Application{}), domain.ErrInvalidInput)

	got, err := repo.GetByID(ctx, "TRK-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNewSubmission, got.Status)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApplicationRepository_UpdateChecksVersion(t *testing.T) {
	repo := NewApplicationRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, domain.Application{ID: "TRK-1", Status: domain.StatusNewSubmission, Version: 1}))

	err := repo.Update(ctx, domain.Application{ID: "TRK-1", Status: domain.StatusUnderReview, Version: 2}, 1)
	require.NoError(t, err)

	err = repo.Update(ctx, domain.Application{ID: "TRK-1", Status: domain.StatusRejected, Version: 2}, 1)
	assert.ErrorIs(t, err, domain.ErrConflict)

	err = repo.Update(ctx, domain.Application{ID: "nope"}, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := repo.GetByID(ctx, "TRK-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnderReview, got.Status)
}

func TestApplicationRepository_ReturnsCopies(t *testing.T) {
	repo := NewApplicationRepository()
	ctx := context.Background()
	history := []domain.HistoryEntry{{Action: domain.ActionApprove}}
	require.NoError(t, repo.Create(ctx, domain.Application{ID: "TRK-1", History: history}))

	history[0].Action = domain.ActionReject
	got, err := repo.GetByID(ctx, "TRK-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ActionApprove, got.History[0].Action)

	got.History[0].Action = domain.ActionReject
	again, _ := repo.GetByID(ctx, "TRK-1")
	assert.Equal(t, domain.ActionApprove, again.History[0].Action)
}

func TestApplicationRepository_ListByStatus(t *testing.T) {
	repo := NewApplicationRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, domain.Application{ID: "TRK-2", Status: domain.StatusNewSubmission}))
	require.NoError(t, repo.Create(ctx, domain.Application{ID: "TRK-1", Status: domain.StatusNewSubmission}))
	require.NoError(t, repo.Create(ctx, domain.Application{ID: "TRK-3", Status: domain.StatusApproved}))

	got, err := repo.ListByStatus(ctx, domain.StatusNewSubmission)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "TRK-1", got[0].ID)
	assert.Equal(t, "TRK-2", got[1].ID)

	none, err := repo.ListByStatus(ctx, domain.StatusPending)
	require.NoError(t, err)
	assert.Empty(t, none)
}
