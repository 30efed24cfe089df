package refresh_test

import (
	"context"
	"testing"

	"github.com/rpggio/tracespace/internal/domain/refresh"
	"github.com/rpggio/tracespace/internal/repository"
	"github.com/rpggio/tracespace/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRefreshService_RecordFillsDefaults(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.RefreshRepository{}
	repo.On("Log", ctx, mock.MatchedBy(func(e *refresh.Entry) bool {
		return e.ID != "" && !e.CreatedAt.IsZero() && e.Outcome == refresh.OutcomeApplied
	})).Return(nil)

	svc := refresh.NewService(repo, nil)
	entry := &refresh.Entry{Seq: 1, Endpoint: "http://localhost:5000/api/latest", Outcome: refresh.OutcomeApplied, OrganismCount: 12}
	require.NoError(t, svc.Record(ctx, entry))
	require.NotEmpty(t, entry.ID)
	repo.AssertExpectations(t)
}

func TestRefreshService_RecordValidation(t *testing.T) {
	ctx := context.Background()
	svc := refresh.NewService(&mocks.RefreshRepository{}, nil)

	require.ErrorIs(t, svc.Record(ctx, nil), refresh.ErrInvalidInput)
	require.ErrorIs(t, svc.Record(ctx, &refresh.Entry{Endpoint: "x"}), refresh.ErrInvalidInput)
	require.ErrorIs(t, svc.Remember(ctx, "x", nil), refresh.ErrInvalidInput)
}

func TestRefreshService_RecentDefaultsLimit(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.RefreshRepository{}
	repo.On("List", ctx, refresh.ListOptions{Limit: refresh.DefaultListLimit}).Return([]refresh.Entry{{Seq: 3}}, nil)

	svc := refresh.NewService(repo, nil)
	entries, err := svc.Recent(ctx, refresh.ListOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestRefreshService_LastGoodNotFound(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.RefreshRepository{}
	repo.On("LastGood", ctx, "file:///tmp/latest.json").Return((*refresh.CachedSnapshot)(nil), repository.ErrNotFound)

	svc := refresh.NewService(repo, nil)
	_, err := svc.LastGood(ctx, "file:///tmp/latest.json")
	require.ErrorIs(t, err, refresh.ErrNoCachedSnapshot)
}
