package mocks

import (
	"context"

	"github.com/rpggio/tracespace/internal/domain/refresh"
	"github.com/stretchr/testify/mock"
)

// RefreshRepository is a mock for refresh.Repository.
type RefreshRepository struct {
	mock.Mock
}

func (m *RefreshRepository) Log(ctx context.Context, entry *refresh.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *RefreshRepository) List(ctx context.Context, opts refresh.ListOptions) ([]refresh.Entry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]refresh.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RefreshRepository) SaveLastGood(ctx context.Context, snap *refresh.CachedSnapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

func (m *RefreshRepository) LastGood(ctx context.Context, endpoint string) (*refresh.CachedSnapshot, error) {
	args := m.Called(ctx, endpoint)
	if snap, ok := args.Get(0).(*refresh.CachedSnapshot); ok {
		return snap, args.Error(1)
	}
	return nil, args.Error(1)
}
