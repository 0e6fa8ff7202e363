package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"regnify/internal/domain"
)

// MockSystemUpdateRepo is a mock implementation of port.SystemUpdateRepository.
type MockSystemUpdateRepo struct {
	mock.Mock
}

func (m *MockSystemUpdateRepo) Create(ctx context.Context, u *domain.SystemUpdate) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockSystemUpdateRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.SystemUpdate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SystemUpdate), args.Error(1)
}

func (m *MockSystemUpdateRepo) list(args mock.Arguments) ([]domain.SystemUpdate, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SystemUpdate), args.Error(1)
}

func (m *MockSystemUpdateRepo) ListActive(ctx context.Context) ([]domain.SystemUpdate, error) {
	return m.list(m.Called(ctx))
}

func (m *MockSystemUpdateRepo) ListByType(ctx context.Context, t domain.UpdateType) ([]domain.SystemUpdate, error) {
	return m.list(m.Called(ctx, t))
}

func (m *MockSystemUpdateRepo) ListByDateRange(ctx context.Context, from, to time.Time) ([]domain.SystemUpdate, error) {
	return m.list(m.Called(ctx, from, to))
}

func (m *MockSystemUpdateRepo) ListByVersion(ctx context.Context, version string) ([]domain.SystemUpdate, error) {
	return m.list(m.Called(ctx, version))
}

func (m *MockSystemUpdateRepo) Update(ctx context.Context, u *domain.SystemUpdate) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}
