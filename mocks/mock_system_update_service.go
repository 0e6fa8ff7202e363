package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"regnify/internal/domain"
	"regnify/internal/service"
)

// MockSystemUpdateService is a mock implementation of service.SystemUpdateService.
type MockSystemUpdateService struct {
	mock.Mock
}

func (m *MockSystemUpdateService) list(args mock.Arguments) ([]domain.SystemUpdate, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SystemUpdate), args.Error(1)
}

func (m *MockSystemUpdateService) update(args mock.Arguments) (*domain.SystemUpdate, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SystemUpdate), args.Error(1)
}

func (m *MockSystemUpdateService) List(ctx context.Context) ([]domain.SystemUpdate, error) {
	return m.list(m.Called(ctx))
}

func (m *MockSystemUpdateService) ListByType(ctx context.Context, t domain.UpdateType) ([]domain.SystemUpdate, error) {
	return m.list(m.Called(ctx, t))
}

func (m *MockSystemUpdateService) ListByDateRange(ctx context.Context, from, to string) ([]domain.SystemUpdate, error) {
	return m.list(m.Called(ctx, from, to))
}

func (m *MockSystemUpdateService) ListByVersion(ctx context.Context, version string) ([]domain.SystemUpdate, error) {
	return m.list(m.Called(ctx, version))
}

func (m *MockSystemUpdateService) Create(ctx context.Context, input service.SystemUpdateInput, actor service.Actor) (*domain.SystemUpdate, error) {
	return m.update(m.Called(ctx, input, actor))
}

func (m *MockSystemUpdateService) Update(ctx context.Context, id uuid.UUID, input service.SystemUpdateInput, actor service.Actor) (*domain.SystemUpdate, error) {
	return m.update(m.Called(ctx, id, input, actor))
}

func (m *MockSystemUpdateService) Delete(ctx context.Context, id uuid.UUID, actor service.Actor) error {
	args := m.Called(ctx, id, actor)
	return args.Error(0)
}
