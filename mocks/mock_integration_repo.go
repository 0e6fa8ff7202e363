package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"regnify/internal/domain"
)

// MockIntegrationRepo is a mock implementation of port.IntegrationRepository.
type MockIntegrationRepo struct {
	mock.Mock
}

func (m *MockIntegrationRepo) Create(ctx context.Context, cfg *domain.IntegrationConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

func (m *MockIntegrationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.IntegrationConfig, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IntegrationConfig), args.Error(1)
}

func (m *MockIntegrationRepo) GetByProvider(ctx context.Context, name string) (*domain.IntegrationConfig, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IntegrationConfig), args.Error(1)
}

func (m *MockIntegrationRepo) List(ctx context.Context) ([]domain.IntegrationConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.IntegrationConfig), args.Error(1)
}

func (m *MockIntegrationRepo) ListScheduled(ctx context.Context) ([]domain.IntegrationConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.IntegrationConfig), args.Error(1)
}

func (m *MockIntegrationRepo) Update(ctx context.Context, cfg *domain.IntegrationConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

func (m *MockIntegrationRepo) RecordSync(ctx context.Context, id uuid.UUID, result domain.SyncResult) error {
	args := m.Called(ctx, id, result)
	return args.Error(0)
}
