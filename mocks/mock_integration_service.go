package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"regnify/internal/domain"
	"regnify/internal/service"
)

// MockIntegrationService is a mock implementation of service.IntegrationService.
type MockIntegrationService struct {
	mock.Mock
}

func (m *MockIntegrationService) config(args mock.Arguments) (*domain.IntegrationConfig, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IntegrationConfig), args.Error(1)
}

func (m *MockIntegrationService) List(ctx context.Context) ([]domain.IntegrationConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.IntegrationConfig), args.Error(1)
}

func (m *MockIntegrationService) GetByID(ctx context.Context, id uuid.UUID) (*domain.IntegrationConfig, error) {
	return m.config(m.Called(ctx, id))
}

func (m *MockIntegrationService) GetByProvider(ctx context.Context, name string) (*domain.IntegrationConfig, error) {
	return m.config(m.Called(ctx, name))
}

func (m *MockIntegrationService) Create(ctx context.Context, input service.IntegrationInput, actor service.Actor) (*domain.IntegrationConfig, error) {
	return m.config(m.Called(ctx, input, actor))
}

func (m *MockIntegrationService) Update(ctx context.Context, id uuid.UUID, input service.IntegrationInput, actor service.Actor) (*domain.IntegrationConfig, error) {
	return m.config(m.Called(ctx, id, input, actor))
}

func (m *MockIntegrationService) Delete(ctx context.Context, id uuid.UUID, actor service.Actor) error {
	args := m.Called(ctx, id, actor)
	return args.Error(0)
}

func (m *MockIntegrationService) ToggleStatus(ctx context.Context, id uuid.UUID, actor service.Actor) (*domain.IntegrationConfig, error) {
	return m.config(m.Called(ctx, id, actor))
}

func (m *MockIntegrationService) GenerateCredentials(ctx context.Context, id uuid.UUID, actor service.Actor) (*service.GeneratedCredentials, error) {
	args := m.Called(ctx, id, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.GeneratedCredentials), args.Error(1)
}

func (m *MockIntegrationService) TestConnection(ctx context.Context, id uuid.UUID, actor service.Actor) (string, error) {
	args := m.Called(ctx, id, actor)
	return args.String(0), args.Error(1)
}

func (m *MockIntegrationService) FetchStatus(ctx context.Context, id uuid.UUID, actor service.Actor) (string, error) {
	args := m.Called(ctx, id, actor)
	return args.String(0), args.Error(1)
}

func (m *MockIntegrationService) SendScheduled(ctx context.Context, cfg domain.IntegrationConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}
