package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"regnify/internal/domain"
	"regnify/internal/service"
)

// MockUserService is a mock implementation of service.UserService.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Create(ctx context.Context, input service.CreateUserInput, actor service.Actor) (*domain.User, error) {
	args := m.Called(ctx, input, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context, offset, limit int) ([]domain.User, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.User), args.Int(1), args.Error(2)
}

func (m *MockUserService) Update(ctx context.Context, id uuid.UUID, input service.UpdateUserInput, actor service.Actor) (*domain.User, error) {
	args := m.Called(ctx, id, input, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, id uuid.UUID, actor service.Actor) error {
	args := m.Called(ctx, id, actor)
	return args.Error(0)
}

func (m *MockUserService) ToggleStatus(ctx context.Context, id uuid.UUID, actor service.Actor) (*domain.User, error) {
	args := m.Called(ctx, id, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) ChangeRole(ctx context.Context, id uuid.UUID, role domain.UserRole, actor service.Actor) (*domain.User, error) {
	args := m.Called(ctx, id, role, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) ResetPassword(ctx context.Context, id uuid.UUID, password string, actor service.Actor) error {
	args := m.Called(ctx, id, password, actor)
	return args.Error(0)
}

func (m *MockUserService) Unlock(ctx context.Context, id uuid.UUID, actor service.Actor) error {
	args := m.Called(ctx, id, actor)
	return args.Error(0)
}

func (m *MockUserService) Search(ctx context.Context, query string) ([]domain.User, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserService) Active(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserService) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserService) ActiveCount(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
