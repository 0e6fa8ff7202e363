package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"regnify/internal/service"
)

// MockAuthService is a mock implementation of service.AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, input service.LoginInput, actor service.Actor) (*service.TokenPair, error) {
	args := m.Called(ctx, input, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TokenPair), args.Error(1)
}

func (m *MockAuthService) RefreshToken(ctx context.Context, refreshToken string) (*service.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TokenPair), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, claims *service.Claims, actor service.Actor) error {
	args := m.Called(ctx, claims, actor)
	return args.Error(0)
}

func (m *MockAuthService) ValidateToken(ctx context.Context, tokenString string) (*service.Claims, error) {
	args := m.Called(ctx, tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}
