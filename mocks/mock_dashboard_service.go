package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"regnify/internal/domain"
)

// MockDashboardService is a mock implementation of service.DashboardService.
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) GetStats(ctx context.Context) (*domain.DashboardStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DashboardStats), args.Error(1)
}

func (m *MockDashboardService) GetQuickStats(ctx context.Context) (*domain.QuickStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuickStats), args.Error(1)
}
