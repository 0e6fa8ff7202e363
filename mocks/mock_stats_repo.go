package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"regnify/internal/domain"
	"regnify/internal/port"
)

// MockStatsRepo is a mock implementation of port.StatsRepository.
type MockStatsRepo struct {
	mock.Mock
}

func (m *MockStatsRepo) GetInvoiceCounts(ctx context.Context, since time.Time) (*port.InvoiceCounts, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.InvoiceCounts), args.Error(1)
}

func (m *MockStatsRepo) GetQuickCounts(ctx context.Context, dayStart time.Time) (*domain.InvoiceQuickCounts, error) {
	args := m.Called(ctx, dayStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InvoiceQuickCounts), args.Error(1)
}
