package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"regnify/internal/domain"
)

// MockAuditRepo is a mock implementation of port.AuditRepository.
type MockAuditRepo struct {
	mock.Mock
}

func (m *MockAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepo) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID, offset, limit int) ([]domain.AuditLog, int, error) {
	args := m.Called(ctx, entityType, entityID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.AuditLog), args.Int(1), args.Error(2)
}
