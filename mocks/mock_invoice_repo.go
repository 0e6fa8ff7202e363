package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"regnify/internal/domain"
)

// MockInvoiceRepo is a mock implementation of port.InvoiceRepository.
type MockInvoiceRepo struct {
	mock.Mock
}

func (m *MockInvoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepo) ExistsByNumber(ctx context.Context, invoiceNumber string) (bool, error) {
	args := m.Called(ctx, invoiceNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepo) List(ctx context.Context, filter domain.InvoiceFilter, offset, limit int) ([]domain.Invoice, int, error) {
	args := m.Called(ctx, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Invoice), args.Int(1), args.Error(2)
}

func (m *MockInvoiceRepo) Search(ctx context.Context, query string, limit int) ([]domain.Invoice, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepo) Update(ctx context.Context, inv *domain.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepo) SoftDelete(ctx context.Context, id uuid.UUID, deletedBy string, at time.Time) error {
	args := m.Called(ctx, id, deletedBy, at)
	return args.Error(0)
}

func (m *MockInvoiceRepo) UpdateProviderResponse(ctx context.Context, id uuid.UUID, resp domain.ProviderResponse) error {
	args := m.Called(ctx, id, resp)
	return args.Error(0)
}
