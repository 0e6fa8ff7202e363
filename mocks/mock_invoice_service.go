package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"regnify/internal/domain"
	"regnify/internal/service"
)

// MockInvoiceService is a mock implementation of service.InvoiceService.
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) Upload(ctx context.Context, input *service.UploadInvoiceInput, actor service.Actor) (*service.InvoiceResult, error) {
	args := m.Called(ctx, input, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.InvoiceResult), args.Error(1)
}

func (m *MockInvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) List(ctx context.Context, filter domain.InvoiceFilter, offset, limit int) ([]domain.Invoice, int, error) {
	args := m.Called(ctx, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Invoice), args.Int(1), args.Error(2)
}

func (m *MockInvoiceService) Search(ctx context.Context, query string, limit int) ([]domain.Invoice, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) Update(ctx context.Context, id uuid.UUID, input *service.UpdateInvoiceInput, actor service.Actor) (*service.InvoiceResult, error) {
	args := m.Called(ctx, id, input, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.InvoiceResult), args.Error(1)
}

func (m *MockInvoiceService) Delete(ctx context.Context, id uuid.UUID, actor service.Actor) error {
	args := m.Called(ctx, id, actor)
	return args.Error(0)
}

func (m *MockInvoiceService) Process(ctx context.Context, id uuid.UUID, actor service.Actor) (*domain.Invoice, error) {
	args := m.Called(ctx, id, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) Revalidate(ctx context.Context, id uuid.UUID) (*service.InvoiceResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.InvoiceResult), args.Error(1)
}

func (m *MockInvoiceService) GetDownloadURL(ctx context.Context, id uuid.UUID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockInvoiceService) AuditTrail(ctx context.Context, id uuid.UUID, offset, limit int) ([]domain.AuditLog, int, error) {
	args := m.Called(ctx, id, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.AuditLog), args.Int(1), args.Error(2)
}
