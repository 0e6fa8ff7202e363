package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"regnify/internal/domain"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendWelcomeEmail(ctx context.Context, toEmail, toName, username string) error {
	args := m.Called(ctx, toEmail, toName, username)
	return args.Error(0)
}

func (m *MockEmailSender) SendInvoiceProcessedEmail(ctx context.Context, toEmail string, inv *domain.Invoice) error {
	args := m.Called(ctx, toEmail, inv)
	return args.Error(0)
}

func (m *MockEmailSender) SendInvoiceValidationFailedEmail(ctx context.Context, toEmail string, inv *domain.Invoice) error {
	args := m.Called(ctx, toEmail, inv)
	return args.Error(0)
}

func (m *MockEmailSender) SendAccountStatusEmail(ctx context.Context, toEmail, toName string, status domain.UserStatus) error {
	args := m.Called(ctx, toEmail, toName, status)
	return args.Error(0)
}

func (m *MockEmailSender) SendRoleChangeEmail(ctx context.Context, toEmail, toName string, role domain.UserRole) error {
	args := m.Called(ctx, toEmail, toName, role)
	return args.Error(0)
}

func (m *MockEmailSender) SendAccountUnlockedEmail(ctx context.Context, toEmail, toName string) error {
	args := m.Called(ctx, toEmail, toName)
	return args.Error(0)
}
