package port

import (
	"context"

	"regnify/internal/domain"
)

// EmailSender defines the contract for sending emails.
type EmailSender interface {
	SendWelcomeEmail(ctx context.Context, toEmail, toName, username string) error
	SendInvoiceProcessedEmail(ctx context.Context, toEmail string, inv *domain.Invoice) error
	SendInvoiceValidationFailedEmail(ctx context.Context, toEmail string, inv *domain.Invoice) error
	SendAccountStatusEmail(ctx context.Context, toEmail, toName string, status domain.UserStatus) error
	SendRoleChangeEmail(ctx context.Context, toEmail, toName string, role domain.UserRole) error
	SendAccountUnlockedEmail(ctx context.Context, toEmail, toName string) error
}
