package noop

import (
	"context"
	"log"

	"regnify/internal/domain"
	"regnify/internal/port"
)

type noopSender struct {
	frontendURL string
}

// NewNoopSender creates a no-op EmailSender that logs what would have been sent.
func NewNoopSender(frontendURL string) port.EmailSender {
	return &noopSender{frontendURL: frontendURL}
}

func (s *noopSender) SendWelcomeEmail(_ context.Context, toEmail, toName, username string) error {
	log.Printf("[NOOP EMAIL] Welcome email for %s (%s), username %s: %s/login", toName, toEmail, username, s.frontendURL)
	return nil
}

func (s *noopSender) SendInvoiceProcessedEmail(_ context.Context, toEmail string, inv *domain.Invoice) error {
	log.Printf("[NOOP EMAIL] Invoice %s processed (status=%s, score=%d) to %s: %s/invoices/%s",
		inv.InvoiceNumber, inv.Status, inv.ValidationScore, toEmail, s.frontendURL, inv.ID)
	return nil
}

func (s *noopSender) SendInvoiceValidationFailedEmail(_ context.Context, toEmail string, inv *domain.Invoice) error {
	log.Printf("[NOOP EMAIL] Invoice %s failed validation to %s: %s",
		inv.InvoiceNumber, toEmail, inv.ValidationErrors)
	return nil
}

func (s *noopSender) SendAccountStatusEmail(_ context.Context, toEmail, toName string, status domain.UserStatus) error {
	log.Printf("[NOOP EMAIL] Account status for %s (%s) is now %s", toName, toEmail, status)
	return nil
}

func (s *noopSender) SendRoleChangeEmail(_ context.Context, toEmail, toName string, role domain.UserRole) error {
	log.Printf("[NOOP EMAIL] Role for %s (%s) changed to %s", toName, toEmail, role)
	return nil
}

func (s *noopSender) SendAccountUnlockedEmail(_ context.Context, toEmail, toName string) error {
	log.Printf("[NOOP EMAIL] Account unlocked for %s (%s): %s/login", toName, toEmail, s.frontendURL)
	return nil
}
