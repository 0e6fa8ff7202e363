package port

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Invoice event types.
const (
	EventInvoiceValidated = "invoice.validated"
	EventInvoiceProcessed = "invoice.processed"
	EventInvoiceDeleted   = "invoice.deleted"
)

// InvoiceEvent is published after an invoice state change has been persisted.
type InvoiceEvent struct {
	Type             string    `json:"type"`
	InvoiceID        uuid.UUID `json:"invoice_id"`
	InvoiceNumber    string    `json:"invoice_number"`
	Status           string    `json:"status"`
	BusinessStatus   string    `json:"business_status"`
	ProviderResponse string    `json:"provider_response"`
	ValidationScore  int       `json:"validation_score"`
	ValidationErrors string    `json:"validation_errors,omitempty"`
	Actor            string    `json:"actor"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// EventPublisher delivers invoice events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event InvoiceEvent) error
	Close() error
}
