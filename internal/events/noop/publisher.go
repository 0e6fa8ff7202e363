package noop

import (
	"context"
	"log"

	"regnify/internal/port"
)

type publisher struct{}

// NewPublisher returns an EventPublisher that only logs events.
func NewPublisher() port.EventPublisher {
	return &publisher{}
}

func (p *publisher) Publish(_ context.Context, event port.InvoiceEvent) error {
	log.Printf("[NOOP EVENT] %s invoice=%s status=%s score=%d", event.Type, event.InvoiceNumber, event.Status, event.ValidationScore)
	return nil
}

func (p *publisher) Close() error { return nil }
