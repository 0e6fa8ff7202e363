package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regnify/internal/config"
	"regnify/internal/port"
)

func TestNewRecord(t *testing.T) {
	at := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	event := port.InvoiceEvent{
		Type:          port.EventInvoiceValidated,
		InvoiceID:     uuid.New(),
		InvoiceNumber: "1234567890",
		Status:        "ERROR",
		Actor:         "alice",
		OccurredAt:    at,
	}

	rec, err := newRecord("invoice-events", event)
	require.NoError(t, err)

	assert.Equal(t, "invoice-events", rec.Topic)
	assert.Equal(t, []byte("1234567890"), rec.Key)
	assert.Equal(t, at, rec.Timestamp)
	require.Len(t, rec.Headers, 1)
	assert.Equal(t, "event_type", rec.Headers[0].Key)
	assert.Equal(t, "invoice.validated", string(rec.Headers[0].Value))

	var decoded port.InvoiceEvent
	require.NoError(t, json.Unmarshal(rec.Value, &decoded))
	assert.Equal(t, event.InvoiceID, decoded.InvoiceID)
	assert.Equal(t, "alice", decoded.Actor)
}

func TestNewPublisher_RequiresBrokers(t *testing.T) {
	_, err := NewPublisher(context.Background(), &config.KafkaConfig{Topic: "invoice-events"})
	assert.Error(t, err)
}
