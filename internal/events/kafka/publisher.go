package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"regnify/internal/config"
	"regnify/internal/port"
)

type publisher struct {
	client *kgo.Client
	topic  string
}

// NewPublisher connects to the configured brokers and returns a publisher that
// writes invoice events to cfg.Topic, keyed by invoice number.
func NewPublisher(ctx context.Context, cfg *config.KafkaConfig) (port.EventPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.ProducerBatchMaxBytes(1<<20),
		kgo.RecordDeliveryTimeout(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("creating kafka client: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("kafka ping failed: %w", err)
	}
	return &publisher{client: client, topic: cfg.Topic}, nil
}

func (p *publisher) Publish(ctx context.Context, event port.InvoiceEvent) error {
	record, err := newRecord(p.topic, event)
	if err != nil {
		return err
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("kafka.Publish: %w", err)
	}
	return nil
}

// newRecord keys the record by invoice number so events for one invoice stay ordered.
func newRecord(topic string, event port.InvoiceEvent) (*kgo.Record, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("kafka.Publish: marshaling event: %w", err)
	}
	return &kgo.Record{
		Topic:     topic,
		Key:       []byte(event.InvoiceNumber),
		Value:     value,
		Timestamp: event.OccurredAt,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}, nil
}

func (p *publisher) Close() error {
	p.client.Close()
	return nil
}
