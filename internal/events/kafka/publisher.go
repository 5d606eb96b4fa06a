// Package kafka publishes committed ledger events to a Kafka-compatible
// broker for external indexers.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"trustledger/internal/events"
)

// Publisher produces one record per event, keyed by event type so observers
// of one kind stay ordered per partition.
type Publisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// New connects to the brokers and ensures the topic exists.
func New(ctx context.Context, brokers []string, topic string, logger *slog.Logger) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}

	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopics(ctx, 1, 1, nil, topic)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("ensure topic %q: %w", topic, err)
	}
	for _, res := range resp.Sorted() {
		if res.Err != nil && !errors.Is(res.Err, kerr.TopicAlreadyExists) {
			client.Close()
			return nil, fmt.Errorf("ensure topic %q: %w", topic, res.Err)
		}
	}

	return &Publisher{client: client, topic: topic, logger: logger}, nil
}

// Publish produces asynchronously. The mutation that generated the event has
// already committed, so a delivery failure is logged, not surfaced.
func (p *Publisher) Publish(ctx context.Context, event events.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "marshal event", "type", event.Type, "error", err)
		return
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.Type),
		Value: payload,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.ErrorContext(ctx, "produce event",
				"type", event.Type,
				"event_id", event.ID,
				"error", err,
			)
		}
	})
}

// Close flushes buffered records and releases the client.
func (p *Publisher) Close() error {
	if err := p.client.Flush(context.Background()); err != nil {
		p.client.Close()
		return fmt.Errorf("flush events: %w", err)
	}
	p.client.Close()
	return nil
}

var _ events.Publisher = (*Publisher)(nil)
