package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eddy-neller/shop-api-sub001/internal/core/domain"
	"github.com/eddy-neller/shop-api-sub001/internal/core/port"
	"github.com/eddy-neller/shop-api-sub001/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka. Each domain
// event becomes one message on the topic derived from its event name,
// keyed by aggregate id so per-user ordering survives partitioning.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type eventEnvelope struct {
	EventID     string            `json:"event_id"`
	EventType   string            `json:"event_type"`
	AggregateID string            `json:"aggregate_id"`
	Timestamp   time.Time         `json:"timestamp"`
	Version     string            `json:"version"`
	Payload     any               `json:"payload"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Publish forwards the drained events in order. It stops at the first
// failure so the caller can log how much of the batch went out.
func (p *EventPublisher) Publish(ctx context.Context, events ...domain.DomainEvent) error {
	for _, event := range events {
		if err := p.publish(ctx, event); err != nil {
			return fmt.Errorf("publish %s: %w", event.EventName(), err)
		}
	}
	return nil
}

func (p *EventPublisher) publish(ctx context.Context, event domain.DomainEvent) error {
	ts := event.OccurredOn()
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	envelope := eventEnvelope{
		EventID:     uuid.NewString(),
		EventType:   event.EventName(),
		AggregateID: event.AggregateID(),
		Timestamp:   ts.UTC(),
		Version:     schemaVersion,
		Payload:     event,
		Metadata: map[string]string{
			"service":     p.appCfg.Name,
			"environment": p.appCfg.Env,
		},
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(event.EventName()),
		Key:   sarama.StringEncoder(event.AggregateID()),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ port.EventPublisher = (*EventPublisher)(nil)
