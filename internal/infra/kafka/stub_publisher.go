package kafka

import (
	"context"

	"go.uber.org/zap"

	"github.com/eddy-neller/shop-api-sub001/internal/core/domain"
	"github.com/eddy-neller/shop-api-sub001/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for
// development environments without a broker.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

// Publish logs each event at info level.
func (p *StubPublisher) Publish(_ context.Context, events ...domain.DomainEvent) error {
	for _, event := range events {
		p.logger.Info("Stub event published",
			zap.String("event_type", event.EventName()),
			zap.String("aggregate_id", event.AggregateID()),
			zap.Time("occurred_on", event.OccurredOn()),
		)
	}
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
