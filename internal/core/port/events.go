package port

import (
	"context"

	"github.com/eddy-neller/shop-api-sub001/internal/core/domain"
)

// EventPublisher forwards drained domain events to the message bus. A nil
// error means every event was accepted for delivery.
type EventPublisher interface {
	Publish(ctx context.Context, events ...domain.DomainEvent) error
}
