package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/eddy-neller/shop-api-sub001/internal/core/domain"
	"github.com/eddy-neller/shop-api-sub001/internal/core/port"
)

// persistAndPublish saves the aggregate and forwards its drained events.
// Publishing is best effort once the state change is durable; failures are
// logged and do not fail the operation.
func persistAndPublish(ctx context.Context, users port.UserRepository, publisher port.EventPublisher, log *zap.Logger, user *domain.User) error {
	if err := users.Save(ctx, user); err != nil {
		return err
	}

	events := user.DrainEvents()
	if len(events) == 0 || publisher == nil {
		return nil
	}

	if err := publisher.Publish(ctx, events...); err != nil && log != nil {
		log.Warn("failed to publish domain events",
			zap.String("user_id", user.ID().String()),
			zap.Int("event_count", len(events)),
			zap.Error(err),
		)
	}

	return nil
}
