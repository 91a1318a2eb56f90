package services

import (
	"context"

	"go.uber.org/zap"

	"storefront/internal/logger"
	"storefront/pkg/rabbitmq"
)

const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
	EventOrderCreated   = "order.created"
)

// EventPublisher publishes domain events. *rabbitmq.Client implements it.
type EventPublisher interface {
	PublishEvent(event rabbitmq.Event) error
}

// publishEvent is best effort: the change is already committed, so a broker
// failure is logged and swallowed.
func publishEvent(ctx context.Context, log *zap.Logger, publisher EventPublisher, eventType string, payload any) {
	if publisher == nil {
		return
	}
	event := rabbitmq.NewEvent(eventType, payload)
	if err := publisher.PublishEvent(event); err != nil {
		logger.For(ctx, log).Warn("Failed to publish event",
			zap.String("event_type", eventType),
			zap.String("event_id", event.ID),
			zap.Error(err))
	}
}
