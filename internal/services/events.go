package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// publishTimeout bounds how long a committed change waits on the broker.
var publishTimeout = 2 * time.Second

// EventPublisher delivers domain events after the change is committed.
type EventPublisher interface {
	Publish(ctx context.Context, channel, eventType string, payload any) error
}

// publish is best effort: the change is already committed, so a broker
// failure or stall is logged and otherwise ignored. The request's own
// cancellation does not abort it; publishTimeout does.
func publish(ctx context.Context, events EventPublisher, channel, eventType string, payload any) {
	if events == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := events.Publish(ctx, channel, eventType, payload); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}
