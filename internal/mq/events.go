package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	EventUserRegistered = "user.registered"
	EventBrandCreated   = "brand.created"
	EventBrandUpdated   = "brand.updated"
)

// TypeAttribute carries Event.Type so consumers can filter without decoding.
const TypeAttribute = "type"

// Event is the envelope written to the broker.
type Event struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// EventPublisher encodes domain events and hands them to a Backend.
type EventPublisher struct {
	backend Backend
	now     func() time.Time
}

func NewEventPublisher(backend Backend) *EventPublisher {
	return &EventPublisher{
		backend: backend,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Publish sends an event of eventType with payload to channel.
func (p *EventPublisher) Publish(ctx context.Context, channel, eventType string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", eventType, err)
	}

	data, err := json.Marshal(Event{
		Type:       eventType,
		OccurredAt: p.now(),
		Payload:    body,
	})
	if err != nil {
		return fmt.Errorf("encode %s event: %w", eventType, err)
	}

	id, err := p.backend.Publish(ctx, channel, data, map[string]string{TypeAttribute: eventType})
	if err != nil {
		return fmt.Errorf("publish %s to %s: %w", eventType, channel, err)
	}

	log.Debug().
		Str("channel", channel).
		Str("event", eventType).
		Str("message_id", id).
		Msg("event published")
	return nil
}

// DecodeEvent parses a message produced by EventPublisher.
func DecodeEvent(msg Message) (Event, error) {
	var event Event
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		return Event{}, fmt.Errorf("decode event %s: %w", msg.ID, err)
	}
	return event, nil
}
