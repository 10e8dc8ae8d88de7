package mq

import (
	"context"
	"fmt"

	"github.com/cargoline/apiserver/config"
)

// Message represents a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. Return an error to signal a retry/nack.
type Handler func(ctx context.Context, msg Message) error

// Backend defines the broker-agnostic operations used by the app.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// NewBackend builds the backend selected by cfg.Backend.
func NewBackend(ctx context.Context, cfg config.MQConfig) (Backend, error) {
	switch cfg.Backend {
	case "", config.MQBackendNone:
		return NoopBackend{}, nil
	case config.MQBackendRabbitMQ:
		client, err := NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.MQBackendPubSub:
		client, err := NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.Backend)
	}
}

// NoopBackend drops every published message. Subscribe blocks until ctx is done.
type NoopBackend struct{}

func (NoopBackend) Publish(context.Context, string, []byte, map[string]string) (string, error) {
	return "", nil
}

func (NoopBackend) Subscribe(ctx context.Context, _ string, _ Handler) error {
	<-ctx.Done()
	return ctx.Err()
}

func (NoopBackend) Close() error { return nil }
