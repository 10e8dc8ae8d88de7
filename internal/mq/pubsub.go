package mq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"cloud.google.com/go/pubsub"
	"github.com/cargoline/apiserver/config"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const defaultSubscriptionSuffix = "-sub"

// PubSubClient publishes domain events to Google Cloud Pub/Sub. Each channel
// is a topic; events on one channel share an ordering key so a consumer sees
// brand.created before the brand.updated that follows it.
type PubSubClient struct {
	client             *pubsub.Client
	subscriptionSuffix string

	mu     sync.Mutex
	topics map[string]*pubsub.Topic
}

// NewPubSubClient constructs a Pub/Sub client from config.
func NewPubSubClient(ctx context.Context, cfg config.PubSubConfig) (*PubSubClient, error) {
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, errors.New("pubsub project id is required")
	}

	var opts []option.ClientOption
	if strings.TrimSpace(cfg.CredentialsFile) != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := pubsub.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to pubsub: %w", err)
	}
	return newPubSubClient(client, cfg.SubscriptionSuffix), nil
}

func newPubSubClient(client *pubsub.Client, subscriptionSuffix string) *PubSubClient {
	if subscriptionSuffix == "" {
		subscriptionSuffix = defaultSubscriptionSuffix
	}
	return &PubSubClient{
		client:             client,
		subscriptionSuffix: subscriptionSuffix,
		topics:             make(map[string]*pubsub.Topic),
	}
}

// Publish sends data to the channel's topic and waits for the server id.
func (p *PubSubClient) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if strings.TrimSpace(channel) == "" {
		return "", errors.New("pubsub channel is required")
	}

	topic, err := p.topic(ctx, channel)
	if err != nil {
		return "", err
	}

	msg := &pubsub.Message{
		Data:        data,
		Attributes:  attrs,
		OrderingKey: channel,
	}
	id, err := topic.Publish(ctx, msg).Get(ctx)
	if err != nil {
		// A failed ordered publish pauses the key until resumed.
		topic.ResumePublish(msg.OrderingKey)
		return "", fmt.Errorf("publish to topic %s: %w", channel, err)
	}
	return id, nil
}

// Subscribe receives from the channel's subscription until ctx is done.
// Handler errors nack the message for redelivery.
func (p *PubSubClient) Subscribe(ctx context.Context, channel string, handler Handler) error {
	if strings.TrimSpace(channel) == "" {
		return errors.New("pubsub channel is required")
	}

	topic, err := p.topic(ctx, channel)
	if err != nil {
		return err
	}

	sub, err := p.ensureSubscription(ctx, p.subscriptionName(channel), topic)
	if err != nil {
		return err
	}

	return sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		message := Message{
			ID:         msg.ID,
			Data:       msg.Data,
			Attributes: msg.Attributes,
		}
		if err := handler(ctx, message); err != nil {
			log.Warn().
				Err(err).
				Str("channel", channel).
				Str("event", msg.Attributes[TypeAttribute]).
				Str("message_id", msg.ID).
				Msg("pubsub handler failed, nacking")
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

// Close flushes pending publishes and closes the client.
func (p *PubSubClient) Close() error {
	p.mu.Lock()
	for name, topic := range p.topics {
		topic.Stop()
		delete(p.topics, name)
	}
	p.mu.Unlock()

	return p.client.Close()
}

// topic returns the ordered topic for name, creating it on first use.
// Lookups are cached so only the first event on a channel costs an RPC.
func (p *PubSubClient) topic(ctx context.Context, name string) (*pubsub.Topic, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if topic, ok := p.topics[name]; ok {
		return topic, nil
	}

	topic := p.client.Topic(name)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check topic %s: %w", name, err)
	}
	if !exists {
		created, err := p.client.CreateTopic(ctx, name)
		switch {
		case err == nil:
			topic = created
		case status.Code(err) == codes.AlreadyExists:
			// Another instance created it first.
		default:
			return nil, fmt.Errorf("create topic %s: %w", name, err)
		}
	}

	topic.EnableMessageOrdering = true
	p.topics[name] = topic
	return topic, nil
}

func (p *PubSubClient) ensureSubscription(ctx context.Context, name string, topic *pubsub.Topic) (*pubsub.Subscription, error) {
	sub := p.client.Subscription(name)
	exists, err := sub.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check subscription %s: %w", name, err)
	}
	if exists {
		return sub, nil
	}

	created, err := p.client.CreateSubscription(ctx, name, pubsub.SubscriptionConfig{
		Topic:                 topic,
		EnableMessageOrdering: true,
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return sub, nil
		}
		return nil, fmt.Errorf("create subscription %s: %w", name, err)
	}
	return created, nil
}

func (p *PubSubClient) subscriptionName(channel string) string {
	return channel + p.subscriptionSuffix
}
