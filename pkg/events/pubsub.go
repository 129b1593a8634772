package events

import (
	"context"
	"errors"
)

type pubsubPublisher interface {
	Publish(ctx context.Context, topic string, data []byte, attrs map[string]string) (string, error)
	Ping(ctx context.Context) error
	Close() error
}

// PubSubTransport publishes to Google Cloud Pub/Sub topics.
type PubSubTransport struct {
	client pubsubPublisher
}

func NewPubSubTransport(client pubsubPublisher) *PubSubTransport {
	return &PubSubTransport{client: client}
}

func (t *PubSubTransport) Name() string { return "pubsub" }

func (t *PubSubTransport) Publish(ctx context.Context, msg Message) error {
	if t == nil || t.client == nil {
		return errors.New("pubsub transport not initialized")
	}
	attrs := make(map[string]string, len(msg.Attributes)+1)
	for k, v := range msg.Attributes {
		attrs[k] = v
	}
	if msg.Key != "" {
		attrs["key"] = msg.Key
	}
	_, err := t.client.Publish(ctx, msg.Topic, msg.Data, attrs)
	return err
}

func (t *PubSubTransport) Ping(ctx context.Context) error {
	return t.client.Ping(ctx)
}

func (t *PubSubTransport) Close() error {
	return t.client.Close()
}
