// Package events delivers outbox envelopes to the configured message broker.
package events

import (
	"context"
	"fmt"

	"github.com/buy2brands/wholesale-api/pkg/config"
	"github.com/buy2brands/wholesale-api/pkg/logger"
	"github.com/buy2brands/wholesale-api/pkg/pubsub"
)

// Message is a broker-neutral event.
type Message struct {
	Topic      string
	Key        string
	Data       []byte
	Attributes map[string]string
}

// Transport publishes messages and reports its health.
type Transport interface {
	Name() string
	Publish(ctx context.Context, msg Message) error
	Ping(ctx context.Context) error
	Close() error
}

// NewTransport builds the transport selected by cfg.Broker.
func NewTransport(ctx context.Context, cfg config.EventsConfig, logg *logger.Logger) (Transport, error) {
	switch cfg.BrokerName() {
	case config.EventsBrokerNone:
		return NewLogTransport(logg), nil
	case config.EventsBrokerPubSub:
		client, err := pubsub.NewClient(ctx, cfg, logg)
		if err != nil {
			return nil, err
		}
		return NewPubSubTransport(client), nil
	case config.EventsBrokerKafka:
		return NewKafkaTransport(cfg.KafkaBrokers, logg)
	default:
		return nil, fmt.Errorf("unsupported events broker %q", cfg.Broker)
	}
}
