package events

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/buy2brands/wholesale-api/pkg/logger"
	"github.com/segmentio/kafka-go"
)

type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaTransport publishes to Kafka. Messages with the same key land on the
// same partition so per-order ordering is kept.
type KafkaTransport struct {
	writer  kafkaWriter
	brokers []string
	dial    func(ctx context.Context, network, address string) (*kafka.Conn, error)
}

func NewKafkaTransport(brokers []string, logg *logger.Logger) (*KafkaTransport, error) {
	if len(brokers) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
	if logg != nil {
		logg.Info(logg.WithField(context.Background(), "brokers", brokers), "kafka producer initialized")
	}
	return &KafkaTransport{writer: writer, brokers: brokers, dial: kafka.DialContext}, nil
}

func (t *KafkaTransport) Name() string { return "kafka" }

func (t *KafkaTransport) Publish(ctx context.Context, msg Message) error {
	if msg.Topic == "" {
		return errors.New("kafka topic is required")
	}
	keys := make([]string, 0, len(msg.Attributes))
	for k := range msg.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	headers := make([]kafka.Header, 0, len(keys))
	for _, k := range keys {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(msg.Attributes[k])})
	}
	err := t.writer.WriteMessages(ctx, kafka.Message{
		Topic:   msg.Topic,
		Key:     []byte(msg.Key),
		Value:   msg.Data,
		Headers: headers,
	})
	if err != nil {
		return fmt.Errorf("produce to %s: %w", msg.Topic, err)
	}
	return nil
}

// Ping dials the first reachable broker.
func (t *KafkaTransport) Ping(ctx context.Context) error {
	var lastErr error
	for _, broker := range t.brokers {
		conn, err := t.dial(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			continue
		}
		return conn.Close()
	}
	return fmt.Errorf("no kafka broker reachable: %w", lastErr)
}

func (t *KafkaTransport) Close() error {
	return t.writer.Close()
}
