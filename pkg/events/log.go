package events

import (
	"context"

	"github.com/buy2brands/wholesale-api/pkg/logger"
)

// LogTransport drops messages after logging them. It is selected when no
// broker is configured, so the outbox still drains in development.
type LogTransport struct {
	logg *logger.Logger
}

func NewLogTransport(logg *logger.Logger) *LogTransport {
	return &LogTransport{logg: logg}
}

func (t *LogTransport) Name() string { return "none" }

func (t *LogTransport) Publish(ctx context.Context, msg Message) error {
	if t.logg != nil {
		fields := map[string]any{"topic": msg.Topic, "key": msg.Key, "bytes": len(msg.Data)}
		for k, v := range msg.Attributes {
			fields[k] = v
		}
		t.logg.Debug(t.logg.WithFields(ctx, fields), "events.dropped")
	}
	return nil
}

func (t *LogTransport) Ping(context.Context) error { return nil }

func (t *LogTransport) Close() error { return nil }
