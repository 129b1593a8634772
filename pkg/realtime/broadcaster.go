package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/buy2brands/wholesale-api/pkg/config"
	"github.com/buy2brands/wholesale-api/pkg/redis"
	"github.com/google/uuid"
)

// Event names consumed by the storefront socket gateway.
const (
	EventNewOrderReceived   = "newOrderReceived"
	EventOrderStatusChanged = "orderStatusChanged"
	EventOrderUpdated       = "orderUpdated"
)

// Envelope is the JSON body published on every channel.
type Envelope struct {
	Event     string    `json:"event"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// Broadcaster publishes realtime events over Redis pub/sub.
type Broadcaster struct {
	pub          redis.Publisher
	adminChannel string
	userPrefix   string
	now          func() time.Time
}

// NewBroadcaster wires the publisher to the configured channel names.
func NewBroadcaster(pub redis.Publisher, cfg config.RealtimeConfig) (*Broadcaster, error) {
	if pub == nil {
		return nil, errors.New("realtime publisher required")
	}
	admin := cfg.AdminChannel
	if admin == "" {
		admin = "admin_room"
	}
	prefix := cfg.UserPrefix
	if prefix == "" {
		prefix = "user_"
	}
	return &Broadcaster{pub: pub, adminChannel: admin, userPrefix: prefix, now: time.Now}, nil
}

// ToAdmins publishes event to the admin room.
func (b *Broadcaster) ToAdmins(ctx context.Context, event string, payload any) error {
	return b.publish(ctx, b.adminChannel, event, payload)
}

// ToUser publishes event to a single user's room.
func (b *Broadcaster) ToUser(ctx context.Context, userID uuid.UUID, event string, payload any) error {
	return b.publish(ctx, b.UserChannel(userID), event, payload)
}

// UserChannel returns the room name for userID.
func (b *Broadcaster) UserChannel(userID uuid.UUID) string {
	return b.userPrefix + userID.String()
}

func (b *Broadcaster) publish(ctx context.Context, channel, event string, payload any) error {
	body, err := json.Marshal(Envelope{Event: event, Payload: payload, Timestamp: b.now().UTC()})
	if err != nil {
		return fmt.Errorf("encode realtime %s: %w", event, err)
	}
	if _, err := b.pub.Publish(ctx, channel, body); err != nil {
		return fmt.Errorf("publish %s to %s: %w", event, channel, err)
	}
	return nil
}
