package stripewebhook

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const provider = "stripe"

// EventStore is the redis surface used to de-duplicate deliveries.
type EventStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	WebhookEventKey(provider, eventID string) string
}

// EventGuard remembers which gateway event ids were already handled.
type EventGuard struct {
	store EventStore
	ttl   time.Duration
}

func NewEventGuard(store EventStore, ttl time.Duration) (*EventGuard, error) {
	if store == nil {
		return nil, errors.New("event store is required")
	}
	if ttl <= 0 {
		return nil, errors.New("ttl must be positive")
	}
	return &EventGuard{store: store, ttl: ttl}, nil
}

// Claim marks eventID as seen. It returns false when another delivery of the
// same event already claimed it.
func (g *EventGuard) Claim(ctx context.Context, eventID string) (bool, error) {
	if strings.TrimSpace(eventID) == "" {
		return false, errors.New("event id is required")
	}
	first, err := g.store.SetNX(ctx, g.store.WebhookEventKey(provider, eventID), time.Now().UTC().Format(time.RFC3339), g.ttl)
	if err != nil {
		return false, fmt.Errorf("claim webhook event: %w", err)
	}
	return first, nil
}

// Release forgets eventID so a redelivery is processed again.
func (g *EventGuard) Release(ctx context.Context, eventID string) error {
	if strings.TrimSpace(eventID) == "" {
		return errors.New("event id is required")
	}
	return g.store.Del(ctx, g.store.WebhookEventKey(provider, eventID))
}
