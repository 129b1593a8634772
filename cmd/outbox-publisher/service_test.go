package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/buy2brands/wholesale-api/pkg/config"
	"github.com/buy2brands/wholesale-api/pkg/db/models"
	"github.com/buy2brands/wholesale-api/pkg/enums"
	"github.com/buy2brands/wholesale-api/pkg/events"
	"github.com/buy2brands/wholesale-api/pkg/logger"
	"github.com/buy2brands/wholesale-api/pkg/outbox"
	"github.com/buy2brands/wholesale-api/pkg/outbox/payloads"
	"github.com/buy2brands/wholesale-api/pkg/outbox/registry"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

func TestServiceProcessBatchContinuesAfterFailure(t *testing.T) {
	repo := &fakeRepo{
		events: []models.OutboxEvent{
			newEvent(t, "event-one", 0),
			newEvent(t, "event-two", 0),
		},
	}
	transport := &fakeTransport{errs: []error{errors.New("transient"), nil}}
	service := newTestService(t, repo, transport, &fakeRegistry{resolved: resolvedOrderCreated()}, nil)

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if !processed {
		t.Fatalf("expected batch to report processed")
	}
	if got := len(repo.failed); got != 1 {
		t.Fatalf("unexpected number of failed rows: %d", got)
	}
	if got := len(repo.published); got != 1 {
		t.Fatalf("unexpected number of published rows: %d", got)
	}
	if repo.failed[0] != repo.events[0].ID {
		t.Fatalf("failed row recorded wrong ID")
	}
	if repo.published[0] != repo.events[1].ID {
		t.Fatalf("published row recorded wrong ID")
	}
}

func TestPublishUsesAggregateAsKey(t *testing.T) {
	event := newEvent(t, "keyed", 0)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	transport := &fakeTransport{}
	service := newTestService(t, repo, transport, &fakeRegistry{resolved: resolvedOrderCreated()}, nil)

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if len(transport.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(transport.sent))
	}
	msg := transport.sent[0]
	if msg.Topic != "orders-topic" {
		t.Fatalf("unexpected topic %q", msg.Topic)
	}
	if msg.Key != event.AggregateID.String() {
		t.Fatalf("message key should be the aggregate id")
	}
	if msg.Attributes["event_type"] != string(enums.EventOrderCreated) {
		t.Fatalf("event_type attribute missing: %+v", msg.Attributes)
	}
}

func TestServiceProcessBatchParksNonRetryable(t *testing.T) {
	event := newEvent(t, "nonretryable", 0)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	reg := &fakeRegistry{err: registry.NewNonRetryableError(errors.New("invalid payload"))}
	service := newTestService(t, repo, &fakeTransport{}, reg, nil)

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if !processed {
		t.Fatalf("expected batch to report processed")
	}
	if len(repo.terminal) != 1 || repo.terminal[0] != event.ID {
		t.Fatalf("expected row parked as terminal, got %v", repo.terminal)
	}
	if len(repo.published) != 0 {
		t.Fatalf("non-retryable row must not be marked published")
	}
}

func TestServiceProcessBatchParksAtMaxAttempts(t *testing.T) {
	event := newEvent(t, "max-attempts", 1)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	transport := &fakeTransport{errs: []error{errors.New("transient")}}
	service := newTestService(t, repo, transport, &fakeRegistry{resolved: resolvedOrderCreated()}, &config.OutboxConfig{
		BatchSize:      1,
		PollIntervalMS: 100,
		MaxAttempts:    2,
	})

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if len(repo.terminal) != 1 {
		t.Fatalf("expected terminal mark, got %d", len(repo.terminal))
	}
	if len(repo.failed) != 0 {
		t.Fatalf("terminal rows are not also marked failed")
	}
}

func TestServiceProcessBatchEmpty(t *testing.T) {
	service := newTestService(t, &fakeRepo{}, &fakeTransport{}, &fakeRegistry{}, nil)
	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if processed {
		t.Fatalf("empty batch should report not processed")
	}
}

func TestErrorBackoffGrowsAndCaps(t *testing.T) {
	b := errorBackoff(time.Second)
	first, stop := b.Next()
	if stop {
		t.Fatalf("backoff should not stop")
	}
	if first < 800*time.Millisecond || first > 1200*time.Millisecond {
		t.Fatalf("first wait should be the poll interval within jitter, got %s", first)
	}
	var last time.Duration
	for i := 0; i < 10; i++ {
		last, _ = b.Next()
		if last > maxBackoff {
			t.Fatalf("wait %s exceeds cap", last)
		}
	}
	if last < maxBackoff/2 {
		t.Fatalf("expected backoff to approach the cap, got %s", last)
	}
}

func TestNewServiceReportsEveryMissingDependency(t *testing.T) {
	_, err := NewService(ServiceParams{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := len(multierr.Errors(err)); got != 6 {
		t.Fatalf("expected six missing dependencies, got %d: %v", got, err)
	}
}

func TestServiceProcessBatchRejectsMissingTopic(t *testing.T) {
	event := newEvent(t, "no-topic", 0)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	resolved := resolvedOrderCreated()
	resolved.Descriptor.Topic = ""
	transport := &fakeTransport{}
	service := newTestService(t, repo, transport, &fakeRegistry{resolved: resolved}, nil)

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if len(repo.terminal) != 1 || len(transport.sent) != 0 {
		t.Fatalf("expected row parked without publishing, terminal=%v sent=%d", repo.terminal, len(transport.sent))
	}
}

func newTestService(t *testing.T, repo outboxRepository, transport events.Transport, reg registryResolver, outboxCfgOverride *config.OutboxConfig) *Service {
	t.Helper()
	outboxCfg := config.OutboxConfig{
		BatchSize:      2,
		PollIntervalMS: 100,
		MaxAttempts:    5,
	}
	if outboxCfgOverride != nil {
		outboxCfg = *outboxCfgOverride
	}
	logg := logger.New(logger.Options{
		ServiceName: "outbox-publisher-test",
		Output:      io.Discard,
	})
	service, err := NewService(ServiceParams{
		Config:     &config.Config{Outbox: outboxCfg},
		Logger:     logg,
		DB:         &fakeDB{},
		Transport:  transport,
		Repository: repo,
		Registry:   reg,
	})
	if err != nil {
		t.Fatalf("failed to construct service: %v", err)
	}
	return service
}

func newEvent(tb testing.TB, eventID string, attempts int) models.OutboxEvent {
	tb.Helper()
	env := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    eventID,
		OccurredAt: time.Now(),
		Data:       json.RawMessage(`{}`),
	}
	payload, err := json.Marshal(env)
	if err != nil {
		tb.Fatalf("marshal envelope: %v", err)
	}
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       payload,
		AttemptCount:  attempts,
	}
}

func resolvedOrderCreated() *registry.ResolvedEvent {
	return &registry.ResolvedEvent{
		Descriptor: registry.EventDescriptor{
			Topic:         "orders-topic",
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
		},
		Payload: &payloads.OrderCreatedEvent{},
	}
}

type fakeRepo struct {
	events    []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
	terminal  []uuid.UUID
}

func (f *fakeRepo) FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error) {
	return f.events, nil
}

func (f *fakeRepo) MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeRepo) MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error {
	f.failed = append(f.failed, id)
	return nil
}

func (f *fakeRepo) MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error {
	f.terminal = append(f.terminal, id)
	return nil
}

type fakeDB struct{}

func (f *fakeDB) Ping(context.Context) error {
	return nil
}

func (f *fakeDB) WithTx(_ context.Context, fn func(*gorm.DB) error) error {
	return fn(nil)
}

type fakeTransport struct {
	errs []error
	sent []events.Message
}

func (f *fakeTransport) Name() string { return "fake" }

func (f *fakeTransport) Publish(_ context.Context, msg events.Message) error {
	var err error
	if len(f.errs) > 0 {
		err = f.errs[0]
		f.errs = f.errs[1:]
	}
	if err == nil {
		f.sent = append(f.sent, msg)
	}
	return err
}

func (f *fakeTransport) Ping(context.Context) error { return nil }
func (f *fakeTransport) Close() error               { return nil }

type fakeRegistry struct {
	resolved *registry.ResolvedEvent
	err      error
}

func (f *fakeRegistry) Resolve(event models.OutboxEvent) (*registry.ResolvedEvent, error) {
	if f.resolved == nil {
		return nil, f.err
	}
	resolved := *f.resolved
	resolved.Envelope.EventID = event.ID.String()
	resolved.Envelope.OccurredAt = time.Now()
	return &resolved, f.err
}
