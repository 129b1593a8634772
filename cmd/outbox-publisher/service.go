package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/buy2brands/wholesale-api/pkg/config"
	"github.com/buy2brands/wholesale-api/pkg/db/models"
	"github.com/buy2brands/wholesale-api/pkg/events"
	"github.com/buy2brands/wholesale-api/pkg/logger"
	"github.com/buy2brands/wholesale-api/pkg/metrics"
	"github.com/buy2brands/wholesale-api/pkg/outbox/registry"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

const (
	defaultBatchSize      = 50
	defaultPollInterval   = 500 * time.Millisecond
	defaultPublishTimeout = 15 * time.Second
	defaultMaxAttempts    = 10
	maxBackoff            = 10 * time.Second
	jitterPercent         = 20
)

type dbClient interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type outboxRepository interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error
}

type registryResolver interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

type ServiceParams struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         dbClient
	Transport  events.Transport
	Repository outboxRepository
	Registry   registryResolver
	Metrics    *metrics.OutboxMetrics
}

// Service drains outbox rows to the event transport. Each batch is claimed
// and settled inside one transaction so concurrent publishers skip rows
// another replica holds.
type Service struct {
	logg         *logger.Logger
	db           dbClient
	repo         outboxRepository
	transport    events.Transport
	registry     registryResolver
	metrics      *metrics.OutboxMetrics
	batchSize    int
	maxAttempts  int
	pollInterval time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	var err error
	for _, dep := range []struct {
		missing bool
		name    string
	}{
		{params.Config == nil, "config"},
		{params.Logger == nil, "logger"},
		{params.DB == nil, "database client"},
		{params.Transport == nil, "event transport"},
		{params.Repository == nil, "outbox repository"},
		{params.Registry == nil, "event registry"},
	} {
		if dep.missing {
			err = multierr.Append(err, fmt.Errorf("%s is required", dep.name))
		}
	}
	if err != nil {
		return nil, err
	}

	cfg := params.Config.Outbox
	svc := &Service{
		logg:         params.Logger,
		db:           params.DB,
		repo:         params.Repository,
		transport:    params.Transport,
		registry:     params.Registry,
		metrics:      params.Metrics,
		batchSize:    cfg.BatchSize,
		maxAttempts:  cfg.MaxAttempts,
		pollInterval: time.Duration(cfg.PollIntervalMS) * time.Millisecond,
	}
	if svc.batchSize <= 0 {
		svc.batchSize = defaultBatchSize
	}
	if svc.maxAttempts <= 0 {
		svc.maxAttempts = defaultMaxAttempts
	}
	if svc.pollInterval <= 0 {
		svc.pollInterval = defaultPollInterval
	}
	return svc, nil
}

func (s *Service) ensureReadiness(ctx context.Context) error {
	checks := []struct {
		name string
		ping func(context.Context) error
	}{
		{"database", s.db.Ping},
		{s.transport.Name(), s.transport.Ping},
	}
	for _, check := range checks {
		if err := check.ping(ctx); err != nil {
			s.logg.Error(ctx, check.name+" ping failed", err)
			return fmt.Errorf("%s ping failed: %w", check.name, err)
		}
	}
	return nil
}

// errorBackoff grows the wait after consecutive failed batches, capped at
// maxBackoff.
func errorBackoff(base time.Duration) retry.Backoff {
	return retry.WithCappedDuration(maxBackoff, retry.WithJitterPercent(jitterPercent, retry.NewExponential(base)))
}

// Run polls until ctx is cancelled. A full batch is followed immediately by
// another; an empty one waits a jittered poll interval.
func (s *Service) Run(ctx context.Context) error {
	if err := s.ensureReadiness(ctx); err != nil {
		return err
	}

	idle := retry.WithJitterPercent(jitterPercent, retry.NewConstant(s.pollInterval))
	var failing retry.Backoff
	for {
		if ctx.Err() != nil {
			s.logg.Info(ctx, "outbox.publisher_stopping")
			return ctx.Err()
		}

		processed, err := s.processBatch(ctx)
		var wait time.Duration
		switch {
		case err != nil:
			s.logg.Error(ctx, "outbox.batch_failed", err)
			if failing == nil {
				failing = errorBackoff(s.pollInterval)
			}
			wait, _ = failing.Next()
		case processed:
			failing = nil
			continue
		default:
			failing = nil
			wait, _ = idle.Next()
		}

		if err := s.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// settlement is what happened to one row.
type settlement struct {
	outcome string
	err     error
}

const (
	outcomePublished   = "published"
	outcomeFailed      = "failed"
	outcomeMaxAttempts = "max_attempts"
	outcomeRejected    = "non_retryable"
)

func (s *Service) processBatch(ctx context.Context) (bool, error) {
	processed := false
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := s.repo.FetchUnpublishedForPublish(tx, s.batchSize, s.maxAttempts)
		if err != nil {
			return err
		}
		processed = len(rows) > 0

		for _, row := range rows {
			resolved, result := s.deliver(ctx, row)
			if err := s.settle(ctx, tx, row, resolved, result); err != nil {
				return err
			}
		}
		return nil
	})
	return processed, err
}

// deliver resolves and publishes one row and classifies the result.
func (s *Service) deliver(ctx context.Context, row models.OutboxEvent) (*registry.ResolvedEvent, settlement) {
	resolved, err := s.registry.Resolve(row)
	if err != nil {
		return nil, settlement{outcome: outcomeRejected, err: err}
	}
	if resolved.Descriptor.Topic == "" {
		return resolved, settlement{outcome: outcomeRejected, err: fmt.Errorf("no topic for %s", row.EventType)}
	}

	publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()
	err = s.transport.Publish(publishCtx, s.message(row, resolved))

	var rejected registry.NonRetryableError
	switch {
	case err == nil:
		return resolved, settlement{outcome: outcomePublished}
	case errors.As(err, &rejected):
		return resolved, settlement{outcome: outcomeRejected, err: err}
	case row.AttemptCount+1 >= s.maxAttempts:
		return resolved, settlement{outcome: outcomeMaxAttempts, err: fmt.Errorf("max publish attempts reached: %w", err)}
	default:
		return resolved, settlement{outcome: outcomeFailed, err: err}
	}
}

func (s *Service) settle(ctx context.Context, tx *gorm.DB, row models.OutboxEvent, resolved *registry.ResolvedEvent, result settlement) error {
	fields := s.rowFields(row, resolved)
	s.metrics.Observe(result.outcome)

	var markErr error
	switch result.outcome {
	case outcomePublished:
		markErr = s.repo.MarkPublishedTx(tx, row.ID)
		s.logg.Info(s.logg.WithFields(ctx, fields), "outbox.event_published")
	case outcomeFailed:
		fields["attempt_count"] = row.AttemptCount + 1
		fields["error"] = result.err.Error()
		s.logg.Warn(s.logg.WithFields(ctx, fields), "outbox.publish_failed")
		markErr = s.repo.MarkFailedTx(tx, row.ID, result.err)
	default:
		fields["terminal_reason"] = result.outcome
		fields["error"] = result.err.Error()
		s.logg.Warn(s.logg.WithFields(ctx, fields), "outbox.event_abandoned")
		markErr = s.repo.MarkTerminalTx(tx, row.ID, result.err, s.maxAttempts)
	}
	if markErr != nil {
		return fmt.Errorf("mark %s %s: %w", result.outcome, row.ID, markErr)
	}
	return nil
}

// message keys by aggregate so a consumer sees one order's events in order.
func (s *Service) message(row models.OutboxEvent, resolved *registry.ResolvedEvent) events.Message {
	return events.Message{
		Topic: resolved.Descriptor.Topic,
		Key:   row.AggregateID.String(),
		Data:  row.Payload,
		Attributes: map[string]string{
			"event_id":       resolved.Envelope.EventID,
			"event_type":     string(row.EventType),
			"aggregate_type": string(row.AggregateType),
			"aggregate_id":   row.AggregateID.String(),
			"created_at":     row.CreatedAt.Format(time.RFC3339Nano),
		},
	}
}

func (s *Service) rowFields(row models.OutboxEvent, resolved *registry.ResolvedEvent) map[string]any {
	fields := map[string]any{
		"outbox_id":      row.ID.String(),
		"event_type":     row.EventType,
		"aggregate_type": row.AggregateType,
		"aggregate_id":   row.AggregateID.String(),
		"transport":      s.transport.Name(),
		"attempt_count":  row.AttemptCount,
	}
	if resolved != nil {
		if resolved.Envelope.EventID != "" {
			fields["event_id"] = resolved.Envelope.EventID
			fields["occurred_at"] = resolved.Envelope.OccurredAt.Format(time.RFC3339Nano)
		}
		if resolved.Descriptor.Topic != "" {
			fields["topic"] = resolved.Descriptor.Topic
		}
	}
	if row.LastError != nil {
		fields["last_error"] = *row.LastError
	}
	return fields
}

func (s *Service) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
