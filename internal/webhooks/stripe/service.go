package stripewebhook

import (
	"context"
	"encoding/json"

	"github.com/buy2brands/wholesale-api/internal/reconciliation"
	"github.com/buy2brands/wholesale-api/pkg/enums"
	pkgerrors "github.com/buy2brands/wholesale-api/pkg/errors"
	"github.com/buy2brands/wholesale-api/pkg/logger"
	"github.com/buy2brands/wholesale-api/pkg/metrics"
	"github.com/stripe/stripe-go/v84"
)

// Results recorded in webhook_events_total.
const (
	ResultProcessed    = "processed"
	ResultDuplicate    = "duplicate"
	ResultIgnored      = "ignored"
	ResultUnpaid       = "unpaid"
	ResultAcknowledged = "acknowledged"
	ResultFailed       = "failed"
)

type sessionReconciler interface {
	ReconcileSession(ctx context.Context, channel enums.ReconcileChannel, session *stripe.CheckoutSession) (*reconciliation.Result, error)
}

type eventGuard interface {
	Claim(ctx context.Context, eventID string) (bool, error)
	Release(ctx context.Context, eventID string) error
}

type ServiceParams struct {
	Reconciler sessionReconciler
	Guard      eventGuard
	Metrics    *metrics.WebhookMetrics
	Logger     *logger.Logger
}

// Service turns gateway callbacks into reconciliations.
type Service struct {
	reconciler sessionReconciler
	guard      eventGuard
	metrics    *metrics.WebhookMetrics
	logg       *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Reconciler == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "reconciler required")
	}
	if params.Guard == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "event guard required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		reconciler: params.Reconciler,
		guard:      params.Guard,
		metrics:    params.Metrics,
		logg:       params.Logger,
	}, nil
}

// HandleEvent processes one verified delivery. Only infrastructure failures are
// returned; the caller answers those with a retryable status and the event id
// is released so the gateway's redelivery is handled again.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}
	eventType := string(event.Type)
	ctx = s.logg.WithFields(ctx, map[string]any{"event_id": event.ID, "event_type": eventType})

	first, err := s.guard.Claim(ctx, event.ID)
	if err != nil {
		// reconciliation is idempotent on its own; carry on without the fast path
		s.logg.Warn(ctx, "webhook.dedupe_unavailable")
		first = true
	}
	if !first {
		s.logg.Info(ctx, "webhook.duplicate_event")
		s.metrics.Observe(eventType, ResultDuplicate)
		return nil
	}

	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		s.metrics.Observe(eventType, ResultIgnored)
		return nil
	}

	result, err := s.handleSessionCompleted(ctx, event)
	if err != nil {
		if relErr := s.guard.Release(ctx, event.ID); relErr != nil {
			s.logg.Warn(ctx, "webhook.release_failed")
		}
		s.logg.Error(ctx, "webhook.processing_failed", err)
		s.metrics.Observe(eventType, ResultFailed)
		return err
	}
	s.metrics.Observe(eventType, result)
	return nil
}

func (s *Service) handleSessionCompleted(ctx context.Context, event *stripe.Event) (string, error) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		s.logg.Warn(ctx, "webhook.session_undecodable")
		return ResultAcknowledged, nil
	}
	ctx = s.logg.WithGatewayRef(ctx, string(enums.GatewayRefCheckoutSession), session.ID)

	if session.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		s.logg.Info(ctx, "webhook.session_unpaid")
		return ResultUnpaid, nil
	}

	res, err := s.reconciler.ReconcileSession(ctx, enums.ChannelWebhook, &session)
	if err != nil {
		if acknowledged(err) {
			s.logg.Warn(s.logg.WithField(ctx, "reason", err.Error()), "webhook.session_skipped")
			return ResultAcknowledged, nil
		}
		return "", err
	}
	if res != nil && res.Order != nil {
		s.logg.Info(s.logg.WithField(ctx, "order_id", res.Order.ID.String()), "webhook.session_reconciled")
	}
	return ResultProcessed, nil
}

// acknowledged reports whether err is a client-side outcome that a redelivery
// cannot change.
func acknowledged(err error) bool {
	typed := pkgerrors.As(err)
	if typed == nil {
		return false
	}
	switch typed.Code() {
	case pkgerrors.CodeEmptyCart, pkgerrors.CodeValidation, pkgerrors.CodeNotFound, pkgerrors.CodeForbidden:
		return true
	}
	return false
}
