package webhooks

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/buy2brands/wholesale-api/api/responses"
	pkgerrors "github.com/buy2brands/wholesale-api/pkg/errors"
	"github.com/buy2brands/wholesale-api/pkg/logger"
	"github.com/stripe/stripe-go/v84"
)

// DefaultMaxPayloadBytes applies when no limit is configured.
const DefaultMaxPayloadBytes = int64(512 << 10)

type StripeWebhookService interface {
	HandleEvent(ctx context.Context, event *stripe.Event) error
}

type eventParser interface {
	ParseEvent(payload []byte, signature string) (stripe.Event, bool, error)
}

type ackResponse struct {
	Received bool `json:"received"`
}

// StripeWebhook accepts gateway callbacks. The body is read raw so the
// signature is checked over the exact bytes that were signed; a body over
// maxBytes is refused whole rather than verified truncated.
func StripeWebhook(svc StripeWebhookService, parser eventParser, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxPayloadBytes
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil || parser == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}

		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				if logg != nil {
					logg.Warn(logg.WithField(ctx, "limit_bytes", tooLarge.Limit), "webhook.payload_too_large")
				}
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeTooLarge, "webhook payload too large").
					WithDetails(map[string]any{"limit_bytes": tooLarge.Limit}))
				return
			}
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
			return
		}

		event, verified, err := parser.ParseEvent(payload, r.Header.Get("Stripe-Signature"))
		if err != nil {
			if logg != nil {
				logg.Warn(logg.WithField(ctx, "remote_addr", r.RemoteAddr), "webhook.signature_invalid")
			}
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeSignature, err, "webhook signature verification failed"))
			return
		}
		if !verified && logg != nil {
			logg.Warn(logg.WithField(ctx, "event_id", event.ID), "webhook.unverified")
		}

		if err := svc.HandleEvent(ctx, &event); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteJSON(w, http.StatusOK, ackResponse{Received: true})
	}
}
