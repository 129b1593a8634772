package reconciliation

import (
	"context"
	"strings"

	"github.com/buy2brands/wholesale-api/pkg/enums"
	pkgerrors "github.com/buy2brands/wholesale-api/pkg/errors"
	"github.com/buy2brands/wholesale-api/pkg/metrics"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
)

// Gateway is the read side of the payment gateway used by the interactive
// channels.
type Gateway interface {
	GetPaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error)
	GetCheckoutSession(ctx context.Context, id string) (*stripe.CheckoutSession, error)
}

// Caller is the authenticated shopper driving an interactive channel.
type Caller struct {
	UserID uuid.UUID
	Email  string
}

// Channels adapts gateway objects to the engine.
type Channels struct {
	engine  *Engine
	gateway Gateway
}

func NewChannels(engine *Engine, gateway Gateway) *Channels {
	return &Channels{engine: engine, gateway: gateway}
}

// ConfirmPayment reconciles a payment intent the client reports as confirmed.
func (c *Channels) ConfirmPayment(ctx context.Context, intentID string, caller Caller) (*Result, error) {
	intentID = strings.TrimSpace(intentID)
	if intentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "paymentIntentId is required")
	}
	intent, err := c.gateway.GetPaymentIntent(ctx, intentID)
	if err != nil {
		c.engine.observe(enums.ChannelConfirm, metrics.OutcomeFailed)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "retrieve payment intent")
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		c.engine.observe(enums.ChannelConfirm, metrics.OutcomeUnpaid)
		return nil, pkgerrors.New(pkgerrors.CodeUnpaid, "Payment not completed").
			WithDetails(map[string]string{"status": string(intent.Status)})
	}

	meta := c.engine.parseMetadata(ctx, intent.Metadata)
	if err := bindCaller(&meta, caller); err != nil {
		return nil, err
	}
	if meta.Address.Email == "" {
		meta.Address.Email = strings.ToLower(strings.TrimSpace(caller.Email))
	}
	return c.engine.Reconcile(ctx, enums.ChannelConfirm, Reference{
		Kind: enums.GatewayRefPaymentIntent,
		ID:   intent.ID,
	}, meta)
}

// VerifySession reconciles a checkout session the shopper was redirected back from.
func (c *Channels) VerifySession(ctx context.Context, sessionID string, caller Caller) (*Result, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sessionId is required")
	}
	session, err := c.gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		c.engine.observe(enums.ChannelVerify, metrics.OutcomeFailed)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "retrieve checkout session")
	}
	if session.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		c.engine.observe(enums.ChannelVerify, metrics.OutcomeUnpaid)
		return nil, pkgerrors.New(pkgerrors.CodeUnpaid, "Payment not completed").
			WithDetails(map[string]string{"status": string(session.PaymentStatus)})
	}
	ref, meta := c.engine.fromSession(ctx, session)
	if err := bindCaller(&meta, caller); err != nil {
		return nil, err
	}
	return c.engine.Reconcile(ctx, enums.ChannelVerify, ref, meta)
}

// ReconcileSession reconciles a paid checkout session. The caller has already
// established that the session is paid.
func (e *Engine) ReconcileSession(ctx context.Context, channel enums.ReconcileChannel, session *stripe.CheckoutSession) (*Result, error) {
	if session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout session is required")
	}
	ref, meta := e.fromSession(ctx, session)
	return e.Reconcile(ctx, channel, ref, meta)
}

func (e *Engine) fromSession(ctx context.Context, session *stripe.CheckoutSession) (Reference, Metadata) {
	meta := e.parseMetadata(ctx, session.Metadata)
	if meta.Address.Email == "" {
		meta.Address.Email = sessionEmail(session)
	}
	ref := Reference{Kind: enums.GatewayRefCheckoutSession, ID: session.ID}
	if session.PaymentIntent != nil {
		ref.LinkedIntentID = session.PaymentIntent.ID
	}
	return ref, meta
}

func (e *Engine) parseMetadata(ctx context.Context, raw map[string]string) Metadata {
	meta, invalid := ParseMetadata(raw)
	if len(invalid) > 0 {
		e.logg.Warn(e.logg.WithField(ctx, "invalid_keys", strings.Join(invalid, ",")), "reconcile.metadata_invalid")
	}
	return meta
}

// bindCaller attributes the payment to the caller. A payment created for
// another user is rejected.
func bindCaller(meta *Metadata, caller Caller) error {
	if meta.UserID == uuid.Nil {
		meta.UserID = caller.UserID
	}
	if meta.UserID != caller.UserID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "payment belongs to another user")
	}
	return nil
}

func sessionEmail(session *stripe.CheckoutSession) string {
	email := session.CustomerEmail
	if email == "" && session.CustomerDetails != nil {
		email = session.CustomerDetails.Email
	}
	return strings.ToLower(strings.TrimSpace(email))
}
