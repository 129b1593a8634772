package reconciliation

import (
	"context"
	"errors"
	"testing"

	"github.com/buy2brands/wholesale-api/pkg/enums"
	pkgerrors "github.com/buy2brands/wholesale-api/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"
)

type stubGateway struct {
	intents  map[string]*stripe.PaymentIntent
	sessions map[string]*stripe.CheckoutSession
}

func (s *stubGateway) GetPaymentIntent(_ context.Context, id string) (*stripe.PaymentIntent, error) {
	if pi, ok := s.intents[id]; ok {
		return pi, nil
	}
	return nil, errors.New("no such payment_intent")
}

func (s *stubGateway) GetCheckoutSession(_ context.Context, id string) (*stripe.CheckoutSession, error) {
	if cs, ok := s.sessions[id]; ok {
		return cs, nil
	}
	return nil, errors.New("no such checkout session")
}

func TestParseMetadataCoercesStrings(t *testing.T) {
	userID := uuid.New()
	meta, invalid := ParseMetadata(map[string]string{
		KeyUserID:     userID.String(),
		KeyFullName:   " Dana Price ",
		KeyEmail:      "Dana@Example.com",
		KeyTax:        "12.345",
		KeyShipping:   "5",
		KeyTotalItems: "3",
	})
	assert.Empty(t, invalid)
	assert.Equal(t, userID, meta.UserID)
	assert.Equal(t, "Dana Price", meta.Address.FullName)
	assert.Equal(t, "dana@example.com", meta.Address.Email)
	assert.Equal(t, int64(1235), int64(meta.Tax))
	assert.Equal(t, int64(500), int64(meta.Shipping))
	assert.Equal(t, 3, meta.TotalItems)

	meta, invalid = ParseMetadata(map[string]string{KeyTax: "abc", KeyShipping: "-1", KeyUserID: "nope"})
	assert.ElementsMatch(t, []string{KeyTax, KeyShipping, KeyUserID}, invalid)
	assert.Zero(t, meta.Tax)
	assert.Zero(t, meta.Shipping)
	assert.Equal(t, uuid.Nil, meta.UserID)
}

func TestMetadataEncodeRoundTrips(t *testing.T) {
	original := Metadata{UserID: uuid.New(), Tax: 1999, Shipping: 0, TotalItems: 2}
	original.Address.City = "Austin"
	parsed, invalid := ParseMetadata(original.Encode())
	assert.Empty(t, invalid)
	assert.Equal(t, original, parsed)
}

func TestConfirmPaymentRequiresSucceededIntent(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, f.teeLine(1))
	gw := &stubGateway{intents: map[string]*stripe.PaymentIntent{
		"pi_pending": {ID: "pi_pending", Status: stripe.PaymentIntentStatusProcessing, Metadata: f.meta().Encode()},
	}}
	channels := NewChannels(f.engine, gw)
	caller := Caller{UserID: f.user.ID, Email: f.user.Email}

	_, err := channels.ConfirmPayment(context.Background(), "pi_pending", caller)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnpaid))
	assert.Equal(t, "Payment not completed", pkgerrors.As(err).Message())
	assert.Equal(t, int64(0), f.orderCount(t))

	_, err = channels.ConfirmPayment(context.Background(), "pi_unknown", caller)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))

	_, err = channels.ConfirmPayment(context.Background(), "", caller)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestConfirmPaymentCreatesOrderForCaller(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, f.teeLine(1))
	gw := &stubGateway{intents: map[string]*stripe.PaymentIntent{
		"pi_ok": {ID: "pi_ok", Status: stripe.PaymentIntentStatusSucceeded, Metadata: f.meta().Encode()},
	}}
	channels := NewChannels(f.engine, gw)

	_, err := channels.ConfirmPayment(context.Background(), "pi_ok", Caller{UserID: uuid.New()})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	res, err := channels.ConfirmPayment(context.Background(), "pi_ok", Caller{UserID: f.user.ID, Email: "buyer@example.com"})
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, "buyer@example.com", res.Order.ShippingAddress.Email)
	assert.Equal(t, enums.PaymentStatusCompleted, res.Order.PaymentStatus)
}

func TestVerifySessionUsesSessionEmailAndLinkedIntent(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t, f.teeLine(1))
	gw := &stubGateway{sessions: map[string]*stripe.CheckoutSession{
		"cs_unpaid": {ID: "cs_unpaid", PaymentStatus: stripe.CheckoutSessionPaymentStatusUnpaid},
		"cs_paid": {
			ID:            "cs_paid",
			PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
			CustomerEmail: "Shop@Example.com",
			PaymentIntent: &stripe.PaymentIntent{ID: "pi_behind"},
			Metadata:      map[string]string{KeyUserID: f.user.ID.String(), KeyTax: "0", KeyShipping: "5"},
		},
	}}
	channels := NewChannels(f.engine, gw)
	caller := Caller{UserID: f.user.ID}

	_, err := channels.VerifySession(context.Background(), "cs_unpaid", caller)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnpaid))

	res, err := channels.VerifySession(context.Background(), "cs_paid", caller)
	require.NoError(t, err)
	assert.Equal(t, "shop@example.com", res.Order.ShippingAddress.Email)
	assert.Equal(t, enums.PaymentStatusPaid, res.Order.PaymentStatus)
	require.NotNil(t, res.Order.StripePaymentIntentID)
	assert.Equal(t, "pi_behind", *res.Order.StripePaymentIntentID)

	again, err := channels.VerifySession(context.Background(), "cs_paid", caller)
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, res.Order.ID, again.Order.ID)
}
