package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buy2brands/wholesale-api/api/middleware"
	"github.com/buy2brands/wholesale-api/internal/checkout"
	"github.com/buy2brands/wholesale-api/internal/reconciliation"
	"github.com/buy2brands/wholesale-api/pkg/db/models"
	pkgerrors "github.com/buy2brands/wholesale-api/pkg/errors"
)

type stubChannels struct {
	caller    reconciliation.Caller
	intentID  string
	sessionID string
	result    *reconciliation.Result
	err       error
}

func (s *stubChannels) ConfirmPayment(_ context.Context, intentID string, caller reconciliation.Caller) (*reconciliation.Result, error) {
	s.intentID = intentID
	s.caller = caller
	return s.result, s.err
}

func (s *stubChannels) VerifySession(_ context.Context, sessionID string, caller reconciliation.Caller) (*reconciliation.Result, error) {
	s.sessionID = sessionID
	s.caller = caller
	return s.result, s.err
}

type stubCheckout struct {
	caller checkout.Caller
	input  checkout.StartInput
}

func (s *stubCheckout) Quote(context.Context, uuid.UUID) (*checkout.Quote, error) {
	return &checkout.Quote{Subtotal: 1000, Total: 1000}, nil
}

func (s *stubCheckout) CreatePaymentIntent(_ context.Context, caller checkout.Caller, input checkout.StartInput) (*checkout.PaymentIntentResult, error) {
	s.caller = caller
	s.input = input
	return &checkout.PaymentIntentResult{ClientSecret: "secret", PaymentIntentID: "pi_1"}, nil
}

func (s *stubCheckout) CreateCheckoutSession(_ context.Context, caller checkout.Caller, input checkout.StartInput) (*checkout.CheckoutSessionResult, error) {
	s.caller = caller
	s.input = input
	return &checkout.CheckoutSessionResult{URL: "https://checkout.test/cs_1", SessionID: "cs_1"}, nil
}

type channelBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Order   *struct {
		OrderNumber string `json:"order_number"`
	} `json:"order"`
}

func asShopper(req *http.Request, userID uuid.UUID) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), userID.String(), "user", "shopper@example.com", "jti"))
}

const addressJSON = `{"shippingAddress":{"fullName":"Dana Price","phone":"555-0100","address":"1 Main St","city":"Austin","state":"TX","zipCode":"78701","country":"US"}}`

func TestConfirmPaymentCreatedContract(t *testing.T) {
	userID := uuid.New()
	channels := &stubChannels{result: &reconciliation.Result{Order: &models.Order{OrderNumber: "ORD-000007"}, Created: true}}
	req := asShopper(httptest.NewRequest(http.MethodPost, "/api/v1/checkout/confirm-payment", strings.NewReader(`{"paymentIntentId":"pi_123"}`)), userID)

	rec := httptest.NewRecorder()
	ConfirmPayment(channels, nil)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body channelBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.NotNil(t, body.Order)
	assert.Equal(t, "ORD-000007", body.Order.OrderNumber)
	assert.Equal(t, "Order created successfully", body.Message)
	assert.Equal(t, "pi_123", channels.intentID)
	assert.Equal(t, userID, channels.caller.UserID)
	assert.Equal(t, "shopper@example.com", channels.caller.Email)
}

func TestConfirmPaymentUnpaidContract(t *testing.T) {
	channels := &stubChannels{err: pkgerrors.New(pkgerrors.CodeUnpaid, "Payment not completed")}
	req := asShopper(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"paymentIntentId":"pi_123"}`)), uuid.New())

	rec := httptest.NewRecorder()
	ConfirmPayment(channels, nil)(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body channelBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Nil(t, body.Order)
	assert.Equal(t, "Payment not completed", body.Message)
}

func TestVerifySessionDuplicateMessage(t *testing.T) {
	channels := &stubChannels{result: &reconciliation.Result{Order: &models.Order{OrderNumber: "ORD-000001"}, Created: false}}
	req := asShopper(httptest.NewRequest(http.MethodGet, "/", nil), uuid.New())
	rc := chi.NewRouteContext()
	rc.URLParams.Add("sessionID", "cs_abc")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))

	rec := httptest.NewRecorder()
	VerifySession(channels, nil)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body channelBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "Order already exists", body.Message)
	assert.Equal(t, "cs_abc", channels.sessionID)
}

func TestCreateCheckoutSessionPassesOriginAndEmail(t *testing.T) {
	svc := &stubCheckout{}
	userID := uuid.New()
	req := asShopper(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(addressJSON)), userID)
	req.Header.Set("Origin", "https://shop.example.com")

	rec := httptest.NewRecorder()
	CreateCheckoutSession(svc, nil)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "https://shop.example.com", svc.input.Origin)
	assert.Equal(t, userID, svc.caller.UserID)
	assert.Equal(t, "shopper@example.com", svc.caller.Email)
	assert.Equal(t, "Austin", svc.input.ShippingAddress.City)
}

func TestCreatePaymentIntentRequiresAddress(t *testing.T) {
	svc := &stubCheckout{}
	req := asShopper(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"shippingAddress":{"fullName":"Dana"}}`)), uuid.New())

	rec := httptest.NewRecorder()
	CreatePaymentIntent(svc, nil)(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
