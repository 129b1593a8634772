package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/buy2brands/wholesale-api/api/middleware"
	"github.com/buy2brands/wholesale-api/api/responses"
	"github.com/buy2brands/wholesale-api/api/validators"
	"github.com/buy2brands/wholesale-api/internal/checkout"
	"github.com/buy2brands/wholesale-api/internal/orders"
	"github.com/buy2brands/wholesale-api/internal/reconciliation"
	pkgerrors "github.com/buy2brands/wholesale-api/pkg/errors"
	"github.com/buy2brands/wholesale-api/pkg/logger"
)

// PaymentChannels are the interactive reconciliation entry points.
type PaymentChannels interface {
	ConfirmPayment(ctx context.Context, intentID string, caller reconciliation.Caller) (*reconciliation.Result, error)
	VerifySession(ctx context.Context, sessionID string, caller reconciliation.Caller) (*reconciliation.Result, error)
}

func CheckoutQuote(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// CreatePaymentIntent opens an embedded card payment for the caller's cart.
func CreatePaymentIntent(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		caller, input, err := startRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreatePaymentIntent(r.Context(), caller, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CreateCheckoutSession opens a hosted checkout page for the caller's cart.
func CreateCheckoutSession(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		caller, input, err := startRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.Origin = r.Header.Get("Origin")

		result, err := svc.CreateCheckoutSession(r.Context(), caller, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type confirmPaymentRequest struct {
	PaymentIntentID string `json:"paymentIntentId" validate:"required"`
}

// ConfirmPayment reconciles an intent the client reports as paid.
func ConfirmPayment(channels PaymentChannels, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if channels == nil {
			responses.WriteChannelError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment channels unavailable"))
			return
		}
		caller, err := reconcileCaller(r)
		if err != nil {
			responses.WriteChannelError(r.Context(), logg, w, err)
			return
		}

		var body confirmPaymentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteChannelError(r.Context(), logg, w, err)
			return
		}

		result, err := channels.ConfirmPayment(r.Context(), body.PaymentIntentID, caller)
		if err != nil {
			responses.WriteChannelError(r.Context(), logg, w, err)
			return
		}
		writeChannelResult(w, result)
	}
}

// VerifySession reconciles the checkout session the shopper returned from.
func VerifySession(channels PaymentChannels, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if channels == nil {
			responses.WriteChannelError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment channels unavailable"))
			return
		}
		caller, err := reconcileCaller(r)
		if err != nil {
			responses.WriteChannelError(r.Context(), logg, w, err)
			return
		}

		result, err := channels.VerifySession(r.Context(), chi.URLParam(r, "sessionID"), caller)
		if err != nil {
			responses.WriteChannelError(r.Context(), logg, w, err)
			return
		}
		writeChannelResult(w, result)
	}
}

func startRequest(r *http.Request) (checkout.Caller, checkout.StartInput, error) {
	userID, err := callerID(r)
	if err != nil {
		return checkout.Caller{}, checkout.StartInput{}, err
	}
	var input checkout.StartInput
	if err := validators.DecodeJSONBody(r, &input); err != nil {
		return checkout.Caller{}, checkout.StartInput{}, err
	}
	return checkout.Caller{UserID: userID, Email: middleware.EmailFromContext(r.Context())}, input, nil
}

func reconcileCaller(r *http.Request) (reconciliation.Caller, error) {
	userID, err := callerID(r)
	if err != nil {
		return reconciliation.Caller{}, err
	}
	return reconciliation.Caller{UserID: userID, Email: strings.TrimSpace(middleware.EmailFromContext(r.Context()))}, nil
}

func writeChannelResult(w http.ResponseWriter, result *reconciliation.Result) {
	message := "Order created successfully"
	if !result.Created {
		message = "Order already exists"
	}
	responses.WriteJSON(w, http.StatusOK, responses.ChannelResult{
		Success: true,
		Order:   orders.FromModel(result.Order),
		Message: message,
	})
}

