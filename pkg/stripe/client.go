package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/checkout/session"
	"github.com/stripe/stripe-go/v84/paymentintent"
	"github.com/stripe/stripe-go/v84/webhook"

	"github.com/buy2brands/wholesale-api/pkg/config"
	"github.com/buy2brands/wholesale-api/pkg/logger"
)

const (
	testEnv = "test"
	liveEnv = "live"

	// SignatureHeader carries the webhook signature computed over the raw body.
	SignatureHeader = "Stripe-Signature"
)

var (
	errAPIKeyRequired   = errors.New("stripe api key is required")
	errInvalidStripeEnv = fmt.Errorf("stripe environment must be %q or %q", testEnv, liveEnv)

	// ErrSignatureMissing is returned when a verified client receives a payload without a signature.
	ErrSignatureMissing = errors.New("stripe signature missing")
)

// Client wraps the Stripe SDK with env-specific metadata.
type Client struct {
	environment   string
	signingSecret string
	currency      string
}

// NewClient initializes Stripe once with the configured secrets and env.
// An empty webhook secret is accepted and puts the client in unverified mode.
func NewClient(ctx context.Context, cfg config.StripeConfig, logg *logger.Logger) (*Client, error) {
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	if err := validateAPIKey(env, apiKey); err != nil {
		return nil, err
	}

	stripe.Key = apiKey

	client := &Client{
		environment:   env,
		signingSecret: strings.TrimSpace(cfg.Secret),
		currency:      strings.ToLower(strings.TrimSpace(cfg.Currency)),
	}
	if client.currency == "" {
		client.currency = string(stripe.CurrencyGBP)
	}

	if logg != nil {
		ctx = logg.WithFields(ctx, map[string]any{
			"stripe_env": env,
			"verified":   client.Verified(),
		})
		logg.Info(ctx, "stripe.client_initialized")
		if !client.Verified() {
			logg.Warn(ctx, "stripe.webhook_secret_missing")
		}
	}

	return client, nil
}

// Environment reports the normalized Stripe environment in use.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// SigningSecret returns the webhook signing secret.
func (c *Client) SigningSecret() string {
	if c == nil {
		return ""
	}
	return c.signingSecret
}

// Currency is the ISO currency used for intents and sessions.
func (c *Client) Currency() string {
	if c == nil || c.currency == "" {
		return string(stripe.CurrencyGBP)
	}
	return c.currency
}

// Verified reports whether webhook payloads are signature-checked.
func (c *Client) Verified() bool {
	return c != nil && c.signingSecret != ""
}

// GetPaymentIntent retrieves an intent by id.
func (c *Client) GetPaymentIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	return paymentintent.Get(id, params)
}

// CreatePaymentIntent creates an intent with the provided params.
func (c *Client) CreatePaymentIntent(ctx context.Context, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	if params == nil {
		return nil, errors.New("payment intent params required")
	}
	params.Context = ctx
	return paymentintent.New(params)
}

// GetCheckoutSession retrieves a hosted checkout session by id.
func (c *Client) GetCheckoutSession(ctx context.Context, id string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	return session.Get(id, params)
}

// CreateCheckoutSession creates a hosted checkout session.
func (c *Client) CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	if params == nil {
		return nil, errors.New("checkout session params required")
	}
	params.Context = ctx
	return session.New(params)
}

// ParseEvent turns a raw webhook body into an event. With a signing secret the
// signature header is verified over the exact bytes; without one the body is
// decoded as-is and the second return value is false.
func (c *Client) ParseEvent(payload []byte, signature string) (stripe.Event, bool, error) {
	if !c.Verified() {
		var event stripe.Event
		if err := json.Unmarshal(payload, &event); err != nil {
			return stripe.Event{}, false, fmt.Errorf("decode unverified event: %w", err)
		}
		return event, false, nil
	}
	if strings.TrimSpace(signature) == "" {
		return stripe.Event{}, true, ErrSignatureMissing
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, c.signingSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, true, err
	}
	return event, true, nil
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = testEnv
	}
	switch env {
	case testEnv, liveEnv:
		return env, nil
	default:
		return "", errInvalidStripeEnv
	}
}

func validateAPIKey(env, key string) error {
	switch env {
	case testEnv:
		if strings.HasPrefix(key, "sk_test") || strings.HasPrefix(key, "rk_test") {
			return nil
		}
		return fmt.Errorf("stripe environment %q requires a test secret key (sk_test/rk_test)", testEnv)
	case liveEnv:
		if strings.HasPrefix(key, "sk_live") || strings.HasPrefix(key, "rk_live") {
			return nil
		}
		return fmt.Errorf("stripe environment %q requires a live secret key (sk_live/rk_live)", liveEnv)
	default:
		return errInvalidStripeEnv
	}
}
