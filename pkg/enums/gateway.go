package enums

import "fmt"

// GatewayRefKind names which payment gateway object an order was reconciled from.
type GatewayRefKind string

const (
	GatewayRefPaymentIntent   GatewayRefKind = "payment_intent"
	GatewayRefCheckoutSession GatewayRefKind = "checkout_session"
)

var validGatewayRefKinds = []GatewayRefKind{
	GatewayRefPaymentIntent,
	GatewayRefCheckoutSession,
}

// String implements fmt.Stringer.
func (v GatewayRefKind) String() string {
	return string(v)
}

// IsValid reports whether the value is a known GatewayRefKind.
func (v GatewayRefKind) IsValid() bool {
	for _, candidate := range validGatewayRefKinds {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseGatewayRefKind converts raw input into a GatewayRefKind.
func ParseGatewayRefKind(value string) (GatewayRefKind, error) {
	for _, candidate := range validGatewayRefKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid gateway reference kind %q", value)
}

// ReconcileChannel is the trigger that delivered a payment completion.
type ReconcileChannel string

const (
	ChannelConfirm ReconcileChannel = "confirm"
	ChannelVerify  ReconcileChannel = "verify"
	ChannelWebhook ReconcileChannel = "webhook"
)

var validReconcileChannels = []ReconcileChannel{
	ChannelConfirm,
	ChannelVerify,
	ChannelWebhook,
}

// String implements fmt.Stringer.
func (v ReconcileChannel) String() string {
	return string(v)
}

// IsValid reports whether the value is a known ReconcileChannel.
func (v ReconcileChannel) IsValid() bool {
	for _, candidate := range validReconcileChannels {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseReconcileChannel converts raw input into a ReconcileChannel.
func ParseReconcileChannel(value string) (ReconcileChannel, error) {
	for _, candidate := range validReconcileChannels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reconcile channel %q", value)
}
