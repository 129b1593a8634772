package models

import (
	"time"

	"github.com/buy2brands/wholesale-api/pkg/enums"
	"github.com/buy2brands/wholesale-api/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order is a placed order. Items are a snapshot taken when the order was created.
type Order struct {
	ID                    uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber           string                `gorm:"column:order_number;not null"`
	Sequence              int64                 `gorm:"column:sequence;not null"`
	UserID                uuid.UUID             `gorm:"column:user_id;type:uuid;not null"`
	User                  *User                 `gorm:"foreignKey:UserID"`
	Items                 types.OrderItems      `gorm:"column:items;type:jsonb;not null"`
	ShippingAddress       types.ShippingAddress `gorm:"column:shipping_address;type:jsonb;not null"`
	PaymentMethod         enums.PaymentMethod   `gorm:"column:payment_method;not null"`
	PaymentStatus         enums.PaymentStatus   `gorm:"column:payment_status;not null"`
	Status                enums.OrderStatus     `gorm:"column:status;not null"`
	Subtotal              types.Money           `gorm:"column:subtotal_cents;not null"`
	Tax                   types.Money           `gorm:"column:tax_cents;not null"`
	ShippingCost          types.Money           `gorm:"column:shipping_cost_cents;not null"`
	Total                 types.Money           `gorm:"column:total_cents;not null"`
	CustomerNotes         *string               `gorm:"column:customer_notes"`
	AdminNotes            *string               `gorm:"column:admin_notes"`
	TrackingNumber        *string               `gorm:"column:tracking_number"`
	StatusHistory         types.StatusHistory   `gorm:"column:status_history;type:jsonb;not null"`
	StripePaymentIntentID *string               `gorm:"column:stripe_payment_intent_id"`
	StripeSessionID       *string               `gorm:"column:stripe_session_id"`
	CreatedAt             time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// GatewayRef returns the payment reference the order was reconciled from, if any.
func (o *Order) GatewayRef() (enums.GatewayRefKind, string, bool) {
	switch {
	case o.StripePaymentIntentID != nil && *o.StripePaymentIntentID != "":
		return enums.GatewayRefPaymentIntent, *o.StripePaymentIntentID, true
	case o.StripeSessionID != nil && *o.StripeSessionID != "":
		return enums.GatewayRefCheckoutSession, *o.StripeSessionID, true
	default:
		return "", "", false
	}
}
