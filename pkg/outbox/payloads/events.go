package payloads

import (
	"time"

	"github.com/google/uuid"
)

// OrderCreatedEvent is emitted when a payment has been reconciled into an order.
type OrderCreatedEvent struct {
	OrderID       uuid.UUID `json:"orderId"`
	OrderNumber   string    `json:"orderNumber"`
	UserID        uuid.UUID `json:"userId"`
	TotalCents    int64     `json:"totalCents"`
	ItemCount     int       `json:"itemCount"`
	GatewayRef    string    `json:"gatewayRef"`
	GatewayRefKey string    `json:"gatewayRefKind"`
	Channel       string    `json:"channel"`
}

// OrderStatusChangedEvent is emitted on every administrative status change.
type OrderStatusChangedEvent struct {
	OrderID     uuid.UUID `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	UserID      uuid.UUID `json:"userId"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	Note        string    `json:"note,omitempty"`
	ChangedAt   time.Time `json:"changedAt"`
}

// OrderCancelledEvent is emitted when a customer cancels.
type OrderCancelledEvent struct {
	OrderID     uuid.UUID `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	UserID      uuid.UUID `json:"userId"`
	Reason      string    `json:"reason,omitempty"`
}

// ReturnRequestedEvent is emitted when a customer opens a return.
type ReturnRequestedEvent struct {
	ReturnRequestID uuid.UUID `json:"returnRequestId"`
	OrderNumber     string    `json:"orderNumber"`
	UserID          uuid.UUID `json:"userId"`
	Reason          string    `json:"reason"`
}
