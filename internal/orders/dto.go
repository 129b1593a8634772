package orders

import (
	"time"

	"github.com/buy2brands/wholesale-api/pkg/db/models"
	"github.com/buy2brands/wholesale-api/pkg/enums"
	"github.com/buy2brands/wholesale-api/pkg/types"
	"github.com/google/uuid"
)

// Caller identifies who is acting on an order.
type Caller struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// IsAdmin reports whether the caller holds the administrator role.
func (c Caller) IsAdmin() bool {
	return c.Role == enums.UserRoleAdmin
}

// ListFilters narrows a customer's own order history.
type ListFilters struct {
	Status *enums.OrderStatus
}

// AdminListFilters narrows the administrative order list. Search matches the
// order number or the customer's email.
type AdminListFilters struct {
	Status *enums.OrderStatus
	Search string
}

// OrderList is one page of orders, newest first.
type OrderList struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// UpdateStatusInput is the admin payload for a status transition.
type UpdateStatusInput struct {
	Status         enums.OrderStatus `json:"status" validate:"required"`
	Note           *string           `json:"note" validate:"omitempty,max=1000"`
	TrackingNumber *string           `json:"tracking_number" validate:"omitempty,max=100"`
}

// CancelInput is the optional customer payload when cancelling.
type CancelInput struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// CustomerSummary is the part of the ordering account shown alongside an order.
type CustomerSummary struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	CompanyName string    `json:"company_name"`
}

// OrderDTO is the transport shape of an order.
type OrderDTO struct {
	ID                    uuid.UUID             `json:"id"`
	OrderNumber           string                `json:"order_number"`
	UserID                uuid.UUID             `json:"user_id"`
	Customer              *CustomerSummary      `json:"customer,omitempty"`
	Items                 types.OrderItems      `json:"items"`
	ShippingAddress       types.ShippingAddress `json:"shipping_address"`
	PaymentMethod         enums.PaymentMethod   `json:"payment_method"`
	PaymentStatus         enums.PaymentStatus   `json:"payment_status"`
	Status                enums.OrderStatus     `json:"status"`
	Subtotal              types.Money           `json:"subtotal"`
	Tax                   types.Money           `json:"tax"`
	ShippingCost          types.Money           `json:"shipping_cost"`
	Total                 types.Money           `json:"total"`
	CustomerNotes         *string               `json:"customer_notes,omitempty"`
	AdminNotes            *string               `json:"admin_notes,omitempty"`
	TrackingNumber        *string               `json:"tracking_number,omitempty"`
	StatusHistory         types.StatusHistory   `json:"status_history"`
	StripePaymentIntentID *string               `json:"stripe_payment_intent_id,omitempty"`
	StripeSessionID       *string               `json:"stripe_session_id,omitempty"`
	CreatedAt             time.Time             `json:"created_at"`
	UpdatedAt             time.Time             `json:"updated_at"`
}

// OrderListDTO is the transport shape of an OrderList.
type OrderListDTO struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

func FromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	dto := &OrderDTO{
		ID:                    o.ID,
		OrderNumber:           o.OrderNumber,
		UserID:                o.UserID,
		Items:                 o.Items,
		ShippingAddress:       o.ShippingAddress,
		PaymentMethod:         o.PaymentMethod,
		PaymentStatus:         o.PaymentStatus,
		Status:                o.Status,
		Subtotal:              o.Subtotal,
		Tax:                   o.Tax,
		ShippingCost:          o.ShippingCost,
		Total:                 o.Total,
		CustomerNotes:         o.CustomerNotes,
		AdminNotes:            o.AdminNotes,
		TrackingNumber:        o.TrackingNumber,
		StatusHistory:         o.StatusHistory,
		StripePaymentIntentID: o.StripePaymentIntentID,
		StripeSessionID:       o.StripeSessionID,
		CreatedAt:             o.CreatedAt,
		UpdatedAt:             o.UpdatedAt,
	}
	if o.User != nil {
		dto.Customer = &CustomerSummary{
			ID:          o.User.ID,
			Email:       o.User.Email,
			FirstName:   o.User.FirstName,
			LastName:    o.User.LastName,
			CompanyName: o.User.CompanyName,
		}
	}
	return dto
}

func FromList(list *OrderList) *OrderListDTO {
	out := &OrderListDTO{Orders: []OrderDTO{}}
	if list == nil {
		return out
	}
	out.NextCursor = list.NextCursor
	for i := range list.Orders {
		out.Orders = append(out.Orders, *FromModel(&list.Orders[i]))
	}
	return out
}
