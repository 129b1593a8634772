package checkout

import (
	"github.com/buy2brands/wholesale-api/pkg/types"
	"github.com/google/uuid"
)

// Caller is the authenticated shopper starting a checkout.
type Caller struct {
	UserID uuid.UUID
	Email  string
}

// ShippingAddressInput is the delivery address posted with a checkout request.
type ShippingAddressInput struct {
	FullName string `json:"fullName" validate:"required,max=200"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"required,max=40"`
	Address  string `json:"address" validate:"required,max=300"`
	City     string `json:"city" validate:"required,max=120"`
	State    string `json:"state" validate:"required,max=120"`
	ZipCode  string `json:"zipCode" validate:"required,max=20"`
	Country  string `json:"country" validate:"required,max=120"`
}

func (in ShippingAddressInput) toAddress() types.ShippingAddress {
	return types.ShippingAddress{
		FullName: in.FullName,
		Email:    in.Email,
		Phone:    in.Phone,
		Address:  in.Address,
		City:     in.City,
		State:    in.State,
		ZipCode:  in.ZipCode,
		Country:  in.Country,
	}.Normalize()
}

// StartInput starts either checkout flavour. Origin, when set, replaces the
// configured frontend URL in redirect targets.
type StartInput struct {
	ShippingAddress ShippingAddressInput `json:"shippingAddress" validate:"required"`
	Origin          string               `json:"-"`
}

// QuoteLine is one priced cart line.
type QuoteLine struct {
	CartItemID  string      `json:"cart_item_id"`
	ProductID   uuid.UUID   `json:"product_id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	ImageURL    string      `json:"image_url,omitempty"`
	Quantity    int         `json:"quantity"`
	Units       int         `json:"units"`
	Total       types.Money `json:"total"`
	Tax         types.Money `json:"tax"`
}

// Quote is the server-side price of the caller's cart.
type Quote struct {
	Lines      []QuoteLine `json:"lines"`
	Subtotal   types.Money `json:"subtotal"`
	Tax        types.Money `json:"tax"`
	Shipping   types.Money `json:"shipping"`
	Total      types.Money `json:"total"`
	TotalItems int         `json:"total_items"`
}

type PaymentIntentResult struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
	Quote           *Quote `json:"quote"`
}

type CheckoutSessionResult struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
	Quote     *Quote `json:"quote"`
}
