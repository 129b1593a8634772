package auth

import (
	"github.com/buy2brands/wholesale-api/internal/users"
	"github.com/buy2brands/wholesale-api/pkg/enums"
	"github.com/buy2brands/wholesale-api/pkg/types"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the wholesale buyer sign-up payload.
type RegisterRequest struct {
	FirstName           string                   `json:"first_name" validate:"required,max=100"`
	LastName            string                   `json:"last_name" validate:"required,max=100"`
	Email               string                   `json:"email" validate:"required,email"`
	Password            string                   `json:"password" validate:"required,min=8,max=128"`
	ContactNumber       string                   `json:"contact_number" validate:"required,max=30"`
	CompanyName         string                   `json:"company_name" validate:"required,max=200"`
	Website             *string                  `json:"website,omitempty" validate:"omitempty,url"`
	BusinessDescription *string                  `json:"business_description,omitempty" validate:"omitempty,max=2000"`
	BusinessType        enums.BusinessType       `json:"business_type" validate:"required"`
	NumberOfStores      int                      `json:"number_of_stores" validate:"gte=0"`
	BillingAddress      types.PostalAddress      `json:"billing_address"`
	DispatchAddress     types.PostalAddress      `json:"dispatching_address"`
	ContactPreferences  types.ContactPreferences `json:"contact_preferences"`
}

// RefreshRequest pairs the (possibly expired) access token with its refresh token.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenResponse is returned by login, register and refresh.
type TokenResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
}
