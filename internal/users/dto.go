package users

import (
	"strings"
	"time"

	"github.com/buy2brands/wholesale-api/pkg/db/models"
	"github.com/buy2brands/wholesale-api/pkg/enums"
	"github.com/buy2brands/wholesale-api/pkg/types"
	"github.com/google/uuid"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID                  uuid.UUID                `json:"id"`
	Email               string                   `json:"email"`
	FirstName           string                   `json:"first_name"`
	LastName            string                   `json:"last_name"`
	ContactNumber       string                   `json:"contact_number"`
	CompanyName         string                   `json:"company_name"`
	Website             *string                  `json:"website,omitempty"`
	BusinessDescription *string                  `json:"business_description,omitempty"`
	BusinessType        enums.BusinessType       `json:"business_type"`
	NumberOfStores      int                      `json:"number_of_stores"`
	BillingAddress      types.PostalAddress      `json:"billing_address"`
	DispatchAddress     types.PostalAddress      `json:"dispatching_address"`
	ContactPreferences  types.ContactPreferences `json:"contact_preferences"`
	Role                enums.UserRole           `json:"role"`
	IsActive            bool                     `json:"is_active"`
	LastLoginAt         *time.Time               `json:"last_login_at,omitempty"`
	CreatedAt           time.Time                `json:"created_at"`
	UpdatedAt           time.Time                `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email               string
	PasswordHash        string
	FirstName           string
	LastName            string
	ContactNumber       string
	CompanyName         string
	Website             *string
	BusinessDescription *string
	BusinessType        enums.BusinessType
	NumberOfStores      int
	BillingAddress      types.PostalAddress
	DispatchAddress     types.PostalAddress
	ContactPreferences  types.ContactPreferences
	Role                enums.UserRole
	IsActive            *bool
}

// UpdateProfileInput lists the fields a user may change on their own account.
type UpdateProfileInput struct {
	FirstName           *string                   `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName            *string                   `json:"last_name" validate:"omitempty,min=1,max=100"`
	ContactNumber       *string                   `json:"contact_number" validate:"omitempty,max=30"`
	Website             *string                   `json:"website" validate:"omitempty,url"`
	BusinessDescription *string                   `json:"business_description" validate:"omitempty,max=2000"`
	BusinessType        *enums.BusinessType       `json:"business_type"`
	NumberOfStores      *int                      `json:"number_of_stores" validate:"omitempty,gte=1"`
	BillingAddress      *types.PostalAddress      `json:"billing_address"`
	DispatchAddress     *types.PostalAddress      `json:"dispatching_address"`
	ContactPreferences  *types.ContactPreferences `json:"contact_preferences"`
}

// UserList is one page of accounts for administrators.
type UserList struct {
	Users      []UserDTO `json:"users"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:                  u.ID,
		Email:               u.Email,
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		ContactNumber:       u.ContactNumber,
		CompanyName:         u.CompanyName,
		Website:             u.Website,
		BusinessDescription: u.BusinessDescription,
		BusinessType:        u.BusinessType,
		NumberOfStores:      u.NumberOfStores,
		BillingAddress:      u.BillingAddress,
		DispatchAddress:     u.DispatchAddress,
		ContactPreferences:  u.ContactPreferences,
		Role:                u.Role,
		IsActive:            u.IsActive,
		LastLoginAt:         u.LastLoginAt,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	isActive := true
	if c.IsActive != nil {
		isActive = *c.IsActive
	}
	role := c.Role
	if role == "" {
		role = enums.UserRoleUser
	}
	businessType := c.BusinessType
	if businessType == "" {
		businessType = enums.BusinessTypeShop
	}
	stores := c.NumberOfStores
	if stores < 1 {
		stores = 1
	}
	return &models.User{
		Email:               strings.ToLower(strings.TrimSpace(c.Email)),
		PasswordHash:        c.PasswordHash,
		FirstName:           strings.TrimSpace(c.FirstName),
		LastName:            strings.TrimSpace(c.LastName),
		ContactNumber:       strings.TrimSpace(c.ContactNumber),
		CompanyName:         strings.TrimSpace(c.CompanyName),
		Website:             c.Website,
		BusinessDescription: c.BusinessDescription,
		BusinessType:        businessType,
		NumberOfStores:      stores,
		BillingAddress:      c.BillingAddress,
		DispatchAddress:     c.DispatchAddress,
		ContactPreferences:  c.ContactPreferences,
		Role:                role,
		IsActive:            isActive,
	}
}
