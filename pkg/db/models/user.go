package models

import (
	"time"

	"github.com/buy2brands/wholesale-api/pkg/enums"
	"github.com/buy2brands/wholesale-api/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a storefront account: a wholesale buyer or an administrator.
type User struct {
	ID                  uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	Email               string                   `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash        string                   `gorm:"column:password_hash;not null"`
	FirstName           string                   `gorm:"column:first_name;not null"`
	LastName            string                   `gorm:"column:last_name;not null"`
	ContactNumber       string                   `gorm:"column:contact_number;not null"`
	CompanyName         string                   `gorm:"column:company_name;not null"`
	Website             *string                  `gorm:"column:website"`
	BusinessDescription *string                  `gorm:"column:business_description"`
	BusinessType        enums.BusinessType       `gorm:"column:business_type;not null"`
	NumberOfStores      int                      `gorm:"column:number_of_stores;not null;default:1"`
	BillingAddress      types.PostalAddress      `gorm:"column:billing_address;type:jsonb;not null"`
	DispatchAddress     types.PostalAddress      `gorm:"column:dispatch_address;type:jsonb;not null"`
	ContactPreferences  types.ContactPreferences `gorm:"column:contact_preferences;type:jsonb;not null"`
	Role                enums.UserRole           `gorm:"column:role;not null;default:user"`
	IsActive            bool                     `gorm:"column:is_active;not null"`
	LastLoginAt         *time.Time               `gorm:"column:last_login_at"`
	CreatedAt           time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

// FullName joins the first and last name.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
