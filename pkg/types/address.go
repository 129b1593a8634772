package types

import (
	"database/sql/driver"
	"strings"
)

// ShippingAddress is the delivery contact captured at checkout and copied onto the order.
type ShippingAddress struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zip_code"`
	Country  string `json:"country"`
}

// Normalize trims every field and lower-cases the email.
func (a ShippingAddress) Normalize() ShippingAddress {
	return ShippingAddress{
		FullName: strings.TrimSpace(a.FullName),
		Email:    strings.ToLower(strings.TrimSpace(a.Email)),
		Phone:    strings.TrimSpace(a.Phone),
		Address:  strings.TrimSpace(a.Address),
		City:     strings.TrimSpace(a.City),
		State:    strings.TrimSpace(a.State),
		ZipCode:  strings.TrimSpace(a.ZipCode),
		Country:  strings.TrimSpace(a.Country),
	}
}

// OneLine renders the postal part of the address for emails.
func (a ShippingAddress) OneLine() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.Address, a.City, a.State, a.ZipCode, a.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func (a ShippingAddress) Value() (driver.Value, error) {
	return jsonValue(a, "{}")
}

func (a *ShippingAddress) Scan(value interface{}) error {
	*a = ShippingAddress{}
	return scanJSON(value, a)
}

// PostalAddress is a billing or dispatching address on a user profile.
type PostalAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country"`
}

func (a PostalAddress) Value() (driver.Value, error) {
	return jsonValue(a, "{}")
}

func (a *PostalAddress) Scan(value interface{}) error {
	*a = PostalAddress{}
	return scanJSON(value, a)
}

// ContactPreferences records how a business prefers to be reached.
type ContactPreferences struct {
	Email bool `json:"email"`
	Phone bool `json:"phone"`
	SMS   bool `json:"sms"`
}

func (c ContactPreferences) Value() (driver.Value, error) {
	return jsonValue(c, "{}")
}

func (c *ContactPreferences) Scan(value interface{}) error {
	*c = ContactPreferences{}
	return scanJSON(value, c)
}
