package reconciliation

import (
	"strconv"
	"strings"

	"github.com/buy2brands/wholesale-api/pkg/types"
	"github.com/google/uuid"
)

// Metadata keys attached to payment intents and checkout sessions at checkout.
const (
	KeyUserID     = "userId"
	KeyFullName   = "fullName"
	KeyEmail      = "email"
	KeyPhone      = "phone"
	KeyAddress    = "address"
	KeyCity       = "city"
	KeyState      = "state"
	KeyZipCode    = "zipCode"
	KeyCountry    = "country"
	KeyTax        = "tax"
	KeyShipping   = "shipping"
	KeyTotalItems = "totalItems"
)

// Metadata is the checkout-time context carried by the gateway. Tax and
// shipping are authoritative once attached.
type Metadata struct {
	UserID     uuid.UUID
	Address    types.ShippingAddress
	Tax        types.Money
	Shipping   types.Money
	TotalItems int
}

// Encode renders the metadata as the gateway's string bag.
func (m Metadata) Encode() map[string]string {
	return map[string]string{
		KeyUserID:     m.UserID.String(),
		KeyFullName:   m.Address.FullName,
		KeyEmail:      m.Address.Email,
		KeyPhone:      m.Address.Phone,
		KeyAddress:    m.Address.Address,
		KeyCity:       m.Address.City,
		KeyState:      m.Address.State,
		KeyZipCode:    m.Address.ZipCode,
		KeyCountry:    m.Address.Country,
		KeyTax:        m.Tax.String(),
		KeyShipping:   m.Shipping.String(),
		KeyTotalItems: strconv.Itoa(m.TotalItems),
	}
}

// ParseMetadata coerces the gateway's string bag. Fields that fail to parse
// are left at zero and their keys returned so callers can log them.
func ParseMetadata(raw map[string]string) (Metadata, []string) {
	var invalid []string
	meta := Metadata{
		Address: types.ShippingAddress{
			FullName: raw[KeyFullName],
			Email:    raw[KeyEmail],
			Phone:    raw[KeyPhone],
			Address:  raw[KeyAddress],
			City:     raw[KeyCity],
			State:    raw[KeyState],
			ZipCode:  raw[KeyZipCode],
			Country:  raw[KeyCountry],
		}.Normalize(),
	}

	if v := strings.TrimSpace(raw[KeyUserID]); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			invalid = append(invalid, KeyUserID)
		} else {
			meta.UserID = id
		}
	}

	var err error
	if meta.Tax, err = types.ParseMoney(raw[KeyTax]); err != nil || meta.Tax < 0 {
		meta.Tax = 0
		invalid = append(invalid, KeyTax)
	}
	if meta.Shipping, err = types.ParseMoney(raw[KeyShipping]); err != nil || meta.Shipping < 0 {
		meta.Shipping = 0
		invalid = append(invalid, KeyShipping)
	}
	if v := strings.TrimSpace(raw[KeyTotalItems]); v != "" {
		n, convErr := strconv.Atoi(v)
		if convErr != nil || n < 0 {
			invalid = append(invalid, KeyTotalItems)
		} else {
			meta.TotalItems = n
		}
	}
	return meta, invalid
}
