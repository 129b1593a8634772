package types

import (
	"database/sql/driver"

	"github.com/google/uuid"
)

// PackVariation is one size/colour slot of a pack, or one requested variation of a bulk add.
type PackVariation struct {
	Size     string `json:"size"`
	Color    string `json:"color"`
	Quantity int    `json:"quantity"`
}

// CartItem is a single line of a user's cart.
type CartItem struct {
	CartItemID      string          `json:"cart_item_id"`
	MergeKey        string          `json:"merge_key"`
	ProductID       uuid.UUID       `json:"product_id"`
	Name            string          `json:"name"`
	Brand           string          `json:"brand"`
	IsPack          bool            `json:"is_pack"`
	PackMultiplier  int             `json:"pack_multiplier,omitempty"`
	HasDiscount     bool            `json:"has_discount"`
	DiscountPercent int             `json:"discount_percent,omitempty"`
	Variations      []PackVariation `json:"variations,omitempty"`
	ItemCount       int             `json:"item_count,omitempty"`
	Size            string          `json:"size,omitempty"`
	Color           string          `json:"color,omitempty"`
	Quantity        int             `json:"quantity"`
	TotalPrice      Money           `json:"total_price"`
}

// UnitPrice is the line's current price per unit of quantity.
func (c CartItem) UnitPrice() Money {
	if c.Quantity <= 0 {
		return 0
	}
	return c.TotalPrice / Money(c.Quantity)
}

// Units is the number of physical items the line represents.
func (c CartItem) Units() int {
	if c.IsPack && c.ItemCount > 0 {
		return c.ItemCount * c.Quantity
	}
	return c.Quantity
}

// CartItems is persisted as a jsonb array.
type CartItems []CartItem

// Total sums the line totals.
func (c CartItems) Total() Money {
	var total Money
	for _, item := range c {
		total += item.TotalPrice
	}
	return total
}

// Units sums the physical item count across lines.
func (c CartItems) Units() int {
	n := 0
	for _, item := range c {
		n += item.Units()
	}
	return n
}

func (c CartItems) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	return jsonValue(c, "[]")
}

func (c *CartItems) Scan(value interface{}) error {
	*c = nil
	return scanJSON(value, c)
}
