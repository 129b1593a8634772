package types

import "database/sql/driver"

// ProductVariant is a purchasable size/colour of a product.
type ProductVariant struct {
	Size      string `json:"size"`
	Color     string `json:"color"`
	Stock     int    `json:"stock"`
	SKU       string `json:"sku,omitempty"`
	UnitPrice *Money `json:"unit_price,omitempty"`
}

type ProductVariants []ProductVariant

func (v ProductVariants) Value() (driver.Value, error) {
	if v == nil {
		return "[]", nil
	}
	return jsonValue(v, "[]")
}

func (v *ProductVariants) Scan(value interface{}) error {
	*v = nil
	return scanJSON(value, v)
}

// PackConfig describes how a product is sold as a pre-assorted pack.
type PackConfig struct {
	Enabled         bool            `json:"enabled"`
	DiscountPercent int             `json:"discount_percent"`
	Variations      []PackVariation `json:"variations,omitempty"`
}

// ItemsPerPack totals the quantities of the pack's variations.
func (p PackConfig) ItemsPerPack() int {
	n := 0
	for _, v := range p.Variations {
		n += v.Quantity
	}
	return n
}

func (p PackConfig) Value() (driver.Value, error) {
	return jsonValue(p, "{}")
}

func (p *PackConfig) Scan(value interface{}) error {
	*p = PackConfig{}
	return scanJSON(value, p)
}

// ShippingRule is one item-count tier of a shipping structure.
type ShippingRule struct {
	MinItems              int   `json:"min_items"`
	MaxItems              *int  `json:"max_items,omitempty"`
	BaseCost              Money `json:"base_cost"`
	CostPerAdditionalItem Money `json:"cost_per_additional_item"`
	IsFree                bool  `json:"is_free"`
}

// Matches reports whether count falls inside the rule's range.
func (r ShippingRule) Matches(count int) bool {
	return count >= r.MinItems && (r.MaxItems == nil || count <= *r.MaxItems)
}

type ShippingRules []ShippingRule

func (r ShippingRules) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	return jsonValue(r, "[]")
}

func (r *ShippingRules) Scan(value interface{}) error {
	*r = nil
	return scanJSON(value, r)
}
