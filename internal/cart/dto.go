package cart

import (
	"github.com/buy2brands/wholesale-api/pkg/types"
	"github.com/google/uuid"
)

// AddItemInput is the body of an add-to-cart request. A non-pack payload with
// variations is a bulk add: one line per variation with a positive quantity.
type AddItemInput struct {
	CartItemID      string                `json:"cart_item_id" validate:"omitempty,max=64"`
	ProductID       uuid.UUID             `json:"product_id" validate:"required"`
	Name            string                `json:"name" validate:"omitempty,max=200"`
	Brand           string                `json:"brand" validate:"omitempty,max=100"`
	IsPack          bool                  `json:"is_pack"`
	PackMultiplier  int                   `json:"pack_multiplier" validate:"gte=0"`
	HasDiscount     bool                  `json:"has_discount"`
	DiscountPercent int                   `json:"discount_percent" validate:"gte=0,lte=100"`
	Variations      []types.PackVariation `json:"variations" validate:"omitempty,dive"`
	ItemCount       int                   `json:"item_count" validate:"gte=0"`
	Size            string                `json:"size" validate:"omitempty,max=50"`
	Color           string                `json:"color" validate:"omitempty,max=50"`
	Quantity        int                   `json:"quantity" validate:"gte=0"`
	TotalPrice      types.Money           `json:"total_price" validate:"gte=0"`
}

// UpdateQuantityInput changes one line's quantity. Quantities below one remove the line.
type UpdateQuantityInput struct {
	CartItemID string `json:"cart_item_id" validate:"required"`
	Quantity   int    `json:"quantity"`
}

func (in AddItemInput) isBulk() bool {
	return !in.IsPack && len(in.Variations) > 0
}

func (in AddItemInput) toItem() types.CartItem {
	return types.CartItem{
		CartItemID:      in.CartItemID,
		ProductID:       in.ProductID,
		Name:            in.Name,
		Brand:           in.Brand,
		IsPack:          in.IsPack,
		PackMultiplier:  in.PackMultiplier,
		HasDiscount:     in.HasDiscount,
		DiscountPercent: in.DiscountPercent,
		Variations:      in.Variations,
		ItemCount:       in.ItemCount,
		Size:            in.Size,
		Color:           in.Color,
		Quantity:        in.Quantity,
		TotalPrice:      in.TotalPrice,
	}
}
