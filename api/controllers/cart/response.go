package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/buy2brands/wholesale-api/pkg/db/models"
	"github.com/buy2brands/wholesale-api/pkg/types"
)

// CartResponse is the buyer-facing view of a cart.
type CartResponse struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Items     types.CartItems `json:"items"`
	Total     types.Money     `json:"total"`
	ItemCount int             `json:"item_count"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func newCartResponse(record *models.Cart) CartResponse {
	if record == nil {
		return CartResponse{Items: types.CartItems{}}
	}
	items := record.Items
	if items == nil {
		items = types.CartItems{}
	}
	return CartResponse{
		ID:        record.ID,
		UserID:    record.UserID,
		Items:     items,
		Total:     record.Total,
		ItemCount: items.Units(),
		UpdatedAt: record.UpdatedAt,
	}
}
