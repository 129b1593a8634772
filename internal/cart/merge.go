package cart

import (
	"fmt"

	"github.com/buy2brands/wholesale-api/pkg/types"
	"github.com/google/uuid"
)

// MergeKey identifies lines that collapse into one when added twice. Packs merge
// on name, multiplier and discount flag; single items on name, size and colour.
func MergeKey(item types.CartItem) string {
	if item.IsPack {
		return fmt.Sprintf("pack::%s::multiplier=%d::discount=%t", item.Name, item.PackMultiplier, item.HasDiscount)
	}
	return fmt.Sprintf("single::%s::size=%s::color=%s", item.Name, item.Size, item.Color)
}

// Merge folds incoming into items. A line with the same merge key gains the
// incoming quantity and total (and multiplier, for packs); otherwise incoming is
// appended with a generated cart item id when none was supplied.
func Merge(items types.CartItems, incoming types.CartItem) types.CartItems {
	incoming.MergeKey = MergeKey(incoming)
	for i := range items {
		if items[i].MergeKey != incoming.MergeKey {
			continue
		}
		items[i].Quantity += incoming.Quantity
		items[i].TotalPrice += incoming.TotalPrice
		if incoming.IsPack {
			items[i].PackMultiplier += incoming.PackMultiplier
		}
		return items
	}
	if incoming.CartItemID == "" {
		incoming.CartItemID = uuid.NewString()
	}
	return append(items, incoming)
}
