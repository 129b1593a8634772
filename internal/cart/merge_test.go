package cart

import (
	"testing"

	"github.com/buy2brands/wholesale-api/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeKey(t *testing.T) {
	pack := types.CartItem{Name: "Tee Pack", IsPack: true, PackMultiplier: 2, HasDiscount: true}
	assert.Equal(t, "pack::Tee Pack::multiplier=2::discount=true", MergeKey(pack))

	single := types.CartItem{Name: "Tee", Size: "M", Color: "Black"}
	assert.Equal(t, "single::Tee::size=M::color=Black", MergeKey(single))
}

func TestMergeCombinesMatchingLines(t *testing.T) {
	productID := uuid.New()
	items := Merge(nil, types.CartItem{ProductID: productID, Name: "Tee", Size: "M", Quantity: 2, TotalPrice: 1000})
	require.Len(t, items, 1)
	require.NotEmpty(t, items[0].CartItemID)
	firstID := items[0].CartItemID

	items = Merge(items, types.CartItem{ProductID: productID, Name: "Tee", Size: "M", Quantity: 1, TotalPrice: 500})
	require.Len(t, items, 1)
	assert.Equal(t, firstID, items[0].CartItemID)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, types.Money(1500), items[0].TotalPrice)

	items = Merge(items, types.CartItem{ProductID: productID, Name: "Tee", Size: "L", Quantity: 1, TotalPrice: 500})
	assert.Len(t, items, 2)
}

func TestMergePacksAddMultiplier(t *testing.T) {
	pack := types.CartItem{Name: "Tee Pack", IsPack: true, PackMultiplier: 1, Quantity: 6, TotalPrice: 3000}
	items := Merge(nil, pack)
	items = Merge(items, pack)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].PackMultiplier)
	assert.Equal(t, 12, items[0].Quantity)
	assert.Equal(t, types.Money(6000), items[0].TotalPrice)

	discounted := pack
	discounted.HasDiscount = true
	items = Merge(items, discounted)
	assert.Len(t, items, 2, "discount flag splits the line")
}

func TestRescaleKeepsUnitPrice(t *testing.T) {
	assert.Equal(t, types.Money(2000), rescale(1000, 2, 4))
	assert.Equal(t, types.Money(667), rescale(1000, 3, 2))
	assert.Equal(t, types.Money(0), rescale(1000, 0, 2))
}
