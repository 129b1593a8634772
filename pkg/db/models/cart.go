package models

import (
	"time"

	"github.com/buy2brands/wholesale-api/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cart holds one user's pending lines. There is at most one row per user.
type Cart struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID       `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Items     types.CartItems `gorm:"column:items;type:jsonb;not null"`
	Total     types.Money     `gorm:"column:total_cents;not null;default:0"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Cart) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// Recalculate resets Total to the sum of the line totals.
func (c *Cart) Recalculate() {
	c.Total = c.Items.Total()
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}
