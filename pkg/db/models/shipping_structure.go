package models

import (
	"time"

	"github.com/buy2brands/wholesale-api/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShippingStructure is a named set of item-count tiers used to price delivery.
type ShippingStructure struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Name        string              `gorm:"column:name;not null;uniqueIndex"`
	Description *string             `gorm:"column:description"`
	Rules       types.ShippingRules `gorm:"column:rules;type:jsonb;not null"`
	IsDefault   bool                `gorm:"column:is_default;not null;default:false"`
	IsActive    bool                `gorm:"column:is_active;not null"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *ShippingStructure) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
