package models

import (
	"time"

	"github.com/buy2brands/wholesale-api/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog listing.
type Product struct {
	ID                  uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	Name                string                `gorm:"column:name;not null"`
	Brand               string                `gorm:"column:brand;not null"`
	Category            string                `gorm:"column:category;not null"`
	Subcategory         *string               `gorm:"column:subcategory"`
	Gender              *string               `gorm:"column:gender"`
	OnSale              bool                  `gorm:"column:on_sale;not null;default:false"`
	SKU                 string                `gorm:"column:sku;not null;uniqueIndex"`
	ImageURL            *string               `gorm:"column:image_url"`
	UnitPrice           types.Money           `gorm:"column:unit_price_cents;not null"`
	Description         *string               `gorm:"column:description"`
	Variants            types.ProductVariants `gorm:"column:variants;type:jsonb;not null"`
	Pack                types.PackConfig      `gorm:"column:pack;type:jsonb;not null"`
	TaxPercentage       decimal.Decimal       `gorm:"column:tax_percentage;type:numeric(5,2);not null;default:0"`
	ShippingStructureID *uuid.UUID            `gorm:"column:shipping_structure_id;type:uuid"`
	IsActive            bool                  `gorm:"column:is_active;not null"`
	AverageRating       decimal.Decimal       `gorm:"column:average_rating;type:numeric(2,1);not null;default:0"`
	ReviewCount         int                   `gorm:"column:review_count;not null;default:0"`
	CreatedAt           time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
