package product

import (
	"time"

	"github.com/buy2brands/wholesale-api/pkg/db/models"
	"github.com/buy2brands/wholesale-api/pkg/pagination"
	"github.com/buy2brands/wholesale-api/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductDTO is the catalog payload returned to clients.
type ProductDTO struct {
	ID                  uuid.UUID             `json:"id"`
	Name                string                `json:"name"`
	Brand               string                `json:"brand"`
	Category            string                `json:"category"`
	Subcategory         *string               `json:"subcategory,omitempty"`
	Gender              *string               `json:"gender,omitempty"`
	OnSale              bool                  `json:"on_sale"`
	SKU                 string                `json:"sku"`
	ImageURL            *string               `json:"image_url,omitempty"`
	UnitPrice           types.Money           `json:"unit_price"`
	Description         *string               `json:"description,omitempty"`
	Variants            types.ProductVariants `json:"variants"`
	Pack                types.PackConfig      `json:"pack"`
	TaxPercentage       decimal.Decimal       `json:"tax_percentage"`
	ShippingStructureID *uuid.UUID            `json:"shipping_structure_id,omitempty"`
	IsActive            bool                  `json:"is_active"`
	AverageRating       decimal.Decimal       `json:"average_rating"`
	ReviewCount         int                   `json:"review_count"`
	CreatedAt           time.Time             `json:"created_at"`
	UpdatedAt           time.Time             `json:"updated_at"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	variants := product.Variants
	if variants == nil {
		variants = types.ProductVariants{}
	}
	return &ProductDTO{
		ID:                  product.ID,
		Name:                product.Name,
		Brand:               product.Brand,
		Category:            product.Category,
		Subcategory:         product.Subcategory,
		Gender:              product.Gender,
		OnSale:              product.OnSale,
		SKU:                 product.SKU,
		ImageURL:            product.ImageURL,
		UnitPrice:           product.UnitPrice,
		Description:         product.Description,
		Variants:            variants,
		Pack:                product.Pack,
		TaxPercentage:       product.TaxPercentage,
		ShippingStructureID: product.ShippingStructureID,
		IsActive:            product.IsActive,
		AverageRating:       product.AverageRating,
		ReviewCount:         product.ReviewCount,
		CreatedAt:           product.CreatedAt,
		UpdatedAt:           product.UpdatedAt,
	}
}

// ProductListFilters describe the supported filter knobs for the browse endpoint.
type ProductListFilters struct {
	Brand    string `json:"brand,omitempty"`
	Category string `json:"category,omitempty"`
	OnSale   *bool  `json:"on_sale,omitempty"`
	Query    string `json:"q,omitempty"`
}

// ListProductsInput captures the filters and page requested by a caller.
// Inactive products are only visible to administrators.
type ListProductsInput struct {
	Filters    ProductListFilters
	IsAdmin    bool
	Pagination pagination.Params
}

// ProductListResult is one page of the catalog.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name                string                `json:"name" validate:"required,max=200"`
	Brand               string                `json:"brand" validate:"required,max=100"`
	Category            string                `json:"category" validate:"required,max=100"`
	Subcategory         *string               `json:"subcategory" validate:"omitempty,max=100"`
	Gender              *string               `json:"gender" validate:"omitempty,oneof=men women unisex kids"`
	OnSale              bool                  `json:"on_sale"`
	SKU                 string                `json:"sku" validate:"omitempty,max=64"`
	ImageURL            *string               `json:"image_url" validate:"omitempty,url"`
	UnitPrice           types.Money           `json:"unit_price" validate:"gte=0"`
	Description         *string               `json:"description" validate:"omitempty,max=5000"`
	Variants            types.ProductVariants `json:"variants" validate:"omitempty,dive"`
	Pack                types.PackConfig      `json:"pack"`
	TaxPercentage       decimal.Decimal       `json:"tax_percentage"`
	ShippingStructureID *uuid.UUID            `json:"shipping_structure_id"`
	IsActive            *bool                 `json:"is_active"`
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name                *string                   `json:"name" validate:"omitempty,max=200"`
	Brand               *string                   `json:"brand" validate:"omitempty,max=100"`
	Category            *string                   `json:"category" validate:"omitempty,max=100"`
	Subcategory         types.Nullable[string]    `json:"subcategory" validate:"omitempty,max=100"`
	Gender              types.Nullable[string]    `json:"gender" validate:"omitempty,oneof=men women unisex kids"`
	OnSale              *bool                     `json:"on_sale"`
	SKU                 *string                   `json:"sku" validate:"omitempty,max=64"`
	ImageURL            types.Nullable[string]    `json:"image_url" validate:"omitempty,url"`
	UnitPrice           *types.Money              `json:"unit_price" validate:"omitempty,gte=0"`
	Description         types.Nullable[string]    `json:"description" validate:"omitempty,max=5000"`
	Variants            *types.ProductVariants    `json:"variants"`
	Pack                *types.PackConfig         `json:"pack"`
	TaxPercentage       *decimal.Decimal          `json:"tax_percentage"`
	ShippingStructureID types.Nullable[uuid.UUID] `json:"shipping_structure_id"`
	IsActive            *bool                     `json:"is_active"`
}
