package product

import (
	"context"
	"errors"
	"strings"

	"github.com/buy2brands/wholesale-api/pkg/db/models"
	"github.com/buy2brands/wholesale-api/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository persists catalog products.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the product, returning nil when it does not exist.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// Create inserts a product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Update writes every column of the product back.
func (r *Repository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// Delete removes the product row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id).Error
}

// UpdateRating stores the precomputed review aggregate on the product.
func (r *Repository) UpdateRating(ctx context.Context, id uuid.UUID, average decimal.Decimal, count int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"average_rating": average,
			"review_count":   count,
		}).Error
}

type productListQuery struct {
	Filters         ProductListFilters
	IncludeInactive bool
	Pagination      pagination.Params
}

// List pages through the catalog newest first using a (created_at, id) cursor.
func (r *Repository) List(ctx context.Context, query productListQuery) (*ProductListResult, error) {
	keyset, err := pagination.Keyset("", query.Pagination)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).Model(&models.Product{})

	filter := query.Filters
	if brand := strings.TrimSpace(filter.Brand); brand != "" {
		qb = qb.Where("LOWER(brand) = ?", strings.ToLower(brand))
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		qb = qb.Where("LOWER(category) = ?", strings.ToLower(category))
	}
	if filter.OnSale != nil {
		qb = qb.Where("on_sale = ?", *filter.OnSale)
	}
	if search := strings.TrimSpace(filter.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(name) LIKE ? OR LOWER(sku) LIKE ? OR LOWER(brand) LIKE ?)", pattern, pattern, pattern)
	}
	if !query.IncludeInactive {
		qb = qb.Where("is_active = ?", true)
	}

	var rows []models.Product
	if err := qb.Scopes(keyset).Find(&rows).Error; err != nil {
		return nil, err
	}
	rows, nextCursor := pagination.Trim(rows, query.Pagination.Limit, func(p *models.Product) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	})

	products := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		products = append(products, *NewProductDTO(&rows[i]))
	}
	return &ProductListResult{Products: products, NextCursor: nextCursor}, nil
}
