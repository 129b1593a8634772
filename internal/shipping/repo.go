package shipping

import (
	"context"
	"errors"

	"github.com/buy2brands/wholesale-api/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists shipping structures.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to shipping structure operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns structures with the default first. activeOnly hides disabled ones.
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]models.ShippingStructure, error) {
	q := r.db.WithContext(ctx).Model(&models.ShippingStructure{})
	if activeOnly {
		q = q.Where("is_active = ?", true).Order("is_default DESC").Order("name ASC")
	} else {
		q = q.Order("is_default DESC").Order("created_at DESC")
	}
	var rows []models.ShippingStructure
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads one structure; nil when absent.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ShippingStructure, error) {
	var row models.ShippingStructure
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// FindDefault returns the active default structure; nil when none is set.
func (r *Repository) FindDefault(ctx context.Context) (*models.ShippingStructure, error) {
	var row models.ShippingStructure
	err := r.db.WithContext(ctx).
		Where("is_default = ? AND is_active = ?", true, true).
		Order("updated_at DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// Save inserts or updates the structure. When it is the default, every other
// structure loses the flag in the same transaction.
func (r *Repository) Save(ctx context.Context, row *models.ShippingStructure) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if row.ID == uuid.Nil {
			if err := tx.Create(row).Error; err != nil {
				return err
			}
		} else if err := tx.Save(row).Error; err != nil {
			return err
		}
		if !row.IsDefault {
			return nil
		}
		return tx.Model(&models.ShippingStructure{}).
			Where("id <> ? AND is_default = ?", row.ID, true).
			Update("is_default", false).Error
	})
}

// Delete removes a structure by id.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ShippingStructure{}).Error
}

// CountProductsUsing reports how many products reference the structure.
func (r *Repository) CountProductsUsing(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("shipping_structure_id = ?", id).
		Count(&count).Error
	return count, err
}
