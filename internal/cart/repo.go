package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/buy2brands/wholesale-api/pkg/db"
	"github.com/buy2brands/wholesale-api/pkg/db/models"
	"github.com/buy2brands/wholesale-api/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists one cart row per user.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByUser returns the user's cart, or nil when none exists yet.
func (r *Repository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

// GetOrCreate returns the user's cart, creating an empty one on first access.
// A concurrent first access loses the insert race and re-reads the winner's row.
func (r *Repository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := r.FindByUser(ctx, userID)
	if err != nil || cart != nil {
		return cart, err
	}
	cart = &models.Cart{UserID: userID, Items: types.CartItems{}}
	if err := r.db.WithContext(ctx).Create(cart).Error; err != nil {
		if !db.IsUniqueViolation(err, "uq_carts_user_id", "carts.user_id") {
			return nil, err
		}
		existing, findErr := r.FindByUser(ctx, userID)
		if findErr != nil {
			return nil, findErr
		}
		if existing == nil {
			return nil, fmt.Errorf("cart for %s vanished after conflict", userID)
		}
		return existing, nil
	}
	return cart, nil
}

// Save recomputes the total and writes items and total back.
func (r *Repository) Save(ctx context.Context, cart *models.Cart) error {
	if cart == nil {
		return fmt.Errorf("cart is required")
	}
	cart.Recalculate()
	if cart.Items == nil {
		cart.Items = types.CartItems{}
	}
	return r.db.WithContext(ctx).
		Model(cart).
		Updates(map[string]any{
			"items":       cart.Items,
			"total_cents": cart.Total,
		}).Error
}

// Clear empties the user's cart without deleting the row.
func (r *Repository) Clear(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"items":       types.CartItems{},
			"total_cents": types.Money(0),
		}).Error
}
