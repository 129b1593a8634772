package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/buy2brands/wholesale-api/pkg/db"
	"github.com/buy2brands/wholesale-api/pkg/db/models"
	"github.com/buy2brands/wholesale-api/pkg/enums"
	"github.com/buy2brands/wholesale-api/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// numberAttempts bounds how often a racing insert re-allocates its order number.
const numberAttempts = 5

var ErrNumberExhausted = errors.New("could not allocate order number")

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// FormatOrderNumber renders the customer-facing order number for a sequence value.
func FormatOrderNumber(sequence int64) string {
	return fmt.Sprintf("ORD-%06d", sequence)
}

// Create assigns the next sequence and order number and inserts the order.
// Each attempt runs in its own (nested) transaction so a collision on the
// number indexes can be rolled back and retried inside a caller's transaction.
// Any other error, including a duplicate gateway reference, is returned as is.
func (r *repository) Create(ctx context.Context, order *models.Order) error {
	if order == nil {
		return fmt.Errorf("order is required")
	}
	for attempt := 0; attempt < numberAttempts; attempt++ {
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var last int64
			if err := tx.Model(&models.Order{}).
				Select("COALESCE(MAX(sequence), 0)").
				Scan(&last).Error; err != nil {
				return err
			}
			order.Sequence = last + 1
			order.OrderNumber = FormatOrderNumber(order.Sequence)
			return tx.Omit(clause.Associations).Create(order).Error
		})
		if err == nil {
			return nil
		}
		if !isNumberCollision(err) {
			return err
		}
	}
	return ErrNumberExhausted
}

func isNumberCollision(err error) bool {
	return db.IsUniqueViolation(err, "uq_orders_order_number", "orders.order_number") ||
		db.IsUniqueViolation(err, "uq_orders_sequence", "orders.sequence")
}

// IsReferenceConflict reports whether err is a duplicate payment reference.
func IsReferenceConflict(err error) bool {
	return db.IsUniqueViolation(err,
		"uq_orders_stripe_payment_intent", "orders.stripe_payment_intent_id",
		"uq_orders_stripe_session", "orders.stripe_session_id",
	)
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return r.first(ctx, "orders.id = ?", id)
}

// FindByReference returns the order reconciled from the given payment reference, or nil.
func (r *repository) FindByReference(ctx context.Context, kind enums.GatewayRefKind, ref string) (*models.Order, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, nil
	}
	switch kind {
	case enums.GatewayRefPaymentIntent:
		return r.first(ctx, "orders.stripe_payment_intent_id = ?", ref)
	case enums.GatewayRefCheckoutSession:
		return r.first(ctx, "orders.stripe_session_id = ?", ref)
	default:
		return nil, fmt.Errorf("unknown gateway reference kind %q", kind)
	}
}

func (r *repository) first(ctx context.Context, where string, args ...any) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("User").
		Where(where, args...).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, filters ListFilters, params pagination.Params) (*OrderList, error) {
	qb := r.db.WithContext(ctx).Model(&models.Order{}).Where("orders.user_id = ?", userID)
	if filters.Status != nil {
		qb = qb.Where("orders.status = ?", *filters.Status)
	}
	return r.page(qb, params)
}

func (r *repository) List(ctx context.Context, filters AdminListFilters, params pagination.Params) (*OrderList, error) {
	qb := r.db.WithContext(ctx).Model(&models.Order{})
	if filters.Status != nil {
		qb = qb.Where("orders.status = ?", *filters.Status)
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Joins("LEFT JOIN users ON users.id = orders.user_id").
			Where("(LOWER(orders.order_number) LIKE ? OR LOWER(users.email) LIKE ?)", pattern, pattern)
	}
	return r.page(qb, params)
}

func (r *repository) page(qb *gorm.DB, params pagination.Params) (*OrderList, error) {
	keyset, err := pagination.Keyset("orders", params)
	if err != nil {
		return nil, err
	}

	var rows []models.Order
	if err := qb.Preload("User").Scopes(keyset).Find(&rows).Error; err != nil {
		return nil, err
	}
	rows, next := pagination.Trim(rows, params.Limit, func(o *models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
	return &OrderList{Orders: rows, NextCursor: next}, nil
}

// Update writes the mutable columns back: status, notes, tracking and history.
func (r *repository) Update(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{ID: order.ID}).
		Updates(map[string]any{
			"status":          order.Status,
			"payment_status":  order.PaymentStatus,
			"admin_notes":     order.AdminNotes,
			"tracking_number": order.TrackingNumber,
			"status_history":  order.StatusHistory,
		}).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Order{}, "id = ?", id).Error
}
