package orders

import (
	"context"

	"github.com/buy2brands/wholesale-api/pkg/db/models"
	"github.com/buy2brands/wholesale-api/pkg/enums"
	"github.com/buy2brands/wholesale-api/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByReference(ctx context.Context, kind enums.GatewayRefKind, ref string) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filters ListFilters, params pagination.Params) (*OrderList, error)
	List(ctx context.Context, filters AdminListFilters, params pagination.Params) (*OrderList, error)
	Update(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id uuid.UUID) error
}
