package returns

import (
	"context"
	"errors"

	"github.com/buy2brands/wholesale-api/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists return requests.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, req *models.ReturnRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

// FindByID returns the request with its requester, or nil.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ReturnRequest, error) {
	var req models.ReturnRequest
	if err := r.db.WithContext(ctx).Preload("User").First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ReturnRequest, error) {
	var rows []models.ReturnRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// ListAll returns every request newest first, optionally narrowed by status.
func (r *Repository) ListAll(ctx context.Context, status string) ([]models.ReturnRequest, error) {
	qb := r.db.WithContext(ctx).Preload("User").Order("created_at DESC")
	if status != "" {
		qb = qb.Where("status = ?", status)
	}
	var rows []models.ReturnRequest
	err := qb.Find(&rows).Error
	return rows, err
}

func (r *Repository) Update(ctx context.Context, req *models.ReturnRequest) error {
	return r.db.WithContext(ctx).
		Model(&models.ReturnRequest{}).
		Where("id = ?", req.ID).
		Updates(map[string]any{
			"status":         req.Status,
			"admin_response": req.AdminResponse,
		}).Error
}
