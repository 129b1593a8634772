package models

import (
	"time"

	"github.com/buy2brands/wholesale-api/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReturnRequest is a customer's request to send back items from an order.
type ReturnRequest struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	UserID        uuid.UUID          `gorm:"column:user_id;type:uuid;not null"`
	User          *User              `gorm:"foreignKey:UserID"`
	OrderNumber   string             `gorm:"column:order_number;not null"`
	Reason        enums.ReturnReason `gorm:"column:reason;not null"`
	Message       string             `gorm:"column:message;not null"`
	Status        enums.ReturnStatus `gorm:"column:status;not null;default:pending"`
	AdminResponse *string            `gorm:"column:admin_response"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *ReturnRequest) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}
