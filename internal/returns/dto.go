package returns

import (
	"strings"
	"time"

	"github.com/buy2brands/wholesale-api/pkg/db/models"
	"github.com/buy2brands/wholesale-api/pkg/enums"
	"github.com/google/uuid"
)

// CreateInput is a customer's return request.
type CreateInput struct {
	OrderNumber string             `json:"order_number" validate:"required,max=50"`
	Reason      enums.ReturnReason `json:"reason" validate:"required"`
	Message     string             `json:"message" validate:"max=2000"`
}

// UpdateStatusInput is the administrator's decision on a request.
type UpdateStatusInput struct {
	Status        enums.ReturnStatus `json:"status" validate:"required"`
	AdminResponse *string            `json:"admin_response" validate:"omitempty,max=2000"`
}

// ReturnRequestDTO is the transport shape of a return request.
type ReturnRequestDTO struct {
	ID            uuid.UUID          `json:"id"`
	UserID        uuid.UUID          `json:"user_id"`
	CustomerName  string             `json:"customer_name,omitempty"`
	CustomerEmail string             `json:"customer_email,omitempty"`
	OrderNumber   string             `json:"order_number"`
	Reason        enums.ReturnReason `json:"reason"`
	Message       string             `json:"message"`
	Status        enums.ReturnStatus `json:"status"`
	AdminResponse *string            `json:"admin_response,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

func FromModel(req *models.ReturnRequest) *ReturnRequestDTO {
	if req == nil {
		return nil
	}
	dto := &ReturnRequestDTO{
		ID:            req.ID,
		UserID:        req.UserID,
		OrderNumber:   req.OrderNumber,
		Reason:        req.Reason,
		Message:       req.Message,
		Status:        req.Status,
		AdminResponse: req.AdminResponse,
		CreatedAt:     req.CreatedAt,
		UpdatedAt:     req.UpdatedAt,
	}
	if req.User != nil {
		dto.CustomerName = strings.TrimSpace(req.User.FirstName + " " + req.User.LastName)
		dto.CustomerEmail = req.User.Email
	}
	return dto
}

func FromModels(rows []models.ReturnRequest) []ReturnRequestDTO {
	out := make([]ReturnRequestDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
