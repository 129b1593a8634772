package shipping

import (
	"strings"
	"time"

	"github.com/buy2brands/wholesale-api/pkg/db/models"
	"github.com/buy2brands/wholesale-api/pkg/types"
	"github.com/google/uuid"
)

// CreateInput carries the fields of a new structure.
type CreateInput struct {
	Name        string              `json:"name" validate:"required,max=100"`
	Description *string             `json:"description" validate:"omitempty,max=500"`
	Rules       types.ShippingRules `json:"rules" validate:"required,min=1,dive"`
	IsDefault   bool                `json:"is_default"`
	IsActive    *bool               `json:"is_active"`
}

// UpdateInput holds the optional fields of an update. Nil means unchanged.
type UpdateInput struct {
	Name        *string             `json:"name" validate:"omitempty,max=100"`
	Description *string             `json:"description" validate:"omitempty,max=500"`
	Rules       types.ShippingRules `json:"rules" validate:"omitempty,dive"`
	IsDefault   *bool               `json:"is_default"`
	IsActive    *bool               `json:"is_active"`
}

func (in CreateInput) toModel(rules types.ShippingRules) *models.ShippingStructure {
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return &models.ShippingStructure{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Rules:       rules,
		IsDefault:   in.IsDefault,
		IsActive:    active,
	}
}

// StructureDTO is the transport shape of a shipping structure.
type StructureDTO struct {
	ID          uuid.UUID           `json:"id"`
	Name        string              `json:"name"`
	Description *string             `json:"description,omitempty"`
	Rules       types.ShippingRules `json:"rules"`
	IsDefault   bool                `json:"is_default"`
	IsActive    bool                `json:"is_active"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func FromModel(row *models.ShippingStructure) *StructureDTO {
	if row == nil {
		return nil
	}
	return &StructureDTO{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Rules:       row.Rules,
		IsDefault:   row.IsDefault,
		IsActive:    row.IsActive,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func FromModels(rows []models.ShippingStructure) []StructureDTO {
	out := make([]StructureDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
