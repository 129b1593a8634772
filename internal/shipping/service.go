package shipping

import (
	"context"
	"fmt"
	"strings"

	"github.com/buy2brands/wholesale-api/pkg/db"
	"github.com/buy2brands/wholesale-api/pkg/db/models"
	pkgerrors "github.com/buy2brands/wholesale-api/pkg/errors"
	"github.com/buy2brands/wholesale-api/pkg/types"
	"github.com/google/uuid"
)

const uniqueName = "uq_shipping_structures_name"

type repository interface {
	List(ctx context.Context, activeOnly bool) ([]models.ShippingStructure, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.ShippingStructure, error)
	FindDefault(ctx context.Context) (*models.ShippingStructure, error)
	Save(ctx context.Context, row *models.ShippingStructure) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountProductsUsing(ctx context.Context, id uuid.UUID) (int64, error)
}

// Service manages shipping structures and prices item counts against them.
type Service interface {
	ListActive(ctx context.Context) ([]models.ShippingStructure, error)
	ListAll(ctx context.Context) ([]models.ShippingStructure, error)
	Get(ctx context.Context, id uuid.UUID) (*models.ShippingStructure, error)
	Create(ctx context.Context, input CreateInput) (*models.ShippingStructure, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.ShippingStructure, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Calculate(ctx context.Context, id uuid.UUID, itemCount int) (*Quote, error)
	CostFor(ctx context.Context, structureID *uuid.UUID, itemCount int) (Quote, error)
	TotalFor(ctx context.Context, lines []Line) (types.Money, error)
}

type service struct {
	repo repository
}

// NewService builds the shipping service.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shipping repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListActive(ctx context.Context) ([]models.ShippingStructure, error) {
	rows, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shipping structures")
	}
	return rows, nil
}

func (s *service) ListAll(ctx context.Context) ([]models.ShippingStructure, error) {
	rows, err := s.repo.List(ctx, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shipping structures")
	}
	return rows, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.ShippingStructure, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shipping structure")
	}
	if row == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipping structure not found")
	}
	return row, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.ShippingStructure, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	rules, err := NormalizeRules(input.Rules)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	row := input.toModel(rules)
	if err := s.repo.Save(ctx, row); err != nil {
		return nil, s.saveError(err)
	}
	return row, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.ShippingStructure, error) {
	row, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(input.Rules) > 0 {
		rules, err := NormalizeRules(input.Rules)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
		}
		row.Rules = rules
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
		}
		row.Name = name
	}
	if input.Description != nil {
		row.Description = input.Description
	}
	if input.IsDefault != nil {
		row.IsDefault = *input.IsDefault
	}
	if input.IsActive != nil {
		row.IsActive = *input.IsActive
	}
	if err := s.repo.Save(ctx, row); err != nil {
		return nil, s.saveError(err)
	}
	return row, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	inUse, err := s.repo.CountProductsUsing(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products using shipping structure")
	}
	if inUse > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("shipping structure is used by %d product(s); update those products first", inUse))
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete shipping structure")
	}
	return nil
}

func (s *service) Calculate(ctx context.Context, id uuid.UUID, itemCount int) (*Quote, error) {
	if itemCount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid item count is required")
	}
	row, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	quote := Calculate(row.Rules, itemCount)
	return &quote, nil
}

// CostFor prices itemCount against structureID, or the default structure when
// structureID is nil or unknown. No structure at all yields a zero quote.
func (s *service) CostFor(ctx context.Context, structureID *uuid.UUID, itemCount int) (Quote, error) {
	row, err := s.resolve(ctx, structureID)
	if err != nil {
		return Quote{}, err
	}
	if row == nil {
		return Quote{ItemCount: itemCount}, nil
	}
	return Calculate(row.Rules, itemCount), nil
}

// Line is one cart line's contribution to shipping.
type Line struct {
	StructureID *uuid.UUID
	Units       int
}

// TotalFor groups lines by the structure that prices them and charges each
// group once for its combined unit count.
func (s *service) TotalFor(ctx context.Context, lines []Line) (types.Money, error) {
	units := map[uuid.UUID]int{}
	rules := map[uuid.UUID]types.ShippingRules{}
	var order []uuid.UUID
	for _, line := range lines {
		if line.Units <= 0 {
			continue
		}
		row, err := s.resolve(ctx, line.StructureID)
		if err != nil {
			return 0, err
		}
		if row == nil {
			continue
		}
		if _, seen := units[row.ID]; !seen {
			order = append(order, row.ID)
			rules[row.ID] = row.Rules
		}
		units[row.ID] += line.Units
	}

	var total types.Money
	for _, id := range order {
		total += Calculate(rules[id], units[id]).Cost
	}
	return total, nil
}

func (s *service) resolve(ctx context.Context, structureID *uuid.UUID) (*models.ShippingStructure, error) {
	if structureID != nil {
		found, err := s.repo.FindByID(ctx, *structureID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shipping structure")
		}
		if found != nil && found.IsActive {
			return found, nil
		}
	}
	found, err := s.repo.FindDefault(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load default shipping structure")
	}
	return found, nil
}

func (s *service) saveError(err error) error {
	if db.IsUniqueViolation(err, uniqueName, "shipping_structures.name") {
		return pkgerrors.New(pkgerrors.CodeConflict, "shipping structure with this name already exists")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save shipping structure")
}
