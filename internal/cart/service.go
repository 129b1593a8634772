package cart

import (
	"context"
	"fmt"

	"github.com/buy2brands/wholesale-api/pkg/db/models"
	pkgerrors "github.com/buy2brands/wholesale-api/pkg/errors"
	"github.com/buy2brands/wholesale-api/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service exposes cart operations for the authenticated user.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*models.Cart, error)
	UpdateQuantity(ctx context.Context, userID uuid.UUID, input UpdateQuantityInput) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, cartItemID string) (*models.Cart, error)
	Clear(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
}

type service struct {
	repo     CartRepository
	products productLookup
}

// NewService builds a cart service backed by the provided repository and catalog.
func NewService(repo CartRepository, products productLookup) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product lookup required")
	}
	return &service{repo: repo, products: products}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return cart, nil
}

func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*models.Cart, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_id is required")
	}
	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if input.Name == "" {
		input.Name = product.Name
	}
	if input.Brand == "" {
		input.Brand = product.Brand
	}

	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.isBulk() {
		added := 0
		for _, variation := range input.Variations {
			if variation.Quantity <= 0 {
				continue
			}
			cart.Items = Merge(cart.Items, types.CartItem{
				ProductID:  input.ProductID,
				Name:       input.Name,
				Brand:      input.Brand,
				Size:       variation.Size,
				Color:      variation.Color,
				Quantity:   variation.Quantity,
				TotalPrice: product.UnitPrice.Mul(variation.Quantity),
			})
			added++
		}
		if added == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one variation needs a quantity")
		}
	} else {
		if input.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
		}
		cart.Items = Merge(cart.Items, input.toItem())
	}

	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return cart, nil
}

func (s *service) UpdateQuantity(ctx context.Context, userID uuid.UUID, input UpdateQuantityInput) (*models.Cart, error) {
	cart, err := s.existing(ctx, userID)
	if err != nil {
		return nil, err
	}
	idx := indexOf(cart.Items, input.CartItemID)
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found in cart")
	}

	if input.Quantity < 1 {
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	} else {
		item := &cart.Items[idx]
		item.TotalPrice = rescale(item.TotalPrice, item.Quantity, input.Quantity)
		item.Quantity = input.Quantity
	}

	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return cart, nil
}

func (s *service) RemoveItem(ctx context.Context, userID uuid.UUID, cartItemID string) (*models.Cart, error) {
	cart, err := s.existing(ctx, userID)
	if err != nil {
		return nil, err
	}
	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if item.CartItemID != cartItemID {
			kept = append(kept, item)
		}
	}
	cart.Items = kept
	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return cart, nil
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.existing(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Clear(ctx, userID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	cart.Items = types.CartItems{}
	cart.Total = 0
	return cart, nil
}

func (s *service) existing(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	return cart, nil
}

func indexOf(items types.CartItems, cartItemID string) int {
	for i, item := range items {
		if item.CartItemID == cartItemID {
			return i
		}
	}
	return -1
}

// rescale keeps the line's unit price (total / old quantity) and applies it to
// the new quantity, rounding once at the end.
func rescale(total types.Money, oldQty, newQty int) types.Money {
	if oldQty <= 0 {
		return 0
	}
	scaled := total.Decimal().Mul(decimal.NewFromInt(int64(newQty))).Div(decimal.NewFromInt(int64(oldQty)))
	return types.MoneyFromDecimal(scaled)
}
