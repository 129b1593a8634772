package product

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/buy2brands/wholesale-api/pkg/db"
	"github.com/buy2brands/wholesale-api/pkg/db/models"
	pkgerrors "github.com/buy2brands/wholesale-api/pkg/errors"
	"github.com/buy2brands/wholesale-api/pkg/pagination"
	"github.com/buy2brands/wholesale-api/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const skuAttempts = 5

var hundred = decimal.NewFromInt(100)

// Service exposes catalog browsing and administration.
type Service interface {
	List(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
	Get(ctx context.Context, id uuid.UUID, isAdmin bool) (*ProductDTO, error)
	Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type productStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, query productListQuery) (*ProductListResult, error)
}

type shippingLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.ShippingStructure, error)
}

type service struct {
	repo     productStore
	shipping shippingLookup
	skuFn    func(brand string) string
}

// NewService constructs a product service instance.
func NewService(repo productStore, shipping shippingLookup) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if shipping == nil {
		return nil, fmt.Errorf("shipping repository required")
	}
	return &service{repo: repo, shipping: shipping, skuFn: GenerateSKU}, nil
}

// GenerateSKU builds `<first three letters of brand>-<4 random digits>`.
func GenerateSKU(brand string) string {
	prefix := strings.ToUpper(strings.TrimSpace(brand))
	if runes := []rune(prefix); len(runes) > 3 {
		prefix = string(runes[:3])
	}
	return fmt.Sprintf("%s-%04d", prefix, rand.IntN(10000))
}

func (s *service) List(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	if _, err := pagination.ParseCursor(input.Pagination.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	result, err := s.repo.List(ctx, productListQuery{
		Filters:         input.Filters,
		IncludeInactive: input.IsAdmin,
		Pagination:      input.Pagination,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID, isAdmin bool) (*ProductDTO, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive && !isAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return NewProductDTO(product), nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	if err := validateTax(input.TaxPercentage); err != nil {
		return nil, err
	}
	if err := s.ensureShipping(ctx, input.ShippingStructureID); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:                strings.TrimSpace(input.Name),
		Brand:               strings.TrimSpace(input.Brand),
		Category:            strings.TrimSpace(input.Category),
		Subcategory:         input.Subcategory,
		Gender:              input.Gender,
		OnSale:              input.OnSale,
		SKU:                 strings.TrimSpace(input.SKU),
		ImageURL:            input.ImageURL,
		UnitPrice:           input.UnitPrice,
		Description:         input.Description,
		Variants:            input.Variants,
		Pack:                input.Pack,
		TaxPercentage:       input.TaxPercentage,
		ShippingStructureID: input.ShippingStructureID,
		IsActive:            true,
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if product.Variants == nil {
		product.Variants = types.ProductVariants{}
	}

	if product.SKU != "" {
		if err := s.repo.Create(ctx, product); err != nil {
			return nil, saveError(err)
		}
		return NewProductDTO(product), nil
	}

	// Generated SKUs only carry four random digits; collide and retry.
	for attempt := 0; attempt < skuAttempts; attempt++ {
		product.ID = uuid.Nil
		product.SKU = s.skuFn(product.Brand)
		err := s.repo.Create(ctx, product)
		if err == nil {
			return NewProductDTO(product), nil
		}
		if !db.IsUniqueViolation(err, "uq_products_sku", "products.sku") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "could not allocate a unique sku")
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.TaxPercentage != nil {
		if err := validateTax(*input.TaxPercentage); err != nil {
			return nil, err
		}
		product.TaxPercentage = *input.TaxPercentage
	}
	if input.ShippingStructureID.Set {
		if err := s.ensureShipping(ctx, input.ShippingStructureID.Value); err != nil {
			return nil, err
		}
		input.ShippingStructureID.Apply(&product.ShippingStructureID)
	}
	applyUpdate(product, input)

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, saveError(err)
	}
	return NewProductDTO(product), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (s *service) ensureShipping(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	structure, err := s.shipping.FindByID(ctx, *id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shipping structure")
	}
	if structure == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping structure not found").
			WithDetails(map[string]string{"field": "shipping_structure_id"})
	}
	return nil
}

func validateTax(value decimal.Decimal) error {
	if value.IsNegative() || value.GreaterThan(hundred) {
		return pkgerrors.New(pkgerrors.CodeValidation, "tax_percentage must be between 0 and 100")
	}
	return nil
}

func saveError(err error) error {
	if db.IsUniqueViolation(err, "uq_products_sku", "products.sku") {
		return pkgerrors.New(pkgerrors.CodeConflict, "sku already exists")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save product")
}

func applyUpdate(product *models.Product, input UpdateProductInput) {
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Brand != nil {
		product.Brand = strings.TrimSpace(*input.Brand)
	}
	if input.Category != nil {
		product.Category = strings.TrimSpace(*input.Category)
	}
	input.Subcategory.Apply(&product.Subcategory)
	input.Gender.Apply(&product.Gender)
	if input.OnSale != nil {
		product.OnSale = *input.OnSale
	}
	if input.SKU != nil && strings.TrimSpace(*input.SKU) != "" {
		product.SKU = strings.TrimSpace(*input.SKU)
	}
	input.ImageURL.Apply(&product.ImageURL)
	if input.UnitPrice != nil {
		product.UnitPrice = *input.UnitPrice
	}
	input.Description.Apply(&product.Description)
	if input.Variants != nil {
		product.Variants = *input.Variants
	}
	if input.Pack != nil {
		product.Pack = *input.Pack
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
}
