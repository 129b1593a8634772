package product

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/buy2brands/wholesale-api/internal/shipping"
	"github.com/buy2brands/wholesale-api/pkg/db/dbtest"
	"github.com/buy2brands/wholesale-api/pkg/db/models"
	pkgerrors "github.com/buy2brands/wholesale-api/pkg/errors"
	"github.com/buy2brands/wholesale-api/pkg/pagination"
	"github.com/buy2brands/wholesale-api/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*service, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn), shipping.NewRepository(conn))
	require.NoError(t, err)
	return svc.(*service), conn
}

func baseInput(name string) CreateProductInput {
	return CreateProductInput{
		Name:      name,
		Brand:     "Northside",
		Category:  "Tops",
		UnitPrice: 850,
	}
}

func TestGenerateSKU(t *testing.T) {
	pattern := regexp.MustCompile(`^NOR-\d{4}$`)
	for i := 0; i < 20; i++ {
		assert.Regexp(t, pattern, GenerateSKU("northside"))
	}
	assert.Regexp(t, regexp.MustCompile(`^HM-\d{4}$`), GenerateSKU(" hm "))
}

func TestCreateGeneratesSKUAndRetriesCollisions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	skus := []string{"NOR-0001", "NOR-0001", "NOR-0002"}
	svc.skuFn = func(string) string {
		next := skus[0]
		skus = skus[1:]
		return next
	}

	first, err := svc.Create(ctx, baseInput("Tee"))
	require.NoError(t, err)
	assert.Equal(t, "NOR-0001", first.SKU)
	assert.True(t, first.IsActive)

	second, err := svc.Create(ctx, baseInput("Hoodie"))
	require.NoError(t, err)
	assert.Equal(t, "NOR-0002", second.SKU)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestCreateRejectsDuplicateExplicitSKU(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	in := baseInput("Tee")
	in.SKU = "TEE-1"
	_, err := svc.Create(ctx, in)
	require.NoError(t, err)

	_, err = svc.Create(ctx, in)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestCreateValidatesTaxAndShipping(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	in := baseInput("Tee")
	in.TaxPercentage = decimal.NewFromInt(120)
	_, err := svc.Create(ctx, in)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	missing := uuid.New()
	in = baseInput("Tee")
	in.ShippingStructureID = &missing
	_, err = svc.Create(ctx, in)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestGetHidesInactiveFromShoppers(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	inactive := false
	in := baseInput("Archived")
	in.IsActive = &inactive
	created, err := svc.Create(ctx, in)
	require.NoError(t, err)
	assert.False(t, created.IsActive)

	_, err = svc.Get(ctx, created.ID, false)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	got, err := svc.Get(ctx, created.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "Archived", got.Name)
}

func TestUpdateAppliesPartialFields(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	structure := &models.ShippingStructure{Name: "Standard", Rules: types.ShippingRules{{MinItems: 1, BaseCost: 500}}, IsActive: true}
	require.NoError(t, conn.Create(structure).Error)

	created, err := svc.Create(ctx, baseInput("Tee"))
	require.NoError(t, err)

	price := types.Money(999)
	name := "Heavy Tee"
	updated, err := svc.Update(ctx, created.ID, UpdateProductInput{
		Name:                &name,
		UnitPrice:           &price,
		ShippingStructureID: types.Of(structure.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, "Heavy Tee", updated.Name)
	assert.Equal(t, price, updated.UnitPrice)
	require.NotNil(t, updated.ShippingStructureID)
	assert.Equal(t, structure.ID, *updated.ShippingStructureID)
	assert.Equal(t, created.SKU, updated.SKU)

	cleared, err := svc.Update(ctx, created.ID, UpdateProductInput{ShippingStructureID: types.Null[uuid.UUID]()})
	require.NoError(t, err)
	assert.Nil(t, cleared.ShippingStructureID)

	_, err = svc.Update(ctx, uuid.New(), UpdateProductInput{Name: &name})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDelete(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, baseInput("Tee"))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, created.ID))

	require.True(t, pkgerrors.IsCode(svc.Delete(ctx, created.ID), pkgerrors.CodeNotFound))

	found, err := NewRepository(conn).FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestListFiltersAndPaginates(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seed := []models.Product{
		{Name: "Tee", Brand: "Northside", Category: "Tops", SKU: "A-1", IsActive: true},
		{Name: "Hoodie", Brand: "Northside", Category: "Tops", SKU: "A-2", IsActive: true},
		{Name: "Cargo", Brand: "Fieldwork", Category: "Bottoms", SKU: "B-1", IsActive: true},
		{Name: "Old Tee", Brand: "Northside", Category: "Tops", SKU: "A-3", IsActive: false},
	}
	for i := range seed {
		seed[i].CreatedAt = base.Add(time.Duration(i) * time.Minute)
		seed[i].Variants = types.ProductVariants{}
		require.NoError(t, conn.Create(&seed[i]).Error)
	}

	page, err := svc.List(ctx, ListProductsInput{
		Filters:    ProductListFilters{Brand: "northside"},
		Pagination: pagination.Params{Limit: 1},
	})
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "Hoodie", page.Products[0].Name)
	require.NotEmpty(t, page.NextCursor)

	page, err = svc.List(ctx, ListProductsInput{
		Filters:    ProductListFilters{Brand: "northside"},
		Pagination: pagination.Params{Limit: 1, Cursor: page.NextCursor},
	})
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "Tee", page.Products[0].Name)
	assert.Empty(t, page.NextCursor)

	admin, err := svc.List(ctx, ListProductsInput{IsAdmin: true, Filters: ProductListFilters{Query: "tee"}})
	require.NoError(t, err)
	assert.Len(t, admin.Products, 2)

	_, err = svc.List(ctx, ListProductsInput{Pagination: pagination.Params{Cursor: "%%%"}})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
