package users

import (
	"context"
	"testing"

	"github.com/buy2brands/wholesale-api/pkg/db/dbtest"
	"github.com/buy2brands/wholesale-api/pkg/enums"
	pkgerrors "github.com/buy2brands/wholesale-api/pkg/errors"
	"github.com/buy2brands/wholesale-api/pkg/pagination"
	"github.com/buy2brands/wholesale-api/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()
	repo := NewRepository(dbtest.Open(t))
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo
}

func TestCreateNormalisesEmailAndDefaults(t *testing.T) {
	_, repo := newTestService(t)
	ctx := context.Background()

	user, err := repo.Create(ctx, CreateUserDTO{Email: "  Dana@Example.COM ", PasswordHash: "h", FirstName: "Dana", LastName: "Price"})
	require.NoError(t, err)
	assert.Equal(t, "dana@example.com", user.Email)
	assert.Equal(t, enums.UserRoleUser, user.Role)
	assert.Equal(t, enums.BusinessTypeShop, user.BusinessType)
	assert.True(t, user.IsActive)

	found, err := repo.FindByEmail(ctx, "DANA@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)

	missing, err := repo.FindByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUpdateProfile(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	user, err := repo.Create(ctx, CreateUserDTO{Email: "dana@example.com", PasswordHash: "h", FirstName: "Dana", LastName: "Price"})
	require.NoError(t, err)

	first := " Danielle "
	stores := 4
	kind := enums.BusinessTypeStoreChain
	updated, err := svc.UpdateProfile(ctx, user.ID, UpdateProfileInput{
		FirstName:      &first,
		NumberOfStores: &stores,
		BusinessType:   &kind,
		BillingAddress: &types.PostalAddress{Street: "1 High St", City: "Leeds", Country: "UK"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Danielle", updated.FirstName)
	assert.Equal(t, 4, updated.NumberOfStores)
	assert.Equal(t, enums.BusinessTypeStoreChain, updated.BusinessType)
	assert.Equal(t, "Leeds", updated.BillingAddress.City)

	bad := enums.BusinessType("spaceport")
	_, err = svc.UpdateProfile(ctx, user.ID, UpdateProfileInput{BusinessType: &bad})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestAdminOperations(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	admin, err := repo.Create(ctx, CreateUserDTO{Email: "admin@example.com", PasswordHash: "h", FirstName: "A", Role: enums.UserRoleAdmin})
	require.NoError(t, err)
	user, err := repo.Create(ctx, CreateUserDTO{Email: "lee@shop.test", PasswordHash: "h", FirstName: "Lee", CompanyName: "Lee Shop"})
	require.NoError(t, err)

	_, err = svc.SetActive(ctx, admin.ID, admin.ID, false)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	deactivated, err := svc.SetActive(ctx, admin.ID, user.ID, false)
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	promoted, err := svc.SetRole(ctx, admin.ID, user.ID, enums.UserRoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleAdmin, promoted.Role)

	_, err = svc.SetRole(ctx, admin.ID, user.ID, "owner")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	list, err := svc.List(ctx, "shop", pagination.Params{})
	require.NoError(t, err)
	require.Len(t, list.Users, 1)
	assert.Equal(t, user.ID, list.Users[0].ID)

	require.True(t, pkgerrors.IsCode(svc.Delete(ctx, admin.ID, admin.ID), pkgerrors.CodeValidation))
	require.NoError(t, svc.Delete(ctx, admin.ID, user.ID))
	_, err = svc.Me(ctx, user.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
