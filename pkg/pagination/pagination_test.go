package pagination_test

import (
	"encoding/base64"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buy2brands/wholesale-api/pkg/db/dbtest"
	"github.com/buy2brands/wholesale-api/pkg/db/models"
	"github.com/buy2brands/wholesale-api/pkg/enums"
	"github.com/buy2brands/wholesale-api/pkg/pagination"
)

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, pagination.DefaultLimit, pagination.NormalizeLimit(0))
	assert.Equal(t, pagination.DefaultLimit, pagination.NormalizeLimit(-3))
	assert.Equal(t, 7, pagination.NormalizeLimit(7))
	assert.Equal(t, pagination.MaxLimit, pagination.NormalizeLimit(pagination.MaxLimit+1))
}

func TestCursorRoundTripIsURLSafe(t *testing.T) {
	want := pagination.Cursor{
		CreatedAt: time.Date(2025, 3, 14, 9, 26, 53, 589793000, time.UTC),
		ID:        uuid.New(),
	}
	token := pagination.EncodeCursor(want)
	assert.NotContains(t, token, "=")
	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")

	got, err := pagination.ParseCursor(token)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, want.ID, got.ID)
}

func TestParseCursorAcceptsLegacyPaddedTokens(t *testing.T) {
	id := uuid.New()
	legacy := base64.StdEncoding.EncodeToString([]byte("2024-01-02T03:04:05Z|" + id.String()))

	got, err := pagination.ParseCursor(legacy)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	got, err := pagination.ParseCursor("  ")
	require.NoError(t, err)
	assert.Nil(t, got)

	for _, token := range []string{
		"%%%",
		base64.RawURLEncoding.EncodeToString([]byte("no-separator")),
		base64.RawURLEncoding.EncodeToString([]byte("yesterday|" + uuid.NewString())),
		base64.RawURLEncoding.EncodeToString([]byte("2024-01-02T03:04:05Z|not-a-uuid")),
	} {
		_, err := pagination.ParseCursor(token)
		assert.True(t, errors.Is(err, pagination.ErrInvalidCursor), "token %q: %v", token, err)
	}
}

func TestTrim(t *testing.T) {
	key := func(c *pagination.Cursor) pagination.Cursor { return *c }
	rows := []pagination.Cursor{{ID: uuid.New()}, {ID: uuid.New()}, {ID: uuid.New()}}

	page, next := pagination.Trim(rows, 3, key)
	assert.Len(t, page, 3)
	assert.Empty(t, next)

	page, next = pagination.Trim(rows, 2, key)
	require.Len(t, page, 2)
	last, err := pagination.ParseCursor(next)
	require.NoError(t, err)
	assert.Equal(t, rows[1].ID, last.ID)
}

func TestKeysetWalksEveryRowOnce(t *testing.T) {
	conn := dbtest.Open(t)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		user := &models.User{
			Email:        fmt.Sprintf("buyer%d@example.com", i),
			PasswordHash: "x",
			FirstName:    "Buyer",
			LastName:     fmt.Sprint(i),
			BusinessType: enums.BusinessTypeShop,
			Role:         enums.UserRoleUser,
			IsActive:     true,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, conn.Create(user).Error)
	}

	var seen []string
	params := pagination.Params{Limit: 2}
	for pages := 0; pages < 5; pages++ {
		keyset, err := pagination.Keyset("users", params)
		require.NoError(t, err)

		var rows []models.User
		require.NoError(t, conn.Model(&models.User{}).Scopes(keyset).Find(&rows).Error)
		rows, next := pagination.Trim(rows, params.Limit, func(u *models.User) pagination.Cursor {
			return pagination.Cursor{CreatedAt: u.CreatedAt, ID: u.ID}
		})
		for _, u := range rows {
			seen = append(seen, u.Email)
		}
		if next == "" {
			break
		}
		params.Cursor = next
	}

	assert.Equal(t, []string{
		"buyer4@example.com",
		"buyer3@example.com",
		"buyer2@example.com",
		"buyer1@example.com",
		"buyer0@example.com",
	}, seen)
}

func TestKeysetRejectsBadCursor(t *testing.T) {
	_, err := pagination.Keyset("", pagination.Params{Cursor: "%%%"})
	assert.ErrorIs(t, err, pagination.ErrInvalidCursor)
}
