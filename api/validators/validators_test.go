package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/buy2brands/wholesale-api/pkg/errors"
	"github.com/buy2brands/wholesale-api/pkg/pagination"
	"github.com/buy2brands/wholesale-api/pkg/types"
)

type lineItem struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
}

type addItemsRequest struct {
	Items  []lineItem `json:"items" validate:"required,min=1,dive"`
	Gender string     `json:"gender" validate:"omitempty,oneof=men women unisex kids"`
}

func jsonRequest(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func details(t *testing.T, err error) map[string]string {
	t.Helper()
	typed, ok := err.(*pkgerrors.Error)
	require.True(t, ok, "expected *errors.Error got %T", err)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	out, ok := typed.Details().(map[string]string)
	require.True(t, ok, "expected string details got %T", typed.Details())
	return out
}

func TestDecodeJSONBodyReportsNestedFieldsByJSONName(t *testing.T) {
	var dest addItemsRequest
	err := DecodeJSONBody(jsonRequest(`{"items":[{"product_id":"nope","quantity":0}],"gender":"robots"}`), &dest)

	got := details(t, err)
	assert.Equal(t, "must be a valid id", got["items[0].product_id"])
	assert.Equal(t, "must be 1 or more", got["items[0].quantity"])
	assert.Equal(t, "must be one of: men, women, unisex, kids", got["gender"])
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	var dest addItemsRequest
	err := DecodeJSONBody(jsonRequest(`{"items":[],"coupon":"FREE"}`), &dest)
	assert.Equal(t, "is not allowed", details(t, err)["coupon"])
}

func TestDecodeJSONBodyRejectsTrailingDocuments(t *testing.T) {
	var dest addItemsRequest
	err := DecodeJSONBody(jsonRequest(`{"items":[]} {"items":[]}`), &dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "single JSON object")
}

func TestDecodeJSONBodyEmptyAndOversized(t *testing.T) {
	var dest addItemsRequest
	err := DecodeJSONBody(jsonRequest(""), &dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")

	huge := `{"gender":"` + strings.Repeat("x", MaxBodyBytes) + `"}`
	err = DecodeJSONBody(jsonRequest(huge), &dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeTooLarge))
}

func TestDecodeJSONBodyTypeMismatch(t *testing.T) {
	var dest addItemsRequest
	err := DecodeJSONBody(jsonRequest(`{"items":[{"product_id":"x","quantity":"two"}]}`), &dest)
	got := details(t, err)
	assert.Equal(t, "must be int", got["items.quantity"])
}

func TestParsePage(t *testing.T) {
	params, err := ParsePage(httptest.NewRequest(http.MethodGet, "/?limit=10", nil))
	require.NoError(t, err)
	assert.Equal(t, pagination.Params{Limit: 10}, params)

	params, err = ParsePage(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, pagination.DefaultLimit, params.Limit)

	_, err = ParsePage(httptest.NewRequest(http.MethodGet, "/?limit=1000", nil))
	assert.Error(t, err)

	_, err = ParsePage(httptest.NewRequest(http.MethodGet, "/?cursor=%25%25", nil))
	assert.Error(t, err)
}

func TestParseQueryBool(t *testing.T) {
	got, err := ParseQueryBool(httptest.NewRequest(http.MethodGet, "/", nil), "on_sale")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ParseQueryBool(httptest.NewRequest(http.MethodGet, "/?on_sale=false", nil), "on_sale")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, *got)

	_, err = ParseQueryBool(httptest.NewRequest(http.MethodGet, "/?on_sale=maybe", nil), "on_sale")
	assert.Error(t, err)
}

func TestSanitizeStringKeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "abc", SanitizeString("  abc  ", 10))
	assert.Equal(t, "ab", SanitizeString("abcdef", 2))
	// "é" is two bytes; cutting at 2 would split it.
	assert.Equal(t, "a", SanitizeString("aéb", 2))
	assert.Equal(t, "unbounded", SanitizeString("unbounded", 0))
}

func TestDecodeJSONBodyValidatesNullableContents(t *testing.T) {
	type patch struct {
		Gender   types.Nullable[string] `json:"gender" validate:"omitempty,oneof=men women unisex kids"`
		ImageURL types.Nullable[string] `json:"image_url" validate:"omitempty,url"`
	}

	var ok patch
	require.NoError(t, DecodeJSONBody(jsonRequest(`{"gender":null,"image_url":"https://cdn.example.com/a.png"}`), &ok))
	assert.True(t, ok.Gender.Set)
	assert.Nil(t, ok.Gender.Value)

	var bad patch
	err := DecodeJSONBody(jsonRequest(`{"gender":"robots","image_url":"not a url"}`), &bad)
	got := details(t, err)
	assert.Contains(t, got["gender"], "must be one of")
	assert.Equal(t, "must be a valid URL", got["image_url"])
}
