package types

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type productPatch struct {
	ShippingStructureID Nullable[uuid.UUID] `json:"shipping_structure_id"`
	Description         Nullable[string]    `json:"description"`
}

func TestNullableDistinguishesAbsentFromNull(t *testing.T) {
	var got productPatch
	require.NoError(t, json.Unmarshal([]byte(`{"shipping_structure_id":"00000000-0000-0000-0000-000000000001","description":null}`), &got))

	require.True(t, got.ShippingStructureID.Set)
	require.NotNil(t, got.ShippingStructureID.Value)
	assert.Equal(t, "00000000-0000-0000-0000-000000000001", got.ShippingStructureID.Value.String())
	assert.True(t, got.Description.Set)
	assert.Nil(t, got.Description.Value)

	got = productPatch{}
	require.NoError(t, json.Unmarshal([]byte(`{}`), &got))
	assert.False(t, got.ShippingStructureID.Set)
	assert.False(t, got.Description.Set)

	assert.Error(t, json.Unmarshal([]byte(`{"shipping_structure_id":"nope"}`), &got))
}

func TestNullableApply(t *testing.T) {
	current := "old"
	dst := &current

	Nullable[string]{}.Apply(&dst)
	require.NotNil(t, dst)
	assert.Equal(t, "old", *dst)

	patch := Of("new")
	patch.Apply(&dst)
	*patch.Value = "mutated"
	assert.Equal(t, "new", *dst, "Apply must copy, not alias")

	Null[string]().Apply(&dst)
	assert.Nil(t, dst)
}

func TestNullableMarshalAndValidationValue(t *testing.T) {
	out, err := json.Marshal(productPatch{Description: Of("cotton")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"shipping_structure_id":null,"description":"cotton"}`, string(out))

	assert.Nil(t, Null[string]().ValidationValue())
	assert.Equal(t, "cotton", Of("cotton").ValidationValue())
}
