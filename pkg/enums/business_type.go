package enums

import "fmt"

// BusinessType describes the buyer's kind of business.
type BusinessType string

const (
	BusinessTypeShop            BusinessType = "shop"
	BusinessTypeStoreChain      BusinessType = "store_chain"
	BusinessTypeFactory         BusinessType = "factory"
	BusinessTypeWarehouse       BusinessType = "warehouse"
	BusinessTypeMall            BusinessType = "mall"
	BusinessTypeDepartmentStore BusinessType = "department_store"
	BusinessTypeOther           BusinessType = "other"
)

var validBusinessTypes = []BusinessType{
	BusinessTypeShop,
	BusinessTypeStoreChain,
	BusinessTypeFactory,
	BusinessTypeWarehouse,
	BusinessTypeMall,
	BusinessTypeDepartmentStore,
	BusinessTypeOther,
}

// String implements fmt.Stringer.
func (v BusinessType) String() string {
	return string(v)
}

// IsValid reports whether the value is a known BusinessType.
func (v BusinessType) IsValid() bool {
	for _, candidate := range validBusinessTypes {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseBusinessType converts raw input into a BusinessType.
func ParseBusinessType(value string) (BusinessType, error) {
	for _, candidate := range validBusinessTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid business type %q", value)
}
