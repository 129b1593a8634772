package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

func asJSON(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported scan type %T", value)
	}
}

// jsonValue serializes v for a jsonb column, writing empty instead of null.
func jsonValue(v any, empty string) (driver.Value, error) {
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(buf) == "null" {
		return empty, nil
	}
	return string(buf), nil
}

func scanJSON(value interface{}, dest any) error {
	if value == nil {
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dest)
}
