package types

import (
	"bytes"
	"encoding/json"
)

// Nullable is a PATCH field with three states: absent (Set false), explicit
// null (Set true, Value nil) and a value.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// Of returns a Nullable carrying v.
func Of[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

// Null returns an explicit null.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}
	n.Set = true
	if bytes.Equal(trimmed, []byte("null")) {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}

// Apply copies the field onto dst when it was present in the payload.
func (n Nullable[T]) Apply(dst **T) {
	if !n.Set {
		return
	}
	if n.Value == nil {
		*dst = nil
		return
	}
	v := *n.Value
	*dst = &v
}

// ValidationValue exposes the wrapped value to struct validation; nil lets
// omitempty skip absent and null fields.
func (n Nullable[T]) ValidationValue() any {
	if n.Value == nil {
		return nil
	}
	return *n.Value
}
