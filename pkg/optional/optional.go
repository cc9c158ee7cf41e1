// Package optional distinguishes a JSON key that is absent from one that is
// present with a null value.
//
// encoding/json only calls UnmarshalJSON for keys present in the input, so a
// Value left at its zero state was never sent.
package optional

import (
	"bytes"
	"encoding/json"
)

// Value holds a decoded field plus whether the key was present.
type Value[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Of returns a Value marked as present.
func Of[T any](v T) Value[T] {
	return Value[T]{Set: true, Value: v}
}

// Null returns a Value marked as present with a null payload.
func Null[T any]() Value[T] {
	return Value[T]{Set: true, Null: true}
}

func (v *Value[T]) UnmarshalJSON(data []byte) error {
	v.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		v.Null = true
		var zero T
		v.Value = zero
		return nil
	}
	v.Null = false
	return json.Unmarshal(data, &v.Value)
}

func (v Value[T]) MarshalJSON() ([]byte, error) {
	if !v.Set || v.Null {
		return []byte("null"), nil
	}
	return json.Marshal(v.Value)
}
