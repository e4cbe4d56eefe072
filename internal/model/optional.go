package model

import "encoding/json"

// Optional is a value with a presence flag, used where "not supplied" and
// "supplied as the zero value or null" must be told apart.
type Optional[T any] struct {
	Value T
	Set   bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// UnmarshalJSON marks the field as set whenever its key is present, including
// an explicit null.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	return json.Unmarshal(data, &o.Value)
}
