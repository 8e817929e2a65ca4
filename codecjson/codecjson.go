// Package codecjson provides encoding/json-backed Encoder/Decoder
// constructors satisfying the function types peerwire.Schema entries
// expect. Serialization itself is explicitly out of this module's scope
// (§2 Non-goals); this package is the reference binding callers can use
// out of the box, or copy as a template for a faster wire format.
package codecjson

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dominicnunez/peerwire"
)

// Encoder returns a peerwire.Encoder that marshals values of type T as
// JSON into the peer's reusable arena.
func Encoder[T any]() peerwire.Encoder {
	return func(buf *bytes.Buffer, v any) error {
		t, ok := v.(T)
		if !ok {
			return fmt.Errorf("codecjson: expected %T, got %T", t, v)
		}
		return json.NewEncoder(buf).Encode(t)
	}
}

// Decoder returns a peerwire.Decoder that unmarshals a body into a fresh
// T value and returns it as any.
func Decoder[T any]() peerwire.Decoder {
	return func(body []byte) (any, error) {
		var v T
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, fmt.Errorf("codecjson: unmarshal %T: %w", v, err)
		}
		return v, nil
	}
}
