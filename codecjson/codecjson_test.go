package codecjson_test

import (
	"bytes"
	"testing"

	"github.com/dominicnunez/peerwire/codecjson"
)

type addParams struct {
	A int `json:"a"`
	B int `json:"b"`
}

func TestEncoderDecoderRoundTrip(t *testing.T) {
	enc := codecjson.Encoder[addParams]()
	dec := codecjson.Decoder[addParams]()

	var buf bytes.Buffer
	if err := enc(&buf, addParams{A: 1, B: 2}); err != nil {
		t.Fatalf("Encoder() error = %v", err)
	}

	v, err := dec(buf.Bytes())
	if err != nil {
		t.Fatalf("Decoder() error = %v", err)
	}
	got, ok := v.(addParams)
	if !ok {
		t.Fatalf("Decoder() returned %T, want addParams", v)
	}
	if got.A != 1 || got.B != 2 {
		t.Errorf("Decoder() = %+v, want {A:1 B:2}", got)
	}
}

func TestEncoderWrongTypeReturnsError(t *testing.T) {
	enc := codecjson.Encoder[addParams]()
	var buf bytes.Buffer
	if err := enc(&buf, "not addParams"); err == nil {
		t.Fatal("Encoder() with wrong type: want error, got nil")
	}
}

func TestDecoderInvalidJSONReturnsError(t *testing.T) {
	dec := codecjson.Decoder[addParams]()
	if _, err := dec([]byte("not json")); err == nil {
		t.Fatal("Decoder() with invalid JSON: want error, got nil")
	}
}
