package peerwire_test

import (
	"bytes"
	"testing"

	"github.com/dominicnunez/peerwire"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		mtype  peerwire.MessageType
		id     uint32
		method uint16
		body   []byte
	}{
		{"request with body", peerwire.MessageTypeRequest, 1, 42, []byte("hello")},
		{"notification", peerwire.MessageTypeNotification, 0, 7, []byte(`{"x":1}`)},
		{"response empty body", peerwire.MessageTypeResponse, 99, 1, nil},
		{"method id zero", peerwire.MessageTypeRequest, 5, 0, []byte("a")},
		{"method id max", peerwire.MessageTypeRequest, 5, 65535, []byte("b")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := peerwire.Encode(tt.mtype, tt.id, tt.method, tt.body)
			if len(frame) != 12+len(tt.body) {
				t.Fatalf("frame length = %d, want %d", len(frame), 12+len(tt.body))
			}

			env, err := peerwire.Decode(frame)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if env.Type != tt.mtype {
				t.Errorf("Type = %v, want %v", env.Type, tt.mtype)
			}
			if env.ID != tt.id {
				t.Errorf("ID = %d, want %d", env.ID, tt.id)
			}
			if env.Method != tt.method {
				t.Errorf("Method = %d, want %d", env.Method, tt.method)
			}
			if !bytes.Equal(env.Body, tt.body) && !(len(env.Body) == 0 && len(tt.body) == 0) {
				t.Errorf("Body = %q, want %q", env.Body, tt.body)
			}
		})
	}
}

func TestDecodeShortFrame(t *testing.T) {
	for _, n := range []int{0, 1, 11} {
		_, err := peerwire.Decode(make([]byte, n))
		if err == nil {
			t.Fatalf("Decode(%d bytes): want error, got nil", n)
		}
		pe, ok := err.(*peerwire.PeerError)
		if !ok {
			t.Fatalf("Decode(%d bytes): error type = %T, want *PeerError", n, err)
		}
		if pe.Code != peerwire.ErrCodeParseError {
			t.Errorf("Decode(%d bytes): code = %d, want %d", n, pe.Code, peerwire.ErrCodeParseError)
		}
	}
}

func TestDecodeIncompleteBody(t *testing.T) {
	frame := peerwire.Encode(peerwire.MessageTypeRequest, 1, 1, []byte("hello world"))
	truncated := frame[:len(frame)-3]

	_, err := peerwire.Decode(truncated)
	if err == nil {
		t.Fatal("Decode() with truncated body: want error, got nil")
	}
	pe, ok := err.(*peerwire.PeerError)
	if !ok || pe.Code != peerwire.ErrCodeParseError {
		t.Fatalf("Decode() error = %v, want PARSE_ERROR", err)
	}
}

func TestEncodeErrorDecodeError(t *testing.T) {
	frame := peerwire.EncodeError(123, peerwire.ErrCodeMethodNotFound, "Method not found")

	env, err := peerwire.Decode(frame)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if env.Type != peerwire.MessageTypeErrorResponse {
		t.Fatalf("Type = %v, want ErrorResponse", env.Type)
	}
	if env.Method != 0 {
		t.Errorf("Method = %d, want 0 on an ErrorResponse frame", env.Method)
	}

	code, message, err := peerwire.DecodeError(env.Body)
	if err != nil {
		t.Fatalf("DecodeError() error = %v", err)
	}
	if code != peerwire.ErrCodeMethodNotFound {
		t.Errorf("code = %d, want %d", code, peerwire.ErrCodeMethodNotFound)
	}
	if message != "Method not found" {
		t.Errorf("message = %q, want %q", message, "Method not found")
	}
}

func TestDecodeErrorShortBody(t *testing.T) {
	_, _, err := peerwire.DecodeError([]byte{1, 2, 3})
	if err == nil {
		t.Fatal("DecodeError() with 3-byte body: want error, got nil")
	}
}

func TestMessageTypeString(t *testing.T) {
	tests := map[peerwire.MessageType]string{
		peerwire.MessageTypeRequest:       "Request",
		peerwire.MessageTypeNotification:  "Notification",
		peerwire.MessageTypeResponse:      "Response",
		peerwire.MessageTypeErrorResponse: "ErrorResponse",
	}
	for mt, want := range tests {
		if got := mt.String(); got != want {
			t.Errorf("MessageType(%d).String() = %q, want %q", mt, got, want)
		}
	}
}
