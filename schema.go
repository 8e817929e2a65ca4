package peerwire

import "bytes"

// Encoder writes v into buf using whatever external serialization toolkit
// the schema is bound to. buf is a peer-owned reusable arena: Reset before
// the call by the peer, and its contents must be copied out by the caller
// before the next Encoder/Decoder call on the same peer (§5 "Shared
// resources").
type Encoder func(buf *bytes.Buffer, v any) error

// Decoder parses body (an opaque byte blob produced by some external
// serialization toolkit) into a value.
type Decoder func(body []byte) (any, error)

// MethodDescriptor describes how to serialize and deserialize the request
// and response bodies for one method id. A nil EncodeResponse/DecodeResponse
// pair declares the method void-response (§3).
type MethodDescriptor struct {
	EncodeRequest  Encoder
	DecodeRequest  Decoder
	EncodeResponse Encoder // nil => void response
	DecodeResponse Decoder // nil => void response
}

// IsVoidResponse reports whether this method declares no response body.
func (d MethodDescriptor) IsVoidResponse() bool {
	return d.DecodeResponse == nil
}

// Schema maps method ids to their descriptors. It is immutable once passed
// to NewPeer: the peer takes no copy and never mutates it, but also never
// defends against the caller mutating it concurrently — treat it as
// read-only after construction (§3 "Schema (immutable after construction)").
type Schema map[uint16]MethodDescriptor
