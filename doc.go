// Package peerwire provides a schema-driven, transport-agnostic binary RPC
// peer: a bidirectional endpoint that encodes Requests, Notifications,
// Responses, and Error Responses into a compact fixed-header framed binary
// format, decodes inbound frames and routes them to registered handlers or
// awaiting callers, tracks in-flight requests with per-request timeout
// enforcement, and exposes a handler-registration surface with a chained
// guard (middleware) model.
//
// peerwire does not open sockets or frame bytes over a stream. A peer emits
// complete frames to a caller-supplied sink function and expects
// Peer.FromTransport to be called with exactly one complete frame at a
// time; wiring that to an actual socket, pipe, or stdio stream is the
// caller's job. Payload serialization is likewise external: callers supply
// a Schema mapping method ids to Encoder/Decoder pairs, and the codecjson
// subpackage offers an encoding/json-based adapter for callers who don't
// bring their own.
//
// Basic usage, wiring two peers directly together (as in a test, or any
// transport that hands frames straight from one peer's sink to another
// peer's FromTransport):
//
//	schema := peerwire.Schema{
//		0: peerwire.MethodDescriptor{
//			EncodeRequest:  codecjson.Encoder[AddParams](),
//			DecodeRequest:  codecjson.Decoder[AddParams](),
//			EncodeResponse: codecjson.Encoder[AddResult](),
//			DecodeResponse: codecjson.Decoder[AddResult](),
//		},
//	}
//
//	server := peerwire.NewPeer[string](schema)
//	server.RegisterHandler(0, func(ctx context.Context, req any, _ string) (any, error) {
//		p := req.(AddParams)
//		return AddResult{Result: p.A + p.B}, nil
//	})
//
//	client := peerwire.NewPeer[string](schema)
//	client.SetTransportSink(func(frame []byte, appData string) { server.FromTransport(context.Background(), frame, appData) })
//	server.SetTransportSink(func(frame []byte, appData string) { client.FromTransport(context.Background(), frame, appData) })
//
//	result, err := client.Request(context.Background(), 0, AddParams{A: 10, B: 32}, "")
//	// result.(AddResult).Result == 42
//
// Using RegisterHandler's returned HandlerHandle to chain guards:
//
//	server.RegisterHandler(0, addHandler).
//		AddAppDataGuard(func(ctx context.Context, session string) error {
//			if session == "" {
//				return errors.New("unauthenticated")
//			}
//			return nil
//		}).
//		AddRequestGuard(func(ctx context.Context, req any) error {
//			p := req.(AddParams)
//			if p.A < 0 || p.B < 0 {
//				return errors.New("negative operand")
//			}
//			return nil
//		})
package peerwire
