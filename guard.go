package peerwire

import (
	"context"
	"fmt"
)

// GuardKind tags which argument shape a guard expects (§3, §9 — a flat
// sum type is preferred here over dynamic dispatch).
type GuardKind int

const (
	GuardBoth     GuardKind = iota // receives (request, app-data)
	GuardRequest                   // receives (request) only
	GuardAppData                   // receives (app-data) only
)

// guard is one entry in a handler's ordered guard chain. Exactly one of
// both/request/appData is set, selected by kind.
type guard[A any] struct {
	kind     GuardKind
	both     func(ctx context.Context, req any, appData A) error
	request  func(ctx context.Context, req any) error
	appData  func(ctx context.Context, appData A) error
}

// run invokes the guard per its kind. A panic inside a guard callable is
// treated the same as a returned error — it aborts the chain with
// GuardError rather than crashing the peer, mirroring "any exception from a
// guard aborts the chain" (§4.3) in a language where guards don't throw.
func (g guard[A]) run(ctx context.Context, req any, appData A) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("guard panicked: %v", r)
		}
	}()

	switch g.kind {
	case GuardBoth:
		return g.both(ctx, req, appData)
	case GuardRequest:
		return g.request(ctx, req)
	case GuardAppData:
		return g.appData(ctx, appData)
	default:
		return nil
	}
}

// HandlerHandle is returned by Peer.RegisterHandler and lets callers append
// guards to the handler's chain, in registration order, chaining each
// Add* call (§4.7). A handle's appends become meaningless once its handler
// entry is no longer reachable from the dispatcher (e.g. after Clean) —
// they neither panic nor error, they simply have no further effect.
type HandlerHandle[A any] struct {
	entry *handlerEntry[A]
}

// AddGuard appends a guard that receives both the decoded request and the
// app-data context.
func (h *HandlerHandle[A]) AddGuard(fn func(ctx context.Context, req any, appData A) error) *HandlerHandle[A] {
	h.entry.appendGuard(guard[A]{kind: GuardBoth, both: fn})
	return h
}

// AddRequestGuard appends a guard that receives only the decoded request.
func (h *HandlerHandle[A]) AddRequestGuard(fn func(ctx context.Context, req any) error) *HandlerHandle[A] {
	h.entry.appendGuard(guard[A]{kind: GuardRequest, request: fn})
	return h
}

// AddAppDataGuard appends a guard that receives only the app-data context.
func (h *HandlerHandle[A]) AddAppDataGuard(fn func(ctx context.Context, appData A) error) *HandlerHandle[A] {
	h.entry.appendGuard(guard[A]{kind: GuardAppData, appData: fn})
	return h
}
