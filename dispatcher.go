package peerwire

import (
	"context"
	"sync"

	"github.com/dominicnunez/peerwire/internal/telemetry"
)

// HandlerFunc processes a decoded inbound request or notification. req is
// the value returned by the schema's request Decoder (nil if the method's
// schema entry has no request body). A HandlerFunc runs synchronously; if
// it needs to wait on async work it simply blocks its own goroutine until
// that work completes, which is how this library satisfies §4.3's "sync
// path must not schedule an extra task" without a separate async path.
type HandlerFunc[A any] func(ctx context.Context, req any, appData A) (any, error)

// handlerEntry is the dispatcher's per-method registration: the handler
// callable plus its ordered guard chain (§3). The request/response
// constructors named in §3's handler-entry definition are looked up from
// the peer's Schema by method id at dispatch time instead of being cached
// here a second time, since Schema is immutable for the peer's lifetime.
type handlerEntry[A any] struct {
	method  uint16
	handler HandlerFunc[A]

	mu     sync.Mutex
	guards []guard[A]
}

func (e *handlerEntry[A]) appendGuard(g guard[A]) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.guards = append(e.guards, g)
}

// snapshotGuards returns the current guard chain without holding the lock
// during dispatch, following the snapshot-then-call pattern the teacher
// uses for its approval-handler map (client.go's handleRequest).
func (e *handlerEntry[A]) snapshotGuards() []guard[A] {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]guard[A], len(e.guards))
	copy(out, e.guards)
	return out
}

// RegisterHandler installs fn as the handler for method, overwriting any
// prior handler for that id, and returns a handle for chaining guards
// (§4.2, §4.7). RegisterHandler never fails from the caller's point of
// view for a method the Schema describes; per §7's one named
// precondition-violation carve-out ("method id unknown to schema"), it
// panics if method has no Schema entry — registering a handler for a
// method the wire format can never carry a decodable body for is a
// programmer error, not a runtime condition.
func (p *Peer[A]) RegisterHandler(method uint16, fn HandlerFunc[A]) *HandlerHandle[A] {
	if _, ok := p.schema[method]; !ok {
		panic(unknownMethodMsg(method))
	}

	entry := &handlerEntry[A]{method: method, handler: fn}

	p.dispatchMu.Lock()
	p.dispatcher[method] = entry
	p.dispatchMu.Unlock()

	return &HandlerHandle[A]{entry: entry}
}

// dispatchInbound implements §4.3: look up the handler, decode the body,
// run the guard chain, invoke the handler, and emit a Response or
// ErrorResponse — except for Notifications, which never produce output
// under any condition.
func (p *Peer[A]) dispatchInbound(ctx context.Context, env Envelope, appData A) {
	isRequest := env.Type == MessageTypeRequest

	ctx, span := telemetry.StartDispatchSpan(ctx, env.Method)
	defer span.End()

	p.dispatchMu.RLock()
	entry, ok := p.dispatcher[env.Method]
	p.dispatchMu.RUnlock()

	if !ok {
		telemetry.Warn(ctx, "dispatch: no handler registered", "method", env.Method)
		if isRequest {
			p.replyError(env.ID, appData, ErrCodeMethodNotFound, "Method not found")
		}
		return
	}

	desc := p.schema[env.Method] // guaranteed present: RegisterHandler requires it.

	var reqVal any
	if desc.DecodeRequest != nil {
		v, err := desc.DecodeRequest(env.Body)
		if err != nil {
			if isRequest {
				p.replyError(env.ID, appData, ErrCodeInvalidRequest, err.Error())
			}
			return
		}
		reqVal = v
	}

	for _, g := range entry.snapshotGuards() {
		if err := g.run(ctx, reqVal, appData); err != nil {
			p.telemetry.RecordDispatchError(ErrCodeGuardError)
			if isRequest {
				p.replyError(env.ID, appData, ErrCodeGuardError, err.Error())
			}
			return
		}
	}

	result, err := entry.handler(ctx, reqVal, appData)
	if err != nil {
		telemetry.Error(ctx, "dispatch: handler returned an error", "method", env.Method, "error", err)
		p.telemetry.RecordDispatchError(ErrCodeApplicationError)
		if isRequest {
			p.replyError(env.ID, appData, ErrCodeApplicationError, err.Error())
		}
		return
	}

	if !isRequest {
		return // Notifications never produce a Response.
	}

	if result == nil || desc.EncodeResponse == nil {
		p.sendFrame(Encode(MessageTypeResponse, env.ID, env.Method, nil), appData)
		return
	}

	body, err := p.serialize(desc.EncodeResponse, result)
	if err != nil {
		p.telemetry.RecordDispatchError(ErrCodeApplicationError)
		p.replyError(env.ID, appData, ErrCodeApplicationError, err.Error())
		return
	}
	p.sendFrame(Encode(MessageTypeResponse, env.ID, env.Method, body), appData)
}

// replyError emits an ErrorResponse frame for id via the transport sink and
// counts it in the dispatch-error metric.
func (p *Peer[A]) replyError(id uint32, appData A, code int32, message string) {
	p.telemetry.RecordDispatchError(code)
	p.sendFrame(EncodeError(id, code, message), appData)
}

// completeResponse implements §4.4: resolve the waiter matching a Response
// frame's correlation id, or drop silently if it's unknown (late/duplicate).
func (p *Peer[A]) completeResponse(env Envelope) {
	w, ok := p.pending.remove(env.ID)
	if !ok {
		return
	}
	if p.pending.isEmpty() {
		p.stopTimeoutChecker()
	}
	p.telemetry.ObserveLatency(w.method, waiterAge(w))

	desc := p.schema[w.method]
	if len(env.Body) == 0 || desc.DecodeResponse == nil {
		w.complete(nil, nil)
		return
	}

	val, err := desc.DecodeResponse(env.Body)
	if err != nil {
		w.complete(nil, newPeerError(ErrCodeInvalidRequest, int64(env.ID), "decode response body", err.Error()))
		return
	}
	w.complete(val, nil)
}

// completeError implements §4.5: resolve the waiter matching an
// ErrorResponse frame's correlation id (the method field is ignored), or
// drop silently if it's unknown.
func (p *Peer[A]) completeError(env Envelope) {
	w, ok := p.pending.remove(env.ID)
	if !ok {
		return
	}
	if p.pending.isEmpty() {
		p.stopTimeoutChecker()
	}
	p.telemetry.ObserveLatency(w.method, waiterAge(w))

	code, message, err := DecodeError(env.Body)
	if err != nil {
		w.complete(nil, newPeerError(ErrCodeInvalidRequest, int64(env.ID), "decode error body", err.Error()))
		return
	}
	w.complete(nil, newPeerError(code, int64(env.ID), message, ""))
}
