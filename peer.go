package peerwire

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dominicnunez/peerwire/internal/telemetry"
)

// Defaults for Config, per §6.
const (
	DefaultRequestTimeout     = 5 * time.Second
	DefaultBuilderInitialSize = 256
)

// Config holds the two tunables §6 names: the per-request timeout and the
// initial capacity of the peer's reusable serialization arena.
type Config struct {
	RequestTimeout     time.Duration
	BuilderInitialSize int
}

// TransportSink is the function a Peer calls with each outbound frame it
// produces. appData is the caller-supplied context for that outbound
// message (§4.2).
type TransportSink[A any] func(frame []byte, appData A)

// Peer is a single bidirectional endpoint: it encodes outbound
// Requests/Notifications, decodes inbound frames via FromTransport, and
// dispatches them to registered handlers or completes awaiting Request
// callers. A is the type of the per-peer application-context side channel
// ("app-data", §3/§5) passed alongside every outbound/inbound message.
type Peer[A any] struct {
	schema Schema
	config Config

	mu   sync.Mutex
	sink TransportSink[A]

	dispatchMu sync.RWMutex
	dispatcher map[uint16]*handlerEntry[A]

	pending *pendingTable

	checkerMu sync.Mutex
	checker   *timeoutChecker

	builderMu sync.Mutex
	builder   *bytes.Buffer

	telemetry *telemetry.Recorder
}

// PeerOption configures a Peer at construction time.
type PeerOption[A any] func(*Peer[A])

// WithRequestTimeout overrides the default 5s request timeout.
func WithRequestTimeout[A any](d time.Duration) PeerOption[A] {
	return func(p *Peer[A]) { p.config.RequestTimeout = d }
}

// WithBuilderInitialSize overrides the default 256-byte arena capacity.
func WithBuilderInitialSize[A any](n int) PeerOption[A] {
	return func(p *Peer[A]) { p.config.BuilderInitialSize = n }
}

// WithTelemetryName labels this peer's metrics, useful when a process runs
// more than one Peer (e.g. a client peer and a server peer over different
// transports). Spans and log records do not carry the name.
func WithTelemetryName[A any](name string) PeerOption[A] {
	return func(p *Peer[A]) { p.telemetry = telemetry.NewRecorder(name) }
}

// NewPeer constructs a Peer bound to schema. schema must not be mutated
// after this call (§3).
func NewPeer[A any](schema Schema, opts ...PeerOption[A]) *Peer[A] {
	p := &Peer[A]{
		schema:     schema,
		dispatcher: make(map[uint16]*handlerEntry[A]),
		pending:    newPendingTable(),
		config: Config{
			RequestTimeout:     DefaultRequestTimeout,
			BuilderInitialSize: DefaultBuilderInitialSize,
		},
		telemetry: telemetry.NewRecorder("peer"),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.builder = bytes.NewBuffer(make([]byte, 0, p.config.BuilderInitialSize))
	telemetry.Info(context.Background(), "peer constructed", "methods", len(p.schema))
	return p
}

// SetTransportSink registers the function the peer calls with each encoded
// outbound frame, replacing any previously registered sink (§4.2).
func (p *Peer[A]) SetTransportSink(sink TransportSink[A]) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sink = sink
}

// sendFrame hands frame to the registered sink, if any. A nil sink (no
// transport wired, or after Clean) silently no-ops (§4.2's "operations
// that would attempt to send silently succeed").
func (p *Peer[A]) sendFrame(frame []byte, appData A) {
	p.mu.Lock()
	sink := p.sink
	p.mu.Unlock()
	if sink == nil {
		return
	}
	sink(frame, appData)
}

// serialize runs enc against the peer's reusable arena and copies the
// result out before releasing the arena for reuse (§5 "Shared resources").
func (p *Peer[A]) serialize(enc Encoder, v any) ([]byte, error) {
	p.builderMu.Lock()
	defer p.builderMu.Unlock()

	p.builder.Reset()
	if err := enc(p.builder, v); err != nil {
		return nil, err
	}
	body := make([]byte, p.builder.Len())
	copy(body, p.builder.Bytes())
	return body, nil
}

// Request allocates a new correlation id, serializes reqValue via the
// schema's request encoder for method, emits a Request frame, records a
// waiter, and blocks until a matching Response/ErrorResponse arrives, the
// request times out, ctx is cancelled, or the peer is torn down (§4.2).
//
// It resolves with a decoded response reader (when the schema declares a
// response body and the reply carries one) or nil (when the schema
// declares a void response, or the reply's body length is zero).
//
// Request panics if method has no Schema entry — per §7, a method id
// unknown to the schema at request time is a precondition violation.
func (p *Peer[A]) Request(ctx context.Context, method uint16, reqValue any, appData A) (any, error) {
	desc, ok := p.schema[method]
	if !ok {
		panic(unknownMethodMsg(method))
	}

	body, err := p.serialize(desc.EncodeRequest, reqValue)
	if err != nil {
		return nil, fmt.Errorf("peerwire: encode request for method %d: %w", method, err)
	}

	ctx, span := telemetry.StartRequestSpan(ctx, method)

	id := nextCorrelationID()
	w := &waiter{id: id, method: method, ch: make(chan waiterResult, 1), enqueuedAt: time.Now()}

	// Register the waiter before sending so a fast reply can never race
	// ahead of the pending-table insert.
	if p.pending.insert(w) {
		p.startTimeoutChecker()
	}
	p.telemetry.SetPending(p.pending.len())

	frame := Encode(MessageTypeRequest, id, method, body)
	p.sendFrame(frame, appData)

	select {
	case res := <-w.ch:
		telemetry.EndWithError(span, res.err)
		return res.value, res.err
	case <-ctx.Done():
		if _, ok := p.pending.remove(id); ok && p.pending.isEmpty() {
			p.stopTimeoutChecker()
		}
		p.telemetry.SetPending(p.pending.len())
		telemetry.EndWithError(span, ctx.Err())
		return nil, ctx.Err()
	}
}

// Notify emits a Notification frame (correlation id 0) and returns
// immediately; Notifications never register a waiter and never complete
// (§4.2). Notify panics under the same precondition as Request.
func (p *Peer[A]) Notify(method uint16, reqValue any, appData A) error {
	frame, err := p.EncodeNotification(method, reqValue)
	if err != nil {
		return err
	}
	p.sendFrame(frame, appData)
	return nil
}

// EncodeNotification returns a fully encoded Notification frame without
// sending it, for callers batching frames over their own transport (§4.2).
func (p *Peer[A]) EncodeNotification(method uint16, reqValue any) ([]byte, error) {
	desc, ok := p.schema[method]
	if !ok {
		panic(unknownMethodMsg(method))
	}
	body, err := p.serialize(desc.EncodeRequest, reqValue)
	if err != nil {
		return nil, fmt.Errorf("peerwire: encode notification for method %d: %w", method, err)
	}
	return Encode(MessageTypeNotification, 0, method, body), nil
}

// FromTransport is the entry point for inbound frames (§4.2). Callers must
// invoke it with exactly one complete encoded frame at a time; the library
// does no stream framing of its own.
func (p *Peer[A]) FromTransport(ctx context.Context, frame []byte, appData A) {
	env, err := Decode(frame)
	if err != nil {
		pe, _ := err.(*PeerError)
		code := ErrCodeParseError
		msg := err.Error()
		if pe != nil {
			code = pe.Code
			msg = pe.Message
		}
		p.sendFrame(EncodeError(errorIDAllOnes, code, msg), appData)
		return
	}

	switch env.Type {
	case MessageTypeRequest, MessageTypeNotification:
		p.dispatchInbound(ctx, env, appData)
	case MessageTypeResponse:
		p.completeResponse(env)
	case MessageTypeErrorResponse:
		p.completeError(env)
	}

	p.telemetry.SetPending(p.pending.len())
}

// Clean tears the peer down: every pending waiter is rejected with
// InternalError carrying reason, the dispatcher and all its guard chains
// are cleared, the timeout checker is stopped, and the transport sink is
// cleared (§4.2). After Clean, the peer is inert: further sends silently
// no-op because the sink is nil, and further Request calls still allocate
// waiters that will never complete (§9 Open Question 1 — this module does
// not add a post-Clean guard, matching the spec's explicit either/or).
func (p *Peer[A]) Clean(reason string) {
	telemetry.Info(context.Background(), "peer cleaned", "reason", reason, "pending", p.pending.len())

	p.dispatchMu.Lock()
	p.dispatcher = make(map[uint16]*handlerEntry[A])
	p.dispatchMu.Unlock()

	for _, w := range p.pending.drain() {
		w.complete(nil, newPeerError(ErrCodeInternalError, int64(w.id), reason, ""))
	}
	p.stopTimeoutChecker()
	p.telemetry.SetPending(0)

	p.mu.Lock()
	p.sink = nil
	p.mu.Unlock()
}

func waiterAge(w *waiter) time.Duration {
	return time.Since(w.enqueuedAt)
}

func unknownMethodMsg(method uint16) string {
	return fmt.Sprintf("peerwire: method %d is not described by this peer's schema", method)
}
