package telemetry

import "time"

// Recorder is the single handle a Peer holds for all of its telemetry:
// the logging and tracing helpers (logger.go, tracing.go) are package-level
// functions, so Recorder itself only needs to own the
// Prometheus side, which is per-peer-name.
type Recorder struct {
	metrics *Metrics
}

// NewRecorder builds a Recorder whose metrics are labeled with name.
func NewRecorder(name string) *Recorder {
	return &Recorder{metrics: NewMetrics(name, nil)}
}

// SetPending reports the current size of the peer's pending-request table.
func (r *Recorder) SetPending(n int) {
	if r == nil {
		return
	}
	r.metrics.setPending(n)
}

// RecordDispatchError counts an ErrorResponse emitted during dispatch.
func (r *Recorder) RecordDispatchError(code int32) {
	if r == nil {
		return
	}
	r.metrics.recordDispatchError(code)
}

// RecordTimeout counts a waiter rejected by the periodic timeout sweep.
func (r *Recorder) RecordTimeout() {
	if r == nil {
		return
	}
	r.metrics.recordTimeout()
}

// ObserveLatency records the round-trip time of a completed request.
func (r *Recorder) ObserveLatency(method uint16, d time.Duration) {
	if r == nil {
		return
	}
	r.metrics.observeLatency(method, d)
}
