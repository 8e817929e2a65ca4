package telemetry

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks Prometheus metrics for a peer's dispatch loop, grounded on
// the teacher pack's GSSMetrics (internal/protocol/nfs/rpc/gss/metrics.go).
// All metrics use the "peerwire_" prefix. Methods handle a nil receiver
// gracefully, so a nil *Metrics is a zero-overhead no-op.
type Metrics struct {
	// PendingRequests tracks the current size of the peer's pending table.
	PendingRequests prometheus.Gauge

	// DispatchErrors counts ErrorResponse frames emitted during dispatch,
	// labeled by numeric error code.
	DispatchErrors *prometheus.CounterVec

	// Timeouts counts waiters rejected by the periodic timeout sweep.
	Timeouts prometheus.Counter

	// RequestLatency tracks round-trip time from Request to completion,
	// labeled by method id.
	RequestLatency *prometheus.HistogramVec
}

var (
	registry   = map[string]*Metrics{}
	registryMu sync.Mutex
)

// NewMetrics creates and registers a peer's Prometheus metrics under name,
// so that multiple peers in one process don't collide on metric identity.
// If registerer is nil, prometheus.DefaultRegisterer is used. Safe to call
// more than once for the same name: the first registration wins and later
// calls reuse it.
func NewMetrics(name string, registerer prometheus.Registerer) *Metrics {
	registryMu.Lock()
	defer registryMu.Unlock()
	if m, ok := registry[name]; ok {
		return m
	}
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		PendingRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "peerwire_pending_requests",
			Help:        "Current number of outstanding Request calls awaiting a reply.",
			ConstLabels: prometheus.Labels{"peer": name},
		}),
		DispatchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "peerwire_dispatch_errors_total",
			Help:        "Total ErrorResponse frames emitted during inbound dispatch, by code.",
			ConstLabels: prometheus.Labels{"peer": name},
		}, []string{"code"}),
		Timeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "peerwire_request_timeouts_total",
			Help:        "Total Request calls rejected by the periodic timeout sweep.",
			ConstLabels: prometheus.Labels{"peer": name},
		}),
		RequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "peerwire_request_duration_seconds",
			Help:        "Round-trip time from Request to completion, by method id.",
			ConstLabels: prometheus.Labels{"peer": name},
			Buckets:     prometheus.DefBuckets,
		}, []string{"method"}),
	}

	registerer.MustRegister(m.PendingRequests, m.DispatchErrors, m.Timeouts, m.RequestLatency)
	registry[name] = m
	return m
}

func (m *Metrics) setPending(n int) {
	if m == nil {
		return
	}
	m.PendingRequests.Set(float64(n))
}

func (m *Metrics) recordDispatchError(code int32) {
	if m == nil {
		return
	}
	m.DispatchErrors.WithLabelValues(strconv.Itoa(int(code))).Inc()
}

func (m *Metrics) recordTimeout() {
	if m == nil {
		return
	}
	m.Timeouts.Inc()
}

func (m *Metrics) observeLatency(method uint16, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestLatency.WithLabelValues(strconv.Itoa(int(method))).Observe(d.Seconds())
}
