package peerwire

import "time"

// timeoutCheckInterval is the periodic sweep interval (§4.6).
const timeoutCheckInterval = 100 * time.Millisecond

// timeoutChecker is the handle for the single periodic sweep goroutine a
// Peer runs while its pending table is non-empty (§3 invariant 4).
type timeoutChecker struct {
	stop chan struct{}
	done chan struct{}
}

// startTimeoutChecker starts the sweep goroutine if one isn't already
// running. Called whenever an insert transitions the pending table from
// empty to non-empty.
func (p *Peer[A]) startTimeoutChecker() {
	p.checkerMu.Lock()
	defer p.checkerMu.Unlock()
	if p.checker != nil {
		return
	}
	tc := &timeoutChecker{stop: make(chan struct{}), done: make(chan struct{})}
	p.checker = tc
	go p.runTimeoutChecker(tc)
}

// stopTimeoutChecker stops the sweep goroutine if one is running. Called
// whenever a removal (response, error response, cancellation, or teardown)
// empties the pending table. Emptiness is checked again under checkerMu, so
// a waiter inserted in the meantime keeps the running checker.
func (p *Peer[A]) stopTimeoutChecker() {
	p.checkerMu.Lock()
	if !p.pending.isEmpty() {
		p.checkerMu.Unlock()
		return
	}
	tc := p.checker
	p.checker = nil
	p.checkerMu.Unlock()
	if tc != nil {
		close(tc.stop)
	}
}

// runTimeoutChecker is the sweep loop body. It also self-stops (clearing
// p.checker without closing tc.stop) when its own sweep empties the table,
// so invariant 4 holds without a redundant external stop call racing it.
func (p *Peer[A]) runTimeoutChecker(tc *timeoutChecker) {
	defer close(tc.done)

	ticker := time.NewTicker(timeoutCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-tc.stop:
			return
		case now := <-ticker.C:
			expired := p.pending.expireBefore(now, p.config.RequestTimeout)
			for _, w := range expired {
				p.telemetry.RecordTimeout()
				w.complete(nil, newPeerError(ErrCodeRequestTimeout, int64(w.id), "request timed out", ""))
			}
			p.telemetry.SetPending(p.pending.len())
			p.checkerMu.Lock()
			if p.checker == tc && p.pending.isEmpty() {
				p.checker = nil
				p.checkerMu.Unlock()
				return
			}
			p.checkerMu.Unlock()
		}
	}
}
