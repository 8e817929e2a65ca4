package peerwire

import (
	"container/list"
	"sync"
	"time"
)

// waiterResult is what completes a waiter's channel: either a decoded
// response value (possibly nil for a void response) or an error.
type waiterResult struct {
	value any
	err   error
}

// waiter is a pending request awaiting its Response or ErrorResponse.
type waiter struct {
	id         uint32
	method     uint16
	ch         chan waiterResult
	enqueuedAt time.Time
}

// complete delivers a result to the waiter's channel. It must be called at
// most once per waiter — callers only reach it after successfully removing
// the waiter from the pending table, which happens exactly once (remove is
// exclusive under the table's mutex), so there is no risk of a double send.
func (w *waiter) complete(value any, err error) {
	w.ch <- waiterResult{value: value, err: err}
}

// pendingTable is the insertion-ordered map from correlation id to waiter
// described in §3/§4.6. container/list plus a side index gives O(1)
// insert/remove-by-id while preserving insertion order for the timeout
// sweep's "stop at the first non-expired entry" optimization.
type pendingTable struct {
	mu    sync.Mutex
	order *list.List
	index map[uint32]*list.Element
}

func newPendingTable() *pendingTable {
	return &pendingTable{
		order: list.New(),
		index: make(map[uint32]*list.Element),
	}
}

// insert adds w to the table and reports whether the table was empty
// beforehand (the peer uses this to decide whether to start the timeout
// checker).
func (t *pendingTable) insert(w *waiter) (wasEmpty bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	wasEmpty = t.order.Len() == 0
	el := t.order.PushBack(w)
	t.index[w.id] = el
	return wasEmpty
}

// remove removes and returns the waiter for id, if present. At most one
// caller ever observes ok==true for a given id — this is what makes
// waiter.complete safe to call without further synchronization.
func (t *pendingTable) remove(id uint32) (*waiter, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	el, ok := t.index[id]
	if !ok {
		return nil, false
	}
	delete(t.index, id)
	t.order.Remove(el)
	return el.Value.(*waiter), true
}

// isEmpty reports whether the table currently holds no pending waiters.
func (t *pendingTable) isEmpty() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.order.Len() == 0
}

// len reports the number of pending waiters. Exposed for tests/metrics.
func (t *pendingTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.order.Len()
}

// drain removes and returns every pending waiter, in insertion order. Used
// by Clean to reject all outstanding requests on teardown.
func (t *pendingTable) drain() []*waiter {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*waiter, 0, t.order.Len())
	for el := t.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*waiter))
	}
	t.order = list.New()
	t.index = make(map[uint32]*list.Element)
	return out
}

// expireBefore walks the table in insertion order and removes every waiter
// enqueued at least timeout ago, stopping at the first entry that isn't
// expired yet (§4.6): since every waiter shares the same configured
// timeout and entries are inserted in monotonic order, everything after
// the first non-expired entry is younger still.
func (t *pendingTable) expireBefore(now time.Time, timeout time.Duration) []*waiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	var expired []*waiter
	el := t.order.Front()
	for el != nil {
		w := el.Value.(*waiter)
		if now.Sub(w.enqueuedAt) < timeout {
			break
		}
		next := el.Next()
		t.order.Remove(el)
		delete(t.index, w.id)
		expired = append(expired, w)
		el = next
	}
	return expired
}
