package peerwire

import "sync/atomic"

// correlationCounter is the process-wide source of outbound correlation
// ids (§3: "a single counter shared by all Peer instances in the process,
// not one per peer"). The first id it hands out is 1, so 0 (reserved for
// Notifications) and 0xFFFFFFFF (used by transport-level parse errors that
// precede any correlation id) are not produced until the counter has
// advanced that far; it wraps modulo 2^32 and does not skip either value.
var correlationCounter uint32

func nextCorrelationID() uint32 {
	return atomic.AddUint32(&correlationCounter, 1)
}
