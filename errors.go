package peerwire

import "fmt"

// Error codes carried on the wire (§6 error-code table). Code 1003 is
// intentionally unused.
const (
	ErrCodeParseError       int32 = 1000 // envelope decode failure
	ErrCodeInvalidRequest   int32 = 1001 // body decode failure
	ErrCodeMethodNotFound   int32 = 1002 // no handler for method id
	ErrCodeInternalError    int32 = 1004 // teardown during pending request
	ErrCodeRequestTimeout   int32 = 1005 // timeout sweep
	ErrCodeGuardError       int32 = 1006 // guard rejected the request
	ErrCodeApplicationError int32 = 1007 // handler returned an error
)

// noCorrelationID is the sentinel carried by a PeerError that isn't tied to
// any particular in-flight request.
const noCorrelationID int64 = -1

// PeerError is the single uniform error type errors propagate through:
// local-to-caller rejection of a Request's waiter, and the payload of an
// emitted ErrorResponse frame share this shape.
type PeerError struct {
	Code          int32
	Message       string
	CorrelationID int64 // -1 if this error isn't tied to a request
	Detail        string
}

// newPeerError constructs a PeerError. id should be noCorrelationID when the
// error predates knowing a correlation id (e.g. an envelope parse failure).
func newPeerError(code int32, id int64, message, detail string) *PeerError {
	return &PeerError{Code: code, Message: message, CorrelationID: id, Detail: detail}
}

// Error implements the error interface.
func (e *PeerError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("peerwire: code=%d id=%d: %s", e.Code, e.CorrelationID, e.Message)
	}
	return fmt.Sprintf("peerwire: code=%d id=%d: %s: %s", e.Code, e.CorrelationID, e.Message, e.Detail)
}

// Is implements errors.Is by comparing error codes — two PeerErrors match
// if they carry the same code, regardless of message/detail/correlation id.
func (e *PeerError) Is(target error) bool {
	t, ok := target.(*PeerError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// ErrTimeout reports whether err is a PeerError carrying ErrCodeRequestTimeout.
func ErrTimeout(err error) bool {
	pe, ok := err.(*PeerError)
	return ok && pe.Code == ErrCodeRequestTimeout
}
