package peerwire

import (
	"encoding/binary"
	"fmt"
)

// MessageType tags the four kinds of frame this library frames and routes.
type MessageType uint8

const (
	MessageTypeRequest       MessageType = 0
	MessageTypeNotification  MessageType = 1
	MessageTypeResponse      MessageType = 2
	MessageTypeErrorResponse MessageType = 3
)

func (t MessageType) String() string {
	switch t {
	case MessageTypeRequest:
		return "Request"
	case MessageTypeNotification:
		return "Notification"
	case MessageTypeResponse:
		return "Response"
	case MessageTypeErrorResponse:
		return "ErrorResponse"
	default:
		return fmt.Sprintf("MessageType(%d)", uint8(t))
	}
}

// headerSize is the fixed envelope header length in bytes (§3):
// byte 0 type, byte 1 reserved, bytes 2-3 method, bytes 4-7 id, bytes 8-11 body length.
const headerSize = 12

// errorIDAllOnes is the correlation id an ErrorResponse carries when it is
// emitted before any correlation id can be trusted (an envelope decode
// failure) — all-ones when read as unsigned 32-bit, per §4.2/§7.
const errorIDAllOnes uint32 = 0xFFFFFFFF

// Envelope is the decoded structural form of a frame: message type,
// correlation id, method id, and a body view. Body is a sub-slice of the
// buffer passed to Decode — it is not copied, per §4.1.
type Envelope struct {
	Type   MessageType
	ID     uint32
	Method uint16
	Body   []byte
}

// Encode builds a complete frame: the 12-byte header followed by body, with
// byte 1 (reserved) written as zero. It allocates a buffer sized exactly
// 12+len(body); no trailing bytes (invariant 1 in §3).
func Encode(mtype MessageType, id uint32, method uint16, body []byte) []byte {
	frame := make([]byte, headerSize+len(body))
	frame[0] = byte(mtype)
	frame[1] = 0
	binary.LittleEndian.PutUint16(frame[2:4], method)
	binary.LittleEndian.PutUint32(frame[4:8], id)
	binary.LittleEndian.PutUint32(frame[8:12], uint32(len(body)))
	copy(frame[headerSize:], body)
	return frame
}

// EncodeError builds a complete ErrorResponse frame. The body is 4 bytes of
// signed error code followed by the UTF-8 message with no length prefix
// (length is implied by body_len - 4). Per §3 invariant 6, the method field
// is always 0 on an ErrorResponse frame.
func EncodeError(id uint32, code int32, message string) []byte {
	msg := []byte(message)
	body := make([]byte, 4+len(msg))
	binary.LittleEndian.PutUint32(body[0:4], uint32(code))
	copy(body[4:], msg)
	return Encode(MessageTypeErrorResponse, id, 0, body)
}

// Decode parses a frame's header and returns a view over its body. Decode
// never copies the body: Envelope.Body aliases data.
func Decode(data []byte) (Envelope, error) {
	if len(data) < headerSize {
		return Envelope{}, newPeerError(ErrCodeParseError, noCorrelationID, "Message too short", "")
	}

	mtype := MessageType(data[0])
	// byte 1 (reserved) is ignored on read.
	method := binary.LittleEndian.Uint16(data[2:4])
	id := binary.LittleEndian.Uint32(data[4:8])
	bodyLen := binary.LittleEndian.Uint32(data[8:12])

	if uint64(len(data)) < uint64(headerSize)+uint64(bodyLen) {
		return Envelope{}, newPeerError(ErrCodeParseError, noCorrelationID, "Incomplete message", "")
	}

	return Envelope{
		Type:   mtype,
		ID:     id,
		Method: method,
		Body:   data[headerSize : headerSize+bodyLen],
	}, nil
}

// DecodeError reads an ErrorResponse body: a signed 32-bit code followed by
// a UTF-8 message with no length prefix.
func DecodeError(body []byte) (code int32, message string, err error) {
	if len(body) < 4 {
		return 0, "", newPeerError(ErrCodeParseError, noCorrelationID, "Error body too short", "")
	}
	code = int32(binary.LittleEndian.Uint32(body[0:4]))
	message = string(body[4:])
	return code, message, nil
}
